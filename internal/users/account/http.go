// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-identity/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-identity/internal/platform/request"
	"github.com/taibuivan/yomira-identity/internal/platform/respond"
	"github.com/taibuivan/yomira-identity/internal/platform/validate"
	"github.com/taibuivan/yomira-identity/internal/users/auth"
	"github.com/taibuivan/yomira-identity/pkg/pointer"
)

// Handler implements the HTTP layer for profile management.
type Handler struct {
	accountService *Service
	verifier       middleware.AccessVerifier
}

// NewHandler constructs a new account [Handler].
// The verifier checks the access token of every request before it reaches a handler.
func NewHandler(service *Service, verifier middleware.AccessVerifier) *Handler {
	return &Handler{accountService: service, verifier: verifier}
}

// Routes registers the profile endpoints behind the access-token gate.
func (handler *Handler) Routes(router chi.Router) {
	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireAccessToken(handler.verifier))

		router.Get("/profile", handler.getProfile)
		router.Put("/profile", handler.updateProfile)
		router.Delete("/profile", handler.deleteProfile)
	})
}

// # Profile Endpoints

/*
GET /profile.

Response:
  - 200: Profile {username, email}
  - 401: No token
  - 403: Invalid or expired token
  - 404: Account deleted after the token was issued
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// updateProfileRequest is the PUT /profile payload. Omitted or empty fields are unchanged.
type updateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
PUT /profile.

Description: Applies partial updates to the authenticated account.

Request:
  - body: updateProfileRequest

Response:
  - 200: {"message": "Profile updated successfully!"}
  - 400: VALIDATION_ERROR or CONFLICT
  - 401/403: Gate failures
  - 404: Account not found
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	update := UpdateInput{
		Username: pointer.NonZero(validate.NormalizeUsername(input.Username)),
		Email:    pointer.NonZero(validate.NormalizeEmail(input.Email)),
		Password: pointer.NonZero(input.Password),
	}

	v := &validate.Validator{}
	if update.Username != nil {
		v.Username(auth.FieldUsername, *update.Username)
	}
	if update.Email != nil {
		v.Email(auth.FieldEmail, *update.Email)
	}
	if update.Password != nil {
		v.Password(auth.FieldPassword, *update.Password)
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.UpdateProfile(request.Context(), accountID, update); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, MessageProfileUpdated)
}

/*
DELETE /profile.

Response:
  - 200: {"message": "User deleted successfully!"}
  - 401/403: Gate failures
  - 404: Account not found
*/
func (handler *Handler) deleteProfile(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), accountID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, MessageAccountDeleted)
}
