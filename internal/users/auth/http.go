// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
	requestutil "github.com/taibuivan/yomira-identity/internal/platform/request"
	"github.com/taibuivan/yomira-identity/internal/platform/respond"
	"github.com/taibuivan/yomira-identity/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the public session endpoints.
//
// # Scope
//
// Registration, login, logout and access-token renewal. None of these
// require an access token; logout and renewal authenticate with the
// refresh token in the body.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes registers the session endpoints on the given router.
//
// # Endpoints
//   - POST /register      : Creates a new account.
//   - POST /login         : Returns an access + refresh token pair.
//   - POST /logout        : Clears the stored refresh token.
//   - POST /refresh-token : Returns a new access token.
func (handler *Handler) Routes(router chi.Router) {
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Post("/refresh-token", handler.refresh)
}

// # Request Payloads

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// # Response Payloads

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Message      string `json:"message"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

/*
Register handles the creation of a new account.

POST /register

Request:
  - Body: registerRequest (Username, Email, Password)

Response:
  - 201: {"message": "User registered successfully!"}
  - 400: VALIDATION_ERROR or CONFLICT ("User already exists.")
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input.Username = validate.NormalizeUsername(input.Username)
	input.Email = validate.NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	err := validator.Username(FieldUsername, input.Username).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Password(FieldPassword, input.Password).
		Err()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	_, err = handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusCreated, MessageRegistered)
}

/*
Login authenticates with email and password.

POST /login

Response:
  - 200: loginResponse
  - 400: VALIDATION_ERROR or INVALID_CREDENTIALS ("Invalid password.")
  - 404: NOT_FOUND ("User not found.")
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input.Email = validate.NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	err := validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		Err()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, loginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Message:      MessageLoggedIn,
	})
}

/*
Logout clears the caller's stored refresh token.

POST /logout

Response:
  - 200: {"message": "You have successfully logged out."}
  - 401: UNAUTHORIZED ("No Refresh token.")
  - 404: NOT_FOUND when no account holds the token
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	refreshToken, err := readRefreshToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), refreshToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, MessageLoggedOut)
}

/*
Refresh exchanges a refresh token for a new access token.

POST /refresh-token

Response:
  - 200: refreshResponse
  - 401: UNAUTHORIZED ("No Refresh token.")
  - 403: INVALID_TOKEN ("Incorrect refresh token.")
  - 404: NOT_FOUND when the account was deleted
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	refreshToken, err := readRefreshToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	accessToken, err := handler.authService.Refresh(request.Context(), refreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, refreshResponse{AccessToken: accessToken})
}

// readRefreshToken decodes the body and reports a missing token as 401.
func readRefreshToken(request *http.Request) (string, error) {
	var input refreshTokenRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		return "", err
	}

	token := strings.TrimSpace(input.RefreshToken)
	if token == "" {
		return "", apperr.Unauthorized(MessageNoRefreshToken)
	}

	return token, nil
}
