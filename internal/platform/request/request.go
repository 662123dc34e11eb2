// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away common body decoding patterns and the lookup of the
authenticated account, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/taibuivan/yomira-identity/internal/platform/apperr"
	"github.com/taibuivan/yomira-identity/internal/platform/constants"
	"github.com/taibuivan/yomira-identity/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-identity/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

An empty body decodes as an empty object so handlers can report missing
fields with their own messages.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if request.Body == nil || request.Body == http.NoBody {
		return nil
	}

	decoder := json.NewDecoder(http.MaxBytesReader(nil, request.Body, constants.MaxRequestBodyBytes))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
RequiredAccountID returns the account id bound by the authorization gate.

Returns:
  - string: Account UUID
  - error: apperr.Unauthorized if the request never passed the gate
*/
func RequiredAccountID(request *http.Request) (string, error) {
	accountID, ok := ctxutil.GetAccountID(request.Context())
	if !ok {
		return "", apperr.Unauthorized("No token")
	}
	return accountID, nil
}
