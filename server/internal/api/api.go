// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package api adapts unary handlers to JSON over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/curioswitch/cookshelf/common/recipedb"
)

var (
	// ErrBadRequest is returned when a request cannot be parsed.
	ErrBadRequest = errors.New("bad request")

	// ErrSuperseded is returned when a newer query for the same view was issued
	// before this one settled.
	ErrSuperseded = errors.New("superseded by a newer query")
)

// Binder populates a request from HTTP.
type Binder interface {
	Bind(r *http.Request) error
}

// StatusCoder is implemented by responses with a status other than 200.
type StatusCoder interface {
	StatusCode() int
}

// Error is the body of an error response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handle adapts a unary handler method to an http.HandlerFunc.
func Handle[Req any, Resp any, PReq interface {
	*Req
	Binder
}](fn func(ctx context.Context, req PReq) (*Resp, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := PReq(new(Req))
		if err := req.Bind(r); err != nil {
			WriteError(w, r, fmt.Errorf("%w: %w", ErrBadRequest, err))
			return
		}

		resp, err := fn(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		status := http.StatusOK
		if sc, ok := any(resp).(StatusCoder); ok {
			status = sc.StatusCode()
		}
		WriteJSON(w, r, status, resp)
	}
}

// WriteJSON writes v as the JSON body of a response.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.WarnContext(r.Context(), "api: writing response", "error", err)
	}
}

// WriteError writes err with the status matching its kind.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "api: unhandled error", "path", r.URL.Path, "error", err)
	}
	WriteJSON(w, r, status, Error{Code: code, Message: err.Error()})
}

func classify(err error) (int, string) {
	if _, ok := recipedb.AsSourceFailure(err); ok {
		return http.StatusBadGateway, "unavailable"
	}
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, recipedb.ErrInvalidDraft):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, recipedb.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, recipedb.ErrForbidden):
		return http.StatusForbidden, "permission_denied"
	case errors.Is(err, recipedb.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrSuperseded):
		return http.StatusConflict, "superseded"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
