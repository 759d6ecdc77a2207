// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package deleterecipe

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/curioswitch/cookshelf/server/internal/session"
)

type Request struct {
	ID string
}

func (r *Request) Bind(req *http.Request) error {
	r.ID = chi.URLParam(req, "id")
	return nil
}

type Response struct{}

func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{
		sessions: sessions,
	}
}

type Handler struct {
	sessions *session.Manager
}

func (h *Handler) DeleteRecipe(ctx context.Context, req *Request) (*Response, error) {
	if err := h.sessions.FromContext(ctx).DeleteRecipe(ctx, req.ID); err != nil {
		return nil, fmt.Errorf("deleterecipe: deleting recipe: %w", err)
	}
	return &Response{}, nil
}
