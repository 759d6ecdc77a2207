// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package addfavourite

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/curioswitch/cookshelf/server/internal/session"
)

type Request struct {
	RecipeID string
}

func (r *Request) Bind(req *http.Request) error {
	r.RecipeID = chi.URLParam(req, "id")
	return nil
}

type Response struct {
	RecipeID  string `json:"recipeId"`
	Favourite bool   `json:"favourite"`
}

func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{
		sessions: sessions,
	}
}

type Handler struct {
	sessions *session.Manager
}

func (h *Handler) AddFavourite(ctx context.Context, req *Request) (*Response, error) {
	sess := h.sessions.FromContext(ctx)
	if err := sess.AddFavourite(ctx, req.RecipeID); err != nil {
		return nil, fmt.Errorf("addfavourite: saving favourite: %w", err)
	}
	return &Response{
		RecipeID:  req.RecipeID,
		Favourite: sess.IsFavourite(req.RecipeID),
	}, nil
}
