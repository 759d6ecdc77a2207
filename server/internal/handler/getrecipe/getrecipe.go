// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package getrecipe

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/curioswitch/cookshelf/common/recipedb"
	"github.com/curioswitch/cookshelf/server/internal/session"
)

type Request struct {
	ID string
}

func (r *Request) Bind(req *http.Request) error {
	r.ID = chi.URLParam(req, "id")
	return nil
}

// Response is a recipe with the details a detail page renders.
type Response struct {
	recipedb.Recipe

	Favourite bool `json:"favourite"`

	// EmbedURL is the embeddable form of the video link.
	EmbedURL string `json:"embedUrl,omitempty"`

	// Deletable is set when the caller authored the recipe.
	Deletable bool `json:"deletable"`
}

func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{
		sessions: sessions,
	}
}

type Handler struct {
	sessions *session.Manager
}

func (h *Handler) GetRecipe(ctx context.Context, req *Request) (*Response, error) {
	sess := h.sessions.FromContext(ctx)
	item, err := sess.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return &Response{
		Recipe:    item.Recipe,
		Favourite: item.Favourite,
		EmbedURL:  item.EmbedURL(),
		Deletable: item.Origin == recipedb.OriginUser && item.OwnerID == sess.Identity(),
	}, nil
}
