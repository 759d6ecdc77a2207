// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package addrecipe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/curioswitch/cookshelf/common/recipedb"
	"github.com/curioswitch/cookshelf/server/internal/session"
)

// maxBodySize leaves room for an inline image.
const maxBodySize = 8 << 20

// Request is a recipe draft. Ingredients may be given as a list or as
// comma-separated text.
type Request struct {
	recipedb.Draft

	IngredientsText string `json:"ingredientsText,omitempty"`
}

func (r *Request) Bind(req *http.Request) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, req.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(r); err != nil {
		return fmt.Errorf("addrecipe: decoding draft: %w", err)
	}
	if len(r.Ingredients) == 0 && r.IngredientsText != "" {
		r.Ingredients = recipedb.SplitIngredients(r.IngredientsText)
	}
	return nil
}

type Response struct {
	Recipe recipedb.Recipe `json:"recipe"`
}

func (*Response) StatusCode() int {
	return http.StatusCreated
}

func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{
		sessions: sessions,
	}
}

type Handler struct {
	sessions *session.Manager
}

func (h *Handler) AddRecipe(ctx context.Context, req *Request) (*Response, error) {
	recipe, err := h.sessions.FromContext(ctx).CreateRecipe(ctx, &req.Draft)
	if err != nil {
		return nil, fmt.Errorf("addrecipe: creating recipe: %w", err)
	}
	return &Response{Recipe: recipe}, nil
}
