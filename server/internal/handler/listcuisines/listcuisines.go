// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package listcuisines

import (
	"context"
	"net/http"

	"github.com/curioswitch/cookshelf/common/recipedb"
)

type Request struct{}

func (*Request) Bind(*http.Request) error {
	return nil
}

// Response lists the values recipes can be filtered and filed by.
type Response struct {
	Cuisines   []string `json:"cuisines"`
	Categories []string `json:"categories"`
}

func NewHandler() *Handler {
	return &Handler{}
}

type Handler struct{}

func (h *Handler) ListCuisines(context.Context, *Request) (*Response, error) {
	return &Response{
		Cuisines:   recipedb.Cuisines,
		Categories: recipedb.Categories,
	}, nil
}
