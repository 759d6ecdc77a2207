// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package listrecipes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/curioswitch/cookshelf/server/internal/aggregate"
	"github.com/curioswitch/cookshelf/server/internal/api"
	"github.com/curioswitch/cookshelf/server/internal/session"
)

const (
	viewFavourites = "favourites"
	viewAdded      = "added"
)

// Request lists recipes of a cuisine, or the favourites or authored recipes of
// the caller.
type Request struct {
	Area string
	View string
}

func (r *Request) Bind(req *http.Request) error {
	q := req.URL.Query()
	r.Area = strings.TrimSpace(q.Get("area"))
	r.View = q.Get("view")

	switch {
	case r.Area != "" && r.View != "":
		return errors.New("area and view are exclusive")
	case r.Area == "" && r.View == "":
		return errors.New("area or view is required")
	case r.View != "" && r.View != viewFavourites && r.View != viewAdded:
		return fmt.Errorf("unknown view %q", r.View)
	}
	return nil
}

type Response = aggregate.Result

func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{
		sessions: sessions,
	}
}

type Handler struct {
	sessions *session.Manager
}

func (h *Handler) ListRecipes(ctx context.Context, req *Request) (*Response, error) {
	view := "area"
	q := aggregate.ByArea(req.Area)
	switch req.View {
	case viewFavourites:
		view, q = viewFavourites, aggregate.Favourites()
	case viewAdded:
		view, q = viewAdded, aggregate.UserAuthored()
	}

	res, applied := h.sessions.FromContext(ctx).Query(ctx, view, q)
	if !applied {
		return nil, api.ErrSuperseded
	}
	return &res, nil
}
