// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package router mounts the recipe API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/curioswitch/cookshelf/server/internal/api"
	"github.com/curioswitch/cookshelf/server/internal/auth"
	"github.com/curioswitch/cookshelf/server/internal/handler/addfavourite"
	"github.com/curioswitch/cookshelf/server/internal/handler/addrecipe"
	"github.com/curioswitch/cookshelf/server/internal/handler/deleterecipe"
	"github.com/curioswitch/cookshelf/server/internal/handler/getrecipe"
	"github.com/curioswitch/cookshelf/server/internal/handler/listcuisines"
	"github.com/curioswitch/cookshelf/server/internal/handler/listrecipes"
	"github.com/curioswitch/cookshelf/server/internal/handler/removefavourite"
	"github.com/curioswitch/cookshelf/server/internal/session"
)

// Register mounts the API on mux. identity verifies a bearer token and is only
// applied to requests presenting one.
func Register(mux chi.Router, sessions *session.Manager, identity func(http.Handler) http.Handler) {
	mux.Group(func(r chi.Router) {
		r.Use(auth.DeviceMiddleware)
		r.Use(middleware.Maybe(identity, auth.HasBearerToken))

		r.Get("/recipes", api.Handle(listrecipes.NewHandler(sessions).ListRecipes))
		r.Post("/recipes", api.Handle(addrecipe.NewHandler(sessions).AddRecipe))
		r.Get("/recipes/{id}", api.Handle(getrecipe.NewHandler(sessions).GetRecipe))
		r.Delete("/recipes/{id}", api.Handle(deleterecipe.NewHandler(sessions).DeleteRecipe))

		r.Put("/favourites/{id}", api.Handle(addfavourite.NewHandler(sessions).AddFavourite))
		r.Delete("/favourites/{id}", api.Handle(removefavourite.NewHandler(sessions).RemoveFavourite))

		r.Get("/cuisines", api.Handle(listcuisines.NewHandler().ListCuisines))
	})
}
