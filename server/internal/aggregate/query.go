// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package aggregate

import (
	"github.com/curioswitch/cookshelf/common/recipedb"
)

// Kind is the kind of an aggregation query.
type Kind string

const (
	KindByArea       Kind = "byArea"
	KindFavourites   Kind = "favourites"
	KindUserAuthored Kind = "userAuthored"
	KindByID         Kind = "byId"
)

// Query selects the recipes a view renders.
type Query struct {
	Kind Kind
	Area string
	ID   string
}

// ByArea queries catalog and user recipes of a cuisine.
func ByArea(area string) Query {
	return Query{Kind: KindByArea, Area: area}
}

// Favourites queries the favourite recipes of the session.
func Favourites() Query {
	return Query{Kind: KindFavourites}
}

// UserAuthored queries the recipes authored by the session identity.
func UserAuthored() Query {
	return Query{Kind: KindUserAuthored}
}

// ByID queries a single recipe.
func ByID(id string) Query {
	return Query{Kind: KindByID, ID: id}
}

// Item is a recipe in a result with its favourite flag.
type Item struct {
	recipedb.Recipe

	Favourite bool `json:"favourite"`
}

// SourceError describes a source that failed while answering a query.
type SourceError struct {
	Source  recipedb.Source `json:"source"`
	Message string          `json:"message"`
}

// Result is the outcome of a query. Items never contain the same id twice.
type Result struct {
	Items []Item `json:"items"`

	// Partial is set when at least one contributing source failed.
	Partial bool `json:"partial"`

	SourceErrors []SourceError `json:"sourceErrors,omitempty"`
}

// IDs returns the ids of the items in order.
func (r *Result) IDs() []string {
	ids := make([]string, len(r.Items))
	for i, item := range r.Items {
		ids[i] = item.ID
	}
	return ids
}
