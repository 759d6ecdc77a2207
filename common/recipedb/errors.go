// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a recipe does not exist in a source.
	ErrNotFound = errors.New("recipe not found")

	// ErrForbidden is returned when an identity acts on a recipe it does not own.
	ErrForbidden = errors.New("recipe owned by another user")

	// ErrUnauthenticated is returned when a mutation requires a signed-in identity.
	ErrUnauthenticated = errors.New("sign in required")

	// ErrMalformedRecord is returned when a source returns a record that cannot
	// be normalized. It never leaves the adapter that saw it.
	ErrMalformedRecord = errors.New("malformed recipe record")
)

// Source names a backend contributing to an aggregation.
type Source string

const (
	// SourceCatalog is the remote recipe catalog.
	SourceCatalog Source = "catalog"
	// SourceUserRecipes is the store of recipes authored by users.
	SourceUserRecipes Source = "user_recipes"
	// SourceFavourites is the store of favourite recipe ids.
	SourceFavourites Source = "favourites"
)

// SourceFailure is a transient failure talking to a source, such as a timeout
// or a server error.
type SourceFailure struct {
	Source Source
	Err    error
}

// NewSourceFailure wraps err as a failure of src.
func NewSourceFailure(src Source, err error) *SourceFailure {
	return &SourceFailure{Source: src, Err: err}
}

func (e *SourceFailure) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Source, e.Err)
}

func (e *SourceFailure) Unwrap() error {
	return e.Err
}

// AsSourceFailure returns the SourceFailure in err's chain, if any.
func AsSourceFailure(err error) (*SourceFailure, bool) {
	var sf *SourceFailure
	if errors.As(err, &sf) {
		return sf, true
	}
	return nil, false
}
