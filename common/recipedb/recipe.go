// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"strings"

	"golang.org/x/text/cases"
)

// Origin is where a recipe comes from.
type Origin string

const (
	// OriginCatalog is a recipe read from the remote catalog.
	OriginCatalog Origin = "catalog"
	// OriginUser is a recipe authored by the current identity.
	OriginUser Origin = "user"
)

// LocalIDPrefix marks ids in the locally-authored namespace. Catalog ids are
// numeric and never carry it.
const LocalIDPrefix = "local_"

// MaxIngredients is the largest number of ingredients a recipe can have. The
// catalog has exactly this many ingredient slots.
const MaxIngredients = 20

// ClassifyOrigin returns the origin of a recipe id based only on its shape.
func ClassifyOrigin(id string) Origin {
	if strings.HasPrefix(id, LocalIDPrefix) {
		return OriginUser
	}
	return OriginCatalog
}

// Recipe is the canonical recipe record shared by all sources.
type Recipe struct {
	// ID is the unique identifier of the recipe across all sources.
	ID string `json:"id"`

	// Title is the title of the recipe.
	Title string `json:"title"`

	// ThumbnailURL is the URL for the main image of the recipe.
	ThumbnailURL string `json:"thumbnailUrl"`

	// Category is the meal category, e.g. Dessert.
	Category string `json:"category"`

	// Area is the cuisine of the recipe, e.g. Indian.
	Area string `json:"area"`

	// Instructions is the free-form preparation text.
	Instructions string `json:"instructions"`

	// SourceURL is an optional link to where the recipe was published.
	SourceURL string `json:"sourceUrl,omitempty"`

	// VideoURL is an optional link to a video of the recipe.
	VideoURL string `json:"videoUrl,omitempty"`

	// Ingredients are the ingredients in display order. Summary records from a
	// catalog search have none.
	Ingredients []string `json:"ingredients"`

	// Origin is the source of the recipe.
	Origin Origin `json:"origin"`

	// OwnerID is the identity that authored a user recipe. Empty for catalog recipes.
	OwnerID string `json:"-"`
}

// IsSummary returns whether the recipe is a search summary without details.
func (r *Recipe) IsSummary() bool {
	return len(r.Ingredients) == 0
}

// EmbedURL returns the embeddable form of the recipe's video link.
func (r *Recipe) EmbedURL() string {
	return VideoEmbedURL(r.VideoURL)
}

// SameArea compares two cuisine names ignoring case.
func SameArea(a, b string) bool {
	// A Caser is stateful and cannot be shared across goroutines.
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(a)) == fold.String(strings.TrimSpace(b))
}
