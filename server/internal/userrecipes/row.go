// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package userrecipes

import (
	"fmt"
	"strings"
	"time"

	"github.com/curioswitch/cookshelf/common/recipedb"
)

// ingredientDelimiter separates ingredients in the stored text column. It is
// the same delimiter recipedb.SplitIngredients parses.
const ingredientDelimiter = ","

// Row is a user recipe as persisted by a Backend. Ingredients are stored as
// delimited text to match the recipes table schema.
type Row struct {
	// ID is the recipe id, always in the local namespace.
	ID string `firestore:"id" json:"id"`

	// UserID is the identity that authored the recipe.
	UserID string `firestore:"userId" json:"user_id"`

	Title        string `firestore:"title" json:"title"`
	Category     string `firestore:"category" json:"category"`
	Area         string `firestore:"area" json:"area"`
	Ingredients  string `firestore:"ingredients" json:"ingredients"`
	Instructions string `firestore:"instructions" json:"instructions"`
	Source       string `firestore:"source" json:"source"`
	Youtube      string `firestore:"youtube" json:"youtube"`
	Image        string `firestore:"image" json:"image"`

	// CreatedAt orders a user's recipes. Not part of the SQL schema.
	CreatedAt time.Time `firestore:"createdAt" json:"-"`
}

func (r *Row) validate() error {
	switch n := len(recipedb.SplitIngredients(r.Ingredients)); {
	case recipedb.ClassifyOrigin(r.ID) != recipedb.OriginUser:
		return fmt.Errorf("%w: id %q is not in the local namespace", recipedb.ErrMalformedRecord, r.ID)
	case r.UserID == "":
		return fmt.Errorf("%w: recipe %s has no owner", recipedb.ErrMalformedRecord, r.ID)
	case strings.TrimSpace(r.Title) == "":
		return fmt.Errorf("%w: recipe %s has no title", recipedb.ErrMalformedRecord, r.ID)
	case n < 1 || n > recipedb.MaxIngredients:
		return fmt.Errorf("%w: recipe %s has %d ingredients", recipedb.ErrMalformedRecord, r.ID, n)
	}
	return nil
}

func (r *Row) toRecipe() recipedb.Recipe {
	return recipedb.Recipe{
		ID:           r.ID,
		Title:        r.Title,
		ThumbnailURL: r.Image,
		Category:     r.Category,
		Area:         r.Area,
		Instructions: r.Instructions,
		SourceURL:    r.Source,
		VideoURL:     r.Youtube,
		Ingredients:  recipedb.SplitIngredients(r.Ingredients),
		Origin:       recipedb.OriginUser,
		OwnerID:      r.UserID,
	}
}

func rowFromDraft(id string, ownerID string, d *recipedb.Draft, image string, now time.Time) *Row {
	ings := make([]string, 0, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		ings = append(ings, strings.TrimSpace(ing))
	}
	return &Row{
		ID:           id,
		UserID:       ownerID,
		Title:        strings.TrimSpace(d.Title),
		Category:     d.Category,
		Area:         d.Area,
		Ingredients:  strings.Join(ings, ingredientDelimiter),
		Instructions: d.Instructions,
		Source:       d.SourceURL,
		Youtube:      d.VideoURL,
		Image:        image,
		CreatedAt:    now,
	}
}
