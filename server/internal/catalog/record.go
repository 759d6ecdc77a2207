// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/curioswitch/cookshelf/common/recipedb"
)

// RawRecord is a meal as returned by the catalog, with one field per
// ingredient slot.
type RawRecord struct {
	IDMeal          string `json:"idMeal"`
	StrMeal         string `json:"strMeal"`
	StrMealThumb    string `json:"strMealThumb"`
	StrCategory     string `json:"strCategory"`
	StrArea         string `json:"strArea"`
	StrInstructions string `json:"strInstructions"`
	StrSource       string `json:"strSource"`
	StrYoutube      string `json:"strYoutube"`

	// Ingredients holds strIngredient1..20 in slot order.
	Ingredients [recipedb.MaxIngredients]string `json:"-"`
}

func (r *RawRecord) UnmarshalJSON(b []byte) error {
	type plain RawRecord
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("catalog: decoding meal: %w", err)
	}

	var slots map[string]any
	if err := json.Unmarshal(b, &slots); err != nil {
		return fmt.Errorf("catalog: decoding ingredient slots: %w", err)
	}
	for i := range recipedb.MaxIngredients {
		if v, ok := slots["strIngredient"+strconv.Itoa(i+1)].(string); ok {
			p.Ingredients[i] = v
		}
	}

	*r = RawRecord(p)
	return nil
}

type mealsResponse struct {
	Meals []json.RawMessage `json:"meals"`
}

// validate rejects records that cannot become a canonical Recipe. Full records
// must name at least one ingredient; search summaries carry none.
func (r *RawRecord) validate(full bool) error {
	switch {
	case strings.TrimSpace(r.IDMeal) == "":
		return fmt.Errorf("%w: missing idMeal", recipedb.ErrMalformedRecord)
	case recipedb.ClassifyOrigin(r.IDMeal) != recipedb.OriginCatalog:
		return fmt.Errorf("%w: id %q is in the local namespace", recipedb.ErrMalformedRecord, r.IDMeal)
	case strings.TrimSpace(r.StrMeal) == "":
		return fmt.Errorf("%w: meal %s has no name", recipedb.ErrMalformedRecord, r.IDMeal)
	case full && len(r.ingredients()) == 0:
		return fmt.Errorf("%w: meal %s has no ingredients", recipedb.ErrMalformedRecord, r.IDMeal)
	}
	return nil
}

// ingredients is never nil so summaries encode an empty list.
func (r *RawRecord) ingredients() []string {
	res := []string{}
	for _, ing := range r.Ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			res = append(res, ing)
		}
	}
	return res
}

// toRecipe converts a validated record. area is used when the record does not
// carry its own, as with search summaries.
func (r *RawRecord) toRecipe(area string) recipedb.Recipe {
	if r.StrArea != "" {
		area = r.StrArea
	}
	return recipedb.Recipe{
		ID:           strings.TrimSpace(r.IDMeal),
		Title:        strings.TrimSpace(r.StrMeal),
		ThumbnailURL: r.StrMealThumb,
		Category:     r.StrCategory,
		Area:         area,
		Instructions: r.StrInstructions,
		SourceURL:    r.StrSource,
		VideoURL:     r.StrYoutube,
		Ingredients:  r.ingredients(),
		Origin:       recipedb.OriginCatalog,
	}
}
