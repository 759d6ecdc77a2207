// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Draft is a user recipe submission. Field-level rules such as title length are
// owned by the client form; only the shape is checked here.
type Draft struct {
	// Title is the title of the recipe.
	Title string `json:"title" validate:"required"`

	// Category is one of Categories.
	Category string `json:"category" validate:"required,category"`

	// Area is one of Cuisines.
	Area string `json:"area" validate:"required,cuisine"`

	// Ingredients are the ingredients in display order. Commas are reserved as
	// the storage delimiter.
	Ingredients []string `json:"ingredients" validate:"min=1,max=20,dive,required,excludesall=0x2C"`

	// Instructions is the free-form preparation text.
	Instructions string `json:"instructions" validate:"required"`

	// SourceURL is an optional link to where the recipe was published.
	SourceURL string `json:"sourceUrl,omitempty" validate:"omitempty,url"`

	// VideoURL is an optional video link.
	VideoURL string `json:"videoUrl,omitempty" validate:"omitempty,url"`

	// Image is an optional image URL or base64 data URL.
	Image string `json:"image,omitempty" validate:"omitempty,image_ref"`
}

// ErrInvalidDraft wraps all draft validation failures.
var ErrInvalidDraft = errors.New("invalid recipe draft")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("cuisine", func(fl validator.FieldLevel) bool {
		return IsCuisine(fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return IsCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("image_ref", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.HasPrefix(s, "data:image/") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
	})
	return v
}

// Validate checks the shape of the draft.
func (d *Draft) Validate() error {
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field %s failed %q", ErrInvalidDraft, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}
	return nil
}

// SplitIngredients parses comma-separated ingredient input, trimming entries
// and dropping empty ones.
func SplitIngredients(text string) []string {
	var res []string
	for part := range strings.SplitSeq(text, ",") {
		if p := strings.TrimSpace(part); p != "" {
			res = append(res, p)
		}
	}
	return res
}

// IsCuisine returns whether area is a known cuisine, ignoring case.
func IsCuisine(area string) bool {
	return slices.ContainsFunc(Cuisines, func(c string) bool {
		return SameArea(c, area)
	})
}

// IsCategory returns whether category is a known meal category.
func IsCategory(category string) bool {
	return slices.Contains(Categories, category)
}
