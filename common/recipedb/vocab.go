// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"net/url"
	"strings"
)

// Cuisines are the areas the catalog can be filtered by.
var Cuisines = []string{
	"American",
	"British",
	"Canadian",
	"Chinese",
	"Croatian",
	"Dutch",
	"Egyptian",
	"Filipino",
	"French",
	"Greek",
	"Indian",
	"Irish",
	"Italian",
	"Jamaican",
	"Japanese",
	"Kenyan",
	"Malaysian",
	"Mexican",
	"Moroccan",
	"Polish",
	"Portuguese",
	"Russian",
	"Spanish",
	"Thai",
	"Tunisian",
	"Turkish",
	"Vietnamese",
}

// Categories are the meal categories a user recipe can be filed under.
var Categories = []string{
	"Beef",
	"Breakfast",
	"Chicken",
	"Dessert",
	"Goat",
	"Lamb",
	"Miscellaneous",
	"Pasta",
	"Pork",
	"Seafood",
	"Side",
	"Starter",
	"Vegan",
	"Vegetarian",
}

// VideoEmbedURL converts a YouTube watch or short link into its embeddable
// form. Other links are returned as-is.
func VideoEmbedURL(videoURL string) string {
	switch {
	case videoURL == "":
		return ""
	case strings.Contains(videoURL, "watch?v="):
		return strings.Replace(videoURL, "watch?v=", "embed/", 1)
	case strings.Contains(videoURL, "youtu.be"):
		u, err := url.Parse(videoURL)
		if err != nil {
			return videoURL
		}
		videoID, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if videoID == "" {
			return videoURL
		}
		return "https://www.youtube.com/embed/" + videoID
	default:
		return videoURL
	}
}
