// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package config

import (
	"time"

	"github.com/curioswitch/go-curiostack/config"
)

type Catalog struct {
	// BaseURL is the base URL of the recipe catalog API, e.g. https://www.themealdb.com/api/json/v1/1.
	BaseURL string `koanf:"baseurl"`

	// Timeout bounds a single catalog request.
	Timeout time.Duration `koanf:"timeout"`

	// LookupConcurrency bounds concurrent lookups when resolving favourites.
	LookupConcurrency int `koanf:"lookupconcurrency"`
}

type Store struct {
	// Backend is where user recipes and favourites are stored, one of firestore,
	// supabase or memory.
	Backend string `koanf:"backend"`

	// ImageBucket is the Cloud Storage bucket for uploaded recipe images.
	// Defaults to <project>-public. Uploads are disabled with the memory backend.
	ImageBucket string `koanf:"imagebucket"`
}

type Supabase struct {
	URL string `koanf:"url"`
	Key string `koanf:"key"`
}

type Favourites struct {
	// Mode is identity or anonymous.
	Mode string `koanf:"mode"`
}

type Redis struct {
	// Addr is the address of the Redis server holding anonymous favourites.
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type Session struct {
	// IdleTTL is how long an unused session is kept in memory.
	IdleTTL time.Duration `koanf:"idlettl"`

	// MaxSessions bounds the sessions held in memory.
	MaxSessions int `koanf:"maxsessions"`
}

type Config struct {
	config.Common

	Catalog    Catalog    `koanf:"catalog"`
	Store      Store      `koanf:"store"`
	Supabase   Supabase   `koanf:"supabase"`
	Favourites Favourites `koanf:"favourites"`
	Redis      Redis      `koanf:"redis"`
	Session    Session    `koanf:"session"`
}
