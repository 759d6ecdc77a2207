// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/curioswitch/go-build"
	"github.com/curioswitch/go-curiostack/tasks"
	"github.com/goyek/goyek/v3"
	"github.com/goyek/x/boot"
	"go.yaml.in/yaml/v3"
)

// serverConf is the part of the server config the deployment depends on.
type serverConf struct {
	Store struct {
		Backend string `yaml:"backend"`
	} `yaml:"store"`
	Supabase struct {
		URL string `yaml:"url"`
		Key string `yaml:"key"`
	} `yaml:"supabase"`
	Favourites struct {
		Mode string `yaml:"mode"`
	} `yaml:"favourites"`
	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
}

func main() {
	tasks.DefineServer()

	goyek.Define(goyek.Task{
		Name:  "check-conf",
		Usage: "Checks that each environment's server config selects a usable store and favourites mode.",
		Action: func(a *goyek.A) {
			base, err := os.ReadFile(filepath.Join("conf", "config.yaml"))
			if err != nil {
				a.Fatalf("reading base config: %v", err)
			}
			overlays, err := filepath.Glob(filepath.Join("conf", "config-*.yaml"))
			if err != nil {
				a.Fatalf("listing configs: %v", err)
			}

			for _, env := range append([]string{""}, overlays...) {
				var conf serverConf
				if err := yaml.Unmarshal(base, &conf); err != nil {
					a.Fatalf("parsing base config: %v", err)
				}
				name := "config.yaml"
				if env != "" {
					b, err := os.ReadFile(env)
					if err != nil {
						a.Fatalf("reading %s: %v", env, err)
					}
					if err := yaml.Unmarshal(b, &conf); err != nil {
						a.Fatalf("parsing %s: %v", env, err)
					}
					name = filepath.Base(env)
				}
				if err := checkConf(&conf); err != nil {
					a.Errorf("%s: %v", name, err)
				}
			}
		},
	})

	build.DefineTasks()
	boot.Main()
}

func checkConf(conf *serverConf) error {
	backend := strings.TrimSpace(conf.Store.Backend)
	if !slices.Contains([]string{"", "firestore", "supabase", "memory"}, backend) {
		return fmt.Errorf("unknown store backend %q", backend)
	}
	if backend == "supabase" && (conf.Supabase.URL == "" || conf.Supabase.Key == "") {
		return errors.New("supabase backend needs supabase.url and supabase.key")
	}
	switch conf.Favourites.Mode {
	case "", "identity":
	case "anonymous":
		if conf.Redis.Addr == "" {
			return errors.New("anonymous favourites need redis.addr")
		}
	default:
		return fmt.Errorf("unknown favourites mode %q", conf.Favourites.Mode)
	}
	return nil
}
