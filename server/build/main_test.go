// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestCheckConf(t *testing.T) {
	tests := []struct {
		name string
		conf string
		err  string
	}{
		{name: "defaults", conf: ``},
		{name: "memory", conf: "store:\n  backend: memory\n"},
		{name: "unknown backend", conf: "store:\n  backend: mysql\n", err: "unknown store backend"},
		{name: "supabase without key", conf: "store:\n  backend: supabase\nsupabase:\n  url: https://x.supabase.co\n", err: "supabase.key"},
		{name: "anonymous without redis", conf: "favourites:\n  mode: anonymous\n", err: "redis.addr"},
		{name: "anonymous", conf: "favourites:\n  mode: anonymous\nredis:\n  addr: localhost:6379\n"},
		{name: "unknown mode", conf: "favourites:\n  mode: both\n", err: "unknown favourites mode"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var conf serverConf
			require.NoError(t, yaml.Unmarshal([]byte(tc.conf), &conf))
			err := checkConf(&conf)
			if tc.err == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err)
		})
	}
}

func TestServerConfigs(t *testing.T) {
	base, err := os.ReadFile(filepath.Join("..", "conf", "config.yaml"))
	require.NoError(t, err)
	overlays, err := filepath.Glob(filepath.Join("..", "conf", "config-*.yaml"))
	require.NoError(t, err)

	for _, path := range append([]string{""}, overlays...) {
		var conf serverConf
		require.NoError(t, yaml.Unmarshal(base, &conf))
		if path != "" {
			b, err := os.ReadFile(path)
			require.NoError(t, err)
			require.NoError(t, yaml.Unmarshal(b, &conf))
		}
		assert.NoError(t, checkConf(&conf), path)
	}
}
