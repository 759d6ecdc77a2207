// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/curioswitch/go-curiostack/server"
	"github.com/curioswitch/go-usegcp/middleware/firebaseauth"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"

	"github.com/curioswitch/cookshelf/common/file"
	"github.com/curioswitch/cookshelf/common/image"
	"github.com/curioswitch/cookshelf/server/internal/aggregate"
	"github.com/curioswitch/cookshelf/server/internal/auth"
	"github.com/curioswitch/cookshelf/server/internal/catalog"
	"github.com/curioswitch/cookshelf/server/internal/config"
	"github.com/curioswitch/cookshelf/server/internal/favourites"
	"github.com/curioswitch/cookshelf/server/internal/router"
	"github.com/curioswitch/cookshelf/server/internal/session"
	"github.com/curioswitch/cookshelf/server/internal/userrecipes"
)

//go:embed conf/*.yaml
var confFiles embed.FS

func main() {
	conf, _ := fs.Sub(confFiles, "conf")
	os.Exit(server.Main(&config.Config{}, conf, setupServer))
}

func setupServer(ctx context.Context, conf *config.Config, s *server.Server) error {
	mux := server.Mux(s)

	mode, err := favourites.ParseMode(conf.Favourites.Mode)
	if err != nil {
		return fmt.Errorf("main: %w", err)
	}

	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: conf.Google.Project})
	if err != nil {
		return fmt.Errorf("main: create firebase app: %w", err)
	}

	fbAuth, err := fbApp.Auth(ctx)
	if err != nil {
		return fmt.Errorf("main: create firebase auth client: %w", err)
	}

	var recipes userrecipes.Backend
	var favStore favourites.Store
	var images userrecipes.ImageWriter

	switch conf.Store.Backend {
	case "memory":
		recipes = userrecipes.NewMemoryBackend()
		favStore = favourites.NewMemoryStore()
	case "supabase":
		client, err := supabase.NewClient(conf.Supabase.URL, conf.Supabase.Key, nil)
		if err != nil {
			return fmt.Errorf("main: create supabase client: %w", err)
		}
		recipes = userrecipes.NewSupabaseBackend(client)
		favStore = favourites.NewSupabaseStore(client)
	case "", "firestore":
		firestore, err := fbApp.Firestore(ctx)
		if err != nil {
			return fmt.Errorf("main: create firestore client: %w", err)
		}
		defer func() {
			if err := firestore.Close(); err != nil {
				slog.ErrorContext(ctx, "main: close firestore client", "error", err)
			}
		}()
		recipes = userrecipes.NewFirestoreBackend(firestore)
		favStore = favourites.NewFirestoreStore(firestore)
	default:
		return fmt.Errorf("main: unknown store backend %q", conf.Store.Backend)
	}

	if conf.Store.Backend != "memory" {
		storage, err := storage.NewGRPCClient(ctx)
		if err != nil {
			return fmt.Errorf("main: create storage client: %w", err)
		}
		defer func() {
			if err := storage.Close(); err != nil {
				slog.ErrorContext(ctx, "main: close storage client", "error", err)
			}
		}()
		bucket := conf.Store.ImageBucket
		if bucket == "" {
			bucket = conf.Google.Project + "-public"
		}
		images = image.NewWriter(file.NewIO(storage, bucket))
	}

	if mode == favourites.ModeAnonymous {
		rdb := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.ErrorContext(ctx, "main: close redis client", "error", err)
			}
		}()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("main: connect to redis at %s: %w", conf.Redis.Addr, err)
		}
		favStore = favourites.NewRedisStore(rdb)
	}

	gateway := catalog.NewGateway(catalog.Config{
		BaseURL: conf.Catalog.BaseURL,
		Timeout: conf.Catalog.Timeout,
	})
	engine := aggregate.NewEngine(gateway, aggregate.Config{
		LookupConcurrency: conf.Catalog.LookupConcurrency,
	})
	sessions := session.NewManager(engine, recipes, images, favStore, session.Config{
		Mode:        mode,
		IdleTTL:     conf.Session.IdleTTL,
		MaxSessions: conf.Session.MaxSessions,
	})
	go sessions.Run(ctx)

	fbMW := firebaseauth.NewMiddleware(fbAuth)
	router.Register(mux, sessions, func(h http.Handler) http.Handler {
		return fbMW(auth.IdentityMiddleware(h))
	})
	mux.Handle("/internal/metrics", promhttp.Handler())

	slog.InfoContext(ctx, "main: serving recipes", "store", conf.Store.Backend, "favourites_mode", mode)

	if err := server.Start(ctx, s); err != nil {
		return fmt.Errorf("main: starting server: %w", err)
	}
	return nil
}
