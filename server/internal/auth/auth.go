// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package auth resolves who a request is acting for.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/curioswitch/go-usegcp/middleware/firebaseauth"
	"github.com/google/uuid"
)

// DeviceCookie identifies a browser across requests.
const DeviceCookie = "cookshelf_device"

const deviceCookieMaxAge = 365 * 24 * time.Hour

type (
	deviceKey    struct{}
	newDeviceKey struct{}
	identityKey  struct{}
)

// UserID returns the signed-in identity of the request, or empty when the
// request carried no Firebase ID token.
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(identityKey{}).(string)
	return uid
}

// WithUserID returns a context carrying a signed-in identity.
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, identityKey{}, uid)
}

// IdentityMiddleware records the identity of a verified Firebase token. It
// must be wrapped by the firebaseauth middleware.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := firebaseauth.TokenFromContext(r.Context())
		if tok == nil || tok.UID == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), tok.UID)))
	})
}

// HasBearerToken reports whether the request presents an identity.
func HasBearerToken(r *http.Request) bool {
	return r.Header.Get("Authorization") != ""
}

// DeviceID returns the device id of the request.
func DeviceID(ctx context.Context) string {
	id, _ := ctx.Value(deviceKey{}).(string)
	return id
}

// WithDeviceID returns a context carrying a device id.
func WithDeviceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deviceKey{}, id)
}

// WithNewDeviceID returns a context carrying a device id issued by this
// request.
func WithNewDeviceID(ctx context.Context, id string) context.Context {
	return context.WithValue(WithDeviceID(ctx, id), newDeviceKey{}, true)
}

// IsNewDevice reports whether the device id of the request was issued by it,
// i.e. the client has not yet sent the cookie back.
func IsNewDevice(ctx context.Context) bool {
	ok, _ := ctx.Value(newDeviceKey{}).(bool)
	return ok
}

// DeviceMiddleware assigns each browser a device id, issuing the cookie when
// it is missing or invalid.
func DeviceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(DeviceCookie); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id != "" {
			next.ServeHTTP(w, r.WithContext(WithDeviceID(r.Context(), id)))
			return
		}

		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     DeviceCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(deviceCookieMaxAge.Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		next.ServeHTTP(w, r.WithContext(WithNewDeviceID(r.Context(), id)))
	})
}
