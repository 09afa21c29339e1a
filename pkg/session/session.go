// Package session provides HTTP session management backed by the cache
// (Redis, or the in-process fallback).
//
// Usage (middleware):
//
//	r.Use(session.Middleware(session.DefaultOptions()))
//
// Usage (handler):
//
//	sess := session.FromCtx(r)
//	_ = sess.SetJSON("furnivision_auth_session", user)
//	sess.Save(w)
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/furnivision/pkg/cache"
)

// ------------------- Options -------------------

// Options configures session behaviour.
type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		CookieName: "furnivision_session",
		TTL:        24 * time.Hour,
		HTTPOnly:   true,
		Secure:     false, // set true in production
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

// ------------------- Session -------------------

type ctxKey struct{}

// Session is an in-request session handle.
type Session struct {
	id        string
	data      map[string]interface{}
	opts      Options
	changed   bool
	destroyed bool
}

func newID() string { return uuid.NewString() }

func storeKey(id string) string { return "furnivision:session:" + id }

func load(id string) map[string]interface{} {
	var data map[string]interface{}
	if cache.Get(storeKey(id), &data) && data != nil {
		return data
	}
	return map[string]interface{}{}
}

// Set stores a value under key in the session.
func (s *Session) Set(key string, value interface{}) {
	s.data[key] = value
	s.changed = true
}

// Get retrieves a value from the session.
func (s *Session) Get(key string) (interface{}, bool) {
	v, ok := s.data[key]
	return v, ok
}

// GetString is a typed convenience getter.
func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.data[key]
	if !ok {
		return "", false
	}
	s2, ok := v.(string)
	return s2, ok
}

// SetJSON stores v serialised as a JSON string so it survives the cache
// round trip with its shape intact.
func (s *Session) SetJSON(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: marshal %s: %w", key, err)
	}
	s.Set(key, string(raw))
	return nil
}

// BindJSON decodes a value written by SetJSON into dest.
func (s *Session) BindJSON(key string, dest interface{}) bool {
	raw, ok := s.GetString(key)
	if !ok || raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

// Delete removes a key from the session.
func (s *Session) Delete(key string) {
	delete(s.data, key)
	s.changed = true
}

// Invalidate destroys the session (logout). Save removes the stored entry
// and expires the cookie.
func (s *Session) Invalidate() {
	s.data = map[string]interface{}{}
	s.changed = true
	s.destroyed = true
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Save persists the session and writes the cookie to the response.
func (s *Session) Save(w http.ResponseWriter) error {
	if !s.changed {
		return nil
	}

	if s.destroyed {
		if err := cache.Forget(storeKey(s.id)); err != nil {
			return fmt.Errorf("session: forget: %w", err)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     s.opts.CookieName,
			Value:    "",
			Path:     s.opts.Path,
			MaxAge:   -1,
			HttpOnly: s.opts.HTTPOnly,
			Secure:   s.opts.Secure,
			SameSite: s.opts.SameSite,
		})
		s.changed = false
		return nil
	}

	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	if err := cache.Set(storeKey(s.id), json.RawMessage(raw), s.opts.TTL); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    s.id,
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.TTL.Seconds()),
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})

	s.changed = false
	return nil
}

// ------------------- Middleware -------------------

// Middleware loads (or creates) the session for every request and injects it
// into the request context. Handlers call session.FromCtx(r) to access it.
func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{opts: opts}

			if cookie, err := r.Cookie(opts.CookieName); err == nil && cookie.Value != "" {
				sess.id = cookie.Value
				sess.data = load(sess.id)
			} else {
				sess.id = newID()
				sess.data = map[string]interface{}{}
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromCtx retrieves the session from the request context.
// Returns an empty (unsaved) session if none is present.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	return &Session{id: newID(), data: map[string]interface{}{}, opts: DefaultOptions()}
}
