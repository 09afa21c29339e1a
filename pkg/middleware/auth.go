package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/furnivision/pkg/auth"
	"github.com/shashiranjanraj/furnivision/pkg/logger"
	"github.com/shashiranjanraj/furnivision/pkg/response"
	"github.com/shashiranjanraj/furnivision/pkg/session"
)

// Authenticate resolves the caller from a Bearer token or, failing that,
// the session cookie, and stores it in the request context. It never
// rejects a request; AuthMiddleware and rbac.HasRole do that.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := resolve(r); ok {
			r = r.WithContext(auth.WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func resolve(r *http.Request) (auth.Identity, bool) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logger.WithCtx(r.Context()).Debug("auth: bearer token rejected", "error", err)
			return auth.Identity{}, false
		}
		if !auth.Active(claims.ID) {
			logger.WithCtx(r.Context()).Debug("auth: bearer token revoked", "user_id", claims.UserID)
			return auth.Identity{}, false
		}
		return claims.Identity(), true
	}

	sess := session.FromCtx(r)
	var id auth.Identity
	if !sess.BindJSON(auth.SessionKey, &id) || id.ID == "" {
		return auth.Identity{}, false
	}
	id.Login, _ = sess.GetString(auth.LoginKey)
	if !auth.Active(id.Login) {
		return auth.Identity{}, false
	}
	return id, true
}

// AuthMiddleware rejects requests without a signed-in identity.
// Authenticate must run first.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			response.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RoleFromCtx returns the role of the signed-in identity.
func RoleFromCtx(r *http.Request) (string, bool) {
	id, ok := auth.FromContext(r.Context())
	return id.Role, ok
}
