package auth

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/furnivision/pkg/cache"
)

// LoginKey is where the session keeps the login ID next to the identity.
const LoginKey = "furnivision_login_id"

func loginCacheKey(login string) string { return "furnivision:login:" + login }

// StartLogin opens a new login for id. Every login gets its own ID, even
// for the same demo user, and that ID is what tokens and per-login state
// (cart, wishlist, visualizations) hang off.
func StartLogin(id Identity) (Identity, error) {
	id.Login = uuid.NewString()
	if err := cache.Set(loginCacheKey(id.Login), id.ID, TokenTTL); err != nil {
		return Identity{}, fmt.Errorf("auth: start login: %w", err)
	}
	return id, nil
}

// Active reports whether login was started and not yet ended or expired.
func Active(login string) bool {
	if login == "" {
		return false
	}
	var owner string
	return cache.Get(loginCacheKey(login), &owner)
}

// EndLogin revokes login. Tokens carrying it stop resolving.
func EndLogin(login string) error {
	if login == "" {
		return nil
	}
	if err := cache.Forget(loginCacheKey(login)); err != nil {
		return fmt.Errorf("auth: end login: %w", err)
	}
	return nil
}
