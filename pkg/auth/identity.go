package auth

import "context"

// Roles recognised by the storefront.
const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
)

// SessionKey is where the signed-in identity is kept in the session.
const SessionKey = "furnivision_auth_session"

// Identity is the signed-in principal carried through a request.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`

	// Login identifies one sign-in. It travels as the token's jti and in
	// the session, never in response bodies.
	Login string `json:"-"`
}

// IsVendor reports whether the identity may use the vendor console.
func (i Identity) IsVendor() bool { return i.Role == RoleVendor }

type ctxKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.ID != ""
}
