package models

import "github.com/shashiranjanraj/furnivision/pkg/auth"

// User is the signed-in storefront user. It lives only in the session.
type User = auth.Identity

// Views the client lands on.
const (
	ViewLogin           = "login"
	ViewHome            = "home"
	ViewVendorDashboard = "vendor-dashboard"
)

// DemoUsers is the fixed role → user mapping used by login.
var DemoUsers = map[string]User{
	auth.RoleCustomer: {ID: "u1", Name: "Julian", Email: "customer@vision.com", Role: auth.RoleCustomer},
	auth.RoleVendor:   {ID: "v1", Name: "Furniture Master", Email: "vendor@vision.com", Role: auth.RoleVendor},
}

// LandingView returns the view a user sees right after login.
func LandingView(u User) string {
	if u.IsVendor() {
		return ViewVendorDashboard
	}
	return ViewHome
}
