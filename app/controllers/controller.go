// Package controllers holds the HTTP handlers. Each one adapts a request to
// a service call and renders the result in the standard envelope.
package controllers

import (
	"github.com/shashiranjanraj/furnivision/app/services"
	"github.com/shashiranjanraj/furnivision/pkg/ctx"
)

// fail renders err with the status and message its kind maps to. Server
// side failures are logged with their cause.
func fail(c *ctx.Context, err error) {
	status := services.StatusOf(err)
	if status >= 500 {
		c.Log().Error("request failed", "status", status, "error", err)
	} else {
		c.Log().Debug("request rejected", "status", status, "error", err)
	}
	c.Error(status, services.MessageOf(err))
}

// saveSession persists session changes. It must run before the body is
// written so the cookie header goes out.
func saveSession(c *ctx.Context) bool {
	if err := c.Session().Save(c.W); err != nil {
		c.Log().Error("session: save failed", "error", err)
		c.Error(500, "Internal Server Error")
		return false
	}
	return true
}
