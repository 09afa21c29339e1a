package controllers

import (
	"github.com/shashiranjanraj/furnivision/app/models"
	"github.com/shashiranjanraj/furnivision/app/services"
	"github.com/shashiranjanraj/furnivision/pkg/ctx"
)

type SessionController struct {
	service *services.SessionService
}

func NewSessionController(service *services.SessionService) *SessionController {
	return &SessionController{service: service}
}

type loginInput struct {
	Role string `json:"role" validate:"required"`
}

// Login handles POST /api/session/login.
func (h *SessionController) Login(c *ctx.Context) {
	var in loginInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := h.service.Login(c.Session(), in.Role)
	if err != nil {
		fail(c, err)
		return
	}
	if !saveSession(c) {
		return
	}
	c.Log().Info("session: login", "user_id", res.User.ID, "role", res.User.Role)
	c.Success(res)
}

// Show handles GET /api/session.
func (h *SessionController) Show(c *ctx.Context) {
	resolved, ok := c.Identity()
	user, ok := h.service.Current(c.Session(), resolved, ok)
	if !saveSession(c) {
		return
	}
	if !ok {
		c.Unauthorized("Not signed in")
		return
	}
	c.Success(map[string]any{"user": user, "view": models.LandingView(user)})
}

// Logout handles POST /api/session/logout.
func (h *SessionController) Logout(c *ctx.Context) {
	user, ok := c.Identity()
	next := h.service.Logout(c.Session(), user, ok)
	if !saveSession(c) {
		return
	}
	c.Message("Logged out", map[string]string{"next_view": next})
}
