package services

import (
	"github.com/shashiranjanraj/furnivision/app/models"
	"github.com/shashiranjanraj/furnivision/pkg/auth"
	"github.com/shashiranjanraj/furnivision/pkg/logger"
	"github.com/shashiranjanraj/furnivision/pkg/session"
)

// LoginResult is returned by Login.
type LoginResult struct {
	User     models.User `json:"user"`
	Token    string      `json:"token"`
	NextView string      `json:"next_view"`
}

// SessionService signs users in and out of the server-side session.
type SessionService struct {
	shopping *ShoppingService
}

func NewSessionService(shopping *ShoppingService) *SessionService {
	return &SessionService{shopping: shopping}
}

// Login maps role to its fixed demo profile, opens a fresh login for it
// and stores both in sess. A login already held by sess is ended first,
// along with its cart and wishlist.
func (s *SessionService) Login(sess *session.Session, role string) (LoginResult, error) {
	profile, ok := models.DemoUsers[role]
	if !ok {
		return LoginResult{}, fail(ErrInvalidInput, MsgUnknownRole, nil)
	}

	if prev, held := sess.GetString(auth.LoginKey); held {
		s.end(prev)
	}

	user, err := auth.StartLogin(profile)
	if err != nil {
		return LoginResult{}, err
	}
	token, err := auth.GenerateToken(user)
	if err != nil {
		return LoginResult{}, err
	}
	if err := sess.SetJSON(auth.SessionKey, user); err != nil {
		return LoginResult{}, err
	}
	sess.Set(auth.LoginKey, user.Login)
	return LoginResult{User: user, Token: token, NextView: models.LandingView(user)}, nil
}

// Current returns the signed-in user. resolved is the identity already
// found by the auth middleware. A session entry that no longer decodes is
// removed so the caller is treated as logged out.
func (s *SessionService) Current(sess *session.Session, resolved auth.Identity, ok bool) (models.User, bool) {
	if ok {
		return resolved, true
	}
	if _, present := sess.Get(auth.SessionKey); present {
		var u models.User
		if !sess.BindJSON(auth.SessionKey, &u) || u.ID == "" {
			sess.Delete(auth.SessionKey)
		}
	}
	return models.User{}, false
}

// Logout ends the caller's login, which revokes its token, and drops that
// login's cart and wishlist. The session is destroyed either way. It
// returns the view to show next.
func (s *SessionService) Logout(sess *session.Session, user models.User, ok bool) string {
	if ok {
		s.end(user.Login)
	}
	if held, present := sess.GetString(auth.LoginKey); present && held != user.Login {
		s.end(held)
	}
	sess.Invalidate()
	return models.ViewLogin
}

func (s *SessionService) end(login string) {
	s.shopping.ClearOwner(login)
	if err := auth.EndLogin(login); err != nil {
		logger.Warn("session: end login", "error", err)
	}
}
