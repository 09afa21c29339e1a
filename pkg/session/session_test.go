package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/furnivision/pkg/session"
)

type who struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func serve(t *testing.T, h http.HandlerFunc, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	session.Middleware(session.DefaultOptions())(h).ServeHTTP(rec, req)
	return rec
}

func TestSessionPersistsAcrossRequests(t *testing.T) {
	rec := serve(t, func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		require.NoError(t, sess.SetJSON("auth", who{ID: "u1", Role: "customer"}))
		require.NoError(t, sess.Save(w))
	})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "furnivision_session", cookies[0].Name)

	serve(t, func(w http.ResponseWriter, r *http.Request) {
		var got who
		assert.True(t, session.FromCtx(r).BindJSON("auth", &got))
		assert.Equal(t, who{ID: "u1", Role: "customer"}, got)
	}, cookies[0])
}

func TestInvalidateExpiresCookie(t *testing.T) {
	rec := serve(t, func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Set("k", "v")
		require.NoError(t, sess.Save(w))
	})
	cookie := rec.Result().Cookies()[0]

	rec = serve(t, func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Invalidate()
		require.NoError(t, sess.Save(w))
	}, cookie)
	expired := rec.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Less(t, expired[0].MaxAge, 0)

	serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, ok := session.FromCtx(r).Get("k")
		assert.False(t, ok)
	}, cookie)
}

func TestSaveWithoutChangesWritesNothing(t *testing.T) {
	rec := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, session.FromCtx(r).Save(w))
	})
	assert.Empty(t, rec.Result().Cookies())
}
