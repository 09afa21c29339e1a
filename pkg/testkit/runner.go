package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	fhttp "github.com/shashiranjanraj/furnivision/pkg/http"
)

// TokenSource turns a scenario's "as" role into a bearer token.
type TokenSource func(as string) (string, error)

// Kit runs scenarios against one handler.
type Kit struct {
	handler http.Handler
	tokens  TokenSource
}

// New creates a Kit for handler.
func New(handler http.Handler) *Kit {
	return &Kit{handler: handler}
}

// WithTokens sets how "as" roles are authenticated.
func (k *Kit) WithTokens(fn TokenSource) *Kit {
	k.tokens = fn
	return k
}

// Run executes the scenario in path as a subtest.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()
	New(handler).Run(t, path)
}

// RunDir runs every *.json scenario in dir.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()
	New(handler).RunDir(t, dir)
}

func (k *Kit) Run(t *testing.T, path string) {
	t.Helper()
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", path, err)
	}
	t.Run(s.Name, func(t *testing.T) {
		k.exec(t, s, nil)
	})
}

// RunDir discovers every *.json file in dir and runs each as an isolated
// subtest. Files that fail to load are reported, not fatal.
func (k *Kit) RunDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("testkit: no scenario files found in %q", dir)
	}

	for _, path := range entries {
		if isFixture(path) {
			continue
		}
		s, err := LoadScenario(path)
		if err != nil {
			t.Errorf("testkit: load %q: %v", path, err)
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			k.exec(t, s, nil)
		})
	}
}

// isFixture skips request and response bodies sharing the scenario dir.
func isFixture(path string) bool {
	return strings.HasSuffix(path, "_req.json") || strings.HasSuffix(path, "_res.json")
}

// jarURL is the origin httptest.NewRequest uses.
var jarURL = &url.URL{Scheme: "http", Host: "example.com", Path: "/"}

// exec fires one scenario. When jar is non-nil, cookies set by earlier
// steps are sent and new ones recorded.
//
// Lifecycle:
//  1. read the request body
//  2. install the mock transport on pkg/http's shared client
//  3. authenticate as the scenario's role
//  4. fire the request
//  5. assert status, body and that every mock was used
func (k *Kit) exec(t *testing.T, s *Scenario, jar *cookiejar.Jar) {
	t.Helper()

	var reqBody io.Reader
	if p := s.RequestBodyPath(); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("[%s] read request file %q: %v", s.Name, p, err)
		}
		reqBody = bytes.NewReader(data)
	}

	original := fhttp.DefaultClient.Transport
	mt := NewMockTransport(s, original)
	fhttp.DefaultClient.Transport = mt
	defer func() { fhttp.DefaultClient.Transport = original }()

	req := httptest.NewRequest(s.RequestMethod, s.RequestURL, reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, v := range s.Headers {
		req.Header.Set(key, v)
	}
	if s.As != "" {
		if k.tokens == nil {
			t.Fatalf("[%s] scenario acts as %q but the kit has no token source", s.Name, s.As)
		}
		token, err := k.tokens(s.As)
		if err != nil {
			t.Fatalf("[%s] token for %q: %v", s.Name, s.As, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if jar != nil {
		for _, c := range jar.Cookies(jarURL) {
			req.AddCookie(c)
		}
	}

	rec := httptest.NewRecorder()
	k.handler.ServeHTTP(rec, req)
	body := rec.Body.Bytes()

	if jar != nil {
		jar.SetCookies(jarURL, rec.Result().Cookies())
	}

	AssertStatusCode(t, s, rec.Code, body)
	if p := s.ResponseBodyPath(); p != "" {
		expected, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("[%s] read response file %q: %v", s.Name, p, err)
		} else {
			AssertJSONBody(t, s, expected, body)
		}
	}
	AssertContains(t, s, body)
	AssertMocksAllCalled(t, s, mt)
}
