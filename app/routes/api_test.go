package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/furnivision/app/models"
	"github.com/shashiranjanraj/furnivision/app/providers"
	"github.com/shashiranjanraj/furnivision/app/repositories"
	"github.com/shashiranjanraj/furnivision/app/routes"
	"github.com/shashiranjanraj/furnivision/app/services"
	"github.com/shashiranjanraj/furnivision/config"
	"github.com/shashiranjanraj/furnivision/pkg/app"
	"github.com/shashiranjanraj/furnivision/pkg/auth"
	"github.com/shashiranjanraj/furnivision/pkg/event"
	"github.com/shashiranjanraj/furnivision/pkg/gemini"
	fhttp "github.com/shashiranjanraj/furnivision/pkg/http"
	"github.com/shashiranjanraj/furnivision/pkg/router"
	"github.com/shashiranjanraj/furnivision/pkg/storage"
	"github.com/shashiranjanraj/furnivision/pkg/testkit"
)

const geminiURL = "https://gemini.test/v1beta"

func newApp(t *testing.T) (http.Handler, *providers.Container) {
	t.Helper()
	event.Flush()
	t.Cleanup(event.Flush)

	c, err := providers.New(repositories.NewMemoryProductStore(), gemini.New(geminiURL, "test-key", 5*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { c.Pool.Shutdown() })

	c.Uploads.WithDisk(storage.NewLocal(t.TempDir(), "http://localhost:8080/storage"))
	c.Listen()
	c.Catalog.Load(context.Background())

	h, err := app.New().RateLimit(0).Routes(func(r *router.Router) error {
		return routes.RegisterAPI(r, c)
	}).Handler()
	require.NoError(t, err)
	return h, c
}

func tokenFor(as string) (string, error) {
	id, err := auth.StartLogin(models.DemoUsers[as])
	if err != nil {
		return "", err
	}
	return auth.GenerateToken(id)
}

func bearer(t *testing.T, as string) string {
	t.Helper()
	token, err := tokenFor(as)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestScenarios(t *testing.T) {
	h, _ := newApp(t)
	testkit.New(h).WithTokens(tokenFor).RunDir(t, "testdata")
}

func TestSuites(t *testing.T) {
	suites, err := filepath.Glob("testdata/suites/*.json")
	require.NoError(t, err)

	for _, path := range suites {
		if strings.HasSuffix(path, "_req.json") {
			continue
		}
		t.Run(filepath.Base(path), func(t *testing.T) {
			h, _ := newApp(t)
			testkit.New(h).WithTokens(tokenFor).RunSuite(t, path)
		})
	}
}

func upload(t *testing.T, h http.Handler, url, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", bearer(t, "vendor"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUploadModel(t *testing.T) {
	h, _ := newApp(t)

	rec := upload(t, h, "/api/vendor/uploads/model", "chair.glb", []byte("glTF\x02\x00\x00\x00"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "http://localhost:8080/storage/products/models/")
	assert.Contains(t, rec.Body.String(), `"contentType":"model/gltf-binary"`)

	rec = upload(t, h, "/api/vendor/uploads/model", "chair.gltf", []byte("{}"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), services.MsgGLTF)

	rec = upload(t, h, "/api/vendor/uploads/model", "chair.obj", []byte("v 0 0 0"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), services.MsgNotGLB)
}

func TestUploadModelFormatBeatsSize(t *testing.T) {
	config.Set("MAX_MODEL_BYTES", "1024")
	t.Cleanup(func() { config.Set("MAX_MODEL_BYTES", "") })
	h, _ := newApp(t)

	huge := bytes.Repeat([]byte("x"), 2<<20)

	rec := upload(t, h, "/api/vendor/uploads/model", "room.gltf", huge)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), services.MsgGLTF)

	rec = upload(t, h, "/api/vendor/uploads/model", "room.obj", huge)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), services.MsgNotGLB)

	rec = upload(t, h, "/api/vendor/uploads/model", "room.glb", huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), services.MsgModelTooBig)
}

func TestUploadImageKeepsSniffedExtension(t *testing.T) {
	h, _ := newApp(t)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	rec := upload(t, h, "/api/vendor/uploads/image", "x.html", png)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"contentType":"image/png"`)
	assert.Regexp(t, `products/images/[0-9a-f-]+\.png"`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), ".html")
}

func TestUploadImageRejectsNonImage(t *testing.T) {
	h, _ := newApp(t)

	rec := upload(t, h, "/api/vendor/uploads/image", "notes.png", []byte("just some text"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), services.MsgNotImage)
}

// geminiStub answers every placement call with one inline PNG.
type geminiStub struct{}

func (geminiStub) RoundTrip(req *http.Request) (*http.Response, error) {
	body, _ := json.Marshal(gemini.Response{Candidates: []gemini.Candidate{{
		Content: gemini.Content{Role: "model", Parts: []gemini.Part{gemini.Inline("image/png", "cmVuZGVy")}},
	}}})
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(body)),
		Request:    req,
	}, nil
}

func TestVisualizationLifecycle(t *testing.T) {
	fhttp.DefaultClient.Transport = geminiStub{}
	t.Cleanup(fhttp.ResetTransport)

	h, c := newApp(t)
	p, err := c.Catalog.Add(context.Background(), services.ProductInput{
		Name:  "Pouf",
		Price: 120,
		Image: "data:image/png;base64,iVBORw0KGgo=",
	}, models.DemoUsers[auth.RoleVendor])
	require.NoError(t, err)

	start := httptest.NewRequest(http.MethodPost, "/api/visualizations",
		strings.NewReader(`{"productId":"`+p.ID+`","roomImage":"data:image/jpeg;base64,/9j/4AAQ"}`))
	start.Header.Set("Content-Type", "application/json")
	customer := bearer(t, "customer")
	start.Header.Set("Authorization", customer)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, start)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var started struct {
		Data services.JobState `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	assert.Equal(t, services.JobProcessing, started.Data.Status)
	assert.Equal(t, "/api/visualizations/"+started.Data.ID, rec.Header().Get("Location"))

	poll := func(authz string) (int, services.JobState) {
		req := httptest.NewRequest(http.MethodGet, "/api/visualizations/"+started.Data.ID, nil)
		req.Header.Set("Authorization", authz)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		var out struct {
			Data services.JobState `json:"data"`
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
		return rec.Code, out.Data
	}

	require.Eventually(t, func() bool {
		_, st := poll(customer)
		return st.Terminal()
	}, 5*time.Second, 20*time.Millisecond)

	code, st := poll(customer)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, services.JobDone, st.Status)
	assert.Equal(t, 100, st.Progress)
	assert.Equal(t, "data:image/png;base64,cmVuZGVy", st.Result)

	// jobs are private to the login that started them
	code, _ = poll(bearer(t, "vendor"))
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = poll(bearer(t, "customer"))
	assert.Equal(t, http.StatusNotFound, code)

	events := httptest.NewRequest(http.MethodGet, "/api/visualizations/"+st.ID+"/events", nil)
	events.Header.Set("Authorization", customer)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, events)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "event: done")
	assert.Contains(t, rec.Body.String(), `"status":"done"`)
}

// shopper is one browser: its own cookie jar against a shared server.
type shopper struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newShopper(t *testing.T, srv *httptest.Server) *shopper {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &shopper{t: t, base: srv.URL, client: &http.Client{Jar: jar}}
}

func (s *shopper) do(method, path, body, authz string) (int, string) {
	s.t.Helper()
	req, err := http.NewRequest(method, s.base+path, strings.NewReader(body))
	require.NoError(s.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	resp, err := s.client.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, string(raw)
}

func (s *shopper) login(role string) string {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/session/login", `{"role":"`+role+`"}`, "")
	require.Equal(s.t, http.StatusOK, code, body)
	var out struct {
		Data services.LoginResult `json:"data"`
	}
	require.NoError(s.t, json.Unmarshal([]byte(body), &out))
	require.NotEmpty(s.t, out.Data.Token)
	return out.Data.Token
}

func TestCustomerSessionsAreIsolated(t *testing.T) {
	h, _ := newApp(t)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	a, b := newShopper(t, srv), newShopper(t, srv)
	a.login(auth.RoleCustomer)
	b.login(auth.RoleCustomer)

	code, body := a.do(http.MethodPost, "/api/cart", `{"productId":"p1"}`, "")
	require.Equal(t, http.StatusCreated, code, body)
	code, body = a.do(http.MethodPost, "/api/wishlist/p2", "", "")
	require.Equal(t, http.StatusOK, code, body)

	code, body = b.do(http.MethodGet, "/api/cart", "", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, `"items":[]`)
	code, body = b.do(http.MethodGet, "/api/wishlist", "", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.NotContains(t, body, `"id":"p2"`)

	code, _ = b.do(http.MethodPost, "/api/session/logout", "", "")
	require.Equal(t, http.StatusOK, code)

	code, body = a.do(http.MethodGet, "/api/cart", "", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, `"id":"p1"`)
	code, body = a.do(http.MethodGet, "/api/wishlist", "", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, `"id":"p2"`)
}

func TestLogoutRevokesBearerToken(t *testing.T) {
	h, _ := newApp(t)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	browser := newShopper(t, srv)
	token := browser.login(auth.RoleCustomer)

	// a client without the cookie, holding only the token
	api := &shopper{t: t, base: srv.URL, client: srv.Client()}
	code, body := api.do(http.MethodGet, "/api/session", "", "Bearer "+token)
	require.Equal(t, http.StatusOK, code, body)

	code, _ = browser.do(http.MethodPost, "/api/session/logout", "", "")
	require.Equal(t, http.StatusOK, code)

	code, _ = api.do(http.MethodGet, "/api/session", "", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = api.do(http.MethodGet, "/api/cart", "", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, code)
}
