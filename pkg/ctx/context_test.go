package ctx_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/furnivision/pkg/auth"
	appctx "github.com/shashiranjanraj/furnivision/pkg/ctx"
)

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Success(map[string]any{"id": "p1"})
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"data":{"id":"p1"}}`, rec.Body.String())
}

func TestMessageAndAccepted(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Message("Inventory cleared.", nil)
	})(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.JSONEq(t, `{"status":200,"message":"Inventory cleared."}`, rec.Body.String())

	rec = httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Accepted(map[string]string{"id": "job"})
		assert.Equal(t, http.StatusAccepted, c.WrittenStatus())
	})(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestBindJSONValid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"role":"vendor"}`))
	req.Header.Set("Content-Type", "application/json")

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Role string `json:"role" validate:"required,in=customer,vendor"`
		}
		require.True(t, c.BindJSON(&input))
		assert.Equal(t, "vendor", input.Role)
		c.Success(nil)
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBindJSONInvalid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"role":"admin"}`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Role string `json:"role" validate:"required,in=customer,vendor"`
		}
		assert.False(t, c.BindJSON(&input))
	})(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role"`)
}

func TestBindJSONMalformed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	appctx.Wrap(func(c *appctx.Context) {
		var input struct{}
		assert.False(t, c.BindJSON(&input))
	})(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFormFile(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "chair.glb")
	require.NoError(t, err)
	_, _ = part.Write([]byte("glTF-binary"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	appctx.Wrap(func(c *appctx.Context) {
		f, err := c.FormFile("file", 1<<20)
		require.NoError(t, err)
		assert.Equal(t, "chair.glb", f.Name)
		assert.Equal(t, int64(len("glTF-binary")), f.Size)
		c.Success(nil)
	})(rec, req)
}

func TestIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{ID: "u1", Role: auth.RoleCustomer}))

	appctx.Wrap(func(c *appctx.Context) {
		id, ok := c.Identity()
		require.True(t, ok)
		assert.Equal(t, "u1", id.ID)
		c.Success(nil)
	})(httptest.NewRecorder(), req)
}

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.NotFound("Product not found")
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":404,"message":"Product not found"}`, rec.Body.String())
}

func TestOnlyFirstResponseIsWritten(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Created(map[string]string{"id": "p9"})
		c.Error(http.StatusInternalServerError, "late")
		assert.Equal(t, http.StatusCreated, c.WrittenStatus())
	})(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"status":201,"data":{"id":"p9"}}`, rec.Body.String())
}
