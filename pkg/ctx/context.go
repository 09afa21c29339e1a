// Package ctx gives handlers one value carrying the request, the response
// writer and the helpers the storefront API needs:
//
//	func (pc *ProductController) Show(c *ctx.Context) {
//	    p, err := pc.catalog.Get(c.Param("id"))
//	    if err != nil {
//	        c.NotFound("Product not found")
//	        return
//	    }
//	    c.Success(p)
//	}
//
//	r.Get("/api/products/{id}", "products.show", ctx.Wrap(pc.Show))
package ctx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/furnivision/pkg/auth"
	"github.com/shashiranjanraj/furnivision/pkg/bind"
	"github.com/shashiranjanraj/furnivision/pkg/logger"
	"github.com/shashiranjanraj/furnivision/pkg/response"
	"github.com/shashiranjanraj/furnivision/pkg/session"
	"github.com/shashiranjanraj/furnivision/pkg/validate"
)

type HandlerFunc func(c *Context)

// Wrap adapts h to net/http.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(&Context{W: w, R: r})
	}
}

// Context is valid for the duration of one handler call.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

func (c *Context) Query(key string) string { return c.R.URL.Query().Get(key) }

func (c *Context) Context() context.Context { return c.R.Context() }

// Log is the request logger, tagged with request_id.
func (c *Context) Log() *slog.Logger { return logger.WithCtx(c.R.Context()) }

func (c *Context) Session() *session.Session { return session.FromCtx(c.R) }

// Identity is the caller resolved from the bearer token or the session.
func (c *Context) Identity() (auth.Identity, bool) { return auth.FromContext(c.R.Context()) }

// BindJSON decodes and validates the body into dest. When it returns false
// the response has been written: 400 for malformed JSON, 413 for an
// oversized body, 422 with field errors for failed validation.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	switch {
	case errors.Is(err, bind.ErrTooLarge):
		c.Error(http.StatusRequestEntityTooLarge, err.Error())
		return false
	case err != nil:
		c.Error(http.StatusBadRequest, err.Error())
		return false
	case validate.HasErrors(errs):
		c.ValidationError(errs)
		return false
	}
	return true
}

// FormFile reads one multipart file of at most limit bytes. accept runs on
// the file name before the body is read.
func (c *Context) FormFile(field string, limit int64, accept ...func(name string) error) (*bind.File, error) {
	return bind.FormFile(c.R, field, limit, accept...)
}

func (c *Context) SetHeader(key, value string) { c.W.Header().Set(key, value) }

// JSON writes body in the envelope. Only the first write counts; later
// calls are logged and dropped.
func (c *Context) JSON(code int, body response.Envelope) {
	if c.status != 0 {
		c.Log().Warn("ctx: response already written", "status", c.status, "dropped", code)
		return
	}
	c.status = code
	response.Write(c.W, code, body)
}

func (c *Context) Success(data any)  { c.JSON(http.StatusOK, response.Envelope{Data: data}) }
func (c *Context) Created(data any)  { c.JSON(http.StatusCreated, response.Envelope{Data: data}) }
func (c *Context) Accepted(data any) { c.JSON(http.StatusAccepted, response.Envelope{Data: data}) }

func (c *Context) Message(message string, data any) {
	c.JSON(http.StatusOK, response.Envelope{Message: message, Data: data})
}

func (c *Context) Error(code int, message string) {
	c.JSON(code, response.Envelope{Message: message})
}

func (c *Context) ValidationError(errs map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, response.Envelope{Message: "Validation failed", Errors: errs})
}

func (c *Context) Unauthorized(message ...string) {
	c.Error(http.StatusUnauthorized, first(message, "Unauthorized"))
}

func (c *Context) NotFound(message ...string) {
	c.Error(http.StatusNotFound, first(message, "Not found"))
}

// WrittenStatus is the status sent so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }

func first(msgs []string, def string) string {
	if len(msgs) > 0 && msgs[0] != "" {
		return msgs[0]
	}
	return def
}
