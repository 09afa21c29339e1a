// Package http is the outbound HTTP client. Every call goes through
// DefaultClient, so a test can swap its Transport and see all traffic:
//
//	resp, err := http.Post(url).
//	    Header("x-goog-api-key", key).
//	    Body(req).
//	    Timeout(90 * time.Second).
//	    WithContext(ctx).
//	    Send()
//	if err == nil {
//	    err = resp.Throw()
//	}
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	gohttp "net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/furnivision/pkg/logger"
)

// MaxResponseBytes caps a buffered response body. Generated images come
// back inline, so the cap is generous.
const MaxResponseBytes = 64 << 20

// ErrResponseTooLarge is returned when a body exceeds MaxResponseBytes.
var ErrResponseTooLarge = errors.New("http: response body too large")

var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        64,
	MaxIdleConnsPerHost: 16,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

var DefaultClient = &gohttp.Client{Transport: defaultTransport}

// ResetTransport undoes a test's Transport swap.
func ResetTransport() { DefaultClient.Transport = defaultTransport }

// Request is built with Get or Post and sent with Send.
type Request struct {
	ctx      context.Context
	method   string
	url      string
	header   gohttp.Header
	body     any
	timeout  time.Duration
	attempts int
	backoff  time.Duration
}

func Get(url string) *Request  { return newRequest(gohttp.MethodGet, url) }
func Post(url string) *Request { return newRequest(gohttp.MethodPost, url) }

func newRequest(method, url string) *Request {
	h := gohttp.Header{}
	h.Set("Accept", "application/json")
	return &Request{
		ctx:      context.Background(),
		method:   method,
		url:      url,
		header:   h,
		timeout:  30 * time.Second,
		attempts: 1,
		backoff:  500 * time.Millisecond,
	}
}

func (r *Request) Header(key, value string) *Request {
	r.header.Set(key, value)
	return r
}

// Body sets the payload: string and []byte are sent raw, anything else as JSON.
func (r *Request) Body(v any) *Request {
	r.body = v
	return r
}

// Timeout bounds each attempt.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry sets the total number of attempts (1 means no retry) and the first
// backoff, doubled after each failure. Transport errors, 429 and 5xx retry.
// A Retry-After header in seconds overrides the backoff.
func (r *Request) Retry(attempts int, backoff time.Duration) *Request {
	r.attempts = max(attempts, 1)
	r.backoff = backoff
	return r
}

func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// Send runs the attempts. When every attempt got a response, the last one
// is returned without error so the caller can inspect it with Throw.
func (r *Request) Send() (*Response, error) {
	payload, contentType, err := encode(r.body)
	if err != nil {
		return nil, err
	}
	if contentType != "" && r.header.Get("Content-Type") == "" {
		r.header.Set("Content-Type", contentType)
	}

	log := logger.WithCtx(r.ctx)
	wait := r.backoff
	for attempt := 1; ; attempt++ {
		start := time.Now()
		resp, err := r.once(payload)
		log.Debug("http: call", "method", r.method, "url", redact(r.url),
			"attempt", attempt, "status", statusOf(resp), "duration_ms", time.Since(start).Milliseconds())

		if attempt >= r.attempts || !shouldRetry(resp, err) {
			if err != nil {
				return nil, fmt.Errorf("http: %s %s: %w", r.method, redact(r.url), err)
			}
			return resp, nil
		}

		pause := wait
		if d, ok := retryAfter(resp); ok {
			pause = d
		}
		log.Warn("http: retrying", "url", redact(r.url), "attempt", attempt, "wait", pause, "error", err)
		select {
		case <-time.After(pause):
		case <-r.ctx.Done():
			return nil, fmt.Errorf("http: %s %s: %w", r.method, redact(r.url), r.ctx.Err())
		}
		wait *= 2
	}
}

func (r *Request) once(payload []byte) (*Response, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, err
	}
	req.Header = r.header.Clone()

	resp, err := DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxResponseBytes {
		return nil, ErrResponseTooLarge
	}
	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Raw: raw}, nil
}

func encode(v any) ([]byte, string, error) {
	switch b := v.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return b, "application/octet-stream", nil
	case string:
		return []byte(b), "text/plain; charset=utf-8", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("http: encode body: %w", err)
	}
	return raw, "application/json", nil
}

func shouldRetry(resp *Response, err error) bool {
	if err != nil {
		return !errors.Is(err, ErrResponseTooLarge)
	}
	return resp.StatusCode == gohttp.StatusTooManyRequests || resp.StatusCode >= 500
}

func retryAfter(resp *Response) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	secs, err := strconv.Atoi(resp.Headers.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

func statusOf(resp *Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

// redact drops the query string; API keys must not reach the logs.
func redact(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}

// Response is a fully buffered reply.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

func (r *Response) Text() string { return string(r.Raw) }

func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// Throw turns a non-2xx reply into a *StatusError holding at most 512
// bytes of the body.
func (r *Response) Throw() error {
	if r.OK() {
		return nil
	}
	body := r.Raw
	if len(body) > 512 {
		body = body[:512]
	}
	return &StatusError{Code: r.StatusCode, Body: string(body)}
}

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http: status %d: %s", e.Code, e.Body)
}
