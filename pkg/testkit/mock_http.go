package testkit

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockTransport implements http.RoundTripper. It answers outgoing requests
// from the scenario's mock steps instead of the network.
//
//	mt := testkit.NewMockTransport(scenario, http.DefaultTransport)
//	fhttp.DefaultClient.Transport = mt
//	defer fhttp.ResetTransport()
type MockTransport struct {
	mu      sync.Mutex
	steps   []httpMockEntry
	require bool
	next    http.RoundTripper
}

type httpMockEntry struct {
	step      MockStep
	callCount int
}

// NewMockTransport builds a MockTransport from s. Calls matching an
// isMock=false step go to next.
func NewMockTransport(s *Scenario, next http.RoundTripper) *MockTransport {
	mt := &MockTransport{require: s.IsMockRequired, next: next}
	for _, step := range s.Mocks {
		mt.steps = append(mt.steps, httpMockEntry{step: step})
	}
	return mt
}

// RoundTrip returns the first matching step's response.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	mt.mu.Lock()
	var (
		matched *httpMockEntry
		through bool
	)
	for i := range mt.steps {
		entry := &mt.steps[i]
		if !urlMatches(req.URL.String(), entry.step.MatchURL) {
			continue
		}
		entry.callCount++
		if entry.step.IsMock {
			matched = entry
		} else {
			through = true
		}
		break
	}
	mt.mu.Unlock()

	switch {
	case matched != nil:
		return buildHTTPResponse(req, matched.step.ReturnData)
	case through && mt.next != nil:
		return mt.next.RoundTrip(req)
	case mt.require:
		return nil, fmt.Errorf("testkit: unexpected outgoing HTTP call to %s: no matching mock step", req.URL)
	}

	return &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Body:       io.NopCloser(strings.NewReader(`{"error":"no mock configured"}`)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// Uncalled returns an error for every isMock=true step that never matched.
func (mt *MockTransport) Uncalled() []error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var errs []error
	for _, e := range mt.steps {
		if e.step.IsMock && e.callCount == 0 {
			errs = append(errs, fmt.Errorf("testkit: mock step (matchUrl=%q) was never called", e.step.MatchURL))
		}
	}
	return errs
}

func urlMatches(candidate, pattern string) bool {
	return pattern == "" || strings.HasPrefix(candidate, pattern)
}

func buildHTTPResponse(req *http.Request, rd MockReturnData) (*http.Response, error) {
	code := rd.StatusCode
	if code == 0 {
		code = http.StatusOK
	}

	var body []byte
	if rd.Body != "" {
		decoded, err := base64.StdEncoding.DecodeString(rd.Body)
		if err != nil {
			// unpadded fallback
			decoded, err = base64.RawStdEncoding.DecodeString(rd.Body)
			if err != nil {
				return nil, fmt.Errorf("testkit: base64 decode mock body: %w", err)
			}
		}
		body = decoded
	}

	contentType := rd.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	header := make(http.Header)
	header.Set("Content-Type", contentType)

	return &http.Response{
		StatusCode:    code,
		Status:        fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}
