// Package testkit drives REST API tests from JSON scenario files.
//
// Each scenario describes:
//   - the request to fire (method, URL, body file, headers, acting role)
//   - the expected status code
//   - the expected body, exact (responseFileName) or partial (responseContains)
//   - mocks for outgoing HTTP calls made through pkg/http
//
// Scenario files live next to the *_test.go files:
//
//	testdata/
//	  list_products.json       ← scenario
//	  add_product_req.json     ← request body
//	  add_product_res.json     ← expected response body
//	  suites/checkout.json     ← ordered steps sharing one cookie jar
//
// Example _test.go:
//
//	func TestAPI(t *testing.T) {
//	    kit := testkit.New(handler).WithTokens(tokenFor)
//	    kit.RunDir(t, "testdata")
//	    kit.RunSuite(t, "testdata/suites/checkout.json")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scenario describes a single REST API test case.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// As names the role the request acts as; the runner turns it into a
	// bearer token. Empty sends the request anonymously.
	As string `json:"as"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestFileName string            `json:"requestFileName"`
	Headers         map[string]string `json:"headers"`

	ExpectedCode     int      `json:"expectedCode"`
	ResponseFileName string   `json:"responseFileName"`
	ResponseContains []string `json:"responseContains"`

	// IsMockRequired fails any outgoing call no mock step matches.
	IsMockRequired bool       `json:"isMockRequired"`
	Mocks          []MockStep `json:"mocks"`

	dir string
}

// MockStep describes one intercepted outgoing HTTP call.
type MockStep struct {
	// Method is always "httprequest".
	Method string `json:"method"`

	// IsMock false lets matching calls through to the real transport.
	IsMock bool `json:"isMock"`

	// MatchURL is matched as a prefix of the outgoing URL. Empty matches
	// any request.
	MatchURL string `json:"matchUrl"`

	ReturnData MockReturnData `json:"returnData"`
}

// MockReturnData is the synthetic response for a mock step.
type MockReturnData struct {
	StatusCode  int    `json:"statusCode"`  // defaults to 200
	ContentType string `json:"contentType"` // defaults to application/json
	Body        string `json:"body"`        // base64-encoded
}

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, data, err := read(path)
	if err != nil {
		return nil, err
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	s.dir = filepath.Dir(abs)
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}
	return &s, nil
}

// LoadSuite reads an ordered array of scenarios from one JSON file.
func LoadSuite(path string) ([]*Scenario, error) {
	abs, data, err := read(path)
	if err != nil {
		return nil, err
	}

	var steps []*Scenario
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("testkit: parse suite %q: %w", abs, err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("testkit: suite %q has no steps", abs)
	}
	for i, s := range steps {
		s.dir = filepath.Dir(abs)
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: suite %q step %d: %w", abs, i, err)
		}
	}
	return steps, nil
}

func read(path string) (string, []byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}
	return abs, data, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	s.RequestMethod = strings.ToUpper(s.RequestMethod)
	for i, step := range s.Mocks {
		if step.Method != "httprequest" {
			return fmt.Errorf("mocks[%d].method %q is not supported", i, step.Method)
		}
	}
	return nil
}

// RequestBodyPath returns the request body file resolved against the
// scenario's directory, or "" when none is set.
func (s *Scenario) RequestBodyPath() string { return s.resolve(s.RequestFileName) }

// ResponseBodyPath returns the expected response file, or "".
func (s *Scenario) ResponseBodyPath() string { return s.resolve(s.ResponseFileName) }

func (s *Scenario) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}
