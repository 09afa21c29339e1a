// Package gemini is a minimal client for the Gemini generateContent REST
// endpoint, built on pkg/http.
//
//	c := gemini.FromConfig()
//	resp, err := c.GenerateContent(ctx, "gemini-3-flash-preview", gemini.Request{
//	    Contents: []gemini.Content{{Parts: []gemini.Part{gemini.Text("hello")}}},
//	})
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/furnivision/config"
	fhttp "github.com/shashiranjanraj/furnivision/pkg/http"
)

// ErrNoAPIKey is returned when GEMINI_API_KEY is not configured.
var ErrNoAPIKey = errors.New("gemini: api key is not configured")

// Request is the generateContent request body.
type Request struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is one piece of content: text or inline binary data.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob is base64 encoded inline data.
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

func Text(s string) Part { return Part{Text: s} }

func Inline(mimeType, data string) Part {
	return Part{InlineData: &Blob{MimeType: mimeType, Data: data}}
}

type GenerationConfig struct {
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
	ResponseSchema     *Schema  `json:"responseSchema,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

// Schema is the OpenAPI subset accepted as a response schema.
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

// Schema types.
const (
	TypeObject = "OBJECT"
	TypeArray  = "ARRAY"
	TypeString = "STRING"
)

type Response struct {
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// Text joins the text parts of the first candidate.
func (r *Response) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// FirstInline returns the first inline data part of the first candidate.
func (r *Response) FirstInline() (*Blob, bool) {
	if r == nil || len(r.Candidates) == 0 {
		return nil, false
	}
	for _, p := range r.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return p.InlineData, true
		}
	}
	return nil, false
}

// Client calls one Gemini API base URL with one key.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, timeout: timeout}
}

// FromConfig builds a client from the GEMINI_* settings.
func FromConfig() *Client {
	return New(config.GeminiBaseURL(), config.GeminiAPIKey(), config.GeminiTimeout())
}

// GenerateContent performs a single generateContent call. It never retries.
func (c *Client) GenerateContent(ctx context.Context, model string, req Request) (*Response, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	resp, err := fhttp.Post(fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)).
		Header("x-goog-api-key", c.apiKey).
		Body(req).
		Timeout(c.timeout).
		Retry(1, 0).
		WithContext(ctx).
		Send()
	if err != nil {
		return nil, fmt.Errorf("gemini: %s: %w", model, err)
	}
	if err := resp.Throw(); err != nil {
		return nil, fmt.Errorf("gemini: %s: %w", model, err)
	}

	var out Response
	if err := resp.JSON(&out); err != nil {
		return nil, fmt.Errorf("gemini: %s: %w", model, err)
	}
	return &out, nil
}
