package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shashiranjanraj/furnivision/app/models"
	"github.com/shashiranjanraj/furnivision/config"
	"github.com/shashiranjanraj/furnivision/pkg/gemini"
	"github.com/shashiranjanraj/furnivision/pkg/logger"
	"github.com/shashiranjanraj/furnivision/pkg/metrics"
)

const analysisPrompt = "Analyze this room photo for furniture placement compatibility. Provide a detailed stylistic and spatial profile. Output MUST be valid JSON."

// Generator is the generative model call both AI flows depend on.
type Generator interface {
	GenerateContent(ctx context.Context, model string, req gemini.Request) (*gemini.Response, error)
}

var roomSchema = &gemini.Schema{
	Type: gemini.TypeObject,
	Properties: map[string]*gemini.Schema{
		"style":           {Type: gemini.TypeString},
		"primaryColor":    {Type: gemini.TypeString},
		"accentColors":    {Type: gemini.TypeArray, Items: &gemini.Schema{Type: gemini.TypeString}},
		"lighting":        {Type: gemini.TypeString},
		"roomType":        {Type: gemini.TypeString},
		"detectedObjects": {Type: gemini.TypeArray, Items: &gemini.Schema{Type: gemini.TypeString}},
		"vibe":            {Type: gemini.TypeString},
	},
	Required: []string{"style", "primaryColor", "accentColors", "lighting", "roomType", "vibe"},
}

// VisionService profiles room photos.
type VisionService struct {
	gen   Generator
	model string
}

func NewVisionService(gen Generator) *VisionService {
	return &VisionService{gen: gen, model: config.GeminiAnalysisModel()}
}

// AnalyzeRoom returns the stylistic profile of image, given as raw base64 or
// a data URI. Every failure is reported as the same analysis error.
func (s *VisionService) AnalyzeRoom(ctx context.Context, image string) (analysis models.RoomAnalysis, err error) {
	defer func(start time.Time) { metrics.ObserveAI("analyze", err, start) }(time.Now())

	data := StripDataURI(image)
	if data == "" {
		return models.RoomAnalysis{}, fail(ErrAnalysis, MsgAnalysis, errors.New("empty image"))
	}

	resp, err := s.gen.GenerateContent(ctx, s.model, gemini.Request{
		Contents: []gemini.Content{{Parts: []gemini.Part{
			gemini.Inline("image/jpeg", data),
			gemini.Text(analysisPrompt),
		}}},
		GenerationConfig: &gemini.GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   roomSchema,
		},
	})
	if err != nil {
		logger.WithCtx(ctx).Error("vision: analysis call failed", "error", err)
		return models.RoomAnalysis{}, fail(ErrAnalysis, MsgAnalysis, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return models.RoomAnalysis{}, fail(ErrAnalysis, MsgAnalysis, errors.New("empty model response"))
	}
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		logger.WithCtx(ctx).Error("vision: analysis not JSON", "error", err)
		return models.RoomAnalysis{}, fail(ErrAnalysis, MsgAnalysis, err)
	}
	if analysis.AccentColors == nil {
		analysis.AccentColors = []string{}
	}
	return analysis, nil
}

// StripDataURI returns the base64 payload of a data URI, or s unchanged
// when it carries no "base64," marker.
func StripDataURI(s string) string {
	if i := strings.Index(s, "base64,"); i >= 0 {
		return s[i+len("base64,"):]
	}
	return strings.TrimSpace(s)
}
