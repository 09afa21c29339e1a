package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/furnivision/pkg/gemini"
)

const roomJSON = `{"style":"Scandinavian","primaryColor":"White","accentColors":["Oak","Sage"],"lighting":"Bright natural","roomType":"Living room","detectedObjects":["window","rug"],"vibe":"Calm"}`

func TestAnalyzeRoom_SendsImageAndSchema(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateContent", mock.Anything, "gemini-3-flash-preview", mock.MatchedBy(func(req gemini.Request) bool {
		parts := req.Contents[0].Parts
		return len(parts) == 2 &&
			parts[0].InlineData.MimeType == "image/jpeg" &&
			parts[0].InlineData.Data == "QUJD" &&
			parts[1].Text == analysisPrompt &&
			req.GenerationConfig.ResponseMimeType == "application/json" &&
			len(req.GenerationConfig.ResponseSchema.Required) == 6
	})).Return(textResponse(roomJSON), nil)

	got, err := NewVisionService(gen).AnalyzeRoom(context.Background(), "data:image/jpeg;base64,QUJD")
	require.NoError(t, err)
	assert.Equal(t, "Scandinavian", got.Style)
	assert.Equal(t, []string{"Oak", "Sage"}, got.AccentColors)
	assert.Equal(t, []string{"window", "rug"}, got.DetectedObjects)
	gen.AssertExpectations(t)
}

func TestAnalyzeRoom_FailuresShareOneMessage(t *testing.T) {
	cases := map[string]func(*mockGenerator){
		"transport": func(g *mockGenerator) {
			g.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
		},
		"empty": func(g *mockGenerator) {
			g.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(textResponse(""), nil)
		},
		"not json": func(g *mockGenerator) {
			g.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(textResponse("a cosy room"), nil)
		},
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			gen := &mockGenerator{}
			setup(gen)
			_, err := NewVisionService(gen).AnalyzeRoom(context.Background(), "QUJD")
			require.ErrorIs(t, err, ErrAnalysis)
			assert.Equal(t, MsgAnalysis, MessageOf(err))
			assert.Equal(t, http.StatusBadGateway, StatusOf(err))
			gen.AssertNumberOfCalls(t, "GenerateContent", 1)
		})
	}
}

func TestAnalyzeRoom_EmptyImageSkipsCall(t *testing.T) {
	gen := &mockGenerator{}
	_, err := NewVisionService(gen).AnalyzeRoom(context.Background(), "data:image/jpeg;base64,")
	require.ErrorIs(t, err, ErrAnalysis)
	gen.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything, mock.Anything)
}

func TestStripDataURI(t *testing.T) {
	assert.Equal(t, "QUJD", StripDataURI("data:image/png;base64,QUJD"))
	assert.Equal(t, "QUJD", StripDataURI("QUJD"))
	assert.Equal(t, "", StripDataURI("  "))
}
