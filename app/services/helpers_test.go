package services

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/shashiranjanraj/furnivision/app/models"
	"github.com/shashiranjanraj/furnivision/pkg/gemini"
)

// memStore is an in-memory ProductStore whose writes can be made to fail.
type memStore struct {
	mu       sync.Mutex
	products []models.Product
	failNext error
	writes   int
}

func (m *memStore) All(context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Product(nil), m.products...), nil
}

func (m *memStore) ReplaceAll(_ context.Context, products []models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.writes++
	m.products = append([]models.Product(nil), products...)
	return nil
}

func (m *memStore) ids() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.products))
	for i, p := range m.products {
		out[i] = p.ID
	}
	return out
}

var errDiskFull = errors.New("disk full")

// mockGenerator is a testify mock of Generator.
type mockGenerator struct{ mock.Mock }

func (m *mockGenerator) GenerateContent(ctx context.Context, model string, req gemini.Request) (*gemini.Response, error) {
	args := m.Called(ctx, model, req)
	resp, _ := args.Get(0).(*gemini.Response)
	return resp, args.Error(1)
}

func textResponse(text string) *gemini.Response {
	return &gemini.Response{Candidates: []gemini.Candidate{{
		Content: gemini.Content{Parts: []gemini.Part{{Text: text}}},
	}}}
}

func imageResponse(data string) *gemini.Response {
	return &gemini.Response{Candidates: []gemini.Candidate{{
		Content: gemini.Content{Parts: []gemini.Part{{Text: "here"}, gemini.Inline("image/png", data)}},
	}}}
}
