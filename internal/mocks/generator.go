package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/studykit/internal/generation"
)

// MockGenerator implements generation.Generator for testing.
type MockGenerator struct {
	// GenerateFn overrides the default Response/Err when set.
	GenerateFn func(ctx context.Context, prompt string, expectJSON bool, image *generation.Image) (string, error)

	// Default response values
	Response string
	Err      error

	mu      sync.Mutex
	prompts []string
	images  []*generation.Image
}

var _ generation.Generator = (*MockGenerator)(nil)

// NewReplyingGenerator returns a MockGenerator that always answers text.
func NewReplyingGenerator(text string) *MockGenerator {
	return &MockGenerator{Response: text}
}

// Generate implements generation.Generator.
func (m *MockGenerator) Generate(ctx context.Context, prompt string, expectJSON bool, image *generation.Image) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.images = append(m.images, image)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt, expectJSON, image)
	}
	return m.Response, m.Err
}

// Prompts returns the prompts of every call so far.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Images returns the image argument of every call so far, nil for text calls.
func (m *MockGenerator) Images() []*generation.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*generation.Image(nil), m.images...)
}
