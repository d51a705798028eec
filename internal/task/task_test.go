package task

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// mockTask is a function-field Task for tests.
type mockTask struct {
	id        uuid.UUID
	ExecuteFn func(ctx context.Context) error
}

func newMockTask(fn func(ctx context.Context) error) *mockTask {
	return &mockTask{id: uuid.New(), ExecuteFn: fn}
}

func (m *mockTask) ID() uuid.UUID { return m.id }
func (m *mockTask) Type() string { return "mock" }
func (m *mockTask) Execute(ctx context.Context) error {
	if m.ExecuteFn == nil {
		return nil
	}
	return m.ExecuteFn(ctx)
}

// mockSummarizer records summarized documents.
type mockSummarizer struct {
	mu    sync.Mutex
	calls []uuid.UUID
	err   error
}

func (m *mockSummarizer) SummarizeDocument(_ context.Context, _, documentID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, documentID)
	return m.err
}

// mockSubmitter records submitted tasks.
type mockSubmitter struct {
	SubmitFn  func(ctx context.Context, task Task) error
	submitted []Task
}

func (m *mockSubmitter) Submit(ctx context.Context, task Task) error {
	m.submitted = append(m.submitted, task)
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, task)
	}
	return nil
}
