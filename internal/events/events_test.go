package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventHandler records the events it receives.
type MockEventHandler struct {
	LastEvent    *Event
	HandlerError error
	HandledCount int
}

func (h *MockEventHandler) HandleEvent(_ context.Context, event *Event) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestNewEvent(t *testing.T) {
	payload := DocumentPayload{
		ClassID:      uuid.New(),
		DocumentID:   uuid.New(),
		Status:       "pending_summary",
		NeedsSummary: true,
	}

	event, err := NewEvent(TypeDocumentUploaded, payload)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeDocumentUploaded, event.Type)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded DocumentPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEvent(TypeLevelUp, map[string]any{"bad": make(chan int)})

	var jsonErr *json.UnsupportedTypeError
	assert.ErrorAs(t, err, &jsonErr)
}

func TestInMemoryEventEmitter(t *testing.T) {
	log, _ := logger.NewTestLogger()

	newEvent := func(t *testing.T) *Event {
		t.Helper()
		event, err := NewEvent(TypeMaterialCreated, MaterialPayload{Kind: "quiz"})
		require.NoError(t, err)
		return event
	}

	t.Run("no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)
		assert.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t)))
	})

	t.Run("every handler receives the event", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)
		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)
		event := newEvent(t)

		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Same(t, event, handler1.LastEvent)
		assert.Same(t, event, handler2.LastEvent)
	})

	t.Run("failing handler does not stop later handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)
		handlerErr := errors.New("handler error")
		failing := &MockEventHandler{HandlerError: handlerErr}
		after := &MockEventHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(after)

		err := emitter.EmitEvent(context.Background(), newEvent(t))

		assert.ErrorIs(t, err, handlerErr)
		assert.Equal(t, 1, after.HandledCount)
	})

	t.Run("handler func", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		var got string
		emitter.RegisterHandler(HandlerFunc(func(_ context.Context, e *Event) error {
			got = e.Type
			return nil
		}))

		require.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t)))
		assert.Equal(t, TypeMaterialCreated, got)
	})
}

func TestNopEmitter(t *testing.T) {
	assert.NoError(t, NopEmitter{}.EmitEvent(context.Background(), &Event{}))
}
