package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the study service.
const (
	TypeDocumentUploaded  = "document.uploaded"
	TypeSummaryCompleted  = "document.summary_completed"
	TypeSummaryFailed     = "document.summary_failed"
	TypeMaterialCreated   = "material.created"
	TypeSessionCompleted  = "session.completed"
	TypeMilestoneUnlocked = "milestone.unlocked"
	TypeLevelUp           = "progress.level_up"
)

// Event is a notification about something that happened in the study
// library. Payload is the JSON encoding of one of the payload structs below.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an event of the given type with payload encoded as JSON.
func NewEvent(eventType string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// DocumentPayload accompanies the document.* events. NeedsSummary is set on
// uploads that still wait for an AI summary.
type DocumentPayload struct {
	ClassID      uuid.UUID `json:"class_id"`
	DocumentID   uuid.UUID `json:"document_id"`
	Status       string    `json:"status"`
	NeedsSummary bool      `json:"needs_summary,omitempty"`
}

// MaterialPayload accompanies material.created.
type MaterialPayload struct {
	ClassID    uuid.UUID `json:"class_id"`
	MaterialID uuid.UUID `json:"material_id"`
	DocumentID uuid.UUID `json:"document_id"`
	Kind       string    `json:"kind"`
}

// SessionPayload accompanies session.completed.
type SessionPayload struct {
	ClassID    uuid.UUID `json:"class_id"`
	MaterialID uuid.UUID `json:"material_id"`
	Kind       string    `json:"kind"`
	Score      int       `json:"score"`
	XPGained   int       `json:"xp_gained"`
}

// ProgressPayload accompanies milestone.unlocked and progress.level_up.
type ProgressPayload struct {
	MilestoneID string `json:"milestone_id,omitempty"`
	Level       int    `json:"level"`
	TotalXP     int    `json:"total_xp"`
}

// EventHandler processes emitted events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter delivers events to registered handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}
