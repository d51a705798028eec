package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/phrazzld/studykit/internal/store"
)

// ProgressStore implements store.ProgressStore as a single-row table.
type ProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ProgressStore = (*ProgressStore)(nil)

// NewProgressStore creates a ProgressStore. If logger is nil, slog.Default() is used.
func NewProgressStore(db store.DBTX, log *slog.Logger) *ProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ProgressStore{db: db, logger: log.With("component", "progress_store")}
}

const (
	selectProgressSQL = `SELECT total_xp, unlocked FROM progress WHERE id = 1`

	upsertProgressSQL = `
		INSERT INTO progress (id, total_xp, unlocked, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET total_xp = EXCLUDED.total_xp, unlocked = EXCLUDED.unlocked, updated_at = now()`
)

// LoadProgress implements store.ProgressStore.
func (s *ProgressStore) LoadProgress(ctx context.Context) (domain.ProgressState, error) {
	var state domain.ProgressState
	var unlocked []byte
	err := store.Querier(ctx, s.db).QueryRowContext(ctx, selectProgressSQL).Scan(&state.TotalXP, &unlocked)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProgressState{}, nil
	}
	if err != nil {
		return domain.ProgressState{}, MapError(err)
	}
	if err := json.Unmarshal(unlocked, &state.Unlocked); err != nil {
		return domain.ProgressState{}, fmt.Errorf("decode unlocked milestones: %w", err)
	}
	return state, nil
}

// SaveProgress implements store.ProgressStore.
func (s *ProgressStore) SaveProgress(ctx context.Context, state domain.ProgressState) error {
	unlocked := state.Unlocked
	if unlocked == nil {
		unlocked = []string{}
	}
	body, err := json.Marshal(unlocked)
	if err != nil {
		return fmt.Errorf("encode unlocked milestones: %w", err)
	}
	if _, err := store.Querier(ctx, s.db).ExecContext(ctx, upsertProgressSQL, state.TotalXP, body); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "failed to save progress", "error", err)
		return MapError(err)
	}
	return nil
}
