package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/phrazzld/studykit/internal/store"
)

// Database is what the class store needs: plain queries plus transactions.
// *sql.DB satisfies it.
type Database interface {
	store.DBTX
	store.TxBeginner
}

// ClassStore implements store.ClassStore on PostgreSQL.
type ClassStore struct {
	db     Database
	logger *slog.Logger
}

var (
	_ store.ClassStore = (*ClassStore)(nil)
	_ store.Transactor = (*ClassStore)(nil)
)

// NewClassStore creates a ClassStore. If logger is nil, slog.Default() is used.
func NewClassStore(db Database, log *slog.Logger) *ClassStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ClassStore{db: db, logger: log.With("component", "class_store")}
}

// InTransaction implements store.Transactor. Stores sharing this database
// join the transaction through the context fn receives.
func (s *ClassStore) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, _ *sql.Tx) error {
		return fn(ctx)
	})
}

func (s *ClassStore) q(ctx context.Context) store.DBTX {
	return store.Querier(ctx, s.db)
}

const (
	insertClassSQL = `
		INSERT INTO classes (id, name, color, created_at)
		VALUES ($1, $2, $3, $4)`

	selectClassSQL = `
		SELECT id, name, color, created_at
		FROM classes
		WHERE id = $1`

	selectClassesSQL = `
		SELECT id, name, color, created_at
		FROM classes
		ORDER BY created_at, id`

	deleteClassSQL = `DELETE FROM classes WHERE id = $1`

	insertDocumentSQL = `
		INSERT INTO documents (id, class_id, title, kind, status, summary, summary_error, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	selectDocumentColumns = `id, title, kind, status, summary, summary_error, content, created_at`

	selectDocumentsSQL = `
		SELECT ` + selectDocumentColumns + `
		FROM documents
		WHERE class_id = $1
		ORDER BY created_at DESC, id DESC`

	selectDocumentSQL = `
		SELECT ` + selectDocumentColumns + `
		FROM documents
		WHERE class_id = $1 AND id = $2`

	updateDocumentSQL = `
		UPDATE documents
		SET status = $3, summary = $4, summary_error = $5
		WHERE class_id = $1 AND id = $2`

	documentExistsSQL = `
		SELECT EXISTS (SELECT 1 FROM documents WHERE class_id = $1 AND id = $2)`

	insertAssignmentSQL = `
		INSERT INTO assignments (id, class_id, name, grade, logged_at)
		VALUES ($1, $2, $3, $4, $5)`

	selectAssignmentsSQL = `
		SELECT id, name, grade, logged_at
		FROM assignments
		WHERE class_id = $1
		ORDER BY logged_at, id`

	insertMaterialSQL = `
		INSERT INTO materials (id, class_id, kind, title, source_document_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	selectMaterialColumns = `id, kind, title, source_document_id, payload, created_at`

	selectMaterialsSQL = `
		SELECT ` + selectMaterialColumns + `
		FROM materials
		WHERE class_id = $1
		ORDER BY created_at DESC, id DESC`

	selectMaterialSQL = `
		SELECT ` + selectMaterialColumns + `
		FROM materials
		WHERE class_id = $1 AND id = $2`

	insertResultSQL = `
		INSERT INTO study_results (id, class_id, material_id, kind, score, correct, total, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	selectResultsSQL = `
		SELECT id, material_id, kind, score, correct, total, completed_at
		FROM study_results
		WHERE class_id = $1
		ORDER BY completed_at, id`
)

// materialPayload is the JSONB body of a material row.
type materialPayload struct {
	Questions []domain.Question `json:"questions,omitempty"`
	Cards     []domain.Card     `json:"cards,omitempty"`
}

// CreateClass implements store.ClassStore.
func (s *ClassStore) CreateClass(ctx context.Context, c *domain.ClassModule) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if _, err := s.q(ctx).ExecContext(ctx, insertClassSQL, c.ID, c.Name, string(c.Color), c.CreatedAt); err != nil {
		log.ErrorContext(ctx, "failed to create class", "error", err, "class_id", c.ID.String())
		return MapError(err)
	}
	log.DebugContext(ctx, "class created", "class_id", c.ID.String())
	return nil
}

// GetClass implements store.ClassStore.
func (s *ClassStore) GetClass(ctx context.Context, id uuid.UUID) (*domain.ClassModule, error) {
	var c domain.ClassModule
	var color string
	err := s.q(ctx).QueryRowContext(ctx, selectClassSQL, id).Scan(&c.ID, &c.Name, &color, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrClassNotFound
		}
		return nil, MapError(err)
	}
	c.Color = domain.ColorTag(color)
	if err := s.loadOwned(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListClasses implements store.ClassStore.
func (s *ClassStore) ListClasses(ctx context.Context) ([]*domain.ClassModule, error) {
	rows, err := s.q(ctx).QueryContext(ctx, selectClassesSQL)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var classes []*domain.ClassModule
	for rows.Next() {
		var c domain.ClassModule
		var color string
		if err := rows.Scan(&c.ID, &c.Name, &color, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		c.Color = domain.ColorTag(color)
		classes = append(classes, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	for _, c := range classes {
		if err := s.loadOwned(ctx, c); err != nil {
			return nil, err
		}
	}
	if classes == nil {
		classes = []*domain.ClassModule{}
	}
	return classes, nil
}

// DeleteClass implements store.ClassStore. Owned rows go with it through
// ON DELETE CASCADE.
func (s *ClassStore) DeleteClass(ctx context.Context, id uuid.UUID) error {
	res, err := s.q(ctx).ExecContext(ctx, deleteClassSQL, id)
	if err != nil {
		return MapError(err)
	}
	return checkRowsAffected(res, store.ErrClassNotFound)
}

// AddDocument implements store.ClassStore.
func (s *ClassStore) AddDocument(ctx context.Context, classID uuid.UUID, d *domain.Document) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	_, err := s.q(ctx).ExecContext(ctx, insertDocumentSQL,
		d.ID, classID, d.Title, string(d.Kind), string(d.Status),
		d.Summary, d.SummaryError, d.Content, d.CreatedAt)
	return s.mapOwnedInsert(ctx, err, "document", classID)
}

// GetDocument implements store.ClassStore.
func (s *ClassStore) GetDocument(ctx context.Context, classID, documentID uuid.UUID) (*domain.Document, error) {
	d, err := scanDocument(s.q(ctx).QueryRowContext(ctx, selectDocumentSQL, classID, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.missing(ctx, s.q(ctx), classID, store.ErrDocumentNotFound)
		}
		return nil, MapError(err)
	}
	return d, nil
}

// UpdateDocument implements store.ClassStore.
func (s *ClassStore) UpdateDocument(ctx context.Context, classID uuid.UUID, d *domain.Document) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	res, err := s.q(ctx).ExecContext(ctx, updateDocumentSQL,
		classID, d.ID, string(d.Status), d.Summary, d.SummaryError)
	if err != nil {
		return MapError(err)
	}
	if err := checkRowsAffected(res, store.ErrDocumentNotFound); err != nil {
		return s.missing(ctx, s.q(ctx), classID, err)
	}
	return nil
}

// AddAssignment implements store.ClassStore.
func (s *ClassStore) AddAssignment(ctx context.Context, classID uuid.UUID, a *domain.Assignment) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	_, err := s.q(ctx).ExecContext(ctx, insertAssignmentSQL, a.ID, classID, a.Name, a.Grade, a.LoggedAt)
	return s.mapOwnedInsert(ctx, err, "assignment", classID)
}

// AddMaterial implements store.ClassStore. The source document check and the
// insert share one transaction.
func (s *ClassStore) AddMaterial(ctx context.Context, classID uuid.UUID, m *domain.Material) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	payload := materialPayload{}
	if m.Quiz != nil {
		payload.Questions = m.Quiz.Questions
	}
	if m.Deck != nil {
		payload.Cards = m.Deck.Cards
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal material payload: %w", err)
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, documentExistsSQL, classID, m.SourceDocumentID).Scan(&exists); err != nil {
			return MapError(err)
		}
		if !exists {
			return s.missing(ctx, tx, classID, store.ErrSourceDocumentMissing)
		}
		_, err := tx.ExecContext(ctx, insertMaterialSQL,
			m.ID, classID, string(m.Kind), m.Title, m.SourceDocumentID, body, m.CreatedAt)
		return MapError(err)
	})
}

// GetMaterial implements store.ClassStore.
func (s *ClassStore) GetMaterial(ctx context.Context, classID, materialID uuid.UUID) (*domain.Material, error) {
	m, err := scanMaterial(s.q(ctx).QueryRowContext(ctx, selectMaterialSQL, classID, materialID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.missing(ctx, s.q(ctx), classID, store.ErrMaterialNotFound)
		}
		return nil, MapError(err)
	}
	return m, nil
}

// AddResult implements store.ClassStore.
func (s *ClassStore) AddResult(ctx context.Context, classID uuid.UUID, r *domain.StudyResult) error {
	_, err := s.q(ctx).ExecContext(ctx, insertResultSQL,
		r.ID, classID, r.MaterialID, string(r.Kind), r.Score, r.Correct, r.Total, r.CompletedAt)
	return s.mapOwnedInsert(ctx, err, "study_result", classID)
}

func (s *ClassStore) loadOwned(ctx context.Context, c *domain.ClassModule) error {
	var err error
	if c.Documents, err = s.listDocuments(ctx, c.ID); err != nil {
		return err
	}
	if c.Assignments, err = s.listAssignments(ctx, c.ID); err != nil {
		return err
	}
	if c.Materials, err = s.listMaterials(ctx, c.ID); err != nil {
		return err
	}
	if c.Results, err = s.listResults(ctx, c.ID); err != nil {
		return err
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	var kind, status string
	if err := row.Scan(&d.ID, &d.Title, &kind, &status, &d.Summary, &d.SummaryError, &d.Content, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.Kind = domain.ContentKind(kind)
	d.Status = domain.DocumentStatus(status)
	return &d, nil
}

func scanMaterial(row rowScanner) (*domain.Material, error) {
	var m domain.Material
	var kind string
	var body []byte
	if err := row.Scan(&m.ID, &kind, &m.Title, &m.SourceDocumentID, &body, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Kind = domain.MaterialKind(kind)
	var payload materialPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode material payload %s: %w", m.ID, err)
	}
	switch m.Kind {
	case domain.MaterialQuiz:
		m.Quiz = &domain.Quiz{Questions: payload.Questions}
	case domain.MaterialFlashcards:
		m.Deck = &domain.FlashcardDeck{Cards: payload.Cards}
	}
	return &m, nil
}

func (s *ClassStore) listDocuments(ctx context.Context, classID uuid.UUID) ([]*domain.Document, error) {
	rows, err := s.q(ctx).QueryContext(ctx, selectDocumentsSQL, classID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()
	out := []*domain.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	return out, MapError(rows.Err())
}

func (s *ClassStore) listAssignments(ctx context.Context, classID uuid.UUID) ([]*domain.Assignment, error) {
	rows, err := s.q(ctx).QueryContext(ctx, selectAssignmentsSQL, classID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()
	out := []*domain.Assignment{}
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.ID, &a.Name, &a.Grade, &a.LoggedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, &a)
	}
	return out, MapError(rows.Err())
}

func (s *ClassStore) listMaterials(ctx context.Context, classID uuid.UUID) ([]*domain.Material, error) {
	rows, err := s.q(ctx).QueryContext(ctx, selectMaterialsSQL, classID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()
	out := []*domain.Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out = append(out, m)
	}
	return out, MapError(rows.Err())
}

func (s *ClassStore) listResults(ctx context.Context, classID uuid.UUID) ([]*domain.StudyResult, error) {
	rows, err := s.q(ctx).QueryContext(ctx, selectResultsSQL, classID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()
	out := []*domain.StudyResult{}
	for rows.Next() {
		var r domain.StudyResult
		var kind string
		if err := rows.Scan(&r.ID, &r.MaterialID, &kind, &r.Score, &r.Correct, &r.Total, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan study result: %w", err)
		}
		r.Kind = domain.MaterialKind(kind)
		out = append(out, &r)
	}
	return out, MapError(rows.Err())
}

// mapOwnedInsert turns a foreign key violation on class_id into ErrClassNotFound.
func (s *ClassStore) mapOwnedInsert(ctx context.Context, err error, entity string, classID uuid.UUID) error {
	if err == nil {
		return nil
	}
	if IsForeignKeyViolation(err) {
		return store.ErrClassNotFound
	}
	logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "failed to insert "+entity,
		"error", err, "class_id", classID.String())
	return MapError(err)
}

// missing reports ErrClassNotFound when the class itself is gone, otherwise notFound.
func (s *ClassStore) missing(ctx context.Context, q store.DBTX, classID uuid.UUID, notFound error) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM classes WHERE id = $1`, classID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrClassNotFound
	}
	if err != nil {
		return MapError(err)
	}
	return notFound
}
