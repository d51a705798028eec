package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/store"
)

// Store keeps classes and progress in memory. It is safe for concurrent use.
type Store struct {
	// txMu serializes InTransaction calls.
	txMu sync.Mutex

	mu       sync.RWMutex
	classes  map[uuid.UUID]*domain.ClassModule
	order    []uuid.UUID
	progress domain.ProgressState
}

var (
	_ store.ClassStore    = (*Store)(nil)
	_ store.ProgressStore = (*Store)(nil)
	_ store.Transactor    = (*Store)(nil)
)

// New returns an empty Store.
func New() *Store {
	return &Store{classes: make(map[uuid.UUID]*domain.ClassModule)}
}

// InTransaction implements store.Transactor. Writes made while fn runs are
// undone when fn returns an error or panics.
func (s *Store) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	saved := s.snapshot()
	committed := false
	defer func() {
		if !committed {
			s.restore(saved)
		}
	}()

	if err := fn(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

type state struct {
	classes  map[uuid.UUID]*domain.ClassModule
	order    []uuid.UUID
	progress domain.ProgressState
}

func (s *Store) snapshot() state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := state{
		classes:  make(map[uuid.UUID]*domain.ClassModule, len(s.classes)),
		order:    append([]uuid.UUID(nil), s.order...),
		progress: s.progress.Clone(),
	}
	for id, c := range s.classes {
		out.classes[id] = c.Clone()
	}
	return out
}

func (s *Store) restore(st state) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes = st.classes
	s.order = st.order
	s.progress = st.progress
}

// CreateClass implements store.ClassStore.
func (s *Store) CreateClass(_ context.Context, class *domain.ClassModule) error {
	if err := class.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classes[class.ID]; ok {
		return fmt.Errorf("%w: class %s", store.ErrDuplicate, class.ID)
	}
	s.classes[class.ID] = class.Clone()
	s.order = append(s.order, class.ID)
	return nil
}

// GetClass implements store.ClassStore.
func (s *Store) GetClass(_ context.Context, id uuid.UUID) (*domain.ClassModule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.classes[id]
	if !ok {
		return nil, store.ErrClassNotFound
	}
	return c.Clone(), nil
}

// ListClasses implements store.ClassStore.
func (s *Store) ListClasses(_ context.Context) ([]*domain.ClassModule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.ClassModule, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.classes[id].Clone())
	}
	return out, nil
}

// DeleteClass implements store.ClassStore.
func (s *Store) DeleteClass(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classes[id]; !ok {
		return store.ErrClassNotFound
	}
	delete(s.classes, id)
	for i, cid := range s.order {
		if cid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// AddDocument implements store.ClassStore.
func (s *Store) AddDocument(_ context.Context, classID uuid.UUID, doc *domain.Document) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return s.withClass(classID, func(c *domain.ClassModule) error {
		if c.Document(doc.ID) != nil {
			return fmt.Errorf("%w: document %s", store.ErrDuplicate, doc.ID)
		}
		d := *doc
		c.Documents = append([]*domain.Document{&d}, c.Documents...)
		return nil
	})
}

// GetDocument implements store.ClassStore.
func (s *Store) GetDocument(_ context.Context, classID, documentID uuid.UUID) (*domain.Document, error) {
	var out *domain.Document
	err := s.readClass(classID, func(c *domain.ClassModule) error {
		d := c.Document(documentID)
		if d == nil {
			return store.ErrDocumentNotFound
		}
		dc := *d
		out = &dc
		return nil
	})
	return out, err
}

// UpdateDocument implements store.ClassStore.
func (s *Store) UpdateDocument(_ context.Context, classID uuid.UUID, doc *domain.Document) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return s.withClass(classID, func(c *domain.ClassModule) error {
		d := c.Document(doc.ID)
		if d == nil {
			return store.ErrDocumentNotFound
		}
		d.Status = doc.Status
		d.Summary = doc.Summary
		d.SummaryError = doc.SummaryError
		return nil
	})
}

// AddAssignment implements store.ClassStore.
func (s *Store) AddAssignment(_ context.Context, classID uuid.UUID, a *domain.Assignment) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return s.withClass(classID, func(c *domain.ClassModule) error {
		ac := *a
		c.Assignments = append(c.Assignments, &ac)
		return nil
	})
}

// AddMaterial implements store.ClassStore.
func (s *Store) AddMaterial(_ context.Context, classID uuid.UUID, m *domain.Material) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return s.withClass(classID, func(c *domain.ClassModule) error {
		if c.Document(m.SourceDocumentID) == nil {
			return store.ErrSourceDocumentMissing
		}
		c.Materials = append([]*domain.Material{m.Clone()}, c.Materials...)
		return nil
	})
}

// GetMaterial implements store.ClassStore.
func (s *Store) GetMaterial(_ context.Context, classID, materialID uuid.UUID) (*domain.Material, error) {
	var out *domain.Material
	err := s.readClass(classID, func(c *domain.ClassModule) error {
		m := c.Material(materialID)
		if m == nil {
			return store.ErrMaterialNotFound
		}
		out = m.Clone()
		return nil
	})
	return out, err
}

// AddResult implements store.ClassStore.
func (s *Store) AddResult(_ context.Context, classID uuid.UUID, r *domain.StudyResult) error {
	return s.withClass(classID, func(c *domain.ClassModule) error {
		rc := *r
		c.Results = append(c.Results, &rc)
		return nil
	})
}

// LoadProgress implements store.ProgressStore.
func (s *Store) LoadProgress(_ context.Context) (domain.ProgressState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress.Clone(), nil
}

// SaveProgress implements store.ProgressStore.
func (s *Store) SaveProgress(_ context.Context, state domain.ProgressState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = state.Clone()
	return nil
}

func (s *Store) withClass(id uuid.UUID, fn func(*domain.ClassModule) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classes[id]
	if !ok {
		return store.ErrClassNotFound
	}
	return fn(c)
}

func (s *Store) readClass(id uuid.UUID, fn func(*domain.ClassModule) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.classes[id]
	if !ok {
		return store.ErrClassNotFound
	}
	return fn(c)
}
