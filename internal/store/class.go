package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
)

// ClassStore persists classes together with the entities they own. Every
// method returns copies; mutating a returned value never changes the store.
type ClassStore interface {
	// CreateClass saves a new, empty class.
	CreateClass(ctx context.Context, class *domain.ClassModule) error

	// GetClass returns the class with all owned collections loaded.
	// Returns ErrClassNotFound if the class does not exist.
	GetClass(ctx context.Context, id uuid.UUID) (*domain.ClassModule, error)

	// ListClasses returns every class in creation order.
	ListClasses(ctx context.Context) ([]*domain.ClassModule, error)

	// DeleteClass removes the class and everything it owns.
	// Returns ErrClassNotFound if the class does not exist.
	DeleteClass(ctx context.Context, id uuid.UUID) error

	// AddDocument prepends doc to the class's documents.
	AddDocument(ctx context.Context, classID uuid.UUID, doc *domain.Document) error

	// GetDocument returns one document of a class.
	// Returns ErrClassNotFound or ErrDocumentNotFound.
	GetDocument(ctx context.Context, classID, documentID uuid.UUID) (*domain.Document, error)

	// UpdateDocument replaces the stored document's status, summary and error.
	UpdateDocument(ctx context.Context, classID uuid.UUID, doc *domain.Document) error

	// AddAssignment appends an assignment to the class.
	AddAssignment(ctx context.Context, classID uuid.UUID, a *domain.Assignment) error

	// AddMaterial prepends a material. Returns ErrSourceDocumentMissing when
	// the material's source document is not part of the class.
	AddMaterial(ctx context.Context, classID uuid.UUID, m *domain.Material) error

	// GetMaterial returns one material of a class.
	// Returns ErrClassNotFound or ErrMaterialNotFound.
	GetMaterial(ctx context.Context, classID, materialID uuid.UUID) (*domain.Material, error)

	// AddResult appends a finished study session result.
	AddResult(ctx context.Context, classID uuid.UUID, r *domain.StudyResult) error
}

// ProgressStore persists the single progression state.
type ProgressStore interface {
	// LoadProgress returns the saved state, or a zero state when none exists.
	LoadProgress(ctx context.Context) (domain.ProgressState, error)

	// SaveProgress replaces the saved state.
	SaveProgress(ctx context.Context, state domain.ProgressState) error
}
