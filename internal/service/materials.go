package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/events"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/phrazzld/studykit/internal/progression"
	"github.com/phrazzld/studykit/internal/redact"
)

// GenerateMaterial synthesizes a quiz or flashcard deck from a ready
// document and adds it to the class. A second request for the same document
// and kind while one is running fails with ErrBusy.
func (s *StudyService) GenerateMaterial(
	ctx context.Context,
	classID, documentID uuid.UUID,
	kind domain.MaterialKind,
) (*domain.Material, progression.Award, error) {
	const op = "generate_material"
	kind, err := domain.ParseMaterialKind(string(kind))
	if err != nil {
		return nil, progression.Award{}, NewServiceError(op, err)
	}

	release, err := s.tracker.Begin(MaterialKey(documentID, kind))
	if err != nil {
		return nil, progression.Award{}, err
	}
	defer release()

	doc, err := s.classes.GetDocument(ctx, classID, documentID)
	if err != nil {
		return nil, progression.Award{}, NewServiceError(op, err)
	}
	if !doc.Ready() {
		return nil, progression.Award{}, ErrDocumentNotReady
	}

	log := logger.FromContextOrDefault(ctx, s.logger).With(
		"class_id", classID.String(),
		"document_id", documentID.String(),
		"kind", string(kind))

	material, err := s.synth.Synthesize(ctx, doc, kind)
	if err != nil {
		log.ErrorContext(ctx, "material synthesis failed", "error", redact.Error(err))
		return nil, progression.Award{}, NewServiceError(op, err)
	}

	award, state, err := s.mutate(ctx, progression.GenerateMaterialXP, func(ctx context.Context) error {
		return s.classes.AddMaterial(ctx, classID, material)
	})
	if err != nil {
		return nil, progression.Award{}, NewServiceError(op, err)
	}

	log.InfoContext(ctx, "material created",
		"material_id", material.ID.String(),
		"items", material.ItemCount())
	_ = s.emit(ctx, events.TypeMaterialCreated, events.MaterialPayload{
		ClassID:    classID,
		MaterialID: material.ID,
		DocumentID: documentID,
		Kind:       string(kind),
	})
	s.emitProgress(ctx, award, state)
	return material, award, nil
}

// GetMaterial returns one material of a class.
func (s *StudyService) GetMaterial(ctx context.Context, classID, materialID uuid.UUID) (*domain.Material, error) {
	m, err := s.classes.GetMaterial(ctx, classID, materialID)
	if err != nil {
		return nil, NewServiceError("get_material", err)
	}
	return m, nil
}
