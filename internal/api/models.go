package api

import (
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/progression"
)

// DefaultImageMIMEType is assumed for image uploads that name no type.
const DefaultImageMIMEType = "image/png"

// CreateClassRequest defines the payload for creating a class.
type CreateClassRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UploadDocumentRequest defines the payload for adding a document to a
// class. Exactly one of Text and Image is set; Image is base64 encoded.
type UploadDocumentRequest struct {
	Title    string `json:"title"               validate:"required,max=200"`
	Text     string `json:"text,omitempty"      validate:"required_without=Image,excluded_with=Image"`
	Image    string `json:"image,omitempty"     validate:"omitempty,base64"`
	MIMEType string `json:"mime_type,omitempty" validate:"omitempty,oneof=image/png image/jpeg image/webp image/gif"`
}

// LogAssignmentRequest defines the payload for logging a graded assignment.
// Grade is a pointer so that a zero grade is distinguishable from a missing one.
type LogAssignmentRequest struct {
	Name  string   `json:"name"  validate:"required,max=200"`
	Grade *float64 `json:"grade" validate:"required,gte=0,lte=100"`
}

// GenerateMaterialRequest defines the payload for generating study material.
type GenerateMaterialRequest struct {
	Kind string `json:"kind" validate:"required,oneof=quiz flashcards"`
}

// AnswerRequest selects an option for the current quiz question.
type AnswerRequest struct {
	Option *int `json:"option" validate:"required,gte=0"`
}

// MarkRequest marks the revealed flashcard as known or not.
type MarkRequest struct {
	Known *bool `json:"known" validate:"required"`
}

// ClassResponse is returned when a class is created.
type ClassResponse struct {
	Class *domain.ClassModule `json:"class"`
	Award progression.Award   `json:"award"`
}

// DocumentResponse is returned when a document is uploaded.
type DocumentResponse struct {
	Document *domain.Document  `json:"document"`
	Award    progression.Award `json:"award"`
}

// DocumentView is a document plus the material kinds currently being
// generated from it. A duplicate request for one of those kinds gets 409.
type DocumentView struct {
	*domain.Document
	Generating []domain.MaterialKind `json:"generating"`
}

// AssignmentResponse is returned when an assignment is logged.
type AssignmentResponse struct {
	Assignment *domain.Assignment `json:"assignment"`
	Award      progression.Award  `json:"award"`
}

// MaterialResponse is returned when a material is generated.
type MaterialResponse struct {
	Material *domain.Material  `json:"material"`
	Award    progression.Award `json:"award"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
