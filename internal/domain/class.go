package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ColorTag is the display color assigned to a class when it is created.
type ColorTag string

// Palette of class colors, assigned round-robin by class count.
const (
	ColorBlue    ColorTag = "blue"
	ColorPurple  ColorTag = "purple"
	ColorEmerald ColorTag = "emerald"
	ColorRose    ColorTag = "rose"
	ColorAmber   ColorTag = "amber"
)

var palette = []ColorTag{ColorBlue, ColorPurple, ColorEmerald, ColorRose, ColorAmber}

// ColorForIndex returns the palette color for the n-th class.
func ColorForIndex(n int) ColorTag {
	if n < 0 {
		n = -n
	}
	return palette[n%len(palette)]
}

// ClassModule groups the documents, assignments, materials and study results
// of one course. It exclusively owns all of them; deleting the class deletes
// its collections with it.
type ClassModule struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Color       ColorTag       `json:"color"`
	Documents   []*Document    `json:"documents"`
	Assignments []*Assignment  `json:"assignments"`
	Materials   []*Material    `json:"materials"`
	Results     []*StudyResult `json:"results"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewClassModule creates an empty class with a fresh id.
func NewClassModule(name string, color ColorTag) (*ClassModule, error) {
	c := &ClassModule{
		ID:          NewID(),
		Name:        strings.TrimSpace(name),
		Color:       color,
		Documents:   []*Document{},
		Assignments: []*Assignment{},
		Materials:   []*Material{},
		Results:     []*StudyResult{},
		CreatedAt:   time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the class-level fields. Owned entities validate themselves.
func (c *ClassModule) Validate() error {
	var errs []FieldError
	if c.ID == uuid.Nil {
		errs = append(errs, FieldError{Field: "id", Message: "must not be empty"})
	}
	if c.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "must not be empty"})
	}
	if c.Color == "" {
		errs = append(errs, FieldError{Field: "color", Message: "must not be empty"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// Document returns the owned document with the given id, or nil.
func (c *ClassModule) Document(id uuid.UUID) *Document {
	for _, d := range c.Documents {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// Material returns the owned material with the given id, or nil.
func (c *ClassModule) Material(id uuid.UUID) *Material {
	for _, m := range c.Materials {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Clone returns a deep copy so callers can read a class without holding the
// store's lock.
func (c *ClassModule) Clone() *ClassModule {
	if c == nil {
		return nil
	}
	out := *c
	out.Documents = make([]*Document, len(c.Documents))
	for i, d := range c.Documents {
		dc := *d
		out.Documents[i] = &dc
	}
	out.Assignments = make([]*Assignment, len(c.Assignments))
	for i, a := range c.Assignments {
		ac := *a
		out.Assignments[i] = &ac
	}
	out.Materials = make([]*Material, len(c.Materials))
	for i, m := range c.Materials {
		out.Materials[i] = m.Clone()
	}
	out.Results = make([]*StudyResult, len(c.Results))
	for i, r := range c.Results {
		rc := *r
		out.Results[i] = &rc
	}
	return &out
}
