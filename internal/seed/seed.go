// Package seed loads classes and documents from a local YAML file and
// applies them through the study service at startup.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/generation"
	"github.com/phrazzld/studykit/internal/progression"
	"github.com/phrazzld/studykit/internal/service"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSeed is returned for seed files that parse but describe
// unusable entries.
var ErrInvalidSeed = errors.New("invalid seed file")

// File is the root of a seed file.
type File struct {
	Classes []Class `yaml:"classes"`

	// dir resolves relative image paths.
	dir string
}

// Class is a class with its starting documents and assignments.
type Class struct {
	Name        string       `yaml:"name"`
	Documents   []Document   `yaml:"documents"`
	Assignments []Assignment `yaml:"assignments,omitempty"`
}

// Document is either inline text or an image file path.
type Document struct {
	Title    string `yaml:"title"`
	Text     string `yaml:"text,omitempty"`
	Image    string `yaml:"image,omitempty"`
	MIMEType string `yaml:"mime_type,omitempty"`
}

// Assignment is a graded assignment to log.
type Assignment struct {
	Name  string  `yaml:"name"`
	Grade float64 `yaml:"grade"`
}

// Service is what Apply needs from the study service.
type Service interface {
	ListClasses(ctx context.Context) ([]*domain.ClassModule, error)
	CreateClass(ctx context.Context, name string) (*domain.ClassModule, progression.Award, error)
	UploadDocument(ctx context.Context, classID uuid.UUID, in service.UploadInput) (*domain.Document, progression.Award, error)
	LogAssignment(ctx context.Context, classID uuid.UUID, name string, grade float64) (*domain.Assignment, progression.Award, error)
}

// Load reads and parses the seed file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	f.dir = filepath.Dir(path)
	return f, nil
}

// Parse decodes seed YAML. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	for i, c := range f.Classes {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: class %d has no name", ErrInvalidSeed, i)
		}
		for j, d := range c.Documents {
			hasText := strings.TrimSpace(d.Text) != ""
			hasImage := strings.TrimSpace(d.Image) != ""
			if hasText == hasImage {
				return fmt.Errorf("%w: %s document %d needs exactly one of text and image",
					ErrInvalidSeed, c.Name, j)
			}
		}
	}
	return nil
}

// Result counts what Apply created.
type Result struct {
	Classes     int
	Documents   int
	Assignments int
	Skipped     int
}

// Apply creates every class in f whose name does not exist yet, then uploads
// its documents and logs its assignments. Existing classes are skipped so that
// restarts against a durable store do not duplicate them.
func Apply(ctx context.Context, svc Service, f *File, log *slog.Logger) (Result, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "seed")

	existing, err := svc.ListClasses(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list classes: %w", err)
	}
	names := make(map[string]bool, len(existing))
	for _, c := range existing {
		names[strings.ToLower(c.Name)] = true
	}

	var res Result
	for _, c := range f.Classes {
		if names[strings.ToLower(strings.TrimSpace(c.Name))] {
			log.Debug("seed class already present", "class", c.Name)
			res.Skipped++
			continue
		}

		class, _, err := svc.CreateClass(ctx, c.Name)
		if err != nil {
			return res, fmt.Errorf("seed class %q: %w", c.Name, err)
		}
		res.Classes++

		for _, d := range c.Documents {
			in, err := f.upload(d)
			if err != nil {
				return res, fmt.Errorf("seed document %q: %w", d.Title, err)
			}
			if _, _, err := svc.UploadDocument(ctx, class.ID, in); err != nil {
				return res, fmt.Errorf("seed document %q: %w", d.Title, err)
			}
			res.Documents++
		}

		for _, a := range c.Assignments {
			if _, _, err := svc.LogAssignment(ctx, class.ID, a.Name, a.Grade); err != nil {
				return res, fmt.Errorf("seed assignment %q: %w", a.Name, err)
			}
			res.Assignments++
		}
	}

	log.Info("seed applied",
		"classes", res.Classes,
		"documents", res.Documents,
		"assignments", res.Assignments,
		"skipped", res.Skipped)
	return res, nil
}

func (f *File) upload(d Document) (service.UploadInput, error) {
	in := service.UploadInput{Title: d.Title, Text: d.Text}
	if d.Image == "" {
		return in, nil
	}

	path := d.Image
	if !filepath.IsAbs(path) && f.dir != "" {
		path = filepath.Join(f.dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("read image: %w", err)
	}

	mimeType := d.MIMEType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	in.Image = &generation.Image{MIMEType: mimeType, Data: data}
	return in, nil
}
