package tutoring

import (
	"regexp"
	"strings"

	"github.com/tutorlink/backend/internal/domain/shared"
)

// Subject is a reference entry tutors teach and students ask about
type Subject struct {
	shared.BaseEntity
	Name string
	Slug string
}

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// NewSubject creates a subject with a URL-safe slug
func NewSubject(name, slug string) (*Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Subject name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Subject name cannot exceed 100 characters")
	}

	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugRegex.MatchString(slug) {
		return nil, shared.NewDomainError("INVALID_SLUG", "Slug must be lowercase letters, numbers, and hyphens")
	}

	return &Subject{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Slug:       slug,
	}, nil
}
