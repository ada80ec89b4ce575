package tutoring

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/shared"
	"github.com/tutorlink/backend/internal/domain/tutoring"
	"go.uber.org/zap"
)

// SubjectService manages the subject reference list
type SubjectService struct {
	subjectRepo tutoring.SubjectRepository
	logger      *zap.Logger
}

// NewSubjectService creates a new subject service
func NewSubjectService(subjectRepo tutoring.SubjectRepository, logger *zap.Logger) *SubjectService {
	return &SubjectService{
		subjectRepo: subjectRepo,
		logger:      logger,
	}
}

// Create adds a subject to the reference list
func (s *SubjectService) Create(ctx context.Context, input CreateSubjectInput) (*SubjectView, error) {
	subject, err := tutoring.NewSubject(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}

	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("SLUG_TAKEN", "A subject with this slug already exists")
		}
		s.logger.Error("Failed to create subject", zap.Error(err))
		return nil, err
	}

	view := subjectViewFromDomain(subject)
	return &view, nil
}

// Get returns a subject by ID
func (s *SubjectService) Get(ctx context.Context, id uuid.UUID) (*SubjectView, error) {
	subject, err := s.subjectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := subjectViewFromDomain(subject)
	return &view, nil
}

// GetBySlug returns a subject by slug
func (s *SubjectService) GetBySlug(ctx context.Context, slug string) (*SubjectView, error) {
	subject, err := s.subjectRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	view := subjectViewFromDomain(subject)
	return &view, nil
}

// List returns every subject
func (s *SubjectService) List(ctx context.Context) ([]SubjectView, error) {
	subjects, err := s.subjectRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]SubjectView, len(subjects))
	for i, subject := range subjects {
		views[i] = subjectViewFromDomain(subject)
	}
	return views, nil
}
