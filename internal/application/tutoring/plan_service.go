package tutoring

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/shared"
	"github.com/tutorlink/backend/internal/domain/tutoring"
	"go.uber.org/zap"
)

const (
	defaultPlanWeeks = 4
	maxPlanWeeks     = 12
)

// PlanService generates and stores study plans. The generator is an external
// collaborator behind the tutoring.PlanGenerator contract; a generation
// failure leaves no partial plan behind.
type PlanService struct {
	planRepo    tutoring.StudyPlanRepository
	subjectRepo tutoring.SubjectRepository
	generator   tutoring.PlanGenerator
	logger      *zap.Logger
}

// NewPlanService creates a new plan service
func NewPlanService(
	planRepo tutoring.StudyPlanRepository,
	subjectRepo tutoring.SubjectRepository,
	generator tutoring.PlanGenerator,
	logger *zap.Logger,
) *PlanService {
	return &PlanService{
		planRepo:    planRepo,
		subjectRepo: subjectRepo,
		generator:   generator,
		logger:      logger,
	}
}

// Generate produces and persists a study plan for the calling student
func (s *PlanService) Generate(ctx context.Context, studentID uuid.UUID, input GeneratePlanInput) (*StudyPlanView, error) {
	subject, err := s.subjectRepo.FindByID(ctx, input.SubjectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("SUBJECT_NOT_FOUND", "Subject does not exist")
		}
		return nil, err
	}

	weeks := input.Weeks
	if weeks <= 0 {
		weeks = defaultPlanWeeks
	}
	if weeks > maxPlanWeeks {
		weeks = maxPlanWeeks
	}

	generated, err := s.generator.Generate(ctx, subject.Name, input.Goal, weeks)
	if err != nil {
		s.logger.Error("Plan generation failed",
			zap.String("student_id", studentID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("PLAN_GENERATION_FAILED", "Could not generate a study plan")
	}

	plan, err := tutoring.NewStudyPlan(studentID, input.SubjectID, input.Goal, generated)
	if err != nil {
		return nil, err
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		s.logger.Error("Failed to persist study plan", zap.Error(err))
		return nil, err
	}

	view := studyPlanViewFromDomain(plan)
	return &view, nil
}

// Get returns a study plan. Only the owning student may see it.
func (s *PlanService) Get(ctx context.Context, callerID, planID uuid.UUID) (*StudyPlanView, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.StudentID != callerID {
		return nil, shared.ErrForbidden
	}
	view := studyPlanViewFromDomain(plan)
	return &view, nil
}

// ListMine returns the caller's study plans
func (s *PlanService) ListMine(ctx context.Context, studentID uuid.UUID) ([]StudyPlanView, error) {
	plans, err := s.planRepo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	views := make([]StudyPlanView, len(plans))
	for i, p := range plans {
		views[i] = studyPlanViewFromDomain(p)
	}
	return views, nil
}
