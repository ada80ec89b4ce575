package tutoring

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/shared"
)

// PlanWeek is one week of a generated study plan
type PlanWeek struct {
	Week   int      `json:"week"`
	Focus  string   `json:"focus"`
	Topics []string `json:"topics"`
	Hours  int      `json:"hours"`
}

// GeneratedPlan is the structured output of the plan generator
type GeneratedPlan struct {
	Summary string     `json:"summary"`
	Weeks   []PlanWeek `json:"weeks"`
}

// PlanGenerator produces structured study plans. The AI generator behind it
// is an external collaborator; this contract is all the domain depends on.
type PlanGenerator interface {
	Generate(ctx context.Context, subject, goal string, weeks int) (*GeneratedPlan, error)
}

// StudyPlan is a persisted, generated study plan owned by a student
type StudyPlan struct {
	shared.BaseAggregateRoot
	StudentID uuid.UUID
	SubjectID uuid.UUID
	Goal      string
	Summary   string
	Weeks     []PlanWeek
}

// NewStudyPlan creates a study plan from generator output
func NewStudyPlan(studentID, subjectID uuid.UUID, goal string, generated *GeneratedPlan) (*StudyPlan, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if subjectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject ID cannot be empty")
	}

	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, shared.NewDomainError("INVALID_GOAL", "Goal cannot be empty")
	}
	if generated == nil || len(generated.Weeks) == 0 {
		return nil, shared.NewDomainError("INVALID_PLAN", "Generated plan has no content")
	}

	return &StudyPlan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		SubjectID:         subjectID,
		Goal:              goal,
		Summary:           generated.Summary,
		Weeks:             generated.Weeks,
	}, nil
}
