package tutoring

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorlink/backend/internal/domain/tutoring"
)

// CreateSubjectInput contains input for creating a subject
type CreateSubjectInput struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required,slug"`
}

// SubjectView is the API representation of a subject
type SubjectView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// PostTaskInput contains input for posting a task
type PostTaskInput struct {
	SubjectID   uuid.UUID       `json:"subject_id" binding:"required"`
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Budget      decimal.Decimal `json:"budget"`
	Deadline    *time.Time      `json:"deadline"`
}

// ListTasksInput contains filters for listing tasks
type ListTasksInput struct {
	Status    string `form:"status"`
	SubjectID string `form:"subject_id"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// TaskView is the API representation of a task
type TaskView struct {
	ID              uuid.UUID           `json:"id"`
	StudentID       uuid.UUID           `json:"student_id"`
	SubjectID       uuid.UUID           `json:"subject_id"`
	Title           string              `json:"title"`
	Description     string              `json:"description,omitempty"`
	Budget          decimal.Decimal     `json:"budget"`
	Deadline        *time.Time          `json:"deadline,omitempty"`
	Status          tutoring.TaskStatus `json:"status"`
	AssignedTutorID *uuid.UUID          `json:"assigned_tutor_id,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ScheduleSessionInput contains input for scheduling a session
type ScheduleSessionInput struct {
	TutorID    uuid.UUID       `json:"tutor_id" binding:"required"`
	SubjectID  uuid.UUID       `json:"subject_id" binding:"required"`
	StartsAt   time.Time       `json:"starts_at" binding:"required"`
	EndsAt     time.Time       `json:"ends_at" binding:"required"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
}

// SessionView is the API representation of a session. Cost is derived from
// rate and scheduled duration.
type SessionView struct {
	ID         uuid.UUID              `json:"id"`
	TutorID    uuid.UUID              `json:"tutor_id"`
	StudentID  uuid.UUID              `json:"student_id"`
	SubjectID  uuid.UUID              `json:"subject_id"`
	StartsAt   time.Time              `json:"starts_at"`
	EndsAt     time.Time              `json:"ends_at"`
	HourlyRate decimal.Decimal        `json:"hourly_rate"`
	Cost       decimal.Decimal        `json:"cost"`
	Status     tutoring.SessionStatus `json:"status"`
	Notes      string                 `json:"notes,omitempty"`
}

// CreateReviewInput contains input for reviewing a completed session
type CreateReviewInput struct {
	SessionID uuid.UUID `json:"session_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required"`
	Comment   string    `json:"comment"`
}

// ReviewView is the API representation of a review
type ReviewView struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GeneratePlanInput contains input for generating a study plan
type GeneratePlanInput struct {
	SubjectID uuid.UUID `json:"subject_id" binding:"required"`
	Goal      string    `json:"goal" binding:"required"`
	Weeks     int       `json:"weeks"`
}

// StudyPlanView is the API representation of a study plan
type StudyPlanView struct {
	ID        uuid.UUID           `json:"id"`
	StudentID uuid.UUID           `json:"student_id"`
	SubjectID uuid.UUID           `json:"subject_id"`
	Goal      string              `json:"goal"`
	Summary   string              `json:"summary,omitempty"`
	Weeks     []tutoring.PlanWeek `json:"weeks"`
	CreatedAt time.Time           `json:"created_at"`
}

func subjectViewFromDomain(s *tutoring.Subject) SubjectView {
	return SubjectView{ID: s.ID, Name: s.Name, Slug: s.Slug}
}

func taskViewFromDomain(t *tutoring.Task) TaskView {
	return TaskView{
		ID:              t.ID,
		StudentID:       t.StudentID,
		SubjectID:       t.SubjectID,
		Title:           t.Title,
		Description:     t.Description,
		Budget:          t.Budget,
		Deadline:        t.Deadline,
		Status:          t.Status,
		AssignedTutorID: t.AssignedTutorID,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func sessionViewFromDomain(s *tutoring.Session) SessionView {
	return SessionView{
		ID:         s.ID,
		TutorID:    s.TutorID,
		StudentID:  s.StudentID,
		SubjectID:  s.SubjectID,
		StartsAt:   s.StartsAt,
		EndsAt:     s.EndsAt,
		HourlyRate: s.HourlyRate,
		Cost:       s.Cost(),
		Status:     s.Status,
		Notes:      s.Notes,
	}
}

func reviewViewFromDomain(r *tutoring.Review) ReviewView {
	return ReviewView{
		ID:        r.ID,
		SessionID: r.SessionID,
		AuthorID:  r.AuthorID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func studyPlanViewFromDomain(p *tutoring.StudyPlan) StudyPlanView {
	return StudyPlanView{
		ID:        p.ID,
		StudentID: p.StudentID,
		SubjectID: p.SubjectID,
		Goal:      p.Goal,
		Summary:   p.Summary,
		Weeks:     p.Weeks,
		CreatedAt: p.CreatedAt,
	}
}
