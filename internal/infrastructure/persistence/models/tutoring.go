package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorlink/backend/internal/domain/tutoring"
)

// SubjectModel is the persistence model for the Subject domain entity
type SubjectModel struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null"`
	Slug string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (SubjectModel) TableName() string {
	return "subjects"
}

// ToDomain converts the persistence model to a domain Subject
func (m *SubjectModel) ToDomain() *tutoring.Subject {
	return &tutoring.Subject{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Slug:       m.Slug,
	}
}

// SubjectModelFromDomain creates a new persistence model from a domain Subject
func SubjectModelFromDomain(s *tutoring.Subject) *SubjectModel {
	m := &SubjectModel{Name: s.Name, Slug: s.Slug}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// TaskModel is the persistence model for the Task aggregate
type TaskModel struct {
	AggregateModel
	StudentID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	SubjectID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	Title           string              `gorm:"type:varchar(200);not null"`
	Description     string              `gorm:"type:text"`
	Budget          decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	Deadline        *time.Time          `gorm:"index"`
	Status          tutoring.TaskStatus `gorm:"type:varchar(20);not null;index"`
	AssignedTutorID *uuid.UUID          `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "tasks"
}

// ToDomain converts the persistence model to a domain Task
func (m *TaskModel) ToDomain() *tutoring.Task {
	return &tutoring.Task{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StudentID:         m.StudentID,
		SubjectID:         m.SubjectID,
		Title:             m.Title,
		Description:       m.Description,
		Budget:            m.Budget,
		Deadline:          m.Deadline,
		Status:            m.Status,
		AssignedTutorID:   m.AssignedTutorID,
	}
}

// FromDomain populates the persistence model from a domain Task
func (m *TaskModel) FromDomain(t *tutoring.Task) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.StudentID = t.StudentID
	m.SubjectID = t.SubjectID
	m.Title = t.Title
	m.Description = t.Description
	m.Budget = t.Budget
	m.Deadline = t.Deadline
	m.Status = t.Status
	m.AssignedTutorID = t.AssignedTutorID
}

// TaskModelFromDomain creates a new persistence model from a domain Task
func TaskModelFromDomain(t *tutoring.Task) *TaskModel {
	m := &TaskModel{}
	m.FromDomain(t)
	return m
}

// SessionModel is the persistence model for the Session aggregate
type SessionModel struct {
	AggregateModel
	TutorID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	StudentID  uuid.UUID              `gorm:"type:uuid;not null;index"`
	SubjectID  uuid.UUID              `gorm:"type:uuid;not null;index"`
	StartsAt   time.Time              `gorm:"not null;index"`
	EndsAt     time.Time              `gorm:"not null"`
	HourlyRate decimal.Decimal        `gorm:"type:numeric(12,2);not null"`
	Status     tutoring.SessionStatus `gorm:"type:varchar(20);not null;index"`
	Notes      string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SessionModel) TableName() string {
	return "sessions"
}

// ToDomain converts the persistence model to a domain Session
func (m *SessionModel) ToDomain() *tutoring.Session {
	return &tutoring.Session{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TutorID:           m.TutorID,
		StudentID:         m.StudentID,
		SubjectID:         m.SubjectID,
		StartsAt:          m.StartsAt,
		EndsAt:            m.EndsAt,
		HourlyRate:        m.HourlyRate,
		Status:            m.Status,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Session
func (m *SessionModel) FromDomain(s *tutoring.Session) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.TutorID = s.TutorID
	m.StudentID = s.StudentID
	m.SubjectID = s.SubjectID
	m.StartsAt = s.StartsAt
	m.EndsAt = s.EndsAt
	m.HourlyRate = s.HourlyRate
	m.Status = s.Status
	m.Notes = s.Notes
}

// SessionModelFromDomain creates a new persistence model from a domain Session
func SessionModelFromDomain(s *tutoring.Session) *SessionModel {
	m := &SessionModel{}
	m.FromDomain(s)
	return m
}

// ReviewModel is the persistence model for the Review domain entity
type ReviewModel struct {
	BaseModel
	SessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_session_author"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_session_author"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// ToDomain converts the persistence model to a domain Review
func (m *ReviewModel) ToDomain() *tutoring.Review {
	return &tutoring.Review{
		BaseEntity: m.BaseModel.ToDomain(),
		SessionID:  m.SessionID,
		AuthorID:   m.AuthorID,
		Rating:     m.Rating,
		Comment:    m.Comment,
	}
}

// ReviewModelFromDomain creates a new persistence model from a domain Review
func ReviewModelFromDomain(r *tutoring.Review) *ReviewModel {
	m := &ReviewModel{
		SessionID: r.SessionID,
		AuthorID:  r.AuthorID,
		Rating:    r.Rating,
		Comment:   r.Comment,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// StudyPlanModel is the persistence model for the StudyPlan aggregate.
// Weeks are stored as a JSON document.
type StudyPlanModel struct {
	AggregateModel
	StudentID uuid.UUID           `gorm:"type:uuid;not null;index"`
	SubjectID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Goal      string              `gorm:"type:text;not null"`
	Summary   string              `gorm:"type:text"`
	Weeks     []tutoring.PlanWeek `gorm:"serializer:json;type:jsonb"`
}

// TableName returns the table name for GORM
func (StudyPlanModel) TableName() string {
	return "study_plans"
}

// ToDomain converts the persistence model to a domain StudyPlan
func (m *StudyPlanModel) ToDomain() *tutoring.StudyPlan {
	return &tutoring.StudyPlan{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StudentID:         m.StudentID,
		SubjectID:         m.SubjectID,
		Goal:              m.Goal,
		Summary:           m.Summary,
		Weeks:             m.Weeks,
	}
}

// StudyPlanModelFromDomain creates a new persistence model from a domain StudyPlan
func StudyPlanModelFromDomain(p *tutoring.StudyPlan) *StudyPlanModel {
	m := &StudyPlanModel{
		StudentID: p.StudentID,
		SubjectID: p.SubjectID,
		Goal:      p.Goal,
		Summary:   p.Summary,
		Weeks:     p.Weeks,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
