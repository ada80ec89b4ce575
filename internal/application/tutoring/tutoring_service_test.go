package tutoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutorlink/backend/internal/domain/identity"
	"github.com/tutorlink/backend/internal/domain/shared"
	"github.com/tutorlink/backend/internal/domain/tutoring"
	"github.com/tutorlink/backend/internal/infrastructure/persistence"
	"github.com/tutorlink/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeGenerator returns a canned plan or a failure
type fakeGenerator struct {
	plan *tutoring.GeneratedPlan
	err  error
}

func (g *fakeGenerator) Generate(_ context.Context, _, _ string, _ int) (*tutoring.GeneratedPlan, error) {
	return g.plan, g.err
}

type fixture struct {
	subjects  *SubjectService
	tasks     *TaskService
	sessions  *SessionService
	reviews   *ReviewService
	plans     *PlanService
	userRepo  identity.UserRepository
	generator *fakeGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	log := zap.NewNop()
	subjectRepo := persistence.NewGormSubjectRepository(db)
	taskRepo := persistence.NewGormTaskRepository(db)
	sessionRepo := persistence.NewGormSessionRepository(db)
	reviewRepo := persistence.NewGormReviewRepository(db)
	planRepo := persistence.NewGormStudyPlanRepository(db)
	userRepo := persistence.NewGormUserRepository(db)

	generator := &fakeGenerator{
		plan: &tutoring.GeneratedPlan{
			Summary: "A steady ramp-up",
			Weeks: []tutoring.PlanWeek{
				{Week: 1, Focus: "Basics", Topics: []string{"terminology"}, Hours: 4},
				{Week: 2, Focus: "Practice", Topics: []string{"exercises"}, Hours: 6},
			},
		},
	}

	return &fixture{
		subjects:  NewSubjectService(subjectRepo, log),
		tasks:     NewTaskService(taskRepo, subjectRepo, userRepo, log),
		sessions:  NewSessionService(sessionRepo, subjectRepo, userRepo, log),
		reviews:   NewReviewService(reviewRepo, sessionRepo, log),
		plans:     NewPlanService(planRepo, subjectRepo, generator, log),
		userRepo:  userRepo,
		generator: generator,
	}
}

func (f *fixture) createUser(t *testing.T, email, name string, role identity.UserRole) *identity.User {
	t.Helper()
	user, err := identity.NewUser(email, "password123", name, role)
	require.NoError(t, err)
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

func (f *fixture) createSubject(t *testing.T, name, slug string) *SubjectView {
	t.Helper()
	subject, err := f.subjects.Create(context.Background(), CreateSubjectInput{Name: name, Slug: slug})
	require.NoError(t, err)
	return subject
}

func TestSubjectService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created := f.createSubject(t, "Linear Algebra", "linear-algebra")

	bySlug, err := f.subjects.GetBySlug(ctx, "linear-algebra")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	_, err = f.subjects.Create(ctx, CreateSubjectInput{Name: "Other", Slug: "linear-algebra"})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SLUG_TAKEN", domainErr.Code)
}

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("post assign complete", func(t *testing.T) {
		f := newFixture(t)
		student := f.createUser(t, "student@example.com", "Student", identity.UserRoleStudent)
		tutor := f.createUser(t, "tutor@example.com", "Tutor", identity.UserRoleTutor)
		subject := f.createSubject(t, "Calculus", "calculus")

		task, err := f.tasks.Post(ctx, student.ID, PostTaskInput{
			SubjectID:   subject.ID,
			Title:       "Help with derivatives",
			Description: "Chain rule is confusing",
			Budget:      decimal.NewFromInt(50),
		})
		require.NoError(t, err)
		assert.Equal(t, tutoring.TaskStatusOpen, task.Status)

		assigned, err := f.tasks.Assign(ctx, student.ID, task.ID, tutor.ID)
		require.NoError(t, err)
		assert.Equal(t, tutoring.TaskStatusAssigned, assigned.Status)
		require.NotNil(t, assigned.AssignedTutorID)
		assert.Equal(t, tutor.ID, *assigned.AssignedTutorID)

		completed, err := f.tasks.Complete(ctx, student.ID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, tutoring.TaskStatusCompleted, completed.Status)

		// completed tasks cannot be cancelled
		_, err = f.tasks.Cancel(ctx, student.ID, task.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("only the posting student controls the task", func(t *testing.T) {
		f := newFixture(t)
		student := f.createUser(t, "student@example.com", "Student", identity.UserRoleStudent)
		other := f.createUser(t, "other@example.com", "Other", identity.UserRoleStudent)
		tutor := f.createUser(t, "tutor@example.com", "Tutor", identity.UserRoleTutor)
		subject := f.createSubject(t, "Calculus", "calculus")

		task, err := f.tasks.Post(ctx, student.ID, PostTaskInput{
			SubjectID: subject.ID,
			Title:     "Integrals",
			Budget:    decimal.NewFromInt(30),
		})
		require.NoError(t, err)

		_, err = f.tasks.Assign(ctx, other.ID, task.ID, tutor.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
		_, err = f.tasks.Cancel(ctx, other.ID, task.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("assignee must be an active tutor", func(t *testing.T) {
		f := newFixture(t)
		student := f.createUser(t, "student@example.com", "Student", identity.UserRoleStudent)
		notTutor := f.createUser(t, "peer@example.com", "Peer", identity.UserRoleStudent)
		subject := f.createSubject(t, "Calculus", "calculus")

		task, err := f.tasks.Post(ctx, student.ID, PostTaskInput{
			SubjectID: subject.ID,
			Title:     "Limits",
			Budget:    decimal.NewFromInt(20),
		})
		require.NoError(t, err)

		_, err = f.tasks.Assign(ctx, student.ID, task.ID, notTutor.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TUTOR", domainErr.Code)
	})

	t.Run("list filters by status", func(t *testing.T) {
		f := newFixture(t)
		student := f.createUser(t, "student@example.com", "Student", identity.UserRoleStudent)
		subject := f.createSubject(t, "Calculus", "calculus")

		open, err := f.tasks.Post(ctx, student.ID, PostTaskInput{
			SubjectID: subject.ID,
			Title:     "Open task",
			Budget:    decimal.NewFromInt(10),
		})
		require.NoError(t, err)
		cancelled, err := f.tasks.Post(ctx, student.ID, PostTaskInput{
			SubjectID: subject.ID,
			Title:     "Cancelled task",
			Budget:    decimal.NewFromInt(10),
		})
		require.NoError(t, err)
		_, err = f.tasks.Cancel(ctx, student.ID, cancelled.ID)
		require.NoError(t, err)

		page, err := f.tasks.List(ctx, ListTasksInput{Status: string(tutoring.TaskStatusOpen)})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, open.ID, page.Items[0].ID)
	})
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	student := f.createUser(t, "student@example.com", "Student", identity.UserRoleStudent)
	tutor := f.createUser(t, "tutor@example.com", "Tutor", identity.UserRoleTutor)
	outsider := f.createUser(t, "outsider@example.com", "Outsider", identity.UserRoleStudent)
	subject := f.createSubject(t, "Physics", "physics")

	starts := time.Now().Add(24 * time.Hour)
	session, err := f.sessions.Schedule(ctx, student.ID, ScheduleSessionInput{
		TutorID:    tutor.ID,
		SubjectID:  subject.ID,
		StartsAt:   starts,
		EndsAt:     starts.Add(90 * time.Minute),
		HourlyRate: decimal.NewFromInt(40),
	})
	require.NoError(t, err)
	assert.Equal(t, tutoring.SessionStatusScheduled, session.Status)
	assert.True(t, session.Cost.Equal(decimal.NewFromInt(60)), "1.5h at 40/h, got %s", session.Cost)

	_, err = f.sessions.Get(ctx, outsider.ID, session.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	completed, err := f.sessions.Complete(ctx, tutor.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, tutoring.SessionStatusCompleted, completed.Status)

	_, err = f.sessions.Cancel(ctx, student.ID, session.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	mine, err := f.sessions.ListMine(ctx, tutor.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
}

func TestReviewService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	student := f.createUser(t, "student@example.com", "Student", identity.UserRoleStudent)
	tutor := f.createUser(t, "tutor@example.com", "Tutor", identity.UserRoleTutor)
	outsider := f.createUser(t, "outsider@example.com", "Outsider", identity.UserRoleStudent)
	subject := f.createSubject(t, "Chemistry", "chemistry")

	starts := time.Now().Add(time.Hour)
	session, err := f.sessions.Schedule(ctx, student.ID, ScheduleSessionInput{
		TutorID:    tutor.ID,
		SubjectID:  subject.ID,
		StartsAt:   starts,
		EndsAt:     starts.Add(time.Hour),
		HourlyRate: decimal.NewFromInt(35),
	})
	require.NoError(t, err)

	// scheduled sessions cannot be reviewed yet
	_, err = f.reviews.Create(ctx, student.ID, CreateReviewInput{SessionID: session.ID, Rating: 5})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SESSION_NOT_COMPLETED", domainErr.Code)

	_, err = f.sessions.Complete(ctx, student.ID, session.ID)
	require.NoError(t, err)

	_, err = f.reviews.Create(ctx, outsider.ID, CreateReviewInput{SessionID: session.ID, Rating: 5})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	review, err := f.reviews.Create(ctx, student.ID, CreateReviewInput{
		SessionID: session.ID,
		Rating:    5,
		Comment:   "Very clear explanations",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)

	// one review per author per session
	_, err = f.reviews.Create(ctx, student.ID, CreateReviewInput{SessionID: session.ID, Rating: 4})
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_REVIEWED", domainErr.Code)

	// the other participant still gets their own review
	_, err = f.reviews.Create(ctx, tutor.ID, CreateReviewInput{SessionID: session.ID, Rating: 4})
	require.NoError(t, err)

	reviews, err := f.reviews.ListBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestPlanService(t *testing.T) {
	ctx := context.Background()

	t.Run("generates and persists a plan", func(t *testing.T) {
		f := newFixture(t)
		student := f.createUser(t, "student@example.com", "Student", identity.UserRoleStudent)
		other := f.createUser(t, "other@example.com", "Other", identity.UserRoleStudent)
		subject := f.createSubject(t, "Spanish", "spanish")

		plan, err := f.plans.Generate(ctx, student.ID, GeneratePlanInput{
			SubjectID: subject.ID,
			Goal:      "Conversational fluency",
		})
		require.NoError(t, err)
		assert.Equal(t, "A steady ramp-up", plan.Summary)
		assert.Len(t, plan.Weeks, 2)

		// plans are private to their owner
		_, err = f.plans.Get(ctx, other.ID, plan.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)

		mine, err := f.plans.ListMine(ctx, student.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, plan.ID, mine[0].ID)
	})

	t.Run("generator failure persists nothing", func(t *testing.T) {
		f := newFixture(t)
		student := f.createUser(t, "student@example.com", "Student", identity.UserRoleStudent)
		subject := f.createSubject(t, "Spanish", "spanish")
		f.generator.err = errors.New("upstream timeout")
		f.generator.plan = nil

		_, err := f.plans.Generate(ctx, student.ID, GeneratePlanInput{
			SubjectID: subject.ID,
			Goal:      "Fluency",
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PLAN_GENERATION_FAILED", domainErr.Code)

		mine, err := f.plans.ListMine(ctx, student.ID)
		require.NoError(t, err)
		assert.Empty(t, mine)
	})
}
