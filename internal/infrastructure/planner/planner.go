package planner

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tutorlink/backend/internal/domain/tutoring"
)

// HeuristicGenerator is the built-in study plan generator. It produces a
// structured ramp-up plan from the subject and goal without calling an
// external model, so the service works out of the box; deployments with an
// AI backend swap in their own tutoring.PlanGenerator.
type HeuristicGenerator struct {
	logger *zap.Logger
}

var _ tutoring.PlanGenerator = (*HeuristicGenerator)(nil)

// NewHeuristicGenerator creates the built-in generator
func NewHeuristicGenerator(log *zap.Logger) *HeuristicGenerator {
	return &HeuristicGenerator{logger: log}
}

// phases shape the arc of any multi-week plan: grounding first, then
// practice, then consolidation
var phases = []struct {
	focus  string
	topics []string
	hours  int
}{
	{"Fundamentals review", []string{"core concepts", "terminology", "baseline assessment"}, 4},
	{"Guided practice", []string{"worked examples", "common pitfalls", "incremental exercises"}, 5},
	{"Independent problem solving", []string{"mixed exercises", "timed practice", "self-review"}, 6},
	{"Consolidation", []string{"weak-area drills", "mock assessment", "revision notes"}, 5},
}

// Generate builds a week-by-week plan. It never fails for valid input;
// the context is accepted to satisfy the generator contract.
func (g *HeuristicGenerator) Generate(_ context.Context, subject, goal string, weeks int) (*tutoring.GeneratedPlan, error) {
	if weeks <= 0 {
		return nil, fmt.Errorf("plan length must be positive, got %d", weeks)
	}

	plan := &tutoring.GeneratedPlan{
		Summary: fmt.Sprintf("%d-week %s plan working toward: %s", weeks, subject, strings.TrimSpace(goal)),
		Weeks:   make([]tutoring.PlanWeek, weeks),
	}

	for i := 0; i < weeks; i++ {
		// Stretch the phase arc across however many weeks were requested
		phase := phases[i*len(phases)/weeks]
		plan.Weeks[i] = tutoring.PlanWeek{
			Week:   i + 1,
			Focus:  fmt.Sprintf("%s: %s", subject, phase.focus),
			Topics: phase.topics,
			Hours:  phase.hours,
		}
	}

	if g.logger != nil {
		g.logger.Debug("generated study plan",
			zap.String("subject", subject),
			zap.Int("weeks", weeks))
	}
	return plan, nil
}
