package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHeuristicGeneratorShape(t *testing.T) {
	g := NewHeuristicGenerator(zap.NewNop())

	for _, weeks := range []int{1, 4, 12} {
		plan, err := g.Generate(context.Background(), "Algebra", "pass the midterm", weeks)
		require.NoError(t, err)
		require.Len(t, plan.Weeks, weeks)
		assert.Contains(t, plan.Summary, "Algebra")
		assert.Contains(t, plan.Summary, "pass the midterm")

		for i, week := range plan.Weeks {
			assert.Equal(t, i+1, week.Week)
			assert.NotEmpty(t, week.Focus)
			assert.NotEmpty(t, week.Topics)
			assert.Positive(t, week.Hours)
		}
	}
}

func TestHeuristicGeneratorRejectsNonPositiveLength(t *testing.T) {
	g := NewHeuristicGenerator(nil)

	_, err := g.Generate(context.Background(), "Algebra", "anything", 0)
	assert.Error(t, err)
}
