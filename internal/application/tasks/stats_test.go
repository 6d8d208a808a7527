package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godaily/godaily/internal/domain"
)

func at(t time.Time) *time.Time { return &t }

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name  string
		tasks []domain.Task
		want  Stats
	}{
		{"empty", nil, Stats{}},
		{"all pending", []domain.Task{{}, {}}, Stats{Total: 2, Pending: 2}},
		{"all done", []domain.Task{{Completed: true}}, Stats{Total: 1, Completed: 1, Percentage: 100}},
		{"rounds half up", []domain.Task{{Completed: true}, {}, {}, {}, {}, {}, {}, {}}, Stats{Total: 8, Completed: 1, Pending: 7, Percentage: 13}},
		{"two thirds", []domain.Task{{Completed: true}, {Completed: true}, {}}, Stats{Total: 3, Completed: 2, Pending: 1, Percentage: 67}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeStats(tc.tasks)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got.Total, got.Completed+got.Pending)
			assert.GreaterOrEqual(t, got.Percentage, 0)
			assert.LessOrEqual(t, got.Percentage, 100)
		})
	}
}

func TestSuggest_TieBrokenByPriority(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	due := now.Add(24 * time.Hour)

	got, ok := Suggest([]domain.Task{
		{ID: "low", Priority: domain.PriorityLow, DueDate: at(due)},
		{ID: "high", Priority: domain.PriorityHigh, DueDate: at(due)},
	}, now)

	require.True(t, ok)
	assert.Equal(t, "high", got.ID)
}

func TestSuggest_EarliestDueWins(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	got, ok := Suggest([]domain.Task{
		{ID: "later-high", Priority: domain.PriorityHigh, DueDate: at(now.Add(72 * time.Hour))},
		{ID: "sooner-low", Priority: domain.PriorityLow, DueDate: at(now.Add(24 * time.Hour))},
	}, now)

	require.True(t, ok)
	assert.Equal(t, "sooner-low", got.ID)
}

func TestSuggest_SkipsCompletedAndDefaultsMissingDueDate(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	got, ok := Suggest([]domain.Task{
		{ID: "done", Completed: true, DueDate: at(now)},
		{ID: "unscheduled", Priority: domain.PriorityHigh},
		{ID: "in-29-days", Priority: domain.PriorityLow, DueDate: at(now.Add(29 * 24 * time.Hour))},
	}, now)

	require.True(t, ok)
	assert.Equal(t, "in-29-days", got.ID)
}

func TestSuggest_FullTieKeepsCollectionOrder(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	got, ok := Suggest([]domain.Task{
		{ID: "first", Priority: domain.PriorityMedium},
		{ID: "second", Priority: domain.PriorityMedium},
	}, now)

	require.True(t, ok)
	assert.Equal(t, "first", got.ID)
}

func TestSuggest_None(t *testing.T) {
	now := time.Now()

	_, ok := Suggest(nil, now)
	assert.False(t, ok)

	_, ok = Suggest([]domain.Task{{Completed: true}, {Completed: true}}, now)
	assert.False(t, ok)
}

func TestSampleTasks(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	samples := SampleTasks(now)

	require.Len(t, samples, 5)
	for _, s := range samples {
		assert.NotEmpty(t, s.Title)
		require.NotNil(t, s.DueDate)
		assert.True(t, s.DueDate.After(now))
	}
	assert.Equal(t, "Team standup meeting", samples[2].Title)
}
