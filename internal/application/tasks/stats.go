package tasks

import (
	"math"
	"time"

	"github.com/godaily/godaily/internal/domain"
)

// Stats is the derived summary of a collection. It is never cached.
type Stats struct {
	Total      int
	Completed  int
	Pending    int
	Percentage int // rounded completion percentage, 0 when Total is 0
}

// ComputeStats counts tasks. Completed + Pending always equals Total.
func ComputeStats(tasks []domain.Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed

	if s.Total > 0 {
		s.Percentage = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}

	return s
}

// Suggest picks the incomplete task with the earliest due date. Tasks without a due
// date are treated as due domain.UnscheduledDueIn after now. Equal due dates are
// ranked by priority weight; remaining ties keep collection order.
// Returns false when no task is incomplete.
func Suggest(tasks []domain.Task, now time.Time) (domain.Task, bool) {
	var (
		best    domain.Task
		bestDue time.Time
		found   bool
	)

	for _, t := range tasks {
		if t.Completed {
			continue
		}

		due := t.DueOr(now)
		if !found || due.Before(bestDue) ||
			(due.Equal(bestDue) && t.Priority.Weight() > best.Priority.Weight()) {
			best, bestDue, found = t, due, true
		}
	}

	return best, found
}
