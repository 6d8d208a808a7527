package tasks

import (
	"time"

	"github.com/godaily/godaily/internal/domain"
	"github.com/godaily/godaily/internal/ptr"
)

const day = 24 * time.Hour

// SampleTasks returns the starter tasks offered to a new, empty workspace.
// Due dates are relative to now.
func SampleTasks(now time.Time) []Draft {
	now = now.UTC()
	return []Draft{
		{Title: "Complete project documentation", Priority: ptr.To(domain.PriorityHigh), DueDate: ptr.To(now.Add(2 * day))},
		{Title: "Review pull requests", Priority: ptr.To(domain.PriorityMedium), DueDate: ptr.To(now.Add(3 * day))},
		{Title: "Team standup meeting", Priority: ptr.To(domain.PriorityHigh), DueDate: ptr.To(now.Add(1 * day))},
		{Title: "Update weekly report", Priority: ptr.To(domain.PriorityLow), DueDate: ptr.To(now.Add(5 * day))},
		{Title: "Research new features", Priority: ptr.To(domain.PriorityMedium), DueDate: ptr.To(now.Add(7 * day))},
	}
}
