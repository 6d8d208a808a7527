// Package view projects task store snapshots into frames: plain view models for the
// dashboard, task list, calendar and analytics screens.
package view

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/godaily/godaily/internal/application/tasks"
	"github.com/godaily/godaily/internal/domain"
)

// GaugeArc is the stroke length of the full progress gauge.
const GaugeArc = 220.0

// Suggestion reasons and empty-state texts.
const (
	ReasonDueToday     = "Due today - high priority!"
	ReasonDueSoon      = "Due soon with high priority"
	ReasonDueThisWeek  = "Due this week"
	ReasonScheduled    = "Based on your schedule"
	NoPendingTitle     = "No pending tasks"
	NoPendingReason    = "Great job! All caught up."
	EmptyTaskList      = "No tasks yet. Add your first task above!"
	EmptyFilteredList  = "No tasks match the current filter."
	ActionDone         = "Done"
	ActionUndo         = "Undo"
	lastSyncTimeLayout = "03:04 PM"
)

// Filter selects which tasks the task list shows.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
)

// ParseFilter validates a filter name. An empty name means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCompleted, FilterPending:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want all, completed or pending)", s)
	}
}

func (f Filter) match(t domain.Task) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	default:
		return true
	}
}

// Options control how frames are built.
type Options struct {
	Filter   Filter
	Search   string
	Location *time.Location // calendar and sync time zone; UTC when nil
}

// Frame is one complete render of every screen.
type Frame struct {
	// Loading is set until the store has loaded; no other field is meaningful then.
	Loading    bool
	Now        time.Time
	LastSynced string

	Dashboard Dashboard
	TaskList  TaskList
	Calendar  Calendar
	Analytics Analytics
}

type Dashboard struct {
	Total       int
	Completed   int
	Pending     int
	Percentage  int
	GaugeOffset float64
	Suggestion  Suggestion
}

// Suggestion is the "what next" card. TaskID is empty when nothing is pending.
type Suggestion struct {
	TaskID string `json:"taskId,omitempty"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

type TaskList struct {
	Filter Filter
	Search string
	Rows   []TaskRow
	// Empty is the placeholder shown when Rows is empty.
	Empty string
}

type TaskRow struct {
	ID        string
	Title     string
	Completed bool
	Priority  domain.Priority
	DueDate   *time.Time
	Action    string
	Disabled  bool
}

type Calendar struct {
	WeekStart time.Time
	Days      [7]CalendarDay
}

type CalendarDay struct {
	Name  string
	Date  time.Time
	Tasks []CalendarTask
}

type CalendarTask struct {
	ID        string
	Title     string
	Completed bool
	Due       time.Time
}

type Analytics struct {
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
	Score      int `json:"score"`
}

// Build projects snap into a frame.
func Build(snap tasks.Snapshot, opts Options) Frame {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := snap.Now.In(loc)

	if !snap.Loaded {
		return Frame{Loading: true, Now: now}
	}

	f := Frame{
		Now:       now,
		Dashboard: buildDashboard(snap, now),
		TaskList:  buildTaskList(snap, opts),
		Calendar:  buildCalendar(snap.Tasks, now),
		Analytics: buildAnalytics(snap.Stats),
	}
	if !snap.LastSynced.IsZero() {
		f.LastSynced = snap.LastSynced.In(loc).Format(lastSyncTimeLayout)
	}
	return f
}

// GaugeOffset is the stroke offset that fills percentage of the gauge.
func GaugeOffset(percentage int) float64 {
	return GaugeArc - float64(percentage)/100*GaugeArc
}

// ProductivityScore weights the completion percentage into a 15..100 score.
func ProductivityScore(percentage int) int {
	return min(100, int(math.Round(float64(percentage)*0.85+15)))
}

// SuggestionReason explains why a task due at due is suggested at now.
func SuggestionReason(due, now time.Time) string {
	days := math.Ceil(due.Sub(now).Hours() / 24)
	switch {
	case days <= 1:
		return ReasonDueToday
	case days <= 3:
		return ReasonDueSoon
	case days <= 7:
		return ReasonDueThisWeek
	default:
		return ReasonScheduled
	}
}

func buildDashboard(snap tasks.Snapshot, now time.Time) Dashboard {
	d := Dashboard{
		Total:       snap.Stats.Total,
		Completed:   snap.Stats.Completed,
		Pending:     snap.Stats.Pending,
		Percentage:  snap.Stats.Percentage,
		GaugeOffset: GaugeOffset(snap.Stats.Percentage),
		Suggestion:  Suggestion{Title: NoPendingTitle, Reason: NoPendingReason},
	}
	if t := snap.Suggested; t != nil {
		d.Suggestion = Suggestion{
			TaskID: t.ID,
			Title:  t.Title,
			Reason: SuggestionReason(t.DueOr(now), now),
		}
	}
	return d
}

func buildTaskList(snap tasks.Snapshot, opts Options) TaskList {
	filter := opts.Filter
	if filter == "" {
		filter = FilterAll
	}
	query := strings.ToLower(strings.TrimSpace(opts.Search))

	list := TaskList{Filter: filter, Search: opts.Search}

	sorted := slices.Clone(snap.Tasks)
	slices.SortStableFunc(sorted, func(a, b domain.Task) int {
		if a.Completed != b.Completed {
			if a.Completed {
				return 1
			}
			return -1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	for _, t := range sorted {
		if !filter.match(t) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		row := TaskRow{
			ID:        t.ID,
			Title:     t.Title,
			Completed: t.Completed,
			Priority:  t.Priority,
			DueDate:   t.DueDate,
			Action:    ActionDone,
			Disabled:  snap.IsInFlight(t.ID),
		}
		if t.Completed {
			row.Action = ActionUndo
		}
		list.Rows = append(list.Rows, row)
	}

	switch {
	case len(snap.Tasks) == 0:
		list.Empty = EmptyTaskList
	case len(list.Rows) == 0:
		list.Empty = EmptyFilteredList
	}
	return list
}

// WeekStart returns midnight of the Monday of now's week, in now's location.
func WeekStart(now time.Time) time.Time {
	offset := (int(now.Weekday()) + 6) % 7
	y, m, d := now.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, now.Location())
}

func buildCalendar(list []domain.Task, now time.Time) Calendar {
	start := WeekStart(now)
	cal := Calendar{WeekStart: start}
	for i := range cal.Days {
		date := start.AddDate(0, 0, i)
		cal.Days[i] = CalendarDay{Name: date.Weekday().String()[:3], Date: date}
	}

	end := start.AddDate(0, 0, 7)
	for _, t := range list {
		if t.DueDate == nil {
			continue
		}
		due := t.DueDate.In(now.Location())
		if due.Before(start) || !due.Before(end) {
			continue
		}
		y, m, d := due.Date()
		day := int(time.Date(y, m, d, 0, 0, 0, 0, now.Location()).Sub(start).Hours()/24 + 0.5)
		cal.Days[day].Tasks = append(cal.Days[day].Tasks, CalendarTask{
			ID:        t.ID,
			Title:     t.Title,
			Completed: t.Completed,
			Due:       due,
		})
	}

	for i := range cal.Days {
		slices.SortStableFunc(cal.Days[i].Tasks, func(a, b CalendarTask) int {
			return a.Due.Compare(b.Due)
		})
	}
	return cal
}

func buildAnalytics(s tasks.Stats) Analytics {
	return Analytics{
		Total:      s.Total,
		Percentage: s.Percentage,
		Score:      ProductivityScore(s.Percentage),
	}
}
