package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/godaily/godaily/internal/domain"
	"github.com/godaily/godaily/internal/settings"
	"github.com/godaily/godaily/internal/view"
)

const (
	barWidth       = 24
	calendarColumn = 18
	dueLayout      = "Mon Jan 2"
)

type palette struct {
	accent, muted, done, high, medium, low lipgloss.Color
}

var (
	lightPalette = palette{
		accent: "#4F46E5", muted: "#6B7280", done: "#16A34A",
		high: "#DC2626", medium: "#D97706", low: "#2563EB",
	}
	darkPalette = palette{
		accent: "#A5B4FC", muted: "#9CA3AF", done: "#4ADE80",
		high: "#F87171", medium: "#FBBF24", low: "#60A5FA",
	}
)

// printer renders view frames as styled terminal text.
type printer struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	done     lipgloss.Style
	box      lipgloss.Style
	column   lipgloss.Style
	priority map[domain.Priority]lipgloss.Style
}

func newPrinter(w io.Writer, theme domain.Theme) *printer {
	r := lipgloss.NewRenderer(w)
	pal := lightPalette
	if theme == domain.ThemeDark {
		pal = darkPalette
		r.SetHasDarkBackground(true)
	}

	return &printer{
		title:  r.NewStyle().Bold(true).Foreground(pal.accent),
		muted:  r.NewStyle().Foreground(pal.muted),
		done:   r.NewStyle().Foreground(pal.done).Strikethrough(true),
		box:    r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(pal.accent).Padding(0, 1),
		column: r.NewStyle().Width(calendarColumn).PaddingRight(1),
		priority: map[domain.Priority]lipgloss.Style{
			domain.PriorityHigh:   r.NewStyle().Bold(true).Foreground(pal.high),
			domain.PriorityMedium: r.NewStyle().Foreground(pal.medium),
			domain.PriorityLow:    r.NewStyle().Foreground(pal.low),
		},
	}
}

func (a *app) printer(ctx context.Context) (*printer, error) {
	theme, err := a.settings.Theme(ctx)
	if err != nil {
		return nil, err
	}
	return newPrinter(a.out, theme), nil
}

// show loads the store through a view renderer and prints one section of the
// resulting frame.
func (a *app) show(ctx context.Context, opts view.Options, section func(*printer, view.Frame) string) error {
	pr, err := a.printer(ctx)
	if err != nil {
		return err
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	var frame view.Frame
	r := view.NewRenderer(view.SinkFunc(func(f view.Frame) { frame = f }), opts)
	r.Attach(a.store)
	defer r.Detach()

	if err := a.load(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, section(pr, frame))
	return nil
}

func runDashboard(cmd *cobra.Command, a *app, _ []string) error {
	return a.show(cmd.Context(), view.Options{}, func(pr *printer, f view.Frame) string {
		return lipgloss.JoinVertical(lipgloss.Left, pr.dashboard(f), "", pr.taskList(f))
	})
}

func (p *printer) loading() string {
	return p.muted.Render("Loading...")
}

func (p *printer) dashboard(f view.Frame) string {
	if f.Loading {
		return p.loading()
	}
	d := f.Dashboard

	header := p.title.Render("GoDaily")
	if f.LastSynced != "" {
		header += p.muted.Render("  synced " + f.LastSynced)
	}
	progress := fmt.Sprintf("%s %3d%%  %d/%d done, %d pending",
		bar(d.Percentage, barWidth), d.Percentage, d.Completed, d.Total, d.Pending)

	return p.box.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		progress,
		"",
		p.suggestion(f),
	))
}

func (p *printer) suggestion(f view.Frame) string {
	if f.Loading {
		return p.loading()
	}
	s := f.Dashboard.Suggestion
	line := "Next: " + p.title.Render(s.Title)
	if s.TaskID != "" {
		line += p.muted.Render(" (" + shortID(s.TaskID) + ")")
	}
	return line + "\n" + p.muted.Render(s.Reason)
}

func (p *printer) taskList(f view.Frame) string {
	if f.Loading {
		return p.loading()
	}
	list := f.TaskList
	if len(list.Rows) == 0 {
		return p.muted.Render(list.Empty)
	}

	lines := make([]string, 0, len(list.Rows))
	for _, row := range list.Rows {
		lines = append(lines, p.row(row))
	}
	return strings.Join(lines, "\n")
}

func (p *printer) row(row view.TaskRow) string {
	check, title := "[ ]", row.Title
	if row.Completed {
		check, title = "[x]", p.done.Render(row.Title)
	}

	prio := p.priority[row.Priority].Render(fmt.Sprintf("%-6s", row.Priority))
	due := "no due date"
	if row.DueDate != nil {
		due = "due " + row.DueDate.Local().Format(dueLayout)
	}

	line := fmt.Sprintf("%s %s  %s  %s  %s", p.muted.Render(shortID(row.ID)), check, prio, p.muted.Render(due), title)
	if row.Disabled {
		line += p.muted.Render(" (syncing)")
	}
	return line
}

func (p *printer) calendar(f view.Frame) string {
	if f.Loading {
		return p.loading()
	}

	cols := make([]string, 0, len(f.Calendar.Days))
	for _, day := range f.Calendar.Days {
		lines := []string{p.title.Render(day.Name + " " + day.Date.Format("Jan 2"))}
		for _, t := range day.Tasks {
			text := truncate(t.Title, calendarColumn-3)
			if t.Completed {
				text = p.done.Render(text)
			}
			lines = append(lines, "- "+text)
		}
		if len(day.Tasks) == 0 {
			lines = append(lines, p.muted.Render("-"))
		}
		cols = append(cols, p.column.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (p *printer) analytics(f view.Frame) string {
	if f.Loading {
		return p.loading()
	}
	a := f.Analytics
	return p.box.Render(lipgloss.JoinVertical(lipgloss.Left,
		p.title.Render("Analytics"),
		fmt.Sprintf("Total tasks        %d", a.Total),
		fmt.Sprintf("Completion rate    %d%%", a.Percentage),
		fmt.Sprintf("Productivity score %d", a.Score),
		bar(a.Score, barWidth),
	))
}

func (p *printer) profile(pr settings.Profile) string {
	return p.box.Render(lipgloss.JoinHorizontal(lipgloss.Center,
		p.title.Render("("+pr.Initials()+")"),
		"  ",
		lipgloss.JoinVertical(lipgloss.Left, pr.Name, p.muted.Render(pr.Email)),
	))
}

// bar draws a horizontal gauge filled to percentage.
func bar(percentage, width int) string {
	percentage = max(0, min(100, percentage))
	filled := percentage * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
