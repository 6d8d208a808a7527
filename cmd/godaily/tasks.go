package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/godaily/godaily/internal/application/tasks"
	"github.com/godaily/godaily/internal/domain"
	"github.com/godaily/godaily/internal/report"
	"github.com/godaily/godaily/internal/view"
)

const shortIDLen = 8

var errAmbiguousID = errors.New("ambiguous task id")

func newAddCmd(opts *rootOptions) *cobra.Command {
	var priority, due string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ArbitraryArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return nil
			}

			draft := tasks.Draft{Title: title}
			if priority != "" {
				p, err := domain.NewPriority(priority)
				if err != nil {
					return err
				}
				draft.Priority = &p
			}
			if due != "" {
				d, err := time.ParseInLocation(time.DateOnly, due, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --due %q, want YYYY-MM-DD: %w", due, err)
				}
				draft.DueDate = &d
			}

			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			task, err := a.store.AddTask(ctx, draft)
			if err != nil {
				return a.explain(err)
			}
			fmt.Fprintf(a.out, "Added %q (%s)\n", task.Title, shortID(task.ID))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high (default medium)")
	cmd.Flags().StringVarP(&due, "due", "d", "", "due date YYYY-MM-DD (default in 7 days)")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var filter, search string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the task list",
		Args:    cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			f, err := view.ParseFilter(filter)
			if err != nil {
				return err
			}
			return a.show(cmd.Context(), view.Options{Filter: f, Search: search}, (*printer).taskList)
		}),
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "all, completed or pending")
	cmd.Flags().StringVarP(&search, "search", "s", "", "only titles containing this text")
	return cmd
}

func newToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle <id>",
		Aliases: []string{"done"},
		Short:   "Mark a task done, or undo it",
		Args:    cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			task, err := resolveTask(a.store.Tasks(), args[0])
			if err != nil {
				return err
			}
			if err := a.store.Toggle(ctx, task.ID); err != nil {
				return a.explain(err)
			}

			state := "done"
			if task.Completed {
				state = "pending"
			}
			fmt.Fprintf(a.out, "%q is %s\n", task.Title, state)
			return nil
		}),
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			task, err := resolveTask(a.store.Tasks(), args[0])
			if err != nil {
				return err
			}
			if err := a.store.Remove(ctx, task.ID); err != nil {
				return a.explain(err)
			}
			fmt.Fprintf(a.out, "Removed %q\n", task.Title)
			return nil
		}),
	}
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every task",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			cleared, err := a.store.ClearAll(ctx, a.confirm)
			if err != nil {
				return a.explain(err)
			}
			if cleared {
				fmt.Fprintln(a.out, "All tasks deleted")
			}
			return nil
		}),
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show progress and analytics",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			return a.show(cmd.Context(), view.Options{}, (*printer).analytics)
		}),
	}
}

func newSuggestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Show the task to do next",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			return a.show(cmd.Context(), view.Options{}, (*printer).suggestion)
		}),
	}
}

func newCalendarCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"week"},
		Short:   "Show this week's tasks by due day",
		Args:    cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			return a.show(cmd.Context(), view.Options{Location: time.Local}, (*printer).calendar)
		}),
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the starter tasks to an empty list",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			if n := len(a.store.Tasks()); n > 0 {
				return fmt.Errorf("seed needs an empty list, found %d tasks", n)
			}
			drafts := tasks.SampleTasks(time.Now())
			for _, d := range drafts {
				if _, err := a.store.AddTask(ctx, d); err != nil {
					return a.explain(err)
				}
			}
			fmt.Fprintf(a.out, "Added %d sample tasks\n", len(drafts))
			return nil
		}),
	}
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var out, format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export analytics and the task list as PDF, CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			f := report.FormatFromPath(out)
			if format != "" {
				var err error
				if f, err = report.ParseFormat(format); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			frame := view.Build(a.store.Snapshot(), view.Options{Location: time.Local})

			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create report: %w", err)
			}
			if err := report.Write(file, frame, f); err != nil {
				file.Close()
				return fmt.Errorf("failed to write report: %w", err)
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(a.out, "Wrote %s report to %s\n", f, out)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "godaily-report.pdf", "output file")
	cmd.Flags().StringVar(&format, "format", "", "pdf, csv or json (default from --out extension)")
	return cmd
}

// resolveTask finds a task by full id or by a unique id suffix. Ids are time-ordered
// UUIDs, so the random tail is what tells tasks apart.
func resolveTask(list []domain.Task, ref string) (domain.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Task{}, fmt.Errorf("%w: empty id", domain.ErrInvalidID)
	}

	var match []domain.Task
	for _, t := range list {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasSuffix(t.ID, ref) {
			match = append(match, t)
		}
	}

	switch len(match) {
	case 0:
		return domain.Task{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, ref)
	case 1:
		return match[0], nil
	default:
		return domain.Task{}, fmt.Errorf("%w: %s matches %d tasks", errAmbiguousID, ref, len(match))
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[len(id)-shortIDLen:]
}
