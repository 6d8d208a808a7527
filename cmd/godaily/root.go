package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/godaily/godaily/internal/config"
	"github.com/godaily/godaily/internal/infrastructure/observability"
)

type rootOptions struct {
	configPath string
	verbose    bool
	yes        bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	app       *app
	telemetry *observability.Telemetry
}

// execute runs the command line args and releases device storage afterwards.
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	opts := &rootOptions{in: in, out: out, errOut: errOut}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	err := cmd.ExecuteContext(ctx)
	if opts.app != nil {
		if cerr := opts.app.Close(); cerr != nil {
			slog.WarnContext(ctx, "failed to close storage", "error", cerr)
		}
	}
	if opts.telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if serr := opts.telemetry.Shutdown(shutdownCtx); serr != nil {
			slog.WarnContext(ctx, "failed to flush telemetry", "error", serr)
		}
	}
	return err
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "godaily",
		Short:        "GoDaily - plan today, finish today",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         opts.run(runDashboard),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(observability.NewLogger(opts.errOut, level, false))

			cfg, err := config.LoadClientConfig(opts.configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			telemetry, err := observability.Setup(ctx, observability.Config{
				Enabled:     cfg.Observability.OTelEnabled,
				ServiceName: cfg.Observability.ServiceName,
				Output:      opts.errOut,
				Level:       level,
			})
			if err != nil {
				return fmt.Errorf("failed to init observability: %w", err)
			}
			opts.telemetry = telemetry
			slog.SetDefault(telemetry.Logger)

			a, err := openApp(ctx, cfg, opts.in, opts.out)
			if err != nil {
				return err
			}
			a.yes = opts.yes
			opts.app = a
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default <user config dir>/godaily/config.toml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "answer yes to every confirmation")

	cmd.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newToggleCmd(opts),
		newRemoveCmd(opts),
		newClearCmd(opts),
		newStatsCmd(opts),
		newSuggestCmd(opts),
		newCalendarCmd(opts),
		newSeedCmd(opts),
		newReportCmd(opts),
		newRegisterCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newThemeCmd(opts),
		newProfileCmd(opts),
		newResetCmd(opts),
	)
	return cmd
}

// run adapts a handler that needs the opened app to cobra's RunE.
func (o *rootOptions) run(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if o.app == nil {
			return fmt.Errorf("client not initialised")
		}
		return fn(cmd, o.app, args)
	}
}
