package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/godaily/godaily/internal/settings"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account on the GoDaily server",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, a *app, args []string) error {
			adapter, err := a.remoteAdapter()
			if err != nil {
				return err
			}
			if password == "" {
				if password, err = a.readLine("Password"); err != nil {
					return err
				}
			}
			if err := adapter.Register(cmd.Context(), args[0], password); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered %s, now run \"godaily login %s\"\n", args[0], args[0])
			return nil
		}),
	}
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	return cmd
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in to the GoDaily server",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, a *app, args []string) error {
			adapter, err := a.remoteAdapter()
			if err != nil {
				return err
			}
			if password == "" {
				if password, err = a.readLine("Password"); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			if err := adapter.Login(ctx, args[0], password); err != nil {
				return err
			}
			if err := a.settings.SetProfileEmail(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s\n", args[0])
			return nil
		}),
	}
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the server session and profile",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			if !a.confirm(settings.LogoutPrompt) {
				return nil
			}
			if err := a.settings.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		}),
	}
}

func newThemeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show or change the colour theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark"},
		RunE: opts.run(func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				theme, err := a.settings.Theme(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, theme)
				return nil
			}

			theme, err := a.settings.SetTheme(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Theme set to %s\n", theme)
			return nil
		}),
	}
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the profile",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("name") {
				if err := a.settings.SetProfileName(ctx, name); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("email") {
				if err := a.settings.SetProfileEmail(ctx, email); err != nil {
					return err
				}
			}

			profile, err := a.settings.Profile(ctx)
			if err != nil {
				return err
			}
			pr, err := a.printer(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, pr.profile(profile))
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "display email")
	return cmd
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete all tasks, settings and profile data on this device",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			done, err := a.settings.Reset(cmd.Context(), a.confirm)
			if err != nil {
				return err
			}
			if done {
				fmt.Fprintln(a.out, "App reset")
			}
			return nil
		}),
	}
}
