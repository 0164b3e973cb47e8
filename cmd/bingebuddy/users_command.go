package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bingebuddy/bingebuddy/internal/notification"
	"github.com/bingebuddy/bingebuddy/internal/users"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users, tracked shows and alert preferences",
	}
	usersCmd.AddCommand(newUsersAddCommand(ctx))
	usersCmd.AddCommand(newUsersListCommand(ctx))
	usersCmd.AddCommand(newUsersTrackCommand(ctx, true))
	usersCmd.AddCommand(newUsersTrackCommand(ctx, false))
	usersCmd.AddCommand(newUsersProfileCommand(ctx))
	usersCmd.AddCommand(newUsersAlertsCommand(ctx))
	return usersCmd
}

func newUsersAddCommand(ctx *commandContext) *cobra.Command {
	var input users.CreateInput

	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			input.Email = args[0]
			user, err := a.users.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s)\n", user.ID, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Password, "password", "", "Optional password")
	cmd.Flags().StringVar(&input.Phone, "phone", "", "Phone number for SMS alerts")
	cmd.Flags().StringVar(&input.Carrier, "carrier", "", "SMS carrier ("+strings.Join(notification.Carriers(), ", ")+")")
	cmd.Flags().BoolVar(&input.EmailEnabled, "email-alerts", true, "Send alerts by email")
	cmd.Flags().BoolVar(&input.SMSEnabled, "sms-alerts", false, "Send alerts by SMS")
	return cmd
}

func newUsersListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			list, err := a.users.List(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, u := range list {
				tracked, err := a.users.ListTrackedShowIDs(cmd.Context(), u.ID)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					strconv.FormatInt(u.ID, 10),
					u.Email,
					dash(u.Phone),
					dash(u.Carrier),
					yesNo(u.EmailEnabled),
					yesNo(u.SMSEnabled),
					strconv.Itoa(len(tracked)),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Email", "Phone", "Carrier", "Email Alerts", "SMS Alerts", "Shows"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newUsersTrackCommand(ctx *commandContext, track bool) *cobra.Command {
	use, short := "track <email> <tmdb-id>", "Track a stored show for a user"
	if !track {
		use, short = "untrack <email> <tmdb-id>", "Stop tracking a show for a user"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmdbID, err := parseTmdbID(args[1])
			if err != nil {
				return err
			}
			a, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			user, err := a.users.GetByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			show, err := a.tv.GetShowByTmdbID(cmd.Context(), tmdbID)
			if err != nil {
				return fmt.Errorf("%w (add it with `bingebuddy shows add %d`)", err, tmdbID)
			}

			if track {
				err = a.users.Track(cmd.Context(), user.ID, show.ID)
			} else {
				err = a.users.Untrack(cmd.Context(), user.ID, show.ID)
			}
			if err != nil {
				return err
			}
			verb := "now tracks"
			if !track {
				verb = "no longer tracks"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", user.Email, verb, show.Name)
			return nil
		},
	}
}

func newUsersProfileCommand(ctx *commandContext) *cobra.Command {
	var input users.ProfileInput

	cmd := &cobra.Command{
		Use:   "profile <email>",
		Short: "Replace a user's phone, carrier and alert toggles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			user, err := a.users.GetByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if _, err := a.users.UpdateProfile(cmd.Context(), user.ID, input); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated profile for %s\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Phone, "phone", "", "Phone number for SMS alerts")
	cmd.Flags().StringVar(&input.Carrier, "carrier", "", "SMS carrier")
	cmd.Flags().BoolVar(&input.EmailEnabled, "email-alerts", true, "Send alerts by email")
	cmd.Flags().BoolVar(&input.SMSEnabled, "sms-alerts", false, "Send alerts by SMS")
	return cmd
}

func newUsersAlertsCommand(ctx *commandContext) *cobra.Command {
	var cfg users.AlertConfig
	var show bool

	cmd := &cobra.Command{
		Use:   "alerts <email>",
		Short: "Set or show where a user's alerts are delivered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			user, err := a.users.GetByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !show {
				cfg.UserID = user.ID
				if _, err := a.users.SaveAlertConfig(cmd.Context(), cfg); err != nil {
					return err
				}
			}

			r, err := a.users.ResolvePreferences(cmd.Context(), user.ID, a.defaults)
			if err != nil {
				return err
			}
			sms := "-"
			if addr, ok := notification.SMSAddress(r.Phone, r.Carrier); ok {
				sms = addr
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Channel", "Enabled", "Address"},
				[][]string{
					{"email", yesNo(r.EmailEnabled), dash(r.Email)},
					{"sms", yesNo(r.SMSEnabled), sms},
				},
				nil,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "Only show the resolved delivery targets")
	cmd.Flags().StringVar(&cfg.EmailTo, "email-to", "", "Send email alerts here instead of the account email")
	cmd.Flags().StringVar(&cfg.SMSTo, "sms-to", "", "Phone number for SMS alerts")
	cmd.Flags().StringVar(&cfg.Carrier, "carrier", "", "SMS carrier")
	cmd.Flags().BoolVar(&cfg.EmailEnabled, "email", true, "Enable email alerts")
	cmd.Flags().BoolVar(&cfg.SMSViaEmailEnabled, "sms", false, "Enable SMS alerts via carrier gateway")
	return cmd
}
