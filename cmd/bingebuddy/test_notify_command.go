package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bingebuddy/bingebuddy/internal/notification"
	"github.com/bingebuddy/bingebuddy/internal/notification/types"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	var userEmail string

	cmd := &cobra.Command{
		Use:         "test-notify",
		Short:       "Send a test alert to the default recipients or a user",
		Args:        cobra.NoArgs,
		Annotations: needsFullConfig(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}

			to := types.Recipients{
				Email:        a.defaults.Email,
				EmailEnabled: true,
				Phone:        a.defaults.SMSTo,
				Carrier:      a.defaults.Carrier,
				SMSEnabled:   a.defaults.SMSTo != "",
			}
			if userEmail != "" {
				user, err := a.users.GetByEmail(cmd.Context(), userEmail)
				if err != nil {
					return err
				}
				if to, err = a.users.ResolvePreferences(cmd.Context(), user.ID, a.defaults); err != nil {
					return err
				}
			}

			dispatcher := notification.NewDispatcher(a.mailer, a.logger)
			result := dispatcher.Dispatch(cmd.Context(), types.Message{
				Subject: "BingeBuddy test notification",
				Text:    "This is a test notification from BingeBuddy.",
				SMS:     "BingeBuddy test",
			}, to)

			out := cmd.OutOrStdout()
			for _, ch := range result.Channels {
				switch {
				case !ch.Attempted:
					fmt.Fprintf(out, "%s: skipped (%s)\n", ch.Channel, ch.SkipReason)
				case ch.Err != nil:
					fmt.Fprintf(out, "%s: failed to %s: %v\n", ch.Channel, ch.Address, ch.Err)
				default:
					fmt.Fprintf(out, "%s: sent to %s\n", ch.Channel, ch.Address)
				}
			}
			if result.Failed() > 0 {
				return fmt.Errorf("%d channel(s) failed", result.Failed())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userEmail, "user", "u", "", "Send to this user's resolved targets")
	return cmd
}
