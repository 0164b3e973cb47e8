package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bingebuddy/bingebuddy/internal/history"
	"github.com/bingebuddy/bingebuddy/internal/library/tv"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var rating int
	var notes string
	var at string

	cmd := &cobra.Command{
		Use:   "watch <email> <tmdb-id> <season> <episode>",
		Short: "Record that a user watched an episode",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmdbID, err := parseTmdbID(args[1])
			if err != nil {
				return err
			}
			season, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid season %q", args[2])
			}
			episode, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("invalid episode %q", args[3])
			}

			input := history.MarkInput{Notes: notes}
			if cmd.Flags().Changed("rating") {
				input.Rating = &rating
			}
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at %q: use RFC 3339, e.g. 2024-06-02T20:00:00-06:00", at)
				}
				input.WatchedAt = t
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
				return err
			}
			ep, err := a.tv.GetEpisodeByNumber(cmd.Context(), show.ID, season, episode)
			if err != nil {
				return err
			}

			input.UserID = user.ID
			input.EpisodeID = ep.ID
			if _, err := a.history.MarkWatched(cmd.Context(), input); err != nil {
				return err
			}

			progress, err := a.history.Progress(cmd.Context(), user.ID, show.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s S%02dE%02d watched (%d/%d, %.0f%%)\n",
				show.Name, ep.SeasonNumber, ep.EpisodeNumber, progress.Watched, progress.Total, progress.Percent())
			return nil
		},
	}

	cmd.Flags().IntVar(&rating, "rating", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&at, "at", "", "When it was watched (RFC 3339, default now)")
	return cmd
}

func newNextCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "next <email> <tmdb-id>",
		Short: "Show the next unwatched episode of a show for a user",
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
				return err
			}

			ep, err := a.tv.NextUnwatched(cmd.Context(), user.ID, show.ID)
			if errors.Is(err, tv.ErrAllWatched) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: all caught up\n", show.Name)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s S%02dE%02d %q airs %s\n",
				show.Name, ep.SeasonNumber, ep.EpisodeNumber, dash(ep.Name), dash(tv.FormatDate(ep.AirDate)))
			return nil
		},
	}
}
