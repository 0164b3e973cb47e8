package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bingebuddy/bingebuddy/internal/library/tv"
	"github.com/bingebuddy/bingebuddy/internal/metadata/tmdb"
)

func newShowsCommand(ctx *commandContext) *cobra.Command {
	showsCmd := &cobra.Command{
		Use:   "shows",
		Short: "Search, add and inspect shows",
	}
	showsCmd.AddCommand(newShowsListCommand(ctx))
	showsCmd.AddCommand(newShowsSearchCommand(ctx))
	showsCmd.AddCommand(newShowsAddCommand(ctx))
	showsCmd.AddCommand(newShowsSyncCommand(ctx))
	showsCmd.AddCommand(newShowsEpisodesCommand(ctx))
	return showsCmd
}

func newShowsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored shows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			shows, err := a.tv.ListShows(cmd.Context())
			if err != nil {
				return err
			}
			if len(shows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No shows yet. Add one with `bingebuddy shows add <tmdb-id>`.")
				return nil
			}
			rows := make([][]string, 0, len(shows))
			for _, s := range shows {
				rows = append(rows, []string{
					strconv.FormatInt(s.ID, 10),
					strconv.Itoa(s.TmdbID),
					s.Name,
					s.Status,
					dash(tv.FormatDate(s.NextAirDate)),
					dash(tv.FormatDate(s.AlertedNextAirDate)),
					dash(strings.Join(s.WatchProviders, ", ")),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "TMDB", "Name", "Status", "Next Air", "Alerted", "Providers"},
				rows,
				[]columnAlignment{alignRight, alignRight},
			))
			return nil
		},
	}
}

func newShowsSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog for shows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			if !a.catalog.IsConfigured() {
				return tmdb.ErrAPIKeyMissing
			}
			results, err := a.catalog.SearchShows(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{strconv.Itoa(r.TmdbID), r.Name, dash(r.FirstAirDate)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"TMDB", "Name", "First Aired"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}
}

func newShowsAddCommand(ctx *commandContext) *cobra.Command {
	var userEmail string

	cmd := &cobra.Command{
		Use:   "add <tmdb-id>",
		Short: "Fetch a show from the catalog and optionally track it for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmdbID, err := parseTmdbID(args[0])
			if err != nil {
				return err
			}
			a, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			res, err := syncShow(cmd.Context(), a, tmdbID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %d episodes in %d seasons\n", res.Name, res.EpisodesSynced, res.SeasonsSynced)

			if userEmail == "" {
				return nil
			}
			user, err := a.users.GetByEmail(cmd.Context(), userEmail)
			if err != nil {
				return err
			}
			if err := a.users.Track(cmd.Context(), user.ID, res.ShowID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now tracks %s\n", user.Email, res.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userEmail, "user", "u", "", "Track the show for this user")
	return cmd
}

func newShowsSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync [tmdb-id...]",
		Short: "Re-sync shows from the catalog without sending alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}

			ids := make([]int, 0, len(args))
			for _, arg := range args {
				id, err := parseTmdbID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			if len(ids) == 0 {
				shows, err := a.tv.ListShows(cmd.Context())
				if err != nil {
					return err
				}
				for _, s := range shows {
					ids = append(ids, s.TmdbID)
				}
			}

			failed := 0
			for _, id := range ids {
				res, err := syncShow(cmd.Context(), a, id)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "tmdb %d: %v\n", id, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: next air date %s (%s)\n", res.Name, dash(tv.FormatDate(res.Current)), res.Transition)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d shows failed to sync", failed, len(ids))
			}
			return nil
		},
	}
}

func newShowsEpisodesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "episodes <tmdb-id>",
		Short: "List a stored show's episodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmdbID, err := parseTmdbID(args[0])
			if err != nil {
				return err
			}
			a, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			show, err := a.tv.GetShowByTmdbID(cmd.Context(), tmdbID)
			if err != nil {
				return err
			}
			episodes, err := a.tv.ListEpisodes(cmd.Context(), show.ID)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(episodes))
			for _, ep := range episodes {
				rows = append(rows, []string{
					fmt.Sprintf("S%02dE%02d", ep.SeasonNumber, ep.EpisodeNumber),
					dash(ep.Name),
					dash(tv.FormatDate(ep.AirDate)),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), show.Name)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Episode", "Name", "Air Date"}, rows, nil))
			return nil
		},
	}
}

func syncShow(ctx context.Context, a *app, tmdbID int) (*tv.SyncResult, error) {
	if !a.catalog.IsConfigured() {
		return nil, tmdb.ErrAPIKeyMissing
	}
	return a.tv.SyncShow(ctx, a.catalog, tmdbID)
}

func parseTmdbID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid TMDB id %q", s)
	}
	return id, nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
