package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cinelog/internal/badges"
	"cinelog/internal/movies"
	"cinelog/internal/workspace"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter movies.Status
			if strings.TrimSpace(status) != "" {
				parsed, ok := movies.ParseStatus(status)
				if !ok {
					return fmt.Errorf("unknown status %q (want watchlist or watched)", status)
				}
				filter = parsed
			}
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				list, err := ws.Engine.List(c, filter)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, list)
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No movies")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(movieHeaders, movieRows(list), 0, 3))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "Only list watchlist or watched movies")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <movie-id>",
		Short: "Show one movie with its review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				rec, ok, err := ws.Engine.Get(c, id)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("movie %d is not in the collection", id)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, rec)
				}
				genreNames := make([]string, 0, len(rec.Genres))
				if m, err := ws.Genres.Map(c); err == nil {
					resolve := ws.Genres.Resolver(m)
					for _, g := range rec.Genres {
						genreNames = append(genreNames, resolve(g))
					}
				}
				rows := [][]string{
					{"ID", strconv.FormatInt(rec.MovieID, 10)},
					{"Title", rec.Title},
					{"Status", string(rec.Status)},
					{"Release", derefString(rec.ReleaseDate)},
					{"Genres", strings.Join(genreNames, ", ")},
					{"Added", dateOnly(rec.AddedAt)},
					{"Watched", dateOnly(derefString(rec.WatchedAt))},
					{"Rating", formatRating(rec.Rating)},
					{"Tags", strings.Join(rec.Tags, ", ")},
					{"Review", rec.Review},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows))
				return nil
			})
		},
	}
}

func newBadgesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "List badges and which are unlocked",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				held, err := ws.Badges.Load(c)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, held)
				}
				unlocked := make(map[string]string, len(held))
				for _, b := range held {
					unlocked[b.ID] = b.UnlockedAt
				}
				colorize := shouldColorize(cmd.OutOrStdout())
				rows := make([][]string, 0, len(badges.Definitions()))
				for _, def := range badges.Definitions() {
					at := unlocked[def.ID]
					if at == "" {
						at = paint("locked", ansiDim, colorize)
					}
					rows = append(rows, []string{def.Emoji + " " + def.Name, string(def.Tier), strconv.Itoa(def.Threshold), at})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Badge", "Tier", "Watched", "Unlocked"}, rows, 2))
				return nil
			})
		},
	}
}

func newPointsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "points",
		Short: "Show reward points and collection counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				summary, err := ws.Engine.Summary(c)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, summary)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Points:    %d\n", summary.Points)
				fmt.Fprintf(out, "Watched:   %d\n", summary.Watched)
				fmt.Fprintf(out, "Watchlist: %d\n", summary.Watchlist)
				fmt.Fprintf(out, "Badges:    %d/%d\n", len(summary.Badges), len(badges.Definitions()))
				return nil
			})
		},
	}
}
