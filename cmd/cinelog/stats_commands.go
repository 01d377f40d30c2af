package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"cinelog/internal/movies"
	"cinelog/internal/skins"
	"cinelog/internal/stats"
	"cinelog/internal/workspace"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Chart data over watched movies",
	}
	statsCmd.AddCommand(newGenreStatsCommand(ctx))
	statsCmd.AddCommand(newMonthlyStatsCommand(ctx))
	return statsCmd
}

func newGenreStatsCommand(ctx *commandContext) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "genres",
		Short: "Genre distribution of watched movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				list, err := ws.Engine.List(c, movies.StatusWatched)
				if err != nil {
					return err
				}
				m, err := ws.Genres.Map(c)
				if err != nil {
					return err
				}
				dist := stats.GenreDistribution(list, ws.Genres.Resolver(m), ws.Genres.Fallback(), top)
				if ctx.jsonOutput() {
					return writeJSON(cmd, dist)
				}
				if dist.Total == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No watched movies")
					return nil
				}
				rows := make([][]string, 0, len(dist.Data))
				for _, s := range dist.Data {
					pct := float64(s.Value) * 100 / float64(dist.Total)
					rows = append(rows, []string{s.Name, strconv.Itoa(s.Value), fmt.Sprintf("%.1f%%", pct)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Genre", "Count", "Share"}, rows, 1, 2))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&top, "top", stats.DefaultTopGenres, "Named genres before the remainder bucket")
	return cmd
}

func newMonthlyStatsCommand(ctx *commandContext) *cobra.Command {
	var months int
	var year bool
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Movies watched per month",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				list, err := ws.Engine.List(c, movies.StatusWatched)
				if err != nil {
					return err
				}
				now := time.Now()
				series := stats.MonthlyWatched(list, now, months)
				if year {
					series = stats.YearMonths(list, now)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, series)
				}
				if len(series) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No watched movies")
					return nil
				}
				rows := make([][]string, 0, len(series))
				for _, p := range series {
					rows = append(rows, []string{p.Month, strconv.Itoa(p.Count)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Month", "Watched"}, rows, 1))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&months, "months", stats.DefaultMonths, "Number of months ending with the current one")
	cmd.Flags().BoolVar(&year, "year", false, "Show January to December of the current year")
	return cmd
}

func newSkinsCommand(ctx *commandContext) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:         "skins",
		Short:       "List the skin catalog",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			list := skins.All()
			if target != "" {
				if !skins.ValidTarget(target) {
					return fmt.Errorf("unknown skin target %q (want ticket or watched)", target)
				}
				list = skins.ByTargetSorted(skins.Target(target))
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, list)
			}
			rows := make([][]string, 0, len(list))
			for _, s := range list {
				rows = append(rows, []string{s.ID, s.Emoji + " " + s.Name, string(s.Target), string(s.Tier), strconv.Itoa(s.Price)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Target", "Tier", "Price"}, rows, 4))
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Only show skins for ticket or watched, sorted by tier and price")
	return cmd
}

func newGenresCommand(ctx *commandContext) *cobra.Command {
	genresCmd := &cobra.Command{
		Use:   "genres",
		Short: "Genre name cache",
	}
	genresCmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Fetch the genre list from TMDB again",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				if ws.TMDB == nil {
					return fmt.Errorf("tmdb credentials not configured; set tmdb.token or TMDB_TOKEN")
				}
				m, err := ws.Genres.Refresh(c)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, m)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cached %d genres (%s)\n", len(m), ws.TMDB.Language())
				return nil
			})
		},
	})
	return genresCmd
}
