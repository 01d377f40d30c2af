package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cinelog/internal/tmdb"
	"cinelog/internal/workspace"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search TMDB for movies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withCatalog(cmd, func(c context.Context, ws *workspace.Workspace) (tmdb.Page, error) {
				return ws.TMDB.SearchMovies(c, query, page)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Result page")
	return cmd
}

func newTrendingCommand(ctx *commandContext) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "trending",
		Short: "List this week's trending movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(cmd, func(c context.Context, ws *workspace.Workspace) (tmdb.Page, error) {
				return ws.TMDB.TrendingMovies(c, page)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Result page")
	return cmd
}

// withCatalog runs a TMDB listing and marks movies already in the collection.
func (c *commandContext) withCatalog(cmd *cobra.Command, fetch func(context.Context, *workspace.Workspace) (tmdb.Page, error)) error {
	return c.withWorkspace(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
		if ws.TMDB == nil {
			return fmt.Errorf("tmdb credentials not configured; set tmdb.token or TMDB_TOKEN")
		}
		page, err := fetch(ctx, ws)
		if err != nil {
			return err
		}
		if c.jsonOutput() {
			return writeJSON(cmd, page)
		}
		owned, err := ws.Movies.IDSet(ctx)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(page.Results))
		for _, m := range page.Results {
			mark := ""
			if _, ok := owned[m.ID]; ok {
				mark = "✓"
			}
			rows = append(rows, []string{strconv.FormatInt(m.ID, 10), truncate(m.Title, 40), derefString(m.ReleaseDate), strconv.FormatFloat(m.VoteAverage, 'f', 1, 64), mark})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, renderTable([]string{"ID", "Title", "Release", "Score", "Saved"}, rows, 0, 3))
		fmt.Fprintf(out, "Page %d of %d\n", page.Page, page.TotalPages)
		return nil
	})
}
