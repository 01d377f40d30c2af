package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cinelog/internal/collection"
	"cinelog/internal/movies"
	"cinelog/internal/workspace"
)

type movieFlags struct {
	title   string
	poster  string
	release string
	genres  []int64
}

func (f *movieFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Movie title (looked up on TMDB when omitted)")
	cmd.Flags().StringVar(&f.poster, "poster", "", "Poster path")
	cmd.Flags().StringVar(&f.release, "release", "", "Release date (YYYY-MM-DD)")
	cmd.Flags().Int64SliceVar(&f.genres, "genre", nil, "TMDB genre id (repeatable)")
}

func (f *movieFlags) input(id int64) collection.MovieInput {
	in := collection.MovieInput{
		MovieID: id,
		Title:   strings.TrimSpace(f.title),
		Genres:  f.genres,
	}
	if p := strings.TrimSpace(f.poster); p != "" {
		in.PosterPath = &p
	}
	if r := strings.TrimSpace(f.release); r != "" {
		in.ReleaseDate = &r
	}
	return in
}

func parseMovieID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q", arg)
	}
	return id, nil
}

func newMovieCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newCreateCommand(ctx, "add <movie-id>", "Add a movie to the watchlist", func(e *collection.Engine) createFunc { return e.AddToWatchlist }),
		newCreateCommand(ctx, "watched <movie-id>", "Mark a movie as watched", func(e *collection.Engine) createFunc { return e.MarkWatched }),
		newMoveCommand(ctx),
		newReviewCommand(ctx),
		newMemoCommand(ctx),
		newToggleCommand(ctx),
		newRemoveCommand(ctx),
	}
}

type createFunc func(context.Context, collection.MovieInput) (collection.Result, error)

func newCreateCommand(ctx *commandContext, use, short string, pick func(*collection.Engine) createFunc) *cobra.Command {
	var flags movieFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				in, err := ws.Engine.Complete(c, flags.input(id))
				if err != nil {
					return err
				}
				res, err := pick(ws.Engine)(c, in)
				return ctx.printResult(cmd, res, err)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <movie-id>",
		Short: "Move a watchlisted movie to watched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				res, err := ws.Engine.MoveToWatched(c, id)
				return ctx.printResult(cmd, res, err)
			})
		},
	}
}

func newReviewCommand(ctx *commandContext) *cobra.Command {
	var flags movieFlags
	var rating float64
	var review string
	var tags []string

	cmd := &cobra.Command{
		Use:   "review <movie-id>",
		Short: "Rate and review a movie, marking it watched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			in := collection.ReviewInput{Review: review, Tags: tags}
			if cmd.Flags().Changed("rating") {
				if rating < 0 || rating > 10 {
					return fmt.Errorf("rating must be between 0 and 10, got %v", rating)
				}
				in.Rating = &rating
			}
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				movie, err := ws.Engine.Complete(c, flags.input(id))
				if err != nil {
					return err
				}
				res, err := ws.Engine.SaveReview(c, movie, in)
				return ctx.printResult(cmd, res, err)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().Float64Var(&rating, "rating", 0, "Rating from 0 to 10")
	cmd.Flags().StringVar(&review, "review", "", "Review text")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag (repeatable)")
	return cmd
}

func newMemoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "memo <movie-id> <text>",
		Short: "Replace the memo of a movie in the collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				res, err := ws.Engine.UpdateMemo(c, id, args[1])
				return ctx.printResult(cmd, res, err)
			})
		},
	}
}

func newToggleCommand(ctx *commandContext) *cobra.Command {
	toggleCmd := &cobra.Command{
		Use:   "toggle",
		Short: "Toggle a movie on the watchlist or watched list",
	}
	lists := []struct {
		name  string
		short string
		pick  func(*collection.Engine) func(context.Context, collection.MovieInput) (collection.ToggleResult, error)
	}{
		{"watchlist", "Add to or remove from the watchlist", func(e *collection.Engine) func(context.Context, collection.MovieInput) (collection.ToggleResult, error) {
			return e.ToggleWatchlist
		}},
		{"watched", "Mark watched or remove from watched", func(e *collection.Engine) func(context.Context, collection.MovieInput) (collection.ToggleResult, error) {
			return e.ToggleWatched
		}},
	}
	for _, list := range lists {
		var flags movieFlags
		sub := &cobra.Command{
			Use:   list.name + " <movie-id>",
			Short: list.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseMovieID(args[0])
				if err != nil {
					return err
				}
				return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
					in, err := ws.Engine.Complete(c, flags.input(id))
					if err != nil {
						return err
					}
					res, err := list.pick(ws.Engine)(c, in)
					if err != nil && res.Record == nil {
						return err
					}
					if ctx.jsonOutput() {
						if jerr := writeJSON(cmd, res); jerr != nil {
							return jerr
						}
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", res.Action, id)
					printReward(cmd.OutOrStdout(), res.Reward)
					return err
				})
			},
		}
		flags.register(sub)
		toggleCmd.AddCommand(sub)
	}
	return toggleCmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <movie-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a movie from the collection",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				_, existed, err := ws.Engine.Get(c, id)
				if err != nil {
					return err
				}
				if _, err := ws.Engine.Remove(c, id); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]bool{"removed": existed})
				}
				if !existed {
					fmt.Fprintf(cmd.OutOrStdout(), "Movie %d is not in the collection\n", id)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed movie %d\n", id)
				return nil
			})
		},
	}
}

// printResult renders a mutation result. A reward failure after a successful
// write still prints the record before returning the error.
func (c *commandContext) printResult(cmd *cobra.Command, res collection.Result, opErr error) error {
	if opErr != nil && res.Record == nil {
		return opErr
	}
	if c.jsonOutput() {
		if err := writeJSON(cmd, res); err != nil {
			return err
		}
		return opErr
	}
	out := cmd.OutOrStdout()
	if res.Record == nil {
		fmt.Fprintln(out, "Movie is not in the collection; nothing changed")
		return opErr
	}
	fmt.Fprintln(out, renderTable(movieHeaders, movieRows([]movies.Record{*res.Record}), 0, 3))
	printReward(out, res.Reward)
	return opErr
}
