package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cinelog/internal/config"
	"cinelog/internal/fileutil"
	"cinelog/internal/movies"
	"cinelog/internal/workspace"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var format string
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				list, err := ws.Engine.List(c, "")
				if err != nil {
					return err
				}
				target := strings.TrimSpace(output)
				if target == "" || target == "-" {
					return movies.Encode(cmd.OutOrStdout(), list, format)
				}
				path, err := config.ExpandPath(target)
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("format") {
					format = movies.FormatFromPath(path)
				}
				err = fileutil.WriteAtomicFunc(path, 0o644, func(w io.Writer) error {
					return movies.Encode(w, list, format)
				})
				if err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d movies to %s\n", len(list), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", movies.FormatJSON, "Output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the collection with an exported file",
		Long:  "Replace the whole collection with the records in a JSON or YAML export. Every record is sanitized; imported watched movies do not earn points.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reader io.Reader
			source := args[0]
			if source == "-" {
				reader = cmd.InOrStdin()
			} else {
				path, err := config.ExpandPath(source)
				if err != nil {
					return err
				}
				file, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open import file: %w", err)
				}
				defer file.Close()
				reader = file
				if !cmd.Flags().Changed("format") {
					format = movies.FormatFromPath(path)
				}
			}
			list, err := movies.Decode(reader, format)
			if err != nil {
				return err
			}
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				n, err := ws.Engine.Replace(c, list)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]int{"imported": n})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d movies\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", movies.FormatJSON, "Input format: json or yaml (default from extension)")
	return cmd
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the collection, points and badges",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes every movie, point and badge; rerun with --yes to confirm")
			}
			return ctx.withWorkspace(cmd, func(c context.Context, ws *workspace.Workspace) error {
				if err := ws.Engine.Reset(c); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Collection, points and badges cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}
