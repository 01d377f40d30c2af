package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"cinelog/internal/collection"
	"cinelog/internal/movies"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiDim    = "\x1b[2m"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderTable draws rows under headers. Columns listed in numeric are
// right-aligned.
func renderTable(headers []string, rows [][]string, numeric ...int) string {
	if len(headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(numeric))
	for _, col := range numeric {
		configs = append(configs, table.ColumnConfig{Number: col + 1, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

// printReward reports a first-watch reward and any new badges.
func printReward(out io.Writer, reward collection.Reward) {
	if !reward.FirstWatch {
		return
	}
	colorize := shouldColorize(out)
	fmt.Fprintln(out, paint(fmt.Sprintf("+%d points (total %d)", reward.Points, reward.Total), ansiGreen, colorize))
	for _, badge := range reward.NewBadges {
		fmt.Fprintln(out, paint(fmt.Sprintf("Badge unlocked: %s %s (%s)", badge.Emoji, badge.Name, badge.Description), ansiYellow, colorize))
	}
}

func movieRows(list []movies.Record) [][]string {
	rows := make([][]string, 0, len(list))
	for _, r := range list {
		rows = append(rows, []string{
			strconv.FormatInt(r.MovieID, 10),
			truncate(r.Title, 40),
			string(r.Status),
			formatRating(r.Rating),
			dateOnly(r.AddedAt),
			dateOnly(derefString(r.WatchedAt)),
		})
	}
	return rows
}

var movieHeaders = []string{"ID", "Title", "Status", "Rating", "Added", "Watched"}

func formatRating(rating *float64) string {
	if rating == nil {
		return "-"
	}
	return strconv.FormatFloat(*rating, 'f', -1, 64)
}

func dateOnly(ts string) string {
	if ts == "" {
		return "-"
	}
	if at, ok := movies.ParseTimestamp(ts); ok {
		return at.Local().Format("2006-01-02")
	}
	return ts
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit-1]) + "…"
}
