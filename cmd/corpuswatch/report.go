// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/somcorpus/corpuswatch/internal/analytics"
	"github.com/somcorpus/corpuswatch/internal/domain"
	"github.com/somcorpus/corpuswatch/internal/services/badge"
	"github.com/somcorpus/corpuswatch/internal/services/narrative"
)

func newReportCommand() *cobra.Command {
	var (
		inputFile  string
		sourceName string
		since      string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute analytics from a file of run reports",
		Long: `Compute collection analytics from run reports stored on disk.

The input is either NDJSON (one report per line) or a single JSON array
of reports. Reports may use any of the supported schema generations;
they are reconciled before aggregation.

Reads from stdin when --input is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.OutOrStdout(), inputFile, sourceName, since, asJSON)
		},
	}

	cmd.Flags().StringVar(&inputFile, "input", "", "Input file path (default: stdin)")
	cmd.Flags().StringVar(&sourceName, "source", "", "Only include reports from this source")
	cmd.Flags().StringVar(&since, "since", "", "Only include reports at or after this date (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw analytics result as JSON")

	return cmd
}

func runReport(out io.Writer, inputFile, sourceName, since string, asJSON bool) error {
	var in io.Reader = os.Stdin
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	payloads, err := readReports(in)
	if err != nil {
		return err
	}

	var cutoff time.Time
	if since != "" {
		cutoff, err = parseSince(since)
		if err != nil {
			return err
		}
	}

	payloads = filterReports(payloads, sourceName, cutoff)
	result := analytics.Compute(payloads)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return renderReport(out, result)
}

// readReports accepts NDJSON or a single JSON array.
func readReports(in io.Reader) ([]domain.Payload, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var raw []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
			return nil, fmt.Errorf("parse JSON array: %w", err)
		}
		payloads := make([]domain.Payload, 0, len(raw))
		for i, msg := range raw {
			p, err := domain.NewPayload(msg)
			if err != nil {
				return nil, fmt.Errorf("report %d: %w", i+1, err)
			}
			payloads = append(payloads, p)
		}
		return payloads, nil
	}

	var payloads []domain.Payload
	scanner := bufio.NewScanner(strings.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		p, err := domain.NewPayload(json.RawMessage(text))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		payloads = append(payloads, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return payloads, nil
}

func parseSince(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --since value %q (want RFC3339 or YYYY-MM-DD)", s)
}

func filterReports(payloads []domain.Payload, sourceName string, cutoff time.Time) []domain.Payload {
	if sourceName == "" && cutoff.IsZero() {
		return payloads
	}

	filtered := make([]domain.Payload, 0, len(payloads))
	for _, p := range payloads {
		if sourceName != "" && !strings.EqualFold(analytics.SourceName(p), sourceName) {
			continue
		}
		if !cutoff.IsZero() {
			ts, ok := analytics.Timestamp(p)
			if !ok || ts.Before(cutoff) {
				continue
			}
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func renderReport(out io.Writer, result *analytics.Result) error {
	fmt.Fprintln(out, narrative.Summarize(result))

	if len(result.PerSource) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tRECORDS\tSHARE\tQUALITY\tREJECTED\tTOP FILTER")
	for _, src := range result.PerSource {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			src.Name,
			badge.FormatNumber(float64(src.Records)),
			badge.FormatPercent(src.Share),
			badge.FormatPercent(src.Quality),
			badge.FormatNumber(float64(src.Rejected)),
			src.TopFilter,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(result.Pareto) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Rejection reasons:")
		for _, stat := range result.Pareto {
			fmt.Fprintf(out, "  %-24s %8d  %5.1f%%  (cum %5.1f%%)\n",
				stat.Reason, stat.Count, stat.Percentage, stat.Cumulative)
		}
	}

	return nil
}
