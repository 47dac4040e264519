package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"chatsearch/internal/domain"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, result *domain.SearchResult, top int, verbose bool) {
	if result.Answer != "" {
		fmt.Fprintf(w, "%s\n", result.Answer)
	}
	fmt.Fprintf(w, "\n[intent %s, confidence %.0f]\n", result.Intent, result.Confidence)

	for _, p := range result.Parts {
		fmt.Fprintf(w, "  - %q -> %s (%.0f, %d results)\n", p.Query, p.Intent, p.Confidence, p.Results)
	}

	for i, r := range result.Results {
		if i >= top {
			break
		}
		line := fmt.Sprintf("%d. %s", i+1, r.Item.Title)
		if r.Item.Category != "" {
			line += " (" + r.Item.Category + ")"
		}
		fmt.Fprintf(w, "%s  score %.1f\n", line, r.Score)
	}

	if verbose {
		for _, ev := range result.Diagnostics {
			if ev.Marker != domain.MarkerStop {
				continue
			}
			fmt.Fprintf(w, "    %-14s %s\n", ev.Phase, ev.Elapsed)
		}
	}
}

func printComparison(w io.Writer, result domain.ComparisonResult) {
	fmt.Fprintf(w, "%s\n", result.Summary)
	if len(result.Items) == 0 {
		return
	}

	titles := make([]string, len(result.Items))
	for i, item := range result.Items {
		titles[i] = item.Title
	}

	fmt.Fprintf(w, "\n%-12s | %s\n", "", strings.Join(titles, " | "))
	for _, attr := range result.Attributes {
		row := make([]string, len(titles))
		for i, t := range titles {
			row[i] = result.Table[attr][t]
			if row[i] == "" {
				row[i] = "-"
			}
		}
		fmt.Fprintf(w, "%-12s | %s\n", attr, strings.Join(row, " | "))
	}
}
