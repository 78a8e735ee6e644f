package validate

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
)

// RenderTable writes the report as a terminal table.
func (r *Report) RenderTable(w io.Writer) {
	table := tablewriter.NewTable(w)
	table.Header([]string{"Metric", "Value"})

	table.Append([]string{"samples", fmt.Sprintf("%d", r.TotalSamples)})
	table.Append([]string{"validation errors", fmt.Sprintf("%d", len(r.Errors))})
	table.Append([]string{"avg turns", fmt.Sprintf("%.1f", meanInt(r.TurnCounts))})
	table.Append([]string{"median turns", fmt.Sprintf("%d", medianInt(r.TurnCounts))})
	table.Append([]string{"avg chars", fmt.Sprintf("%.0f", meanInt(r.CharCounts))})
	table.Append([]string{"median chars", fmt.Sprintf("%d", medianInt(r.CharCounts))})
	table.Append([]string{"avg quality score", fmt.Sprintf("%.3f", meanFloat(r.QualityScores))})
	table.Append([]string{"samples with tool calls", fmt.Sprintf("%d", r.ToolCallSamples)})

	for _, role := range sortedKeys(r.RoleCounts) {
		table.Append([]string{"role: " + role, fmt.Sprintf("%d", r.RoleCounts[role])})
	}
	for _, source := range sortedKeys(r.SourceCounts) {
		table.Append([]string{"source: " + source, fmt.Sprintf("%d", r.SourceCounts[source])})
	}

	table.Render()

	if len(r.Errors) > 0 {
		fmt.Fprintln(w)
		limit := len(r.Errors)
		if limit > 20 {
			limit = 20
		}
		for _, e := range r.Errors[:limit] {
			fmt.Fprintln(w, "  ", e)
		}
		if len(r.Errors) > limit {
			fmt.Fprintf(w, "   ... and %d more\n", len(r.Errors)-limit)
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
