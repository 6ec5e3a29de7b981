package audit

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
)

// FormatReport renders results as a human-readable table of issues at
// or above minSeverity, followed by the health score line (omitted
// when showHealthScore is false).
func FormatReport(w io.Writer, results *Results, minSeverity Severity, showHealthScore bool) {
	issues := results.AllIssues()
	var filtered []Issue
	for _, issue := range issues {
		if issue.Severity.AtLeast(minSeverity) {
			filtered = append(filtered, issue)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Severity != filtered[j].Severity {
			return severityRank[filtered[i].Severity] > severityRank[filtered[j].Severity]
		}
		return filtered[i].Message < filtered[j].Message
	})

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Section", "Package", "Severity", "Message"})
	for _, issue := range filtered {
		pkg := issue.Package
		if pkg == "" {
			pkg = "-"
		}
		table.Append([]string{issue.Section, pkg, string(issue.Severity), issue.Message})
	}
	table.Render()

	if len(filtered) == 0 {
		fmt.Fprintln(w, "No issues found at or above severity", minSeverity)
	}
	if showHealthScore {
		fmt.Fprintf(w, "\nHealth score: %d/100\n", results.HealthScore())
	}
}
