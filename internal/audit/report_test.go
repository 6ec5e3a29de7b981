package audit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatReportFiltersBySeverityAndPrintsHealthScore(t *testing.T) {
	results := &Results{
		Dependencies: &DependencyResult{Issues: []Issue{
			{Section: "deps", Package: "core", Severity: SeverityCritical, Message: "circular dependency: a -> b -> a"},
			{Section: "deps", Package: "util", Severity: SeverityInfo, Message: "informational note"},
		}},
	}

	var buf bytes.Buffer
	FormatReport(&buf, results, SeverityWarning, true)

	out := buf.String()
	assert.Contains(t, out, "circular dependency")
	assert.NotContains(t, out, "informational note")
	assert.Contains(t, out, "Health score:")
}

func TestFormatReportReportsNoIssuesWhenEmpty(t *testing.T) {
	results := &Results{}

	var buf bytes.Buffer
	FormatReport(&buf, results, SeverityInfo, false)

	out := buf.String()
	assert.True(t, strings.Contains(out, "No issues found"))
	assert.NotContains(t, out, "Health score:")
}
