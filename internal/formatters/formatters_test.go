package formatters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careercatalyst/internal/types"
)

func sampleReport() *types.AnalysisReport {
	pct := 64
	return &types.AnalysisReport{
		TotalScore:        72,
		ScoreCategory:     "Good",
		ScoreEmoji:        "🟡",
		HasJobDescription: true,
		DetectedSections: types.DetectedSections{
			Present: []string{"Contact Info", "Skills"},
			Missing: []string{"Projects"},
		},
		FormattingIssues: []string{"Missing or improperly formatted phone number"},
		SkillsAnalysis: types.SkillsAnalysis{
			MatchedKeywords:        []string{"Go", "Docker"},
			MissingKeywords:        []string{"Terraform"},
			KeywordMatchPercentage: &pct,
		},
		Suggestions: []string{"Add a projects section"},
		AIAnalysis: types.AICommentary{
			RoleMatch:    "Strong backend fit",
			CriticalGaps: []string{"No cloud experience"},
		},
		ScoreBreakdown: types.ScoreBreakdown{
			TotalScore:  72,
			AIBaseScore: 65,
		},
		MarkdownReport: "# Analysis\n",
	}
}

func sampleListings() []types.JobListing {
	return []types.JobListing{
		{
			Title:    "Backend Intern",
			Company:  "Acme",
			Location: "Delhi",
			Type:     "Internship",
			Stipend:  "10000 /month",
			URL:      "https://example.com/job/1",
		},
	}
}

func TestJSONFormatterRoundTrips(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleReport(), "json")
	require.NoError(t, err)

	var decoded types.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 72, decoded.TotalScore)
}

func TestReportTextFormatter(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleReport(), "text")
	require.NoError(t, err)

	assert.Contains(t, out, "Score: 72/100")
	assert.Contains(t, out, "job-matched analysis")
	assert.Contains(t, out, "Contact Info")
	assert.Contains(t, out, "Keyword match: 64%")
	assert.Contains(t, out, "Strong backend fit")
	assert.Contains(t, out, "1. Add a projects section")
}

func TestReportMarkdownFormatterServesRenderedReport(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleReport(), "markdown")
	require.NoError(t, err)
	assert.Equal(t, "# Analysis\n", out)
}

func TestReportValueAndPointerBothAccepted(t *testing.T) {
	byPointer, err := GlobalRegistry.Format(sampleReport(), "text")
	require.NoError(t, err)

	byValue, err := GlobalRegistry.Format(*sampleReport(), "text")
	require.NoError(t, err)

	assert.Equal(t, byPointer, byValue)
}

func TestJobsTextFormatter(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleListings(), "text")
	require.NoError(t, err)

	assert.Contains(t, out, "JOB LISTINGS (1)")
	assert.Contains(t, out, "Backend Intern at Acme")
	assert.Contains(t, out, "Stipend: 10000 /month")
}

func TestJobsMarkdownFormatterEmptyList(t *testing.T) {
	out, err := GlobalRegistry.Format([]types.JobListing{}, "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "# Job Listings (0)")
	assert.Contains(t, out, "No listings found.")
}

func TestUnknownFormatRejected(t *testing.T) {
	_, err := GlobalRegistry.Format(sampleReport(), "yaml")
	require.Error(t, err)
}
