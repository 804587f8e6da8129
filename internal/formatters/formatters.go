package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"careercatalyst/internal/types"
)

// renderFunc turns one data value into its textual representation
type renderFunc func(data any) (string, error)

// FormatterRegistry dispatches rendering by output format and data type.
// Unknown data types fall back to the format's "any" renderer when one
// is registered.
type FormatterRegistry struct {
	renderers map[string]map[string]renderFunc // format -> type -> renderer
}

// GlobalRegistry is the registry used by the CLI output handler
var GlobalRegistry = NewFormatterRegistry()

// NewFormatterRegistry builds a registry with the built-in renderers
func NewFormatterRegistry() *FormatterRegistry {
	fr := &FormatterRegistry{renderers: make(map[string]map[string]renderFunc)}

	fr.register("json", "any", renderJSON)
	fr.register("text", "AnalysisReport", renderReportText)
	fr.register("markdown", "AnalysisReport", renderReportMarkdown)
	fr.register("text", "JobListings", renderJobsText)
	fr.register("markdown", "JobListings", renderJobsMarkdown)

	return fr
}

func (fr *FormatterRegistry) register(format, dataType string, fn renderFunc) {
	if fr.renderers[format] == nil {
		fr.renderers[format] = make(map[string]renderFunc)
	}
	fr.renderers[format][dataType] = fn
}

// Format renders data in the requested output format
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	byType, ok := fr.renderers[format]
	if !ok {
		return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataTypeOf(data))
	}
	if fn, ok := byType[dataTypeOf(data)]; ok {
		return fn(data)
	}
	if fn, ok := byType["any"]; ok {
		return fn(data)
	}
	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataTypeOf(data))
}

func dataTypeOf(data any) string {
	switch data.(type) {
	case types.AnalysisReport, *types.AnalysisReport:
		return "AnalysisReport"
	case []types.JobListing:
		return "JobListings"
	default:
		return "any"
	}
}

// asReport normalizes pointer and value report inputs
func asReport(data any) (*types.AnalysisReport, bool) {
	switch v := data.(type) {
	case *types.AnalysisReport:
		return v, true
	case types.AnalysisReport:
		return &v, true
	default:
		return nil, false
	}
}

func renderJSON(data any) (string, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// bulletList writes a labelled bullet list, skipping empty slices
func bulletList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	if label != "" {
		fmt.Fprintf(b, "%s:\n", label)
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func renderReportText(data any) (string, error) {
	report, ok := asReport(data)
	if !ok {
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}

	var b strings.Builder

	b.WriteString("=== ATS ANALYSIS ===\n\n")
	fmt.Fprintf(&b, "Score: %d/100 %s (%s)\n", report.TotalScore, report.ScoreEmoji, report.ScoreCategory)
	mode := "general"
	if report.HasJobDescription {
		mode = "job-matched"
	}
	fmt.Fprintf(&b, "Mode: %s analysis\n\n", mode)

	b.WriteString("=== SECTIONS ===\n")
	bulletList(&b, "Present", report.DetectedSections.Present)
	bulletList(&b, "Missing", report.DetectedSections.Missing)
	b.WriteString("\n")

	if len(report.FormattingIssues) > 0 {
		b.WriteString("=== FORMATTING ISSUES ===\n")
		bulletList(&b, "", report.FormattingIssues)
		b.WriteString("\n")
	}

	b.WriteString("=== SKILLS ===\n")
	if pct := report.SkillsAnalysis.KeywordMatchPercentage; pct != nil {
		fmt.Fprintf(&b, "Keyword match: %d%%\n", *pct)
	}
	bulletList(&b, "Matched keywords", report.SkillsAnalysis.MatchedKeywords)
	bulletList(&b, "Missing keywords", report.SkillsAnalysis.MissingKeywords)
	b.WriteString("\n")

	if report.AIAnalysis.RoleMatch != "" {
		b.WriteString("=== AI ASSESSMENT ===\n")
		b.WriteString(report.AIAnalysis.RoleMatch)
		b.WriteString("\n")
		if role := report.AIAnalysis.InferredRole; role != nil && *role != "" {
			fmt.Fprintf(&b, "Inferred role: %s\n", *role)
		}
		bulletList(&b, "Critical gaps", report.AIAnalysis.CriticalGaps)
		b.WriteString("\n")
	}

	if len(report.Suggestions) > 0 {
		b.WriteString("=== SUGGESTIONS ===\n")
		for i, suggestion := range report.Suggestions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, suggestion)
		}
		b.WriteString("\n")
	}

	b.WriteString("=== SCORE BREAKDOWN ===\n")
	sb := report.ScoreBreakdown
	fmt.Fprintf(&b, "AI base score:           %d\n", sb.AIBaseScore)
	fmt.Fprintf(&b, "Section bonus:           +%d\n", sb.SectionBonus)
	fmt.Fprintf(&b, "Formatting penalty:      -%d\n", sb.FormattingPenalty)
	fmt.Fprintf(&b, "Content bonus:           +%d\n", sb.ContentBonus)
	fmt.Fprintf(&b, "Suggestion penalty:      -%d\n", sb.SuggestionPenalty)
	fmt.Fprintf(&b, "Missing section penalty: -%d\n", sb.MissingSectionPenalty)
	fmt.Fprintf(&b, "Total:                   %d\n", sb.TotalScore)

	return b.String(), nil
}

// renderReportMarkdown serves the markdown document the analyzer already
// rendered into the report
func renderReportMarkdown(data any) (string, error) {
	report, ok := asReport(data)
	if !ok {
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}
	return report.MarkdownReport, nil
}

func renderJobsText(data any) (string, error) {
	listings, ok := data.([]types.JobListing)
	if !ok {
		return "", fmt.Errorf("expected []JobListing, got %T", data)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== JOB LISTINGS (%d) ===\n\n", len(listings))
	if len(listings) == 0 {
		b.WriteString("No listings found.\n")
		return b.String(), nil
	}

	for i, listing := range listings {
		fmt.Fprintf(&b, "%d. %s at %s\n", i+1, listing.Title, listing.Company)
		fmt.Fprintf(&b, "   Location: %s | Type: %s\n", listing.Location, listing.Type)
		optionalLine(&b, "   Stipend: %s\n", listing.Stipend)
		optionalLine(&b, "   Duration: %s\n", listing.Duration)
		optionalLine(&b, "   Start: %s\n", listing.StartDate)
		optionalLine(&b, "   URL: %s\n", listing.URL)
		b.WriteString("\n")
	}

	return b.String(), nil
}

func renderJobsMarkdown(data any) (string, error) {
	listings, ok := data.([]types.JobListing)
	if !ok {
		return "", fmt.Errorf("expected []JobListing, got %T", data)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Job Listings (%d)\n\n", len(listings))
	if len(listings) == 0 {
		b.WriteString("No listings found.\n")
		return b.String(), nil
	}

	for _, listing := range listings {
		fmt.Fprintf(&b, "## %s\n\n", listing.Title)
		fmt.Fprintf(&b, "**Company:** %s\n\n", listing.Company)
		fmt.Fprintf(&b, "**Location:** %s | **Type:** %s\n\n", listing.Location, listing.Type)
		optionalLine(&b, "**Stipend:** %s\n\n", listing.Stipend)
		optionalLine(&b, "**Duration:** %s\n\n", listing.Duration)
		optionalLine(&b, "**Start:** %s\n\n", listing.StartDate)
		optionalLine(&b, "[View listing](%s)\n\n", listing.URL)
	}

	return b.String(), nil
}

// optionalLine writes the formatted line only when the value is non-empty
func optionalLine(b *strings.Builder, format, value string) {
	if value != "" {
		fmt.Fprintf(b, format, value)
	}
}
