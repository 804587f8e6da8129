package ats

import (
	"context"
	"strings"

	"careercatalyst/internal/errors"
	"careercatalyst/internal/types"
)

// AnalysisClient is the external analysis boundary. Implementations must
// honor the result-or-fallback contract: a record is always returned and
// failures are described inside it, never as an error.
type AnalysisClient interface {
	AnalyzeResume(ctx context.Context, resumeText, jobDescription string) *types.AIAnalysis
}

// Analyzer runs the full analysis pipeline. It is stateless and safe for
// concurrent use.
type Analyzer struct {
	client AnalysisClient
	logger *errors.Logger
}

func NewAnalyzer(client AnalysisClient, logger *errors.Logger) *Analyzer {
	return &Analyzer{client: client, logger: logger}
}

// Analyze detects sections, audits formatting, obtains the AI record and
// assembles the scored report. jobDescription may be empty.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jobDescription string) *types.AnalysisReport {
	hasJob := jobDescription != ""

	sections := DetectSections(resumeText)
	present, missing := SplitSections(sections)
	formattingIssues := AuditFormatting(resumeText)

	analysis := a.client.AnalyzeResume(ctx, resumeText, jobDescription)
	if analysis.Error != "" {
		a.logger.Warn("AI analysis degraded to fallback", "reason", analysis.Error)
	}

	breakdown := CalculateScore(analysis, sections, formattingIssues)
	category, emoji := ScoreCategory(breakdown.TotalScore)

	suggestions := deriveSuggestions(analysis, sections, missing, formattingIssues)
	skills := buildSkillsAnalysis(analysis, hasJob)
	commentary := buildCommentary(analysis, hasJob)

	return &types.AnalysisReport{
		TotalScore:        breakdown.TotalScore,
		ScoreCategory:     category,
		ScoreEmoji:        emoji,
		HasJobDescription: hasJob,
		DetectedSections:  types.DetectedSections{Present: present, Missing: missing},
		FormattingIssues:  formattingIssues,
		SkillsAnalysis:    skills,
		ContentStrength:   analysis.ContentStrength,
		Suggestions:       firstN(suggestions, 10),
		AIAnalysis:        commentary,
		ScoreBreakdown:    breakdown,
		MarkdownReport:    RenderMarkdown(breakdown.TotalScore, emoji, sections, formattingIssues, analysis, suggestions, hasJob),
	}
}

// deriveSuggestions augments the AI suggestions with section and
// formatting guidance. A missing Contact Info suggestion always leads.
func deriveSuggestions(analysis *types.AIAnalysis, sections map[string]bool, missing []string, formattingIssues []string) []string {
	suggestions := append([]string{}, analysis.ImprovementSuggestions...)

	if !sections["Contact Info"] {
		suggestions = append([]string{"Add complete contact information including email and phone number"}, suggestions...)
	}
	if !sections["Skills"] {
		suggestions = append(suggestions, "Include a dedicated Skills section with relevant technical and soft skills")
	}
	if len(missing) > 0 {
		suggestions = append(suggestions, "Consider adding missing sections: "+strings.Join(firstN(missing, 3), ", "))
	}
	if len(formattingIssues) > 0 {
		suggestions = append(suggestions, "Address formatting issues to improve ATS compatibility")
	}

	return suggestions
}

func buildSkillsAnalysis(analysis *types.AIAnalysis, hasJob bool) types.SkillsAnalysis {
	matched := []string{}
	missingKw := []string{}
	var matchPct *int

	if hasJob {
		pct := 0
		if analysis.JobMatch != nil {
			matched = analysis.JobMatch.MatchedKeywords
			missingKw = analysis.JobMatch.MissingKeywords
			pct = analysis.JobMatch.KeywordMatchPercentage
		}
		matchPct = &pct
	} else if analysis.General != nil {
		matched = analysis.General.TechnicalKeywords
	}

	return types.SkillsAnalysis{
		MatchedKeywords:        firstN(matched, 15),
		MissingKeywords:        firstN(missingKw, 10),
		KeywordMatchPercentage: matchPct,
	}
}

func buildCommentary(analysis *types.AIAnalysis, hasJob bool) types.AICommentary {
	commentary := types.AICommentary{CriticalGaps: []string{}}

	if hasJob {
		if analysis.JobMatch != nil {
			commentary.RoleMatch = analysis.JobMatch.RoleFitAnalysis
			if analysis.JobMatch.CriticalGaps != nil {
				commentary.CriticalGaps = analysis.JobMatch.CriticalGaps
			}
		}
		return commentary
	}

	inferred := ""
	if analysis.General != nil {
		commentary.RoleMatch = analysis.General.GeneralFeedback
		inferred = analysis.General.InferredRole
	}
	commentary.InferredRole = &inferred
	return commentary
}
