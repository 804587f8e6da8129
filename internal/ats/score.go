package ats

import (
	"careercatalyst/internal/types"
)

// Score boundaries. Scores are deliberately compressed toward the middle
// of the range so inflated AI self-scores do not leak through.
const (
	minScore = 15
	maxScore = 95
)

// CalculateScore combines the adjusted AI base score with the section,
// formatting, content and suggestion components into a bounded total.
func CalculateScore(analysis *types.AIAnalysis, sections map[string]bool, formattingIssues []string) types.ScoreBreakdown {
	aiScore := analysis.ATSScore
	switch {
	case aiScore > 90:
		aiScore = 75
	case aiScore > 80:
		aiScore = min(aiScore-10, 70)
	default:
		aiScore = min(aiScore, 65)
	}

	presentEssential := 0
	for _, name := range EssentialSections {
		if sections[name] {
			presentEssential++
		}
	}
	sectionBonus := presentEssential * 3

	formattingPenalty := min(len(formattingIssues)*5, 25)

	contentBonus := 0
	if cs := analysis.ContentStrength; cs != nil {
		if cs.ActionVerbsScore >= 8 && cs.QuantifiedAchievements >= 5 {
			contentBonus = 5
		} else if cs.ActionVerbsScore >= 7 || cs.QuantifiedAchievements >= 3 {
			contentBonus = 2
		}
	}

	suggestionPenalty := 0
	switch n := len(analysis.ImprovementSuggestions); {
	case n > 6:
		suggestionPenalty = 15
	case n > 4:
		suggestionPenalty = 10
	case n > 2:
		suggestionPenalty = 5
	}

	missingEssential := len(EssentialSections) - presentEssential
	missingSectionPenalty := missingEssential * 8

	total := aiScore + sectionBonus + contentBonus -
		formattingPenalty - suggestionPenalty - missingSectionPenalty
	total = max(minScore, min(maxScore, total))

	return types.ScoreBreakdown{
		TotalScore:            total,
		AIBaseScore:           aiScore,
		SectionBonus:          sectionBonus,
		FormattingPenalty:     formattingPenalty,
		ContentBonus:          contentBonus,
		SuggestionPenalty:     suggestionPenalty,
		MissingSectionPenalty: missingSectionPenalty,
	}
}

// ScoreCategory maps a total score to its display category and emoji
func ScoreCategory(total int) (category, emoji string) {
	switch {
	case total >= 80:
		return "Excellent", "🟢"
	case total >= 65:
		return "Good", "🟡"
	case total >= 45:
		return "Fair", "🟠"
	default:
		return "Needs Improvement", "🔴"
	}
}
