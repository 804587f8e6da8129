package ats

import (
	"fmt"
	"strings"

	"careercatalyst/internal/types"
)

// RenderMarkdown produces the human-readable analysis report. The
// suggestions argument is the full derived suggestion list, not the
// capped copy embedded in the JSON response.
func RenderMarkdown(total int, emoji string, sections map[string]bool, formattingIssues []string, analysis *types.AIAnalysis, suggestions []string, hasJobDescription bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 🎯 ATS Resume Analysis Report\n\n")
	fmt.Fprintf(&b, "## %s ATS Compatibility Score: **%d/100**\n\n", emoji, total)
	b.WriteString("---\n\n")

	b.WriteString("## 🧾 Detected Resume Sections\n\n### ✅ Present Sections:\n")
	present, missing := SplitSections(sections)
	for _, name := range present {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	if len(missing) > 0 {
		b.WriteString("\n### ❌ Missing Sections:\n")
		for _, name := range missing {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}

	b.WriteString("\n---\n\n## ❗ Formatting and Layout Issues\n\n")
	if len(formattingIssues) > 0 {
		for _, issue := range formattingIssues {
			fmt.Fprintf(&b, "- ⚠️ %s\n", issue)
		}
	} else {
		b.WriteString("✅ No major formatting issues detected!\n")
	}

	b.WriteString("\n---\n\n## 🔍 Skills and Keyword Analysis\n\n")
	if hasJobDescription {
		var matched, missingKw []string
		if analysis.JobMatch != nil {
			matched = analysis.JobMatch.MatchedKeywords
			missingKw = analysis.JobMatch.MissingKeywords
		}
		if len(matched) > 0 {
			b.WriteString("### ✅ Matched Keywords:\n")
			b.WriteString(strings.Join(firstN(matched, 10), ", ") + "\n\n")
		}
		if len(missingKw) > 0 {
			b.WriteString("### ❌ Missing Keywords:\n")
			b.WriteString(strings.Join(firstN(missingKw, 10), ", ") + "\n")
		}
	} else if analysis.General != nil && len(analysis.General.TechnicalKeywords) > 0 {
		b.WriteString("### 🔧 Technical Skills Found:\n")
		b.WriteString(strings.Join(analysis.General.TechnicalKeywords, ", ") + "\n")
	}

	b.WriteString("\n---\n\n## 📈 Content Strength Evaluation\n\n")
	if cs := analysis.ContentStrength; cs != nil {
		fmt.Fprintf(&b, "- **Action Verbs Usage:** %d/10\n", cs.ActionVerbsScore)
		fmt.Fprintf(&b, "- **Quantified Achievements:** %d found\n", cs.QuantifiedAchievements)
		if hasJobDescription {
			fmt.Fprintf(&b, "- **Job Relevance:** %d/10\n", cs.RelevanceScore)
		}
	}

	b.WriteString("\n---\n\n## 🛠 Suggestions to Improve\n\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, suggestion)
	}

	if hasJobDescription && analysis.JobMatch != nil && analysis.JobMatch.RoleFitAnalysis != "" {
		fmt.Fprintf(&b, "\n---\n\n## 💼 Role Fit Analysis\n\n%s\n", analysis.JobMatch.RoleFitAnalysis)
	} else if !hasJobDescription && analysis.General != nil && analysis.General.GeneralFeedback != "" {
		fmt.Fprintf(&b, "\n---\n\n## 📝 General Assessment\n\n%s\n", analysis.General.GeneralFeedback)
	}

	return b.String()
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
