package ai

import (
	"strings"

	"careercatalyst/internal/types"
)

// Fallback records returned when the AI backend cannot produce a result.
// Scores are fixed so downstream scoring stays deterministic when the
// backend is unavailable.

// fallbackNoAPIKey is returned when no API key is configured
func fallbackNoAPIKey() types.AIAnalysis {
	return types.AIAnalysis{
		ATSScore: 70,
		ImprovementSuggestions: []string{
			"Set up Gemini API key for advanced AI analysis",
			"Review resume formatting for ATS compatibility",
			"Include relevant keywords from job description",
			"Add quantified achievements with specific numbers",
			"Use strong action verbs to describe accomplishments",
		},
		Error: "Gemini API key not configured. Using fallback analysis.",
	}
}

// fallbackUnparsable is returned when the model reply had no decodable payload
func fallbackUnparsable() types.AIAnalysis {
	return types.AIAnalysis{
		ATSScore:               70,
		ImprovementSuggestions: []string{"Review resume format and content"},
		Error:                  "Could not parse AI response",
	}
}

// fallbackAPIError is returned on transport or API failure, including timeouts
func fallbackAPIError(err error) types.AIAnalysis {
	return types.AIAnalysis{
		ATSScore:               60,
		ImprovementSuggestions: []string{"Could not analyze with AI - check API connection"},
		Error:                  err.Error(),
	}
}

// canned assistant replies keyed on topic keywords in the user message
var assistantFallbacks = []struct {
	keywords []string
	reply    string
}{
	{
		keywords: []string{"summary", "objective"},
		reply: `For your professional summary, focus on:

• 2-3 sentences highlighting your key strengths
• Include relevant keywords from your target job
• Mention years of experience and key achievements
• Keep it concise but impactful

Example: 'Results-driven Software Engineer with 3+ years of experience in full-stack development, specializing in React and Node.js. Proven track record of delivering scalable applications that improved user engagement by 40%.'`,
	},
	{
		keywords: []string{"experience", "work"},
		reply: `For work experience entries:

• Use action verbs (Developed, Implemented, Led, Achieved)
• Quantify results with numbers and percentages
• Focus on achievements, not just responsibilities
• Use reverse chronological order
• Include relevant keywords for ATS

Format: Action Verb + What you did + Result/Impact`,
	},
	{
		keywords: []string{"skills"},
		reply: `For your skills section:

• Separate technical and soft skills
• Include specific technologies, not just general terms
• Match skills to job requirements
• Use industry-standard terminology
• Consider adding proficiency levels

Technical: React, Node.js, Python, AWS, Docker
Soft: Leadership, Problem-solving, Communication`,
	},
	{
		keywords: []string{"education"},
		reply: `For education section:

• Include degree, institution, graduation year
• Add GPA if 3.5 or higher
• Include relevant coursework for entry-level positions
• Add honors, awards, or relevant projects
• Consider adding certifications here too`,
	},
	{
		keywords: []string{"ats", "optimize"},
		reply: `ATS Optimization Tips:

• Use standard section headings (Experience, Education, Skills)
• Include keywords from job descriptions
• Use simple, clean formatting
• Avoid images, graphics, or complex layouts
• Save as PDF to preserve formatting
• Use standard fonts (Arial, Calibri, Times New Roman)`,
	},
}

const assistantDefaultReply = `I can help you with:

• Writing compelling summaries
• Optimizing work experience descriptions
• Selecting relevant skills
• Formatting education details
• ATS optimization tips
• Industry-specific advice

What specific section would you like help with?`

// fallbackAssistantReply picks a canned reply matching the user message
func fallbackAssistantReply(message string) string {
	lower := strings.ToLower(message)
	for _, fb := range assistantFallbacks {
		for _, kw := range fb.keywords {
			if strings.Contains(lower, kw) {
				return fb.reply
			}
		}
	}
	return assistantDefaultReply
}
