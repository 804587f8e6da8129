package types

// AnalyzeResumeInput represents the input for a resume analysis
type AnalyzeResumeInput struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description,omitempty"`
}

// ContentStrength holds the AI assessment of resume content quality.
// ProfessionalLanguageScore is only populated in general (no job
// description) mode; RelevanceScore only in job-matched mode.
type ContentStrength struct {
	ActionVerbsScore          int `json:"action_verbs_score"`
	QuantifiedAchievements    int `json:"quantified_achievements"`
	RelevanceScore            int `json:"relevance_score,omitempty"`
	ProfessionalLanguageScore int `json:"professional_language_score,omitempty"`
}

// JobMatchAnalysis is the job-matched variant of the AI keyword analysis
type JobMatchAnalysis struct {
	MatchedKeywords        []string `json:"matched_keywords"`
	MissingKeywords        []string `json:"missing_keywords"`
	KeywordMatchPercentage int      `json:"keyword_match_percentage"`
	RoleFitAnalysis        string   `json:"role_fit_analysis"`
	CriticalGaps           []string `json:"critical_gaps"`
}

// GeneralAnalysis is the variant used when no job description is supplied
type GeneralAnalysis struct {
	InferredRole      string   `json:"inferred_role"`
	TechnicalKeywords []string `json:"technical_keywords"`
	SoftSkills        []string `json:"soft_skills"`
	IndustryTerms     []string `json:"industry_terms"`
	GeneralFeedback   string   `json:"general_feedback"`
}

// AIAnalysis is the record returned by the external analysis client.
// Exactly one of JobMatch or General is set on a successful call; both
// are nil on a fallback record, in which case Error describes the cause.
type AIAnalysis struct {
	ATSScore               int               `json:"ats_score"`
	ImprovementSuggestions []string          `json:"improvement_suggestions"`
	ContentStrength        *ContentStrength  `json:"content_strength,omitempty"`
	JobMatch               *JobMatchAnalysis `json:"job_match,omitempty"`
	General                *GeneralAnalysis  `json:"general,omitempty"`
	Error                  string            `json:"error,omitempty"`
}

// DetectedSections lists canonical sections found and not found, in
// canonical order
type DetectedSections struct {
	Present []string `json:"present"`
	Missing []string `json:"missing"`
}

// SkillsAnalysis summarizes keyword coverage for the final report.
// KeywordMatchPercentage is null when no job description was supplied.
type SkillsAnalysis struct {
	MatchedKeywords        []string `json:"matchedKeywords"`
	MissingKeywords        []string `json:"missingKeywords"`
	KeywordMatchPercentage *int     `json:"keywordMatchPercentage"`
}

// AICommentary carries the free-text AI verdicts into the report
type AICommentary struct {
	RoleMatch    string   `json:"roleMatch"`
	InferredRole *string  `json:"inferredRole"`
	CriticalGaps []string `json:"criticalGaps"`
}

// ScoreBreakdown itemizes every component of the final score
type ScoreBreakdown struct {
	TotalScore            int `json:"total_score"`
	AIBaseScore           int `json:"ai_base_score"`
	SectionBonus          int `json:"section_bonus"`
	FormattingPenalty     int `json:"formatting_penalty"`
	ContentBonus          int `json:"content_bonus"`
	SuggestionPenalty     int `json:"suggestion_penalty"`
	MissingSectionPenalty int `json:"missing_section_penalty"`
}

// AnalysisReport is the full analysis result returned to API and CLI
// consumers
type AnalysisReport struct {
	TotalScore        int              `json:"totalScore"`
	ScoreCategory     string           `json:"scoreCategory"`
	ScoreEmoji        string           `json:"scoreEmoji"`
	HasJobDescription bool             `json:"hasJobDescription"`
	DetectedSections  DetectedSections `json:"detectedSections"`
	FormattingIssues  []string         `json:"formattingIssues"`
	SkillsAnalysis    SkillsAnalysis   `json:"skillsAnalysis"`
	ContentStrength   *ContentStrength `json:"contentStrength"`
	Suggestions       []string         `json:"suggestions"`
	AIAnalysis        AICommentary     `json:"aiAnalysis"`
	ScoreBreakdown    ScoreBreakdown   `json:"scoreBreakdown"`
	MarkdownReport    string           `json:"markdownReport"`
}

// AssistantInput represents a chat request to the resume assistant
type AssistantInput struct {
	Message    string `json:"message"`
	ResumeText string `json:"resume_text,omitempty"`
}

// AssistantOutput is the assistant's reply
type AssistantOutput struct {
	Response string `json:"response"`
}

// JobListing is a single internship/job result from the aggregator
type JobListing struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Stipend     string `json:"stipend"`
	Duration    string `json:"duration"`
	StartDate   string `json:"start_date"`
	URL         string `json:"url"`
	Source      string `json:"source"`
}
