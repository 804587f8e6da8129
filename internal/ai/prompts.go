package ai

// SystemPrompts contains all system-level instructions for AI interactions
type SystemPrompts struct {
	AnalyzeResume string
	Assistant     string
}

// UserPrompts contains user-level prompt templates with fmt placeholders
// for dynamic content. AnalyzeMatched takes the resume text and the job
// description; AnalyzeGeneral takes the resume text only; Assistant takes
// the resume context block and the user question.
type UserPrompts struct {
	AnalyzeMatched string
	AnalyzeGeneral string
	Assistant      string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	AnalyzeResume: `You are a smart AI hiring assistant and ATS evaluator with deep knowledge of:

- Applicant Tracking System parsing behavior and keyword matching
- Resume structure, content strength, and professional language
- Role requirements across technical and non-technical fields

Provide honest, evidence-based scoring. Do not inflate scores.`,

	Assistant: `You are an expert resume writing assistant specializing in ATS-friendly resumes.
Help users create compelling, professional resumes that pass Applicant Tracking Systems.`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	AnalyzeMatched: `Analyze this resume against the provided job description.

RESUME TEXT:
%s

JOB DESCRIPTION:
%s

Provide analysis in this exact JSON format:
{
    "ats_score": 85,
    "keyword_analysis": {
        "matched_keywords": ["python", "machine learning", "sql"],
        "missing_keywords": ["docker", "aws", "kubernetes"],
        "keyword_match_percentage": 75
    },
    "content_strength": {
        "action_verbs_score": 8,
        "quantified_achievements": 6,
        "relevance_score": 9
    },
    "improvement_suggestions": [
        "Add Docker and containerization experience",
        "Include more quantified achievements",
        "Strengthen technical skills section"
    ],
    "role_fit_analysis": "Strong match for the position with relevant experience in...",
    "critical_gaps": ["Missing cloud experience", "No DevOps background"]
}`,

	AnalyzeGeneral: `Analyze this resume for general ATS compatibility and professional quality.

RESUME TEXT:
%s

Since no job description is provided, infer the likely role/field from the resume content and evaluate accordingly.

Provide analysis in this exact JSON format:
{
    "ats_score": 75,
    "inferred_role": "Software Developer",
    "keyword_analysis": {
        "technical_keywords": ["python", "javascript", "react"],
        "soft_skills": ["leadership", "communication"],
        "industry_terms": ["agile", "scrum"]
    },
    "content_strength": {
        "action_verbs_score": 7,
        "quantified_achievements": 4,
        "professional_language_score": 8
    },
    "improvement_suggestions": [
        "Add more quantified achievements",
        "Include relevant certifications",
        "Strengthen skills section with specific technologies"
    ],
    "general_feedback": "Resume shows good technical background but needs more specific metrics..."
}`,

	Assistant: `%s

User Question: %s

Provide specific, actionable advice. Include examples when helpful. Keep responses concise but comprehensive.
Focus on ATS optimization, keyword usage, quantifiable achievements, and professional formatting.`,
}
