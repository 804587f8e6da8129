package ats

import (
	"regexp"
	"strings"
)

// SectionOrder lists the canonical resume sections in report order
var SectionOrder = []string{
	"Contact Info",
	"Summary / Objective",
	"Skills",
	"Work Experience",
	"Education",
	"Certifications",
	"Projects",
	"Languages",
}

// EssentialSections are the sections that drive scoring bonuses and
// missing-section penalties
var EssentialSections = []string{"Contact Info", "Work Experience", "Skills", "Education"}

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

// Heading evidence per section, matched against the lowercased text.
// Contact Info is special-cased: an email address anywhere counts.
var sectionPatterns = map[string][]*regexp.Regexp{
	"Summary / Objective": {
		regexp.MustCompile(`\bsummary\b`),
		regexp.MustCompile(`\bobjective\b`),
		regexp.MustCompile(`\bprofile\b`),
		regexp.MustCompile(`\babout\s+me\b`),
	},
	"Skills": {
		regexp.MustCompile(`\bskills\b`),
		regexp.MustCompile(`\btechnical\s+skills\b`),
		regexp.MustCompile(`\bcore\s+competencies\b`),
		regexp.MustCompile(`\bexpertise\b`),
	},
	"Work Experience": {
		regexp.MustCompile(`\bexperience\b`),
		regexp.MustCompile(`\bemployment\b`),
		regexp.MustCompile(`\bwork\s+history\b`),
		regexp.MustCompile(`\bprofessional\s+experience\b`),
	},
	"Education": {
		regexp.MustCompile(`\beducation\b`),
		regexp.MustCompile(`\bacademic\b`),
		regexp.MustCompile(`\bdegree\b`),
		regexp.MustCompile(`\buniversity\b`),
		regexp.MustCompile(`\bcollege\b`),
	},
	"Certifications": {
		regexp.MustCompile(`\bcertifications?\b`),
		regexp.MustCompile(`\bcertified\b`),
		regexp.MustCompile(`\blicenses?\b`),
	},
	"Projects": {
		regexp.MustCompile(`\bprojects?\b`),
		regexp.MustCompile(`\bportfolio\b`),
	},
	"Languages": {
		regexp.MustCompile(`\blanguages?\b`),
		regexp.MustCompile(`\bmultilingual\b`),
		regexp.MustCompile(`\bfluent\s+in\b`),
	},
}

// DetectSections reports which canonical sections the resume contains.
// The returned map always has exactly one entry per canonical section.
func DetectSections(resumeText string) map[string]bool {
	sections := make(map[string]bool, len(SectionOrder))
	for _, name := range SectionOrder {
		sections[name] = false
	}

	if emailPattern.MatchString(resumeText) {
		sections["Contact Info"] = true
	}

	textLower := strings.ToLower(resumeText)
	for name, patterns := range sectionPatterns {
		for _, p := range patterns {
			if p.MatchString(textLower) {
				sections[name] = true
				break
			}
		}
	}

	return sections
}

// SplitSections partitions the detection result into present and missing
// lists, preserving canonical order.
func SplitSections(sections map[string]bool) (present, missing []string) {
	present = []string{}
	missing = []string{}
	for _, name := range SectionOrder {
		if sections[name] {
			present = append(present, name)
		} else {
			missing = append(missing, name)
		}
	}
	return present, missing
}
