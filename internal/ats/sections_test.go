package ats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const fullResume = `John Doe
john.doe@example.com | (555) 123-4567

SUMMARY
Software engineer with 5 years of experience.

SKILLS
Go, Python, Kubernetes

WORK EXPERIENCE
Senior Engineer at Acme Corp, 2020 - Present

EDUCATION
BS Computer Science, State University

CERTIFICATIONS
AWS Certified Solutions Architect

PROJECTS
Open source contributor

LANGUAGES
English, Spanish`

func TestDetectSectionsAlwaysReturnsAllCanonicalSections(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty resume", ""},
		{"plain text", "just some words with no headings"},
		{"full resume", fullResume},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := DetectSections(tt.text)
			assert.Len(t, sections, len(SectionOrder))
			for _, name := range SectionOrder {
				_, ok := sections[name]
				assert.True(t, ok, "missing canonical section %q", name)
			}
		})
	}
}

func TestDetectSectionsFullResume(t *testing.T) {
	sections := DetectSections(fullResume)
	for _, name := range SectionOrder {
		assert.True(t, sections[name], "expected section %q to be detected", name)
	}
}

func TestContactInfoRequiresEmail(t *testing.T) {
	withEmail := DetectSections("Reach me at jane@example.com")
	assert.True(t, withEmail["Contact Info"])

	withoutEmail := DetectSections("Reach me at 555-123-4567")
	assert.False(t, withoutEmail["Contact Info"])
}

func TestDetectSectionsHeadingVariants(t *testing.T) {
	tests := []struct {
		section string
		text    string
	}{
		{"Summary / Objective", "OBJECTIVE\nSeeking a role in engineering"},
		{"Summary / Objective", "About me\nI build things"},
		{"Skills", "Core Competencies\nLeadership"},
		{"Work Experience", "EMPLOYMENT\nAcme Corp"},
		{"Education", "Graduated from State University"},
		{"Certifications", "Licensed professional engineer"},
		{"Projects", "Portfolio available on request"},
		{"Languages", "Fluent in French"},
	}

	for _, tt := range tests {
		t.Run(tt.section+"/"+tt.text[:10], func(t *testing.T) {
			sections := DetectSections(tt.text)
			assert.True(t, sections[tt.section], "text %q should match %q", tt.text, tt.section)
		})
	}
}

func TestSplitSectionsPreservesCanonicalOrder(t *testing.T) {
	sections := map[string]bool{
		"Contact Info":    true,
		"Skills":          true,
		"Work Experience": false,
		"Education":       true,
	}

	present, missing := SplitSections(sections)
	assert.Equal(t, []string{"Contact Info", "Skills", "Education"}, present)
	assert.Equal(t, []string{"Summary / Objective", "Work Experience", "Certifications", "Projects", "Languages"}, missing)
}

func TestSplitSectionsEmptyResume(t *testing.T) {
	present, missing := SplitSections(DetectSections(""))
	assert.Empty(t, present)
	assert.Equal(t, SectionOrder, missing)
	assert.NotNil(t, present)
}
