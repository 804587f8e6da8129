package ats

import (
	"regexp"
	"strings"
)

var (
	tablePattern     = regexp.MustCompile(`\t{2,}`)
	imageRefPattern  = regexp.MustCompile(`(?i)\.(jpg|png|svg|jpeg|gif|pdf)`)
	wideSpacePattern = regexp.MustCompile(` {10,}`)
	phonePattern     = regexp.MustCompile(`[\+]?[1-9]?[\d\s\-\(\)]{10,}`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`), // MM/DD/YYYY
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),     // YYYY-MM-DD
		regexp.MustCompile(`\w+\s+\d{4}`),           // Month YYYY
		regexp.MustCompile(`\d{4}\s*-\s*\d{4}`),     // YYYY - YYYY
	}
)

const specialBullets = "•◦▪■●○"

// AuditFormatting runs the ATS-compatibility checks in fixed order and
// returns a human-readable issue string per failed check.
func AuditFormatting(resumeText string) []string {
	issues := []string{}

	if tablePattern.MatchString(resumeText) {
		issues = append(issues, "Contains table formatting which may not be ATS-friendly")
	}

	if imageRefPattern.MatchString(resumeText) {
		issues = append(issues, "Contains image/file references - ATS systems cannot read embedded images")
	}

	if strings.ContainsAny(resumeText, specialBullets) {
		issues = append(issues, "Uses special bullet characters - consider using standard hyphens (-) or asterisks (*)")
	}

	if wideSpacePattern.MatchString(resumeText) {
		issues = append(issues, "Possible multi-column layout detected - use single column format for better ATS compatibility")
	}

	if !emailPattern.MatchString(resumeText) {
		issues = append(issues, "Missing or improperly formatted email address")
	}

	if !phonePattern.MatchString(resumeText) {
		issues = append(issues, "Missing or improperly formatted phone number")
	}

	found := 0
	for _, p := range datePatterns {
		if p.MatchString(resumeText) {
			found++
		}
	}
	if found > 2 {
		issues = append(issues, "Inconsistent date formats detected - use consistent format throughout")
	}

	return issues
}
