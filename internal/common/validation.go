package common

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateOutputFormat checks a requested format against the configured
// allow-list. An empty allow-list accepts any format.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}
	return fmt.Errorf("unsupported output format %q (supported: %s)",
		format, strings.Join(supportedFormats, ", "))
}

// GetSupportedFormats exposes the configured format allow-list, used by
// shell completion for the --format flag.
func GetSupportedFormats(supportedFormats []string) []string {
	return supportedFormats
}
