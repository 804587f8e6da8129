package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	for _, format := range supported {
		assert.NoError(t, ValidateOutputFormat(format, supported))
	}

	err := ValidateOutputFormat("yaml", supported)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported output format "yaml"`)
	assert.Contains(t, err.Error(), "json, text, markdown")
}

func TestValidateOutputFormatIsCaseSensitive(t *testing.T) {
	assert.Error(t, ValidateOutputFormat("JSON", []string{"json"}))
	assert.Error(t, ValidateOutputFormat("", []string{"json"}))
}

func TestValidateOutputFormatEmptyAllowListAcceptsAnything(t *testing.T) {
	assert.NoError(t, ValidateOutputFormat("yaml", nil))
	assert.NoError(t, ValidateOutputFormat("anything", []string{}))
}

func TestGetSupportedFormats(t *testing.T) {
	formats := []string{"json", "text"}
	assert.Equal(t, formats, GetSupportedFormats(formats))
	assert.Empty(t, GetSupportedFormats(nil))
}
