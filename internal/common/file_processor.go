package common

import (
	"fmt"
	"os"
	"path/filepath"

	"careercatalyst/internal/errors"
	"careercatalyst/internal/extract"
	"careercatalyst/internal/utils"
)

// FileProcessor reads resume documents and writes rendered output files
type FileProcessor struct {
	logger *errors.Logger
}

func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadDocument reads a resume document and extracts its plain text.
// PDF and DOCX files are converted; TXT files are read directly.
func (fp *FileProcessor) ReadDocument(filename string) (string, error) {
	if err := utils.ValidateInputFile(filename); err != nil {
		return "", errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		code := errors.ErrCodeFileNotReadable
		if os.IsNotExist(err) {
			code = errors.ErrCodeFileNotFound
		}
		return "", errors.NewIOError(code, fmt.Sprintf("Cannot read file: %s", filename), err)
	}

	// Markdown and other text-based resumes need no conversion
	if utils.IsTextFile(filename) {
		return string(data), nil
	}

	if fp.logger != nil {
		fp.logger.Debug("Extracting document text",
			"file", filename, "size", utils.FormatFileSize(int64(len(data))))
	}

	return extract.FromFile(filename, data)
}

// WriteFile writes rendered output, creating parent directories as needed
func (fp *FileProcessor) WriteFile(filename, content string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

// ValidateOutputFile checks an output path; empty means stdout and is valid
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}
	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}
