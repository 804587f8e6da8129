// Package extract pulls plain text out of uploaded resume documents.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"careercatalyst/internal/errors"
	"careercatalyst/internal/utils"
)

// FromFile extracts text from a document, dispatching on the file
// extension. PDF, DOCX and plain text files are supported.
func FromFile(fileName string, data []byte) (string, error) {
	switch utils.GetFileExtension(fileName) {
	case ".pdf":
		text, err := fromPDF(data)
		if err != nil {
			return "", errors.NewExtractError(errors.ErrCodeExtractionFailed,
				"error processing PDF file", err).WithContext("file_name", fileName)
		}
		return text, nil
	case ".docx":
		text, err := fromDOCX(data)
		if err != nil {
			return "", errors.NewExtractError(errors.ErrCodeExtractionFailed,
				"error processing DOCX file", err).WithContext("file_name", fileName)
		}
		return text, nil
	case ".txt":
		return string(data), nil
	default:
		return "", errors.NewExtractError(errors.ErrCodeUnsupportedFile,
			"unsupported file type. Only PDF, DOCX, and TXT files are supported", nil).
			WithContext("file_name", fileName)
	}
}

func fromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fromDOCX reads word/document.xml out of the OOXML archive and strips
// the markup, inserting newlines at paragraph and line break boundaries.
func fromDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.NewExtractError(errors.ErrCodeExtractionFailed,
			"document.xml not found in DOCX archive", nil)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
