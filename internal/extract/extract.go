// Package extract pulls text, metric tables, and hyperlinks out of release
// readiness PDFs using github.com/ledongthuc/pdf.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Literal headers bounding the fixed metrics table inside each report.
const (
	StartHeader = "Release Readiness Critical Metrics (Previous/Current):"
	EndHeader   = "Release Readiness Functional teams Deliverables Checklist:"
)

// ErrNoPDFs is returned when a folder holds no PDF files.
var ErrNoPDFs = errors.New("no PDF files found in folder")

var whitespaceRe = regexp.MustCompile(`\s+`)

// ListPDFs returns the full paths of all PDF files directly inside folder,
// sorted by name.
func ListPDFs(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("list pdfs in %s: %w", folder, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(folder, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPDFs, folder)
	}
	sort.Strings(paths)
	return paths, nil
}

// NormalizeFolderPath tolerates Windows-style separators in request payloads.
func NormalizeFolderPath(raw string) string {
	cleaned := strings.ReplaceAll(raw, `\`, "/")
	for strings.Contains(cleaned, "//") {
		cleaned = strings.ReplaceAll(cleaned, "//", "/")
	}
	return filepath.Clean(cleaned)
}

// Text extracts the whitespace-collapsed plain text of a PDF file.
func Text(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("extract text %s: %w", path, err)
	}
	return TextFromBytes(data, path)
}

// TextFromBytes extracts plain text from an in-memory PDF payload.
func TextFromBytes(data []byte, name string) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract text %s: %w", name, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text %s: %w", name, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("extract text %s: %w", name, err)
	}
	text := strings.TrimSpace(whitespaceRe.ReplaceAllString(buf.String(), " "))
	if text == "" {
		return "", fmt.Errorf("extract text %s: no text extracted", name)
	}
	return text, nil
}

// LocateTable slices the metrics table out of extracted text using the fixed
// start and end headers.
func LocateTable(text, startHeader, endHeader string) (string, error) {
	start := strings.Index(text, startHeader)
	if start == -1 {
		return "", fmt.Errorf("header %q not found in text", startHeader)
	}
	end := strings.Index(text, endHeader)
	if end == -1 {
		return "", fmt.Errorf("header %q not found in text", endHeader)
	}
	if end < start {
		return "", fmt.Errorf("end header precedes start header")
	}
	table := strings.TrimSpace(text[start:end])
	if table == "" {
		return "", fmt.Errorf("no metrics table data found between headers")
	}
	return table, nil
}
