package extract

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Hyperlink is a link annotation found in a report, with a little surrounding
// page text for context.
type Hyperlink struct {
	URL        string `json:"url"`
	Context    string `json:"context"`
	Page       int    `json:"page"`
	SourceFile string `json:"source_file"`
}

const contextRadius = 50

// Hyperlinks walks every page's link annotations. Extraction is best-effort:
// unreadable annotations are logged and skipped, never fatal.
func Hyperlinks(path string) ([]Hyperlink, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract hyperlinks %s: %w", path, err)
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("extract hyperlinks %s: %w", path, err)
	}

	var links []Hyperlink
	source := filepath.Base(path)
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		annots := page.V.Key("Annots")
		if annots.Kind() != pdf.Array {
			continue
		}

		pageText := ""
		if text, err := page.GetPlainText(nil); err == nil {
			pageText = text
		} else {
			log.Printf("extract hyperlinks %s page %d: text unavailable: %v", source, pageNum, err)
		}

		for i := 0; i < annots.Len(); i++ {
			annot := annots.Index(i)
			if annot.Key("Subtype").Name() != "Link" {
				continue
			}
			action := annot.Key("A")
			if action.IsNull() {
				continue
			}
			uri := action.Key("URI")
			if uri.Kind() != pdf.String {
				continue
			}
			url := uri.RawString()
			if url == "" {
				continue
			}
			links = append(links, Hyperlink{
				URL:        url,
				Context:    contextAround(pageText, url),
				Page:       pageNum,
				SourceFile: source,
			})
		}
	}
	return links, nil
}

// contextAround returns up to contextRadius characters of page text on either
// side of the URL's occurrence. Link text rarely matches the URI itself, so a
// miss falls back to the start of the page.
func contextAround(text, url string) string {
	if text == "" {
		return ""
	}
	idx := strings.Index(text, url)
	if idx == -1 {
		idx = 0
	}
	start := idx - contextRadius
	if start < 0 {
		start = 0
	}
	end := idx + len(url) + contextRadius
	if end > len(text) {
		end = len(text)
	}
	return strings.TrimSpace(text[start:end])
}
