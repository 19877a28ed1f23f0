// Package report repairs and checks the markdown produced by the
// report-writing stage. Model output routinely arrives with broken table
// headers, missing pipes, and stray fence markers; the repair pass applies a
// fixed sequence of textual transforms to normalize it.
package report

import (
	"regexp"
	"strings"
)

// stage is one named transform in the repair sequence. Stages run in a fixed
// order: later stages assume the normalization done by earlier ones, so the
// pipe-spacing cleanup must not run before rows and headers are rejoined.
type stage struct {
	name  string
	apply func(string) string
}

var stages = []stage{
	{"strip_fences", stripFences},
	{"strip_citations", stripCitations},
	{"rejoin_headers", rejoinHeaders},
	{"separator_rows", normalizeSeparators},
	{"close_rows", closeRows},
	{"pipe_spacing", normalizePipeSpacing},
	{"trend_glyphs", fixTrendGlyphs},
	{"bold_statuses", boldStatuses},
	{"heading_spacing", normalizeHeadings},
}

// Repair applies the fixed transform sequence to raw markdown. It is a pure
// string transform and best-effort: adversarial input may leave residual
// malformation, which the caller catches with the required-section check.
func Repair(raw string) string {
	out := raw
	for _, s := range stages {
		out = s.apply(out)
	}
	return out
}

var (
	fenceLineRe = regexp.MustCompile("(?m)^```(?:markdown)?[ \t]*\r?\n|\r?\n```[ \t]*$")
	citationRe  = regexp.MustCompile(`【[^】]*】`)

	fourColHeaderRe = regexp.MustCompile(`\|\s*Release\s*\|\s*\n\s*Value\s*\|\s*Trend\s*\|\s*Status\s*\|`)
	sixColHeaderRe  = regexp.MustCompile(`\|\s*Release\s*\|\s*\n\s*Pass Count\s*\|\s*Fail Count\s*\|\s*Pass Rate \(%\)\s*\|\s*Trend\s*\|\s*Status\s*\|`)

	fourColHeader = "| Release | Value | Trend | Status |"
	sixColHeader  = "| Release | Pass Count | Fail Count | Pass Rate (%) | Trend | Status |"

	multiSpaceCellRe = regexp.MustCompile(`([^|\s])[ \t]{2,}([^|\s])`)
	pipePaddingRe    = regexp.MustCompile(`[ \t]*\|[ \t]*`)
)

func stripFences(md string) string {
	return fenceLineRe.ReplaceAllString(md, "")
}

func stripCitations(md string) string {
	return citationRe.ReplaceAllString(md, "")
}

// rejoinHeaders collapses the two known header shapes the model tends to split
// across lines back into single-line pipe rows.
func rejoinHeaders(md string) string {
	md = fourColHeaderRe.ReplaceAllString(md, fourColHeader)
	md = sixColHeaderRe.ReplaceAllString(md, sixColHeader)
	return md
}

// normalizeSeparators rewrites the line after each table header to a separator
// row of matching column count, inserting one when the model left it out.
func normalizeSeparators(md string) string {
	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines)+8)
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		out = append(out, line)
		if !isHeaderRow(line) {
			continue
		}
		sep := separatorRow(columnCount(line))
		if i+1 < len(lines) && isSeparatorish(lines[i+1]) {
			out = append(out, sep)
			i++
			continue
		}
		out = append(out, sep)
	}
	return strings.Join(out, "\n")
}

func isHeaderRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") &&
		strings.Contains(trimmed, "Release") && strings.Contains(trimmed, "Status")
}

func isSeparatorish(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || !strings.Contains(trimmed, "-") {
		return false
	}
	return strings.Trim(trimmed, "-|: \t") == ""
}

func columnCount(row string) int {
	trimmed := strings.TrimSpace(row)
	n := strings.Count(trimmed, "|") - 1
	if n < 1 {
		n = 1
	}
	return n
}

func separatorRow(cols int) string {
	var b strings.Builder
	b.WriteString("|")
	for i := 0; i < cols; i++ {
		b.WriteString("---|")
	}
	return b.String()
}

// closeRows adds missing leading and trailing pipes to lines that look like
// table rows. Headings and prose are left alone.
func closeRows(md string) string {
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.Count(trimmed, "|") < 2 {
			continue
		}
		if !strings.HasPrefix(trimmed, "|") {
			trimmed = "| " + trimmed
		}
		if !strings.HasSuffix(trimmed, "|") {
			trimmed = trimmed + " |"
		}
		lines[i] = trimmed
	}
	return strings.Join(lines, "\n")
}

// normalizePipeSpacing collapses irregular inter-cell whitespace to
// single-space-padded pipes. It assumes rows are already closed, so it only
// touches lines that carry pipes.
func normalizePipeSpacing(md string) string {
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "|") {
			continue
		}
		line = multiSpaceCellRe.ReplaceAllString(line, "$1 | $2")
		line = pipePaddingRe.ReplaceAllString(line, " | ")
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

// fixTrendGlyphs replaces stray single-character trend artifacts the model
// emits in place of arrows.
func fixTrendGlyphs(md string) string {
	strays := map[string]struct{}{"4": {}, "t": {}, "/": {}}
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "|") {
			continue
		}
		cells := strings.Split(line, "|")
		for j, cell := range cells {
			if _, stray := strays[strings.TrimSpace(cell)]; stray {
				cells[j] = " → "
			}
		}
		lines[i] = strings.TrimSpace(strings.Join(cells, "|"))
	}
	return strings.Join(lines, "\n")
}

var statusOrder = []string{"MEDIUM RISK", "HIGH RISK", "LOW RISK", "ON TRACK", "NEEDS REVIEW"}

// boldStatuses wraps known status strings in emphasis markers. Existing
// markers are removed first so the stage stays idempotent.
func boldStatuses(md string) string {
	for _, status := range statusOrder {
		md = strings.ReplaceAll(md, "**"+status+"**", status)
		md = strings.ReplaceAll(md, status, "**"+status+"**")
	}
	return md
}

// normalizeHeadings makes every heading line be followed by exactly one blank
// line and trims list-item indentation.
func normalizeHeadings(md string) string {
	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines)+8)
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") {
			out = append(out, trimmed)
			continue
		}
		out = append(out, line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) == "" {
			i++
		}
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}
