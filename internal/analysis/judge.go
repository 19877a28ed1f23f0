package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

// Evaluation is the judge's verdict on a finished report.
type Evaluation struct {
	Score int    `json:"score"`
	Text  string `json:"text"`
}

const (
	defaultScore    = 50
	defaultVerdict  = "Could not parse evaluation"
	judgeScoreMax   = 100
	judgeScoreFloor = 0
)

var (
	scoreRe   = regexp.MustCompile(`(?i)score:\s*(\d+)`)
	verdictRe = regexp.MustCompile(`(?is)evaluation:\s*(.+)`)
)

// parseEvaluation reads the Score/Evaluation lines out of the judge's reply.
// Each field degrades independently to its default when absent or malformed.
func parseEvaluation(raw string) Evaluation {
	eval := Evaluation{Score: defaultScore, Text: defaultVerdict}

	if m := scoreRe.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			if n < judgeScoreFloor {
				n = judgeScoreFloor
			}
			if n > judgeScoreMax {
				n = judgeScoreMax
			}
			eval.Score = n
		}
	}
	if m := verdictRe.FindStringSubmatch(raw); m != nil {
		if text := strings.TrimSpace(m[1]); text != "" {
			eval.Text = text
		}
	}
	return eval
}
