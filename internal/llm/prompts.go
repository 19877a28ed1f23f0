package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/structure.txt
	structurePrompt string
	//go:embed prompts/overview.txt
	overviewPrompt string
	//go:embed prompts/metrics_summary.txt
	metricsSummaryPrompt string
	//go:embed prompts/key_findings.txt
	keyFindingsPrompt string
	//go:embed prompts/recommendations.txt
	recommendationsPrompt string
	//go:embed prompts/judge.txt
	judgePrompt string
)

// Report sections, in assembly order.
const (
	SectionOverview        = "overview"
	SectionMetricsSummary  = "metrics_summary"
	SectionKeyFindings     = "key_findings"
	SectionRecommendations = "recommendations"
)

// SectionOrder fixes the order sections are generated and assembled in.
var SectionOrder = []string{
	SectionOverview,
	SectionMetricsSummary,
	SectionKeyFindings,
	SectionRecommendations,
}

// BuildStructurePrompt renders the data-structuring prompt around the
// extracted metrics table text and release versions.
func BuildStructurePrompt(tableText string, versions []string) []Message {
	content := render(structurePrompt, map[string]string{
		"TABLE_TEXT": tableText,
		"VERSIONS":   quoteJoin(versions),
	})
	return []Message{
		{Role: RoleSystem, Content: "You are a data architect. You transform unstructured release data into clean, valid JSON. Output JSON only."},
		{Role: RoleUser, Content: content},
	}
}

// BuildSectionPrompt renders the prompt for one report section against the
// annotated metrics JSON.
func BuildSectionPrompt(section, metricsJSON string, versions []string) []Message {
	var tmpl string
	switch section {
	case SectionOverview:
		tmpl = overviewPrompt
	case SectionMetricsSummary:
		tmpl = metricsSummaryPrompt
	case SectionKeyFindings:
		tmpl = keyFindingsPrompt
	case SectionRecommendations:
		tmpl = recommendationsPrompt
	default:
		tmpl = overviewPrompt
	}
	content := render(tmpl, map[string]string{
		"METRICS_JSON": metricsJSON,
		"VERSIONS":     quoteJoin(versions),
	})
	return []Message{
		{Role: RoleSystem, Content: "You are a technical writer producing structured software metrics reports in markdown."},
		{Role: RoleUser, Content: content},
	}
}

// BuildJudgePrompt renders the report-quality evaluation prompt.
func BuildJudgePrompt(sourceText, generatedReport string) []Message {
	content := render(judgePrompt, map[string]string{
		"SOURCE_TEXT": sourceText,
		"REPORT":      generatedReport,
	})
	return []Message{
		{Role: RoleUser, Content: content},
	}
}

func render(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func quoteJoin(versions []string) string {
	quoted := make([]string, 0, len(versions))
	for _, v := range versions {
		quoted = append(quoted, `"`+v+`"`)
	}
	return strings.Join(quoted, ", ")
}
