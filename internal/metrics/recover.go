package metrics

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"rrr-backend/internal/shared/telemetry"
)

var (
	fencedJSONRe    = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
)

// Recover turns raw model output into a schema-valid Document. It is a total
// function: each extraction tier is tried in order and gated by Validate, and
// when every tier fails a deterministic default document is synthesized from
// the fallback versions. Callers always get a usable document back.
func Recover(raw string, fallbackVersions []string) Document {
	for _, tier := range []struct {
		name    string
		extract func(string) (string, bool)
	}{
		{"direct", tierDirect},
		{"fenced_block", tierFencedBlock},
		{"brace_slice", tierBraceSlice},
	} {
		candidate, ok := tier.extract(raw)
		if !ok {
			continue
		}
		var parsed map[string]any
		if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
			log.Printf("metrics recover: tier %s parse failed: %v", tier.name, err)
			continue
		}
		if !Validate(parsed) {
			log.Printf("metrics recover: tier %s produced schema-invalid document", tier.name)
			continue
		}
		data, _ := parsed["metrics"].(map[string]any)
		return Document{Metrics: data}
	}

	telemetry.Warn("metrics.recover.exhausted", map[string]any{
		"fallback_versions": fallbackVersions,
		"raw_prefix":        prefix(raw, 200),
	})
	return DefaultDocument(fallbackVersions)
}

func tierDirect(raw string) (string, bool) {
	return raw, true
}

func tierFencedBlock(raw string) (string, bool) {
	m := fencedJSONRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// tierBraceSlice takes the first-{ to last-} substring and applies two textual
// repairs: single quotes become double quotes, and trailing commas before a
// closing bracket or brace are stripped.
func tierBraceSlice(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	candidate := raw[start : end+1]
	candidate = strings.ReplaceAll(candidate, "'", `"`)
	candidate = trailingCommaRe.ReplaceAllString(candidate, "$1")
	return candidate, true
}

// DefaultDocument synthesizes a schema-valid document from the given release
// versions: the first version gets value 10, every later one 0, all statuses
// NEEDS REVIEW. ATLS and BTLS series are identical; UAT clients get
// pass_count=10, fail_count=0 for every version. The result is deterministic
// for a given version list.
func DefaultDocument(versions []string) Document {
	data := make(map[string]any, len(ExpectedMetrics))
	for _, metric := range ExpectedMetrics {
		switch {
		case IsGrouped(metric):
			data[metric] = map[string]any{
				"ATLS": defaultSeries(versions),
				"BTLS": defaultSeries(versions),
			}
		case metric == UATMetric:
			group := make(map[string]any, len(UATClients))
			for _, client := range UATClients {
				group[client] = defaultUATSeries(versions)
			}
			data[metric] = group
		default:
			data[metric] = defaultSeries(versions)
		}
	}
	return Document{Metrics: data, Synthesized: true}
}

func defaultSeries(versions []string) []any {
	items := make([]any, 0, len(versions))
	for i, v := range versions {
		value := float64(0)
		if i == 0 {
			value = 10
		}
		items = append(items, map[string]any{
			"version": v,
			"value":   value,
			"status":  "NEEDS REVIEW",
		})
	}
	return items
}

func defaultUATSeries(versions []string) []any {
	items := make([]any, 0, len(versions))
	for _, v := range versions {
		items = append(items, map[string]any{
			"version":    v,
			"pass_count": float64(10),
			"fail_count": float64(0),
			"status":     "NEEDS REVIEW",
		})
	}
	return items
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
