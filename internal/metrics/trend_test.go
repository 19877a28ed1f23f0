package metrics

import (
	"testing"
)

func flatSeries(values ...float64) []any {
	items := make([]any, 0, len(values))
	for i, v := range values {
		items = append(items, map[string]any{
			"version": version(i),
			"value":   v,
			"status":  "ON TRACK",
		})
	}
	return items
}

func version(i int) string {
	return []string{"25.1", "25.2", "25.3", "25.4"}[i]
}

func docWithFlat(metric string, items []any) Document {
	doc := DefaultDocument([]string{"25.1", "25.2"})
	doc.Metrics[metric] = items
	doc.Synthesized = false
	return doc
}

func trendOf(t *testing.T, items []any, i int) string {
	t.Helper()
	trend, ok := items[i].(map[string]any)["trend"].(string)
	if !ok {
		t.Fatalf("point %d has no trend", i)
	}
	return trend
}

func TestAnnotateThresholds(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   string
	}{
		{"below one percent", []float64{100, 100.5}, "→"},
		{"five percent up", []float64{100, 105}, "↑ (5.0%)"},
		{"six percent down", []float64{100, 94}, "↓ (6.0%)"},
		{"below raw delta", []float64{100, 100.005}, "→"},
		{"previous zero", []float64{0, 50}, "→"},
		{"current zero", []float64{50, 0}, "→"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := flatSeries(tc.values...)
			Annotate(docWithFlat("E2E Test Coverage", items))
			if got := trendOf(t, items, 1); got != tc.want {
				t.Fatalf("values %v: trend = %q, want %q", tc.values, got, tc.want)
			}
		})
	}
}

func TestAnnotateFirstPointAlwaysFlat(t *testing.T) {
	doc := DefaultDocument([]string{"25.1", "25.2", "25.3"})
	Annotate(doc)

	for metric, value := range doc.Metrics {
		switch {
		case IsGrouped(metric):
			group := value.(map[string]any)
			for _, track := range EnvironmentTracks {
				items := sortedPoints(group[track])
				if got := items[0]["trend"]; got != "→" {
					t.Fatalf("%s/%s first point trend = %v", metric, track, got)
				}
			}
		case metric == UATMetric:
			group := value.(map[string]any)
			for _, client := range UATClients {
				items := sortedPoints(group[client])
				if got := items[0]["trend"]; got != "→" {
					t.Fatalf("%s/%s first point trend = %v", metric, client, got)
				}
			}
		default:
			items := sortedPoints(value)
			if got := items[0]["trend"]; got != "→" {
				t.Fatalf("%s first point trend = %v", metric, got)
			}
		}
	}
}

func TestAnnotateSortsByVersion(t *testing.T) {
	items := []any{
		map[string]any{"version": "25.2", "value": float64(110), "status": "ON TRACK"},
		map[string]any{"version": "25.1", "value": float64(100), "status": "ON TRACK"},
	}
	Annotate(docWithFlat("Unit Test Coverage", items))

	// 25.1 is chronologically first despite its position in the stored list.
	if got := trendOf(t, items, 1); got != "→" {
		t.Fatalf("25.1 trend = %q, want →", got)
	}
	if got := trendOf(t, items, 0); got != "↑ (10.0%)" {
		t.Fatalf("25.2 trend = %q, want ↑ (10.0%%)", got)
	}
}

func TestAnnotateUATPassRate(t *testing.T) {
	items := []any{
		map[string]any{"version": "25.1", "pass_count": float64(40), "fail_count": float64(10), "status": "ON TRACK"},
		map[string]any{"version": "25.2", "pass_count": float64(0), "fail_count": float64(0), "status": "NEEDS REVIEW"},
		map[string]any{"version": "25.3", "pass_count": float64(90), "fail_count": float64(10), "status": "ON TRACK"},
	}
	doc := DefaultDocument([]string{"25.1", "25.2"})
	doc.Metrics[UATMetric].(map[string]any)["RBS"] = items
	Annotate(doc)

	first := items[0].(map[string]any)
	if got := first["pass_rate"].(float64); got != 80.0 {
		t.Fatalf("pass_rate = %v, want 80.0", got)
	}
	second := items[1].(map[string]any)
	if got := second["pass_rate"].(float64); got != 0.0 {
		t.Fatalf("zero-denominator pass_rate = %v, want 0", got)
	}
	// Zero totals on either side force a flat marker.
	if got := trendOf(t, items, 1); got != "→" {
		t.Fatalf("trend after zero total = %q, want →", got)
	}
	if got := trendOf(t, items, 2); got != "→" {
		t.Fatalf("trend from zero total = %q, want →", got)
	}
}

func TestAnnotateUATPercentagePointDelta(t *testing.T) {
	items := []any{
		map[string]any{"version": "25.1", "pass_count": float64(80), "fail_count": float64(20), "status": "ON TRACK"},
		map[string]any{"version": "25.2", "pass_count": float64(90), "fail_count": float64(10), "status": "ON TRACK"},
	}
	doc := DefaultDocument([]string{"25.1", "25.2"})
	doc.Metrics[UATMetric].(map[string]any)["Belk"] = items
	Annotate(doc)

	// 80% -> 90% is a 10.0 percentage-point rise, not 12.5%.
	if got := trendOf(t, items, 1); got != "↑ (10.0%)" {
		t.Fatalf("UAT trend = %q, want ↑ (10.0%%)", got)
	}
}

func TestAnnotateIsDeterministicOnRerun(t *testing.T) {
	items := flatSeries(100, 105, 94.5)
	doc := docWithFlat("Defect Closure Rate", items)
	Annotate(doc)
	first := trendOf(t, items, 1)
	Annotate(doc)
	if got := trendOf(t, items, 1); got != first {
		t.Fatalf("re-annotation changed trend: %q -> %q", first, got)
	}
}
