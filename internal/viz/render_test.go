package viz

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rrr-backend/internal/metrics"
)

func TestRenderWritesAChartPerMetric(t *testing.T) {
	dir := t.TempDir()
	doc := metrics.Annotate(metrics.DefaultDocument([]string{"25.1", "25.2"}))

	written, err := Render(doc, dir)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	// 5 grouped + 3 coverage lines + 2 flat bars + 3 UAT clients.
	if len(written) != 13 {
		t.Fatalf("written %d charts, want 13: %v", len(written), written)
	}
	for _, path := range written {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", path)
		}
		if filepath.Ext(path) != ".png" {
			t.Fatalf("%s is not a png", path)
		}
	}

	wantNames := []string{
		"open_all_rrr_defects_atls_btls.png",
		"load_performance_atls_btls.png",
		"e2e_test_coverage_trend.png",
		"defect_closure_rate.png",
		"regression_issues.png",
		"uat_rbs_pass_fail.png",
		"uat_tesco_pass_fail.png",
		"uat_belk_pass_fail.png",
	}
	joined := strings.Join(written, "\n")
	for _, name := range wantNames {
		if !strings.Contains(joined, name) {
			t.Fatalf("missing chart %s in:\n%s", name, joined)
		}
	}
}

func TestRenderSkipsMissingMetrics(t *testing.T) {
	dir := t.TempDir()
	doc := metrics.DefaultDocument([]string{"25.1", "25.2"})
	delete(doc.Metrics, "Defect Closure Rate")
	delete(doc.Metrics, metrics.UATMetric)

	written, err := Render(doc, dir)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(written) != 9 {
		t.Fatalf("written %d charts, want 9: %v", len(written), written)
	}
	for _, path := range written {
		if strings.Contains(path, "defect_closure_rate") || strings.Contains(path, "uat_") {
			t.Fatalf("unexpected chart %s", path)
		}
	}
}

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"Load/Performance":                "load_performance",
		"Open ALL RRR Defects":            "open_all_rrr_defects",
		"Customer Specific Testing (UAT)": "customer_specific_testing_uat",
		"All Open Defects (T-1)":          "all_open_defects_t_1",
	}
	for in, want := range cases {
		if got := fileName(in); got != want {
			t.Fatalf("fileName(%q) = %q, want %q", in, got, want)
		}
	}
}
