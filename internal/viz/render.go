// Package viz renders the annotated metrics document into PNG charts.
package viz

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"rrr-backend/internal/metrics"
	"rrr-backend/internal/shared/telemetry"
)

const (
	chartWidth  = 1024
	chartHeight = 512
)

var (
	atlsColor = drawing.ColorFromHex("4c78a8")
	btlsColor = drawing.ColorFromHex("f58518")
	passColor = drawing.ColorFromHex("54a24b")
	failColor = drawing.ColorFromHex("e45756")
	barColor  = drawing.ColorFromHex("4c78a8")
)

// Render draws one chart per metric into outDir and returns the written file
// paths. Grouped metrics get interleaved ATLS/BTLS bars, coverage metrics get
// release trend lines, the UAT metric gets per-client pass/fail bars, and the
// remaining metrics get plain bars. A metric whose series is absent or too
// short is skipped with a log line rather than failing the run.
func Render(doc metrics.Document, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create visualization dir: %w", err)
	}

	var written []string
	for _, metric := range metrics.ExpectedMetrics {
		value, ok := doc.Metrics[metric]
		if !ok {
			telemetry.Warn("viz.metric.missing", map[string]any{"metric": metric})
			continue
		}

		var (
			path string
			err  error
		)
		switch {
		case metrics.IsGrouped(metric):
			path, err = renderGrouped(metric, value, outDir)
		case metric == metrics.UATMetric:
			paths, uatErr := renderUAT(value, outDir)
			if uatErr != nil {
				err = uatErr
			} else {
				written = append(written, paths...)
			}
		case isCoverageMetric(metric):
			path, err = renderTrendLine(metric, value, outDir)
		default:
			path, err = renderBars(metric, value, outDir)
		}
		if err != nil {
			telemetry.Warn("viz.render.failed", map[string]any{
				"metric": metric,
				"error":  err.Error(),
			})
			continue
		}
		if path != "" {
			written = append(written, path)
		}
	}
	return written, nil
}

func isCoverageMetric(metric string) bool {
	return strings.HasSuffix(metric, "Test Coverage")
}

// renderGrouped draws interleaved ATLS/BTLS bars, one pair per release.
func renderGrouped(metric string, value any, outDir string) (string, error) {
	group, ok := value.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%s: grouped series is not an object", metric)
	}

	var bars []chart.Value
	var maxVal float64
	for _, track := range metrics.EnvironmentTracks {
		color := atlsColor
		if track == "BTLS" {
			color = btlsColor
		}
		for _, point := range seriesPoints(group[track]) {
			version, _ := point["version"].(string)
			val, _ := pointNumber(point, "value")
			if val > maxVal {
				maxVal = val
			}
			bars = append(bars, chart.Value{
				Label: fmt.Sprintf("%s %s", version, track),
				Value: val,
				Style: chart.Style{FillColor: color, StrokeColor: color},
			})
		}
	}
	if len(bars) == 0 {
		return "", fmt.Errorf("%s: no points to draw", metric)
	}

	path := filepath.Join(outDir, fileName(metric)+"_atls_btls.png")
	return path, writeBarChart(path, metric+" by Release (ATLS vs BTLS)", bars, maxVal)
}

// renderTrendLine draws a coverage metric as a release trend line.
func renderTrendLine(metric string, value any, outDir string) (string, error) {
	points := seriesPoints(value)
	if len(points) < 2 {
		return "", fmt.Errorf("%s: need at least 2 points for a trend line", metric)
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	ticks := make([]chart.Tick, len(points))
	var maxVal float64
	for i, point := range points {
		version, _ := point["version"].(string)
		val, _ := pointNumber(point, "value")
		xs[i] = float64(i)
		ys[i] = val
		ticks[i] = chart.Tick{Value: float64(i), Label: version}
		if val > maxVal {
			maxVal = val
		}
	}

	graph := chart.Chart{
		Title:  metric + " by Release",
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Ticks: ticks},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: axisMax(maxVal)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    metric,
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: barColor, StrokeWidth: 2},
			},
		},
	}

	path := filepath.Join(outDir, fileName(metric)+"_trend.png")
	return path, renderToFile(path, func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}

// renderBars draws a flat metric as one bar per release.
func renderBars(metric string, value any, outDir string) (string, error) {
	points := seriesPoints(value)
	if len(points) == 0 {
		return "", fmt.Errorf("%s: no points to draw", metric)
	}

	var bars []chart.Value
	var maxVal float64
	for _, point := range points {
		version, _ := point["version"].(string)
		val, _ := pointNumber(point, "value")
		if val > maxVal {
			maxVal = val
		}
		bars = append(bars, chart.Value{
			Label: version,
			Value: val,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		})
	}

	path := filepath.Join(outDir, fileName(metric)+".png")
	return path, writeBarChart(path, metric+" by Release", bars, maxVal)
}

// renderUAT draws one pass/fail chart per tracked client.
func renderUAT(value any, outDir string) ([]string, error) {
	group, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("uat: series is not an object")
	}

	var written []string
	for _, client := range metrics.UATClients {
		points := seriesPoints(group[client])
		if len(points) == 0 {
			continue
		}
		var bars []chart.Value
		var maxVal float64
		for _, point := range points {
			version, _ := point["version"].(string)
			pass, _ := pointNumber(point, "pass_count")
			fail, _ := pointNumber(point, "fail_count")
			if pass > maxVal {
				maxVal = pass
			}
			if fail > maxVal {
				maxVal = fail
			}
			bars = append(bars,
				chart.Value{
					Label: version + " pass",
					Value: pass,
					Style: chart.Style{FillColor: passColor, StrokeColor: passColor},
				},
				chart.Value{
					Label: version + " fail",
					Value: fail,
					Style: chart.Style{FillColor: failColor, StrokeColor: failColor},
				})
		}

		path := filepath.Join(outDir, fmt.Sprintf("uat_%s_pass_fail.png", strings.ToLower(client)))
		if err := writeBarChart(path, fmt.Sprintf("UAT %s Pass/Fail by Release", client), bars, maxVal); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeBarChart(path, title string, bars []chart.Value, maxVal float64) error {
	graph := chart.BarChart{
		Title:    title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 48,
		Bars:     bars,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: axisMax(maxVal)},
		},
	}
	return renderToFile(path, func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}

func renderToFile(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// axisMax keeps the y-axis range non-degenerate for all-zero series.
func axisMax(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	return maxVal * 1.1
}

// seriesPoints decodes and version-sorts a point list, tolerating malformed
// entries the same way the trend annotator does.
func seriesPoints(value any) []map[string]any {
	raw, ok := value.([]any)
	if !ok {
		return nil
	}
	points := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if p, ok := item.(map[string]any); ok {
			points = append(points, p)
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		vi, _ := points[i]["version"].(string)
		vj, _ := points[j]["version"].(string)
		return vi < vj
	})
	return points
}

func pointNumber(point map[string]any, key string) (float64, bool) {
	switch v := point[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// fileName flattens a metric name into a filesystem-safe stem.
func fileName(metric string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		" ", "_",
		"(", "",
		")", "",
		"-", "_",
	)
	return strings.ToLower(replacer.Replace(metric))
}
