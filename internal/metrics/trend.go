package metrics

import (
	"fmt"
	"math"
	"sort"
)

// Thresholds below which consecutive points are considered unchanged.
const (
	minRawDelta = 0.01
	minPctDelta = 1.0
)

// Annotate computes a trend marker for every point in the document, in place,
// and returns the same document. Points are compared in lexicographic version
// order; the first point of each series always gets "→". Value metrics compare
// relative percent change, UAT series compare absolute percentage-point change
// of the pass rate, which is also computed and stored on each point.
// Recomputation over the same input is deterministic.
func Annotate(doc Document) Document {
	for metric, value := range doc.Metrics {
		switch {
		case IsGrouped(metric):
			group, ok := value.(map[string]any)
			if !ok {
				continue
			}
			for _, track := range EnvironmentTracks {
				annotateValueSeries(sortedPoints(group[track]))
			}
		case metric == UATMetric:
			group, ok := value.(map[string]any)
			if !ok {
				continue
			}
			for _, client := range UATClients {
				annotateUATSeries(sortedPoints(group[client]))
			}
		default:
			annotateValueSeries(sortedPoints(value))
		}
	}
	return doc
}

// sortedPoints returns the series points ordered by version string. The
// returned slice shares the underlying point objects with the document, so
// annotations land in place without reordering the stored series.
func sortedPoints(value any) []map[string]any {
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

func annotateValueSeries(points []map[string]any) {
	for i, point := range points {
		cur, curOK := pointNumber(point, "value")
		if i == 0 || !curOK || cur == 0 {
			point["trend"] = "→"
			continue
		}
		prev, prevOK := pointNumber(points[i-1], "value")
		if !prevOK || prev == 0 {
			point["trend"] = "→"
			continue
		}
		if math.Abs(cur-prev) < minRawDelta {
			point["trend"] = "→"
			continue
		}
		point["trend"] = trendMarker((cur - prev) / prev * 100)
	}
}

func annotateUATSeries(points []map[string]any) {
	for i, point := range points {
		pass, _ := pointNumber(point, "pass_count")
		fail, _ := pointNumber(point, "fail_count")
		total := pass + fail
		rate := 0.0
		if total > 0 {
			rate = pass / total * 100
		}
		point["pass_rate"] = math.Round(rate*10) / 10

		if i == 0 {
			point["trend"] = "→"
			continue
		}
		prevPass, _ := pointNumber(points[i-1], "pass_count")
		prevFail, _ := pointNumber(points[i-1], "fail_count")
		prevTotal := prevPass + prevFail
		prevRate := 0.0
		if prevTotal > 0 {
			prevRate = prevPass / prevTotal * 100
		}
		if prevTotal == 0 || total == 0 || math.Abs(rate-prevRate) < minRawDelta {
			point["trend"] = "→"
			continue
		}
		// Absolute percentage-point difference, not a relative change.
		point["trend"] = trendMarker(rate - prevRate)
	}
}

func trendMarker(pctChange float64) string {
	switch {
	case math.Abs(pctChange) < minPctDelta:
		return "→"
	case pctChange > 0:
		return fmt.Sprintf("↑ (%.1f%%)", math.Abs(pctChange))
	default:
		return fmt.Sprintf("↓ (%.1f%%)", math.Abs(pctChange))
	}
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
