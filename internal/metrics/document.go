// Package metrics holds the canonical release-metrics document shared by the
// report and chart stages, plus the validation, recovery, and trend logic that
// turns raw model output into that document.
package metrics

// Expected metric names, in report order. The first five carry ATLS/BTLS
// sub-series; the UAT metric carries per-client pass/fail series; the rest are
// flat series.
var ExpectedMetrics = []string{
	"Open ALL RRR Defects",
	"Open Security Defects",
	"All Open Defects (T-1)",
	"All Security Open Defects",
	"Load/Performance",
	"E2E Test Coverage",
	"Automation Test Coverage",
	"Unit Test Coverage",
	"Defect Closure Rate",
	"Regression Issues",
	"Customer Specific Testing (UAT)",
}

// UATMetric is the one metric broken down per named client.
const UATMetric = "Customer Specific Testing (UAT)"

// UATClients lists the tracked UAT clients, in report order.
var UATClients = []string{"RBS", "Tesco", "Belk"}

// EnvironmentTracks are the two parallel test-environment series.
var EnvironmentTracks = []string{"ATLS", "BTLS"}

// validStatuses enumerates every status value a point may carry.
var validStatuses = map[string]struct{}{
	"ON TRACK":     {},
	"MEDIUM RISK":  {},
	"HIGH RISK":    {},
	"LOW RISK":     {},
	"RISK":         {},
	"NEEDS REVIEW": {},
}

// Document is the root metrics payload. Metrics maps each expected metric name
// to either a grouped object (ATLS/BTLS or UAT clients) of point lists, or a
// flat point list. Points are generic JSON objects so that the validator can
// check raw decoded output field by field, the same way it arrives off the
// wire.
type Document struct {
	Metrics map[string]any `json:"metrics"`

	// Synthesized marks a default document produced after exhausted recovery.
	// It is deliberately kept off the wire: the external shape of a default
	// document is indistinguishable from a model-derived one.
	Synthesized bool `json:"-"`
}

// IsGrouped reports whether the metric carries ATLS/BTLS sub-series.
func IsGrouped(metric string) bool {
	for _, m := range ExpectedMetrics[:5] {
		if m == metric {
			return true
		}
	}
	return metric == "Load/Performance"
}

// ValidStatus reports whether s is one of the enumerated status values.
func ValidStatus(s string) bool {
	_, ok := validStatuses[s]
	return ok
}
