package metrics

import "log"

// Validate checks a decoded candidate object against the fixed metrics schema.
// It is the acceptance gate for every recovery tier: any structural problem
// returns false after a diagnostic log, never an error.
func Validate(candidate map[string]any) bool {
	raw, ok := candidate["metrics"]
	if !ok {
		log.Printf("metrics validate: missing 'metrics' key")
		return false
	}
	data, ok := raw.(map[string]any)
	if !ok {
		log.Printf("metrics validate: 'metrics' is not an object")
		return false
	}

	for _, metric := range ExpectedMetrics {
		value, ok := data[metric]
		if !ok {
			log.Printf("metrics validate: missing expected metric %q", metric)
			return false
		}

		switch {
		case IsGrouped(metric):
			group, ok := value.(map[string]any)
			if !ok {
				log.Printf("metrics validate: %q is not an ATLS/BTLS group", metric)
				return false
			}
			for _, track := range EnvironmentTracks {
				if !validSeries(group[track], metric+"-"+track) {
					return false
				}
			}
		case metric == UATMetric:
			group, ok := value.(map[string]any)
			if !ok {
				log.Printf("metrics validate: %q is not a UAT group", metric)
				return false
			}
			for _, client := range UATClients {
				if !validUATSeries(group[client], metric+"-"+client) {
					return false
				}
			}
		default:
			if !validSeries(value, metric) {
				return false
			}
		}
	}
	return true
}

func validSeries(value any, label string) bool {
	items, ok := value.([]any)
	if !ok {
		log.Printf("metrics validate: %s is not a list", label)
		return false
	}
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			log.Printf("metrics validate: %s item is not an object", label)
			return false
		}
		if !validString(item["version"]) {
			log.Printf("metrics validate: %s item has invalid version", label)
			return false
		}
		if !validNumber(item["value"]) {
			log.Printf("metrics validate: %s item has invalid value", label)
			return false
		}
		if !validStatusField(item["status"]) {
			log.Printf("metrics validate: %s item has invalid status", label)
			return false
		}
	}
	return true
}

func validUATSeries(value any, label string) bool {
	items, ok := value.([]any)
	if !ok {
		log.Printf("metrics validate: %s is not a list", label)
		return false
	}
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			log.Printf("metrics validate: %s item is not an object", label)
			return false
		}
		if !validString(item["version"]) {
			log.Printf("metrics validate: %s item has invalid version", label)
			return false
		}
		if !validNumber(item["pass_count"]) || !validNumber(item["fail_count"]) {
			log.Printf("metrics validate: %s item has invalid pass/fail counts", label)
			return false
		}
		if !validStatusField(item["status"]) {
			log.Printf("metrics validate: %s item has invalid status", label)
			return false
		}
	}
	return true
}

func validString(v any) bool {
	s, ok := v.(string)
	return ok && s != ""
}

// validNumber accepts the numeric shapes encoding/json produces plus plain Go
// ints, which the default-document builder uses.
func validNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64:
		return true
	default:
		return false
	}
}

func validStatusField(v any) bool {
	s, ok := v.(string)
	return ok && ValidStatus(s)
}
