package analysis

import "errors"

var (
	// ErrNoTables means no PDF in the folder carried the fixed metrics table.
	ErrNoTables = errors.New("no metrics tables extracted from folder")

	// ErrTooFewCharts means chart rendering produced fewer files than a
	// complete report needs.
	ErrTooFewCharts = errors.New("too few charts rendered")

	// ErrLLMUnavailable wraps transport failures that survived the retry
	// wrapper.
	ErrLLMUnavailable = errors.New("llm unavailable")
)
