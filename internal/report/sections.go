package report

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSectionMissing indicates the repaired report lost a required section.
var ErrSectionMissing = errors.New("report section missing")

// RequiredSections are the literal headings every finished report must carry.
var RequiredSections = []string{
	"# Software Metrics Report",
	"## Overview",
	"## Metrics Summary",
	"## Key Findings",
	"## Recommendations",
}

// CheckSections verifies all required sections are present after repair.
// Absence is a hard failure: the repair pass does not attempt further fixes.
func CheckSections(md string) error {
	for _, section := range RequiredSections {
		if !strings.Contains(md, section) {
			return fmt.Errorf("%w: %s", ErrSectionMissing, section)
		}
	}
	return nil
}
