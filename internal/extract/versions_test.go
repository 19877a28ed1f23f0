package extract

import (
	"reflect"
	"testing"
)

func TestVersionsFromFilenames(t *testing.T) {
	cases := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "dotted versions sorted numerically",
			paths: []string{"/reports/RRR_25.10.pdf", "/reports/RRR_25.2.pdf", "/reports/RRR_25.1.pdf"},
			want:  []string{"25.1", "25.2", "25.10"},
		},
		{
			name:  "three part versions",
			paths: []string{"/r/RRR_25.1.2.pdf", "/r/RRR_25.1.pdf"},
			want:  []string{"25.1", "25.1.2"},
		},
		{
			name:  "duplicates collapse",
			paths: []string{"/r/RRR_25.1.pdf", "/r/rrr_25.1_copy.pdf"},
			want:  []string{"25.1"},
		},
		{
			name:  "stem fallback sorts lexicographically",
			paths: []string{"/r/beta.pdf", "/r/alpha.pdf"},
			want:  []string{"alpha", "beta"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := VersionsFromFilenames(tc.paths)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLocateTable(t *testing.T) {
	text := "preamble " + StartHeader + " metric rows here " + EndHeader + " trailer"
	table, err := LocateTable(text, StartHeader, EndHeader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table != StartHeader+" metric rows here" {
		t.Fatalf("unexpected table slice: %q", table)
	}

	if _, err := LocateTable("no headers at all", StartHeader, EndHeader); err == nil {
		t.Fatalf("expected error for missing headers")
	}
	if _, err := LocateTable(StartHeader+" only start", StartHeader, EndHeader); err == nil {
		t.Fatalf("expected error for missing end header")
	}
}

func TestNormalizeFolderPath(t *testing.T) {
	if got := NormalizeFolderPath(`C:\reports\\q3`); got != "C:/reports/q3" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeFolderPath("/data//reports/"); got != "/data/reports" {
		t.Fatalf("got %q", got)
	}
}
