package extract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var versionRe = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// VersionsFromFilenames derives the release identifiers for a set of report
// files: the first dotted-number match in each name, falling back to the
// filename stem, de-duplicated and sorted numerically where possible. When
// nothing usable is found, synthetic File_N identifiers are produced so the
// pipeline always has an ordered version list.
func VersionsFromFilenames(paths []string) []string {
	seen := make(map[string]struct{})
	var versions []string
	for _, path := range paths {
		name := filepath.Base(path)
		v := versionRe.FindString(name)
		if v == "" {
			v = strings.TrimSuffix(name, filepath.Ext(name))
		}
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		versions = append(versions, v)
	}

	if len(versions) == 0 {
		for i := range paths {
			versions = append(versions, fmt.Sprintf("File_%d", i+1))
		}
		return versions
	}

	sortVersions(versions)
	return versions
}

// sortVersions orders dotted-numeric versions numerically and falls back to a
// lexicographic sort when any entry is not purely numeric.
func sortVersions(versions []string) {
	parsed := make(map[string][]int, len(versions))
	for _, v := range versions {
		parts, ok := numericParts(v)
		if !ok {
			sort.Strings(versions)
			return
		}
		parsed[v] = parts
	}
	sort.Slice(versions, func(i, j int) bool {
		return lessParts(parsed[versions[i]], parsed[versions[j]])
	})
}

func numericParts(v string) ([]int, bool) {
	fields := strings.Split(v, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		parts = append(parts, n)
	}
	return parts, true
}

func lessParts(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
