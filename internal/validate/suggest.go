package validate

import (
	"sort"
	"strings"
)

// Rank orders candidates by lexical similarity to input: longest shared
// prefix first, then smallest Levenshtein distance, ties broken by the
// candidates' original order (catalog declaration order). Duplicates are
// removed, keeping the first occurrence. The input itself never appears in
// the result.
func Rank(input string, candidates []string) []string {
	inputLower := strings.ToLower(input)

	type scored struct {
		name   string
		prefix int
		dist   int
		index  int
	}

	var items []scored
	seen := make(map[string]struct{}, len(candidates))
	for i, cand := range candidates {
		key := strings.ToLower(cand)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if key == inputLower {
			continue
		}
		items = append(items, scored{
			name:   cand,
			prefix: sharedPrefixLen(inputLower, key),
			dist:   levenshtein(inputLower, key),
			index:  i,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].prefix != items[j].prefix {
			return items[i].prefix > items[j].prefix
		}
		if items[i].dist != items[j].dist {
			return items[i].dist < items[j].dist
		}
		return items[i].index < items[j].index
	})

	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.name
	}
	return out
}

func sharedPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// levenshtein calculates the edit distance between two strings.
func levenshtein(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(s1)][len(s2)]
}
