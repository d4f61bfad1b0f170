// Package distance provides the metric functions the CLI feeds into the
// BK-tree: Levenshtein edit distance for words and Hamming distance for
// 64-bit perceptual hashes.
package distance

// Levenshtein returns the edit distance between two strings: the minimum
// number of single-rune insertions, deletions, and substitutions needed to
// turn one into the other.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	r1 := []rune(a)
	r2 := []rune(b)

	len1 := len(r1)
	len2 := len(r2)

	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	// Keep r1 the shorter string so the rows stay small.
	if len1 > len2 {
		r1, r2 = r2, r1
		len1, len2 = len2, len1
	}

	// Two rows of the DP matrix are enough.
	prev := make([]int, len1+1)
	curr := make([]int, len1+1)

	for i := 0; i <= len1; i++ {
		prev[i] = i
	}

	for j := 1; j <= len2; j++ {
		curr[0] = j

		for i := 1; i <= len1; i++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}

			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[len1]
}
