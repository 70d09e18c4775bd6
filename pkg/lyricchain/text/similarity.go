package text

// Score returns a sequence-similarity ratio in [0, 1] between two strings:
// 2*M / (len(a)+len(b)), where M is the total length of the longest common
// matching blocks, computed over runes. It is symmetric and returns 0.0
// when either input is empty.
func Score(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	m := matchingTotal(ra, rb)
	return 2.0 * float64(m) / float64(len(ra)+len(rb))
}

// IsMatch reports whether query and candidate name the same lyric line:
// either normalized form contains the other, or their similarity score on
// the normalized forms reaches the threshold.
func IsMatch(query, candidate string, threshold float64) bool {
	nq, nc := Normalize(query), Normalize(candidate)
	if nq == "" || nc == "" {
		return false
	}
	if contains(nq, nc) || contains(nc, nq) {
		return true
	}
	return Score(nq, nc) >= threshold
}

func contains(s, substr string) bool {
	return indexRunes([]rune(s), []rune(substr)) >= 0
}

func indexRunes(s, sub []rune) int {
	if len(sub) == 0 {
		return 0
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		j := 0
		for ; j < len(sub); j++ {
			if s[i+j] != sub[j] {
				break
			}
		}
		if j == len(sub) {
			return i
		}
	}
	return -1
}

// matchingTotal sums the lengths of the matching blocks: it finds the
// longest common substring, then recurses into the pieces on either side
// of it. This mirrors standard sequence-matcher ratio semantics.
func matchingTotal(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingTotal(a[:ai], b[:bi])
	total += matchingTotal(a[ai+size:], b[bi+size:])
	return total
}

// longestCommonBlock finds the longest common substring of a and b,
// returning its start in each and its length.
func longestCommonBlock(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// prev[j] is the length of the common suffix of a[:i] and b[:j].
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					ai = i - size
					bi = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	return ai, bi, size
}
