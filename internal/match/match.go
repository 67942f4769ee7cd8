// Package match provides the cheap string-similarity primitives shared by
// the resolution pipeline: normalization, Ratcliff/Obershelp ratio,
// closest-match lookup, token overlap, and whole-word containment.
package match

import (
	"regexp"
	"strings"
	"unicode"
)

// Normalize lowercases s and strips every rune that is not a letter, digit,
// or space. Both sides of a comparison must be normalized the same way.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Ratio returns the Ratcliff/Obershelp similarity of a and b in [0, 1]:
// twice the total number of matching characters over the combined length.
// Comparison is case-sensitive; callers lowercase first.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 0
	}
	return 2 * float64(matchTotal(ra, rb)) / float64(total)
}

func matchTotal(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestCommonRun(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchTotal(a[:ai], b[:bi]) +
		matchTotal(a[ai+size:], b[bi+size:])
}

// longestCommonRun finds the longest contiguous run shared by a and b,
// returning its start in a, start in b, and length.
func longestCommonRun(a, b []rune) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0
	prev := make(map[int]int, len(b))
	for i, ca := range a {
		cur := make(map[int]int, len(b))
		for j, cb := range b {
			if ca != cb {
				continue
			}
			k := prev[j-1] + 1
			cur[j] = k
			if k > bestSize {
				bestA, bestB, bestSize = i-k+1, j-k+1, k
			}
		}
		prev = cur
	}
	return bestA, bestB, bestSize
}

// ClosestMatch returns the candidate most similar to target, provided its
// ratio meets the cutoff. Ties keep the earliest candidate.
func ClosestMatch(target string, candidates []string, cutoff float64) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		if score := Ratio(target, c); score >= cutoff && score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, best != ""
}

// TokenOverlap returns the fraction of trigger words present in input.
func TokenOverlap(trigger, input string) float64 {
	triggerWords := strings.Fields(trigger)
	if len(triggerWords) == 0 {
		return 0
	}
	inputWords := make(map[string]struct{}, len(triggerWords))
	for _, w := range strings.Fields(input) {
		inputWords[w] = struct{}{}
	}
	shared := 0
	for _, w := range triggerWords {
		if _, ok := inputWords[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(triggerWords))
}

// ContainsWord reports whether text contains phrase bounded by word breaks.
func ContainsWord(text, phrase string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
	return re.MatchString(text)
}
