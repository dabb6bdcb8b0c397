// Package evaluate judges free-form answers against accepted-answer sets.
// All comparisons run on normalized text so transcription noise in casing,
// punctuation and spacing never fails an otherwise correct answer.
package evaluate

import (
	"errors"
	"regexp"
	"strings"

	"github.com/hbollon/go-edlib"
)

const (
	// fuzzyThreshold is the minimum similarity ratio for a fuzzy match.
	fuzzyThreshold = 75
	// overlapThreshold is the minimum word-set overlap share for the fallback rule.
	overlapThreshold = 0.7
)

// ErrMalformedMatching reports a matching-pair answer that is not a
// comma-separated list of letter-digit pairs.
var ErrMalformedMatching = errors.New("evaluate: malformed matching answer")

// Result is the outcome of evaluating one submission.
type Result struct {
	Correct bool
	// Similarity is the best 0-100 fuzzy ratio seen across accepted answers.
	Similarity int
	// Hint carries the first accepted answer in its original form when the
	// submission was judged incorrect.
	Hint string
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]+`)
var spaces = regexp.MustCompile(`\s+`)

// Normalize lowercases, strips everything that is not alphanumeric or
// whitespace, collapses whitespace runs and trims. It is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Ratio computes a 0-100 edit-distance similarity between two normalized
// strings. Adjacent transpositions count as a single edit so one swapped
// character in a short answer stays above the fuzzy threshold.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	sim, err := edlib.StringsSimilarity(a, b, edlib.OSADamerauLevenshtein)
	if err != nil {
		return 0
	}
	return int(sim*100 + 0.5)
}

// personalClaim reports whether a normalized accepted answer opens with a
// first-person statement. Such answers are open-ended ("I come from ...")
// and match by containment instead of full-string similarity.
func personalClaim(norm string) bool {
	return strings.HasPrefix(norm, "i ") || strings.HasPrefix(norm, "my ")
}

func wordSet(norm string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(norm) {
		set[w] = struct{}{}
	}
	return set
}

func overlapMatch(user, accepted string) bool {
	accSet := wordSet(accepted)
	if len(accSet) == 0 {
		return false
	}
	userSet := wordSet(user)
	common := 0
	for w := range accSet {
		if _, ok := userSet[w]; ok {
			common++
		}
	}
	return float64(common) >= overlapThreshold*float64(len(accSet))
}

// Evaluate judges userText against an accepted-answer set. Any accepted
// answer matching by any rule wins; order of answers does not matter.
func Evaluate(userText string, accepted []string) Result {
	return evaluate(userText, accepted, false)
}

// EvaluateContains behaves like Evaluate but additionally accepts a
// submission that contains an accepted answer verbatim, which suits
// reading-comprehension questions answered in full sentences.
func EvaluateContains(userText string, accepted []string) Result {
	return evaluate(userText, accepted, true)
}

func evaluate(userText string, accepted []string, containment bool) Result {
	user := Normalize(userText)
	best := 0
	for _, raw := range accepted {
		acc := Normalize(raw)
		if acc == "" {
			continue
		}

		if personalClaim(acc) || containment {
			if strings.Contains(user, acc) {
				return Result{Correct: true, Similarity: 100}
			}
			if personalClaim(acc) {
				// Open-ended claims match only by containment.
				continue
			}
		}

		ratio := Ratio(user, acc)
		if ratio > best {
			best = ratio
		}
		if ratio >= fuzzyThreshold {
			return Result{Correct: true, Similarity: ratio}
		}

		if overlapMatch(user, acc) {
			return Result{Correct: true, Similarity: ratio}
		}
	}

	res := Result{Similarity: best}
	if len(accepted) > 0 {
		res.Hint = accepted[0]
	}
	return res
}
