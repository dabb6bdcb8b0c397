package evaluate

import (
	"regexp"
	"strconv"
	"strings"
)

var pairToken = regexp.MustCompile(`^([A-Za-z])\s*-\s*([0-9]+)$`)

// ParsePairs parses a comma-separated list of letter-digit tokens like
// "A-4, B-5" into a label-to-target mapping. Labels are case-insensitive.
// The whole input is rejected when any token is not a letter-digit pair.
func ParsePairs(input string) (map[string]int, error) {
	pairs := make(map[string]int)
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		m := pairToken.FindStringSubmatch(token)
		if m == nil {
			return nil, ErrMalformedMatching
		}
		target, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, ErrMalformedMatching
		}
		pairs[strings.ToUpper(m[1])] = target
	}
	if len(pairs) == 0 {
		return nil, ErrMalformedMatching
	}
	return pairs, nil
}

// ScoreMatching counts, per known label, whether the supplied target is one
// of that label's accepted targets. Labels missing from the input simply
// score nothing.
func ScoreMatching(input string, key map[string][]int) (int, error) {
	pairs, err := ParsePairs(input)
	if err != nil {
		return 0, err
	}
	correct := 0
	for label, accepted := range key {
		supplied, ok := pairs[strings.ToUpper(label)]
		if !ok {
			continue
		}
		for _, want := range accepted {
			if supplied == want {
				correct++
				break
			}
		}
	}
	return correct, nil
}
