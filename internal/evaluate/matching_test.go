package evaluate

import (
	"errors"
	"testing"
)

var oppositesKey = map[string][]int{
	"A": {4}, "B": {5}, "C": {3}, "D": {1}, "E": {2},
}

func TestScoreMatchingFullCredit(t *testing.T) {
	got, err := ScoreMatching("A-4, B-5, C-3, D-1, E-2", oppositesKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5 {
		t.Fatalf("score = %d, want 5", got)
	}
}

func TestScoreMatchingPartial(t *testing.T) {
	got, err := ScoreMatching("A-4, B-1, C-3", oppositesKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A and C are right, B is wrong, D and E are missing.
	if got != 2 {
		t.Fatalf("score = %d, want 2", got)
	}
}

func TestScoreMatchingAllWrong(t *testing.T) {
	got, err := ScoreMatching("A-1, B-2", oppositesKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("score = %d, want 0", got)
	}
}

func TestScoreMatchingCaseAndSpacing(t *testing.T) {
	got, err := ScoreMatching("a - 4,b-5 , C-3", oppositesKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3 {
		t.Fatalf("score = %d, want 3", got)
	}
}

func TestScoreMatchingMalformed(t *testing.T) {
	for _, input := range []string{
		"bananas",
		"A-4, huh",
		"A4 B5",
		"4-A",
		"",
		", ,",
	} {
		_, err := ScoreMatching(input, oppositesKey)
		if !errors.Is(err, ErrMalformedMatching) {
			t.Errorf("ScoreMatching(%q) error = %v, want ErrMalformedMatching", input, err)
		}
	}
}

func TestParsePairsLastWins(t *testing.T) {
	pairs, err := ParsePairs("A-1, A-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pairs["A"] != 4 {
		t.Fatalf("pairs[A] = %d, want 4", pairs["A"])
	}
}
