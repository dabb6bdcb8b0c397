package evaluate

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello, World!", "hello world"},
		{"  spaced   out\ttext ", "spaced out text"},
		{"It's 5 o'clock.", "its 5 oclock"},
		{"", ""},
		{"!!!", ""},
	}
	for _, c := range cases {
		got := Normalize(c.in)
		if got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
		if again := Normalize(got); again != got {
			t.Errorf("Normalize not idempotent: %q -> %q", got, again)
		}
	}
}

func TestEvaluateExactAfterNormalization(t *testing.T) {
	res := Evaluate("An Umbrella!!", []string{"an umbrella"})
	if !res.Correct {
		t.Fatal("expected exact match after normalization")
	}
	if res.Similarity != 100 {
		t.Fatalf("similarity = %d, want 100", res.Similarity)
	}
}

func TestEvaluateTransposition(t *testing.T) {
	// One adjacent swap in a short word must survive the fuzzy threshold.
	res := Evaluate("umbrelal", []string{"umbrella"})
	if !res.Correct {
		t.Fatalf("expected transposed answer to match, similarity = %d", res.Similarity)
	}
	if res.Similarity < 75 {
		t.Fatalf("similarity = %d, want >= 75", res.Similarity)
	}
}

func TestEvaluateTranspositionFourLetters(t *testing.T) {
	res := Evaluate("form", []string{"from"})
	if !res.Correct {
		t.Fatalf("expected 4-letter transposition to match, similarity = %d", res.Similarity)
	}
}

func TestEvaluateWordOverlap(t *testing.T) {
	res := Evaluate("she got a new book from her sister", []string{"a new book"})
	if !res.Correct {
		t.Fatal("expected word-overlap rule to accept a full-sentence answer")
	}
}

func TestEvaluatePersonalClaimContainment(t *testing.T) {
	accepted := []string{"I come from", "I am from"}

	res := Evaluate("Well, I come from Spain!", accepted)
	if !res.Correct {
		t.Fatal("expected open-ended claim to match by containment")
	}
	if res.Similarity != 100 {
		t.Fatalf("similarity = %d, want 100", res.Similarity)
	}

	res = Evaluate("Madrid", accepted)
	if res.Correct {
		t.Fatal("claim prefix absent, answer must not match")
	}
}

func TestEvaluateIncorrectCarriesHint(t *testing.T) {
	res := Evaluate("a banana", []string{"an umbrella", "umbrella"})
	if res.Correct {
		t.Fatal("expected mismatch")
	}
	if res.Hint != "an umbrella" {
		t.Fatalf("hint = %q, want first accepted answer", res.Hint)
	}
}

func TestEvaluateContainsFullSentence(t *testing.T) {
	res := EvaluateContains("She got a new book about travel.", []string{"a new book"})
	if !res.Correct {
		t.Fatal("expected containment to accept the full sentence")
	}
}

func TestEvaluateEmptySubmission(t *testing.T) {
	res := Evaluate("", []string{"an umbrella"})
	if res.Correct {
		t.Fatal("empty submission must not match")
	}
}

func TestRatioExact(t *testing.T) {
	if r := Ratio("hello", "hello"); r != 100 {
		t.Fatalf("Ratio of equal strings = %d, want 100", r)
	}
	if r := Ratio("", "hello"); r >= 75 {
		t.Fatalf("Ratio against empty = %d, want < 75", r)
	}
}
