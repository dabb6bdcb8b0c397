package catalog

import "testing"

func TestBuiltinIsValid(t *testing.T) {
	c := Builtin()
	if c.Len() != 10 {
		t.Fatalf("builtin course has %d exercises, want 10", c.Len())
	}
	for i := 1; i <= c.Len(); i++ {
		ex, ok := c.Get(i)
		if !ok {
			t.Fatalf("exercise %d missing", i)
		}
		if ex.Ordinal != i {
			t.Fatalf("exercise at %d reports ordinal %d", i, ex.Ordinal)
		}
		if ex.Body.ItemCount() <= 0 {
			t.Fatalf("exercise %d has no items", i)
		}
	}
}

func TestBuiltinShapes(t *testing.T) {
	c := Builtin()

	ex, _ := c.Get(3)
	seq, ok := ex.Body.(*Sequential)
	if !ok || !seq.Pronunciation {
		t.Fatalf("exercise 3 should be pronunciation practice, got %T", ex.Body)
	}

	ex, _ = c.Get(4)
	m, ok := ex.Body.(*Matching)
	if !ok {
		t.Fatalf("exercise 4 should be matching, got %T", ex.Body)
	}
	if m.TotalPoints() != len(m.Key) {
		t.Fatalf("matching points = %d, want %d", m.TotalPoints(), len(m.Key))
	}

	ex, _ = c.Get(7)
	if _, ok := ex.Body.(*FreeResponse); !ok {
		t.Fatalf("exercise 7 should be free response, got %T", ex.Body)
	}
	if ex.Body.TotalPoints() != 0 {
		t.Fatal("free response must not contribute points")
	}
}

func TestNewRejectsGaps(t *testing.T) {
	_, err := New([]*Exercise{
		{Ordinal: 1, Title: "one", Body: &FreeResponse{Prompt: "say something"}},
		{Ordinal: 3, Title: "three", Body: &FreeResponse{Prompt: "say more"}},
	})
	if err == nil {
		t.Fatal("expected error for non-contiguous ordinals")
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]*Exercise{
		{Ordinal: 1, Title: "one", Body: &FreeResponse{Prompt: "say something"}},
		{Ordinal: 1, Title: "again", Body: &FreeResponse{Prompt: "say more"}},
	})
	if err == nil {
		t.Fatal("expected error for duplicate ordinal")
	}
}

func TestNewRejectsInvalidBody(t *testing.T) {
	_, err := New([]*Exercise{
		{Ordinal: 1, Title: "broken", Body: &Sequential{}},
	})
	if err == nil {
		t.Fatal("expected error for sequential exercise without prompts")
	}
}

func TestMatchingValidateKeyLabels(t *testing.T) {
	m := &Matching{
		Items:   []MatchItem{{Label: "A", Text: "x"}},
		Targets: []Target{{Number: 1, Text: "y"}},
		Key:     map[string][]int{"B": {1}},
	}
	if err := m.Validate(); err == nil {
		t.Fatal("expected error for key referencing unknown label")
	}
}
