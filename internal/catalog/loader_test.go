package catalog

import "testing"

const sampleCourse = `
exercises:
  - ordinal: 1
    title: Greetings
    instructions: Answer each question.
    kind: sequential
    body:
      prompts:
        - text: Say hello.
          accepted: [hello, hi]
  - ordinal: 2
    title: Pairs
    kind: matching
    body:
      items:
        - {label: A, text: cat}
        - {label: B, text: dog}
      targets:
        - {number: 1, text: barks}
        - {number: 2, text: meows}
      key:
        A: [2]
        B: [1]
  - ordinal: 3
    title: Story
    kind: comprehension
    body:
      passage: A cat sat on a mat.
      prompts:
        - text: Who sat on the mat?
          accepted: [a cat, cat]
`

func TestParseCourse(t *testing.T) {
	c, err := Parse([]byte(sampleCourse))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("parsed %d exercises, want 3", c.Len())
	}

	ex, _ := c.Get(2)
	m, ok := ex.Body.(*Matching)
	if !ok {
		t.Fatalf("exercise 2 decoded as %T, want *Matching", ex.Body)
	}
	if got := m.Key["A"]; len(got) != 1 || got[0] != 2 {
		t.Fatalf("key[A] = %v, want [2]", got)
	}

	ex, _ = c.Get(3)
	if ex.Body.Kind() != KindComprehension {
		t.Fatalf("exercise 3 kind = %s, want comprehension", ex.Body.Kind())
	}
}

func TestParseUnknownKind(t *testing.T) {
	_, err := Parse([]byte(`
exercises:
  - ordinal: 1
    title: Mystery
    kind: crossword
    body: {prompt: hm}
`))
	if err == nil {
		t.Fatal("expected error for unknown exercise kind")
	}
}

func TestParseMissingBody(t *testing.T) {
	_, err := Parse([]byte(`
exercises:
  - ordinal: 1
    title: Empty
    kind: free_response
`))
	if err == nil {
		t.Fatal("expected error for missing body")
	}
}

func TestLoadEmptyPathFallsBackToBuiltin(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != Builtin().Len() {
		t.Fatal("empty path must load the built-in course")
	}
}
