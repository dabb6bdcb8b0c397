package format

import "testing"

func TestEscapeMarkdownV1(t *testing.T) {
	got, err := EscapeMarkdown("hello _world_ *bold* [link]", MarkdownV1, "")
	if err != nil {
		t.Fatalf("EscapeMarkdown: %v", err)
	}
	want := `hello \_world\_ \*bold\* \[link]`
	if got != want {
		t.Fatalf("escaped = %q, want %q", got, want)
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	got, err := EscapeMarkdown("a.b-c!d", MarkdownV2, "")
	if err != nil {
		t.Fatalf("EscapeMarkdown: %v", err)
	}
	want := `a\.b\-c\!d`
	if got != want {
		t.Fatalf("escaped = %q, want %q", got, want)
	}
}

func TestEscapeMarkdownV2Code(t *testing.T) {
	got, err := EscapeMarkdown("x.y`z", MarkdownV2, "code")
	if err != nil {
		t.Fatalf("EscapeMarkdown: %v", err)
	}
	// Inside code entities the dot stays literal, only the backtick escapes.
	want := "x.y\\`z"
	if got != want {
		t.Fatalf("escaped = %q, want %q", got, want)
	}
}

func TestEscapeMarkdownUnknownVersion(t *testing.T) {
	if _, err := EscapeMarkdown("x", 3, ""); err == nil {
		t.Fatal("expected error for unknown version")
	}
}
