package textutil

import "testing"

func TestStripHTML(t *testing.T) {
	t.Parallel()

	in := `<p>Bitcoin is the first <a href="https://bitcoin.org">decentralized</a> currency &amp; network.</p>`
	want := "Bitcoin is the first decentralized currency & network."
	if got := StripHTML(in); got != want {
		t.Fatalf("StripHTML() = %q, want %q", got, want)
	}
	if got := StripHTML("   "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	if got := Sanitize("  a\n\tb   c  ", 0); got != "a b c" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Sanitize("abcdefgh", 5); got != "abcd…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("héllo", 10); got != "héllo" {
		t.Fatalf("short input must be unchanged, got %q", got)
	}
}

func TestParagraphs(t *testing.T) {
	t.Parallel()

	in := "First line.<br>Second <b>line</b>.<p>Third.</p><p>Fourth.</p>"
	got := Paragraphs(in, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %q", len(got), got)
	}
	if got[0] != "First line." || got[1] != "Second line." || got[2] != "Third." {
		t.Fatalf("unexpected paragraphs %q", got)
	}
}
