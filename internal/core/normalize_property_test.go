package core

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// Normalization is a projection: applying it twice must equal applying
// it once, for any input.
func TestProperty_NormalizeTextIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := rapid.String().Draw(rt, "input")
		once := NormalizeText(input)
		twice := NormalizeText(once)
		if once != twice {
			t.Fatalf("NormalizeText not idempotent: %q -> %q -> %q", input, once, twice)
		}
	})
}

// The output never contains uppercase letters, leading/trailing spaces,
// or runs of more than one space.
func TestProperty_NormalizeTextShape(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := rapid.String().Draw(rt, "input")
		got := NormalizeText(input)
		if got != strings.ToLower(got) {
			t.Fatalf("output contains uppercase: %q", got)
		}
		if got != strings.TrimSpace(got) {
			t.Fatalf("output has surrounding whitespace: %q", got)
		}
		if strings.Contains(got, "  ") {
			t.Fatalf("output has a whitespace run: %q", got)
		}
	})
}

// Separator style never matters: underscores, hyphens, and spaces all
// normalize to the same key.
func TestProperty_NormalizeTextSeparatorInvariance(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[a-z0-9]{1,8}`), 1, 5).Draw(rt, "words")
		spaced := strings.Join(words, " ")
		hyphened := strings.Join(words, "-")
		underscored := strings.Join(words, "_")
		if NormalizeText(hyphened) != NormalizeText(spaced) {
			t.Fatalf("hyphen form diverged: %q vs %q", hyphened, spaced)
		}
		if NormalizeText(underscored) != NormalizeText(spaced) {
			t.Fatalf("underscore form diverged: %q vs %q", underscored, spaced)
		}
	})
}
