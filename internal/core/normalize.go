// Package core contains the canonicalization and reconciliation engine
// of Workflow Radar: text normalization, catalog compilation, identity
// canonicalization, instance enrichment, workflow definition building,
// and the cross-run reconciliation pass.
package core

import (
	"strings"
	"unicode"
)

// NormalizeText lowercases, replaces separators and punctuation with
// spaces, collapses whitespace runs, and trims. It is the comparison key
// used by every matcher and is never shown to users. Idempotent.
func NormalizeText(value string) string {
	if value == "" {
		return ""
	}
	s := strings.ToLower(value)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// DedupeAliases removes aliases that collapse to the same normalized
// key, keeping the first literal form. Empty keys are dropped.
func DedupeAliases(aliases []string) []string {
	seen := make(map[string]struct{}, len(aliases))
	var out []string
	for _, alias := range aliases {
		key := NormalizeText(alias)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, alias)
	}
	return out
}

// keyedAlias pairs an alias with its precomputed normalized key.
type keyedAlias struct {
	alias string
	key   string
}

// dedupeKeyed is DedupeAliases over precomputed (alias, key) pairs.
func dedupeKeyed(aliases []keyedAlias) []string {
	seen := make(map[string]struct{}, len(aliases))
	var out []string
	for _, ka := range aliases {
		if ka.key == "" {
			continue
		}
		if _, ok := seen[ka.key]; ok {
			continue
		}
		seen[ka.key] = struct{}{}
		out = append(out, ka.alias)
	}
	return out
}
