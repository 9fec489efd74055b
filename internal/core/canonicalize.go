package core

import (
	"strings"

	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

// The canonicalizers follow a strict priority ladder: the first rule
// that yields exactly one candidate wins, later rules are not evaluated,
// and ties abstain rather than guess. Catalogs are iterated in document
// order so tie-breaks are deterministic.

// RoleUnknown and RoleOther are the role canonicalization fallbacks.
const (
	RoleUnknown = "Unknown"
	RoleOther   = "Other"
)

// foldSpace lowercases and collapses whitespace runs, keeping
// punctuation intact.
func foldSpace(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// tokenPunct is the punctuation stripped by foldToken; it targets
// email-like and hyphenated forms without touching word-internal marks.
const tokenPunct = ",.;:()[]{}<>/\\|@-_"

// foldToken replaces structural punctuation with spaces, collapses
// whitespace, and lowercases.
func foldToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(tokenPunct, r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(strings.Join(strings.Fields(b.String()), " "))
}

// uniqueStrings preserves first occurrence order.
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// CanonicalizeProcess resolves a raw process label to a catalog process
// id. Ladder: exact id, exact display name, exact alias, then
// bidirectional substring containment among aliases if exactly one
// process matches. Returns "" when unresolved.
func CanonicalizeProcess(processRaw string, catalog *models.ProcessCatalog) string {
	if processRaw == "" || catalog == nil {
		return ""
	}
	rawNorm := NormalizeText(processRaw)
	if rawNorm == "" {
		return ""
	}
	for _, id := range catalog.ProcessIDs {
		if rawNorm == NormalizeText(id) {
			return id
		}
	}
	for _, id := range catalog.ProcessIDs {
		if rawNorm == NormalizeText(catalog.Processes[id].DisplayName) {
			return id
		}
	}
	for _, id := range catalog.ProcessIDs {
		for _, alias := range catalog.Processes[id].ProcessAliases {
			if rawNorm == NormalizeText(alias) {
				return id
			}
		}
	}
	var candidates []string
	for _, id := range catalog.ProcessIDs {
		for _, alias := range catalog.Processes[id].ProcessAliases {
			an := NormalizeText(alias)
			if an != "" && (strings.Contains(rawNorm, an) || strings.Contains(an, rawNorm)) {
				candidates = append(candidates, id)
			}
		}
	}
	candidates = uniqueStrings(candidates)
	if len(candidates) == 1 {
		return candidates[0]
	}
	return ""
}

// CanonicalizeClient resolves a raw client label to a known client name.
// Ladder: exact name, exact alias, bidirectional substring containment,
// then token-level containment with punctuation removed (catches
// email-like and hyphenated forms). Unresolved input falls back to a
// title-cased cleanup of the raw text; only empty input yields "".
func CanonicalizeClient(clientRaw string, catalog *models.ClientsCatalog) string {
	if clientRaw == "" {
		return ""
	}
	rawNorm := foldSpace(clientRaw)
	rawTok := foldToken(clientRaw)
	if catalog != nil {
		for _, c := range catalog.Clients {
			if rawNorm == foldSpace(c.Name) {
				return c.Name
			}
		}
		for _, c := range catalog.Clients {
			for _, alias := range c.Aliases {
				if rawNorm == foldSpace(alias) {
					return c.Name
				}
			}
		}
		var candidates []string
		for _, c := range catalog.Clients {
			for _, token := range append([]string{c.Name}, c.Aliases...) {
				tn := foldSpace(token)
				if tn != "" && (strings.Contains(rawNorm, tn) || strings.Contains(tn, rawNorm)) {
					candidates = append(candidates, c.Name)
					break
				}
			}
		}
		candidates = uniqueStrings(candidates)
		if len(candidates) == 1 {
			return candidates[0]
		}
		var tokHits []string
		for _, c := range catalog.Clients {
			for _, token := range append([]string{c.Name}, c.Aliases...) {
				tn := foldToken(token)
				if tn != "" && (strings.Contains(rawTok, tn) || strings.Contains(tn, rawTok)) {
					tokHits = append(tokHits, c.Name)
					break
				}
			}
		}
		tokHits = uniqueStrings(tokHits)
		if len(tokHits) == 1 {
			return tokHits[0]
		}
	}
	return titleCase(rawNorm)
}

// CanonicalizeRole resolves a raw role label to a canonical role name.
// Empty input yields "Unknown"; an unmatched non-empty label yields
// "Other".
func CanonicalizeRole(roleRaw string, catalog *models.RolesCatalog) string {
	if strings.TrimSpace(roleRaw) == "" {
		return RoleUnknown
	}
	rawNorm := foldSpace(roleRaw)
	if catalog != nil {
		for _, r := range catalog.Canonical {
			if rawNorm == foldSpace(r) {
				return r
			}
		}
		for _, canon := range catalog.Canonical {
			for _, alias := range catalog.Aliases[canon] {
				if rawNorm == foldSpace(alias) {
					return canon
				}
			}
		}
	}
	return RoleOther
}

// StepMatch is the detailed result of one step canonicalization attempt.
type StepMatch struct {
	StepID       string  `json:"step_id,omitempty"`
	MatchType    string  `json:"match_type"`
	Score        float64 `json:"score"`
	MatchedAlias string  `json:"matched_alias,omitempty"`
}

func noStepMatch() StepMatch {
	return StepMatch{MatchType: models.MatchNone, Score: 0.0}
}

// MatchStep resolves a raw step string against the steps and step
// aliases of one canonical process. Unlike the generic matchers, only
// the catalog text may be a substring of the raw text, never the other
// way around; this keeps a short generic alias from being absorbed into
// a long free-text field. Fuzzy score is alias length over raw length,
// clamped to [0.01, 1.0]. Ties across step ids abstain.
func MatchStep(stepRaw, canonicalProcess string, catalog *models.ProcessCatalog) StepMatch {
	if stepRaw == "" || canonicalProcess == "" || catalog == nil {
		return noStepMatch()
	}
	spec, ok := catalog.Process(canonicalProcess)
	if !ok {
		return noStepMatch()
	}
	stepNorm := NormalizeText(stepRaw)
	if stepNorm == "" {
		return noStepMatch()
	}

	// 1) exact match on step ids.
	rawFold := foldSpace(stepRaw)
	for _, s := range spec.Steps {
		if rawFold == foldSpace(s) {
			return StepMatch{StepID: s, MatchType: models.MatchExact, Score: 1.0}
		}
	}
	// 2) exact match on step aliases.
	for _, s := range spec.Steps {
		for _, alias := range spec.StepAliases[s] {
			if stepNorm == NormalizeText(alias) {
				return StepMatch{StepID: s, MatchType: models.MatchAlias, Score: 1.0, MatchedAlias: alias}
			}
		}
	}
	// 3) one-way containment, unique winner only.
	var candidates []string
	scores := make(map[string]float64)
	matchedAlias := make(map[string]string)
	for _, s := range spec.Steps {
		sn := NormalizeText(s)
		if sn != "" && strings.Contains(stepNorm, sn) {
			candidates = append(candidates, s)
			scores[s] = float64(len(sn)) / float64(max(len(stepNorm), 1))
			matchedAlias[s] = s
		}
	}
	for _, s := range spec.Steps {
		for _, alias := range spec.StepAliases[s] {
			an := NormalizeText(alias)
			if an == "" || !strings.Contains(stepNorm, an) {
				continue
			}
			score := float64(len(an)) / float64(max(len(stepNorm), 1))
			if score > scores[s] {
				scores[s] = score
				matchedAlias[s] = alias
			}
			candidates = append(candidates, s)
		}
	}
	candidates = uniqueStrings(candidates)
	if len(candidates) == 1 {
		stepID := candidates[0]
		return StepMatch{
			StepID:       stepID,
			MatchType:    models.MatchFuzzy,
			Score:        clamp(scores[stepID], 0.01, 1.0),
			MatchedAlias: matchedAlias[stepID],
		}
	}
	return noStepMatch()
}

// MatchStepID returns just the resolved step id, or "" for no match.
func MatchStepID(stepRaw, canonicalProcess string, catalog *models.ProcessCatalog) string {
	return MatchStep(stepRaw, canonicalProcess, catalog).StepID
}

// titleCase capitalizes the first letter of each space-separated word
// and lowercases the rest.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
