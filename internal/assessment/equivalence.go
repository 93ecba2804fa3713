package assessment

import "strings"

// EquivalencePair declares two forms that count as the same word when they
// appear anywhere in an answer.
type EquivalencePair struct {
	A string
	B string
}

// DefaultHindiEquivalences lists common Hindi spelling variations treated
// as equivalent: colloquial/formal pronoun pairs and frequently dropped
// nasalization marks.
var DefaultHindiEquivalences = []EquivalencePair{
	{A: "ये", B: "यह"},
	{A: "वो", B: "वह"},
	{A: "है", B: "हैं"},
	{A: "मैने", B: "मैंने"},
	{A: "नही", B: "नहीं"},
	{A: "कोन", B: "कौन"},
	{A: "मे", B: "में"},
	{A: "हे", B: "है"},
}

// equivalent reports whether two already-normalized strings match exactly
// or match after substituting a configured equivalence in either direction.
func equivalent(a, b string, pairs []EquivalencePair) bool {
	if a == b {
		return true
	}

	for _, p := range pairs {
		if strings.ReplaceAll(a, p.A, p.B) == b ||
			strings.ReplaceAll(a, p.B, p.A) == b ||
			strings.ReplaceAll(b, p.A, p.B) == a ||
			strings.ReplaceAll(b, p.B, p.A) == a {
			return true
		}
	}

	return false
}
