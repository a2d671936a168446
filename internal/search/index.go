// Package search provides a small in-memory index over decrypted metadata
// projections, so listings can be filtered without full-record decryption.
package search

import (
	"sort"
	"strings"
)

type Index struct {
	tokens map[string]map[string]bool // id -> token set
}

func New() *Index {
	return &Index{tokens: make(map[string]map[string]bool)}
}

// Add indexes the given field values under id, replacing any prior entry.
func (ix *Index) Add(id string, fields ...string) {
	set := make(map[string]bool)
	for _, f := range fields {
		for _, tok := range tokenize(f) {
			set[tok] = true
		}
	}
	ix.tokens[id] = set
}

func (ix *Index) Remove(id string) {
	delete(ix.tokens, id)
}

// Query returns ids whose tokens prefix-match every term, sorted for
// stable output.
func (ix *Index) Query(q string) []string {
	terms := tokenize(q)
	if len(terms) == 0 {
		return nil
	}
	var out []string
	for id, set := range ix.tokens {
		if matchesAll(set, terms) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func matchesAll(set map[string]bool, terms []string) bool {
	for _, term := range terms {
		found := false
		for tok := range set {
			if strings.HasPrefix(tok, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}
