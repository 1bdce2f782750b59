// Package matcher associates uploaded file names with the worker they most likely belong to.
package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	minTokenLength  = 3
	minTokenMatches = 2
	tokenWeight     = 10
)

type Candidate struct {
	ID       string
	FullName string
	Email    string
}

// Normalize lowercases s, strips diacritics and drops everything outside [a-z0-9].
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		stripped = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Match returns the candidate whose name best fits fileName.
//
// An exact containment in either direction wins immediately in candidate order.
// Otherwise candidates are scored by first+last name concatenation (its length) and by
// multi-token overlap (10 per token of at least 3 characters, needing 2 tokens); the
// highest score wins and earlier candidates win ties.
func Match(fileName string, candidates []Candidate) (Candidate, bool) {
	normalizedFile := Normalize(fileName)
	if normalizedFile == "" {
		return Candidate{}, false
	}

	var (
		best      Candidate
		bestScore int
	)

	for _, c := range candidates {
		normalizedName := Normalize(c.FullName)
		if normalizedName == "" {
			continue
		}

		if strings.Contains(normalizedFile, normalizedName) || strings.Contains(normalizedName, normalizedFile) {
			return c, true
		}

		parts := strings.Fields(c.FullName)

		if len(parts) >= 2 {
			firstLast := Normalize(parts[0] + parts[1])
			if firstLast != "" && strings.Contains(normalizedFile, firstLast) {
				if score := len(firstLast); score > bestScore {
					best, bestScore = c, score
				}
			}
		}

		matches := 0
		for _, part := range parts {
			p := Normalize(part)
			if len(p) >= minTokenLength && strings.Contains(normalizedFile, p) {
				matches++
			}
		}
		if matches >= minTokenMatches {
			if score := matches * tokenWeight; score > bestScore {
				best, bestScore = c, score
			}
		}
	}

	if bestScore == 0 {
		return Candidate{}, false
	}
	return best, true
}
