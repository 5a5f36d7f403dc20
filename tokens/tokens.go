// Package tokens implements the A8 Token Estimator: a fast, dependency-free
// token-count heuristic surfaced in response metadata.
//
// Grounded in teacher cleaner/tokens.go.
package tokens

import "unicode/utf8"

// Estimate provides a fast token count estimate without a real tokenizer.
//
// Heuristic: rune count / 3 — English averages ~4 chars/token, CJK
// averages ~1.5 chars/token, so dividing by 3 is a reasonable middle
// ground for mixed-language content. Returns at least 1 for non-empty text.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	est := n / 3
	if est < 1 {
		return 1
	}
	return est
}
