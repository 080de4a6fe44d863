// Package spintax resolves {a|b|c} alternation groups in message text.
// Outbound email bodies are passed through it so no two sends carry
// byte-identical content.
package spintax

import (
	"math/rand"
	"strings"
)

// Render substitutes every resolvable alternation group in text with one
// uniformly random option and returns the result. Groups resolve innermost
// first, leftmost first, so nested groups like {a|{b|c}} collapse from the
// inside out. A stray { with no balanced close is left in place.
func Render(text string, rng *rand.Rand) string {
	for {
		start, end, ok := innermostGroup(text)
		if !ok {
			return text
		}
		options := strings.Split(text[start+1:end], "|")
		pick := options[rng.Intn(len(options))]
		text = text[:start] + pick + text[end+1:]
	}
}

// innermostGroup returns the bounds of the leftmost group containing no
// nested braces. A single scan suffices: the first } closes the most
// recently opened {.
func innermostGroup(s string) (start int, end int, ok bool) {
	start = -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			start = i
		case '}':
			if start >= 0 {
				return start, i, true
			}
		}
	}
	return 0, 0, false
}
