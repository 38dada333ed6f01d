package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize turns a raw label or taxonomy term into its canonical
// comparable form: NFKD-decomposed with combining marks stripped,
// lower-cased, with every run of non-alphanumeric characters collapsed
// to a single space and the result trimmed.
//
// The same function is applied to vision labels and taxonomy terms so
// comparisons are symmetric. It is pure and total: any input yields a
// normalized string, possibly empty.
func Normalize(value string) string {
	return fold(value, ' ')
}

// MakeSlug derives the URL-safe name for a canonical taxonomy term.
// The folding is lossy ASCII, deterministic for a given input.
func MakeSlug(value string) string {
	return fold(value, '-')
}

// fold lower-cases and ASCII-folds value, collapsing every run of
// non-alphanumeric characters to a single sep.
func fold(value string, sep rune) string {
	decomposed := norm.NFKD.String(value)
	var b strings.Builder
	b.Grow(len(decomposed))
	pendingSep := false
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue // combining mark
		}
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteRune(sep)
			}
			pendingSep = false
			b.WriteRune(r)
		} else {
			pendingSep = true
		}
	}
	return b.String()
}

// Tokenize splits a normalized string into its unique tokens.
func Tokenize(value string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, t := range strings.Fields(value) {
		tokens[t] = struct{}{}
	}
	return tokens
}

// TitleCase upper-cases the first letter of each word, leaving the rest
// of the word untouched. Used for draft titles ("Fresh Cherry Tomato").
func TitleCase(value string) string {
	words := strings.Split(value, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// TrimCanonical trims surrounding whitespace from a canonical name.
func TrimCanonical(value string) string {
	return strings.TrimSpace(value)
}

// NormalizeSynonym lower-cases and trims one synonym entry.
func NormalizeSynonym(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// DedupeSynonyms normalizes synonyms, drops empties, and removes
// duplicates while preserving first-seen order. The taxonomy invariant
// that synonym lists never contain the empty string is enforced here.
func DedupeSynonyms(synonyms []string) []string {
	seen := make(map[string]struct{}, len(synonyms))
	out := make([]string, 0, len(synonyms))
	for _, s := range synonyms {
		n := NormalizeSynonym(s)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
