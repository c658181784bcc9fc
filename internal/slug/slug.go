// Package slug builds the public, human-readable identifiers used to share
// postings by link.
package slug

import (
	"math/rand/v2"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// SuffixLength is the number of random characters appended to a slug.
	SuffixLength = 4
	// SuffixAlphabet is the set the suffix characters are drawn from.
	SuffixAlphabet = "0123456789"
)

// DigitSource yields uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type DigitSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Generator produces slugs. It holds no mutable state of its own, so it is
// safe for concurrent use as long as its DigitSource is.
type Generator struct {
	src DigitSource
}

// New returns a Generator drawing suffixes from src. A nil src uses the
// process-wide math/rand/v2 source.
func New(src DigitSource) *Generator {
	if src == nil {
		src = globalSource{}
	}
	return &Generator{src: src}
}

var defaultGenerator = New(nil)

// Generate is a shorthand for the default generator.
func Generate(name string) string {
	return defaultGenerator.Generate(name)
}

// Generate returns "<normalized-name>-<suffix>". An empty or unusable name
// still yields a slug, made only of the hyphen and the suffix.
func (g *Generator) Generate(name string) string {
	return Normalize(name) + "-" + g.Suffix()
}

// Suffix draws a fresh random suffix.
func (g *Generator) Suffix() string {
	var b strings.Builder
	b.Grow(SuffixLength)
	for range SuffixLength {
		b.WriteByte(SuffixAlphabet[g.src.IntN(len(SuffixAlphabet))])
	}
	return b.String()
}

// asciiFold spells out lowercase letters that carry no combining mark under
// NFD and so survive diacritic stripping unchanged.
var asciiFold = map[rune]string{
	'ø': "o",
	'ł': "l",
	'đ': "d",
	'ð': "d",
	'ß': "ss",
	'æ': "ae",
	'œ': "oe",
	'þ': "th",
	'ı': "i",
}

// Normalize lowercases name, strips diacritics and joins words with single
// hyphens. Only [a-z0-9-] survive; the result never starts or ends with a
// hyphen.
func Normalize(name string) string {
	// transform chains keep state, build one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pendingHyphen := false
	for _, r := range strings.ToLower(stripped) {
		folded, isFolded := asciiFold[r]
		switch {
		case isFolded, r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			if isFolded {
				b.WriteString(folded)
			} else {
				b.WriteRune(r)
			}
		case unicode.IsSpace(r), r == '-', r == '_':
			pendingHyphen = true
		}
	}
	return b.String()
}

// Split separates a slug into its normalized prefix and suffix. ok is false
// when s does not end in a well-formed suffix.
func Split(s string) (prefix, suffix string, ok bool) {
	i := strings.LastIndexByte(s, '-')
	if i < 0 || len(s)-i-1 != SuffixLength {
		return "", "", false
	}
	for _, r := range s[i+1:] {
		if !strings.ContainsRune(SuffixAlphabet, r) {
			return "", "", false
		}
	}
	return s[:i], s[i+1:], true
}
