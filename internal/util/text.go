package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces    = regexp.MustCompile(`\s+`)
	reAtObfusc  = regexp.MustCompile(`(?i)\s*[\[(]\s*at\s*[\])]\s*`)
	reDotObfusc = regexp.MustCompile(`(?i)\s*[\[(]\s*dot\s*[\])]\s*`)
)

func CollapseSpaces(input string) string {
	s := strings.ReplaceAll(input, "\u00A0", " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func StripDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}

// CleanToken reduces a name token to lowercase ASCII letters and hyphens.
func CleanToken(input string) string {
	s := strings.ToLower(StripDiacritics(input))
	out := strings.Builder{}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || r == '-' {
			out.WriteRune(r)
		}
	}
	return strings.Trim(out.String(), "-")
}

// Tokenize splits free text on whitespace and hyphens and cleans each part.
// Empty parts and repeats are dropped; order of first appearance is kept.
func Tokenize(input string) []string {
	parts := strings.FieldsFunc(input, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == ','
	})
	seen := map[string]struct{}{}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		tok := CleanToken(p)
		if tok == "" {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// CleanEmail undoes the usual scraping noise: mailto prefixes, query
// strings, "[at]" obfuscation and stray whitespace.
func CleanEmail(input string) string {
	s := strings.TrimSpace(input)
	if len(s) >= 7 && strings.EqualFold(s[:7], "mailto:") {
		s = s[7:]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	s = reAtObfusc.ReplaceAllString(s, "@")
	s = reDotObfusc.ReplaceAllString(s, ".")
	s = strings.Join(strings.Fields(s), "")
	s = strings.Trim(s, ".;,<>\"'")
	return strings.ToLower(s)
}

// ValidEmail reports whether s has exactly one "@" with text on both sides.
func ValidEmail(s string) bool {
	if strings.Count(s, "@") != 1 {
		return false
	}
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1
}

func LocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at >= 0 {
		return email[:at]
	}
	return email
}

func StringPtr(v string) *string {
	return &v
}
