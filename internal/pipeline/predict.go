package pipeline

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"outreach/internal"
	"outreach/internal/util"
)

type EmailPattern string

const (
	PatternInitialLast       EmailPattern = "initial_last"
	PatternFirstDotLast      EmailPattern = "first.last"
	PatternFirstDotLastLower EmailPattern = "first.last.lower"
	PatternFirstUnderLast    EmailPattern = "first_last"
	PatternLast              EmailPattern = "last"
)

// Formats receive cleaned, non-empty tokens. CleanToken trims hyphens, so
// the first byte is always an ASCII letter.
var emailPatterns = map[EmailPattern]func(first, last string) string{
	PatternInitialLast: func(first, last string) string {
		return first[:1] + last
	},
	PatternFirstDotLast: func(first, last string) string {
		return titleWord(first) + "." + titleWord(last)
	},
	PatternFirstDotLastLower: func(first, last string) string {
		return first + "." + last
	},
	PatternFirstUnderLast: func(first, last string) string {
		return first + "_" + last
	},
	PatternLast: func(_, last string) string {
		return last
	},
}

func ParseEmailPattern(value string) (EmailPattern, error) {
	p := EmailPattern(strings.ToLower(strings.TrimSpace(value)))
	if p == "" {
		return "", nil
	}
	if _, ok := emailPatterns[p]; !ok {
		return "", fmt.Errorf("unsupported email pattern: %s", value)
	}
	return p, nil
}

// Predict builds an address from the name and an institutional convention.
// It returns "" when the pattern is unknown or either name part or the
// domain is empty after cleaning.
func Predict(name internal.NormalizedName, pattern EmailPattern, domain string) string {
	format, ok := emailPatterns[pattern]
	if !ok {
		return ""
	}
	first := util.CleanToken(name.First)
	last := util.CleanToken(name.Last)
	domain = strings.ToLower(strings.Trim(strings.TrimSpace(domain), "@"))
	if first == "" || last == "" || domain == "" {
		return ""
	}
	return format(first, last) + "@" + domain
}

// titleWord capitalizes each hyphen-separated part: "smith-jones" -> "Smith-Jones".
func titleWord(word string) string {
	caser := cases.Title(language.Und)
	parts := strings.Split(word, "-")
	for i, p := range parts {
		parts[i] = caser.String(p)
	}
	return strings.Join(parts, "-")
}
