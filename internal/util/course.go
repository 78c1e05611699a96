package util

import (
	"regexp"
	"strings"
)

var (
	coursePattern  = regexp.MustCompile(`(?i)\b([A-Z]{2,5})\s*[-_ ]?\s*(\d{3,4}[A-Z]?)\b`)
	subjectPattern = regexp.MustCompile(`^[A-Z]{2,5}$`)
	numberPattern  = regexp.MustCompile(`^\d{3,4}[A-Z]?$`)
)

type ParsedCourse struct {
	Subject string
	Number  string
	Raw     string
}

func (p ParsedCourse) Code() string {
	if p.Subject == "" || p.Number == "" {
		return p.Raw
	}
	return p.Subject + " " + p.Number
}

// ParseCourse finds the first "SUBJ 1234" style code in input.
func ParseCourse(input string) (ParsedCourse, bool) {
	line := CollapseSpaces(input)
	m := coursePattern.FindStringSubmatch(line)
	if len(m) < 3 {
		return ParsedCourse{Raw: line}, false
	}
	return ParsedCourse{
		Subject: strings.ToUpper(m[1]),
		Number:  strings.ToUpper(m[2]),
		Raw:     line,
	}, true
}

// NormalizeCourse canonicalizes a bare course code ("acct-1045" -> "ACCT 1045")
// and leaves anything else as collapsed text.
func NormalizeCourse(input string) string {
	line := CollapseSpaces(input)
	if line == "" {
		return ""
	}
	parsed, ok := ParseCourse(line)
	if !ok {
		return line
	}
	loc := coursePattern.FindStringIndex(line)
	if loc[0] == 0 && loc[1] == len(line) {
		return parsed.Code()
	}
	return line
}

func LooksLikeSubject(input string) bool {
	return subjectPattern.MatchString(strings.TrimSpace(input))
}

func LooksLikeCourseNumber(input string) bool {
	return numberPattern.MatchString(strings.TrimSpace(input))
}
