package pipeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"outreach/internal"
	"outreach/internal/util"
)

const DefaultHonorific = "Professor"

var (
	reInitial = regexp.MustCompile(`^\p{L}\.?$`)
	// J.R. or A.J.: read as a given name when it leads, not as "Jr"
	reDottedInitials = regexp.MustCompile(`^\p{L}\.(\p{L}\.)*\p{L}\.?$`)
)

type Normalizer struct {
	rules *Rules
}

func NewNormalizer(rules *Rules) *Normalizer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Normalizer{rules: rules}
}

func (n *Normalizer) Rules() *Rules {
	return n.rules
}

// Normalize turns a scraped name cell into a structured name. Cells naming
// more than one person, placeholders, headings and names without both a
// first and last part are rejected with a *RejectedNameError.
func (n *Normalizer) Normalize(raw string) (internal.NormalizedName, error) {
	s := util.CollapseSpaces(raw)
	if s == "" {
		return internal.NormalizedName{}, reject(raw, RejectEmpty)
	}
	if n.isMultiPerson(s) {
		return internal.NormalizedName{}, reject(raw, RejectMultiPerson)
	}
	if reason, ok := n.placeholderOrHeading(s); ok {
		return internal.NormalizedName{}, reject(raw, reason)
	}

	fields := n.stripHonorifics(strings.Fields(s))
	if len(fields) == 0 {
		return internal.NormalizedName{}, reject(raw, RejectIncomplete)
	}
	s = strings.Join(fields, " ")

	var firstRaw, lastRaw string
	if idx := strings.Index(s, ","); idx >= 0 {
		lastTokens := n.keyTokens(strings.Fields(s[:idx]))
		firstFields := n.stripHonorifics(strings.Fields(strings.ReplaceAll(s[idx+1:], ",", " ")))
		firstTokens := n.keyTokens(firstFields)
		if len(lastTokens) == 0 || len(firstTokens) == 0 {
			return internal.NormalizedName{}, reject(raw, RejectIncomplete)
		}
		firstRaw = firstTokens[0]
		lastRaw = lastTokens[len(lastTokens)-1]
	} else {
		tokens := n.keyTokens(fields)
		if len(tokens) < 2 {
			return internal.NormalizedName{}, reject(raw, RejectIncomplete)
		}
		firstRaw = tokens[0]
		lastRaw = tokens[len(tokens)-1]
	}

	first := util.CleanToken(firstRaw)
	last := util.CleanToken(lastRaw)
	if first == "" || last == "" {
		return internal.NormalizedName{}, reject(raw, RejectIncomplete)
	}

	return internal.NormalizedName{
		Tokens:  []string{first, last},
		First:   first,
		Last:    last,
		Display: displayToken(firstRaw) + " " + displayToken(lastRaw),
	}, nil
}

// Salutation returns the greeting form of a name. Names that already open
// with a title are kept as written.
func (n *Normalizer) Salutation(name, honorific string) string {
	honorific = util.CollapseSpaces(honorific)
	if honorific == "" {
		honorific = DefaultHonorific
	}
	s := util.CollapseSpaces(name)
	if s == "" {
		return honorific
	}
	if n.rules.IsHonorific(strings.Fields(s)[0]) {
		return s
	}
	return honorific + " " + s
}

func (n *Normalizer) isMultiPerson(s string) bool {
	lower := strings.ToLower(s)
	for _, sep := range n.rules.Separators {
		if strings.Contains(lower, sep) {
			return true
		}
	}

	groups := strings.Split(s, ",")
	if len(groups) <= 2 {
		return false
	}
	// "Smith, John, PhD" is one person; "Smith, Jones, Brown" is a list.
	if !n.isSurnameGroup(groups[0]) {
		return true
	}
	for _, g := range groups[2:] {
		for _, tok := range strings.Fields(g) {
			if n.rules.Classify(tok) != ClassSuffix && !reInitial.MatchString(tok) {
				return true
			}
		}
	}
	return false
}

// isSurnameGroup reports whether a comma group reads as one last name: a
// single word, or particles ahead of one ("Van Der Berg").
func (n *Normalizer) isSurnameGroup(group string) bool {
	fields := n.stripHonorifics(strings.Fields(group))
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields[:len(fields)-1] {
		if n.rules.Classify(f) != ClassParticle {
			return false
		}
	}
	return true
}

func (n *Normalizer) placeholderOrHeading(s string) (RejectReason, bool) {
	switch n.rules.ClassifyPhrase(s) {
	case ClassPlaceholder:
		return RejectPlaceholder, true
	case ClassHeading:
		return RejectHeading, true
	}

	words := strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	for _, w := range words {
		if n.rules.Classify(w) == ClassPlaceholderMarker {
			return RejectPlaceholder, true
		}
	}

	if !strings.Contains(s, ",") && len(strings.Fields(s)) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		if unicode.IsUpper(r) && !n.rules.IsHonorific(s) {
			return RejectHeading, true
		}
	}
	return "", false
}

func (n *Normalizer) stripHonorifics(fields []string) []string {
	for len(fields) > 0 && n.rules.IsHonorific(fields[0]) {
		fields = fields[1:]
	}
	return fields
}

// keyTokens drops initials, suffixes, parenthesized nicknames and tokens
// with no letters left after cleaning. A leading dotted pair such as "J.R."
// is kept as the given name.
func (n *Normalizer) keyTokens(fields []string) []string {
	out := make([]string, 0, len(fields))
	for i, f := range fields {
		if strings.HasPrefix(f, "(") || strings.HasSuffix(f, ")") {
			continue
		}
		if i == 0 && reDottedInitials.MatchString(f) {
			out = append(out, f)
			continue
		}
		if reInitial.MatchString(f) || n.rules.Classify(f) == ClassSuffix {
			continue
		}
		if util.CleanToken(f) == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

func displayToken(tok string) string {
	if t := strings.Trim(tok, `,;:()[]"'`); reDottedInitials.MatchString(t) {
		return t
	}
	return strings.Trim(tok, `.,;:()[]"'`)
}

// TextTokens is the free-text token set used for overlap scoring.
func TextTokens(s string) []string {
	return util.Tokenize(s)
}
