package pipeline

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

//go:embed rules.toml
var defaultRulesTOML []byte

type Classification string

const (
	ClassNone              Classification = ""
	ClassHonorific         Classification = "honorific"
	ClassSuffix            Classification = "suffix"
	ClassPlaceholderMarker Classification = "placeholder_marker"
	ClassPlaceholder       Classification = "placeholder"
	ClassHeading           Classification = "heading"
	ClassParticle          Classification = "particle"
)

type rulesFile struct {
	Honorifics             []string `toml:"honorifics"`
	Suffixes               []string `toml:"suffixes"`
	PlaceholderMarkers     []string `toml:"placeholder_markers"`
	Placeholders           []string `toml:"placeholders"`
	Headings               []string `toml:"headings"`
	PlaceholderInstructors []string `toml:"placeholder_instructors"`
	Separators             []string `toml:"separators"`
	Particles              []string `toml:"particles"`
	Headers                struct {
		Name   []string `toml:"name"`
		Email  []string `toml:"email"`
		Course []string `toml:"course"`
	} `toml:"headers"`
}

// Rules holds the closed word lists used by normalization, layout detection
// and output filtering.
type Rules struct {
	terms                  map[string]Classification
	phrases                map[string]Classification
	PlaceholderInstructors []string
	Separators             []string
	NameHeaders            []string
	EmailHeaders           []string
	CourseHeaders          []string
}

var (
	defaultRulesOnce sync.Once
	defaultRules     *Rules
)

// DefaultRules returns the embedded rule tables.
func DefaultRules() *Rules {
	defaultRulesOnce.Do(func() {
		r, err := ParseRules(defaultRulesTOML)
		if err != nil {
			panic(fmt.Sprintf("embedded rules.toml: %v", err))
		}
		defaultRules = r
	})
	return defaultRules
}

// LoadRules reads a rules file, falling back to the embedded tables when
// path is empty.
func LoadRules(path string) (*Rules, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (*Rules, error) {
	var file rulesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	r := &Rules{
		terms:                  map[string]Classification{},
		phrases:                map[string]Classification{},
		PlaceholderInstructors: lowerAll(file.PlaceholderInstructors),
		Separators:             separatorList(file.Separators),
		NameHeaders:            lowerAll(file.Headers.Name),
		EmailHeaders:           lowerAll(file.Headers.Email),
		CourseHeaders:          lowerAll(file.Headers.Course),
	}
	// Later lists win on conflicts; headings are checked on whole phrases only.
	for _, t := range file.Particles {
		r.terms[termKey(t)] = ClassParticle
	}
	for _, t := range file.Honorifics {
		r.terms[termKey(t)] = ClassHonorific
	}
	for _, t := range file.Suffixes {
		r.terms[termKey(t)] = ClassSuffix
	}
	for _, t := range file.PlaceholderMarkers {
		r.terms[termKey(t)] = ClassPlaceholderMarker
	}
	for _, p := range file.Placeholders {
		r.phrases[phraseKey(p)] = ClassPlaceholder
	}
	for _, p := range file.Headings {
		key := phraseKey(p)
		if _, taken := r.phrases[key]; !taken {
			r.phrases[key] = ClassHeading
		}
	}

	if len(r.NameHeaders) == 0 || len(r.CourseHeaders) == 0 {
		return nil, fmt.Errorf("parse rules: headers.name and headers.course are required")
	}
	return r, nil
}

// Classify looks up a single token.
func (r *Rules) Classify(token string) Classification {
	return r.terms[termKey(token)]
}

// ClassifyPhrase looks up a whole cell.
func (r *Rules) ClassifyPhrase(phrase string) Classification {
	return r.phrases[phraseKey(phrase)]
}

func (r *Rules) IsHonorific(token string) bool {
	return r.Classify(token) == ClassHonorific
}

func (r *Rules) IsPlaceholderInstructor(name string) bool {
	key := strings.ToLower(strings.Join(strings.Fields(name), " "))
	for _, p := range r.PlaceholderInstructors {
		if key == p {
			return true
		}
	}
	return false
}

func termKey(token string) string {
	return strings.ReplaceAll(strings.Trim(strings.ToLower(strings.TrimSpace(token)), ".,;:()"), ".", "")
}

func phraseKey(phrase string) string {
	s := strings.ToLower(phrase)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', ':', '(', ')', '[', ']', '*':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// separatorList keeps surrounding spaces so " and " does not match inside
// "Anderson".
func separatorList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.ToLower(v))
		}
	}
	return out
}
