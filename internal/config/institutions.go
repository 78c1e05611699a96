package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
	"gopkg.in/yaml.v3"
)

// Institution describes one college: where its directory lives, how its
// addresses are formed and how directory results should be matched.
type Institution struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	Domain       string            `yaml:"domain"`
	EmailPattern string            `yaml:"email_pattern"`
	Strategy     string            `yaml:"strategy"`
	Directory    DirectorySettings `yaml:"directory"`
}

// DirectorySettings configures the lookup adapter. Name, First, Last and
// Email are JSON field names for kind "json", CSS selectors for kind
// "html" and column headers for kind "static".
type DirectorySettings struct {
	Kind           string   `yaml:"kind"`
	URL            string   `yaml:"url"`
	QueryParam     string   `yaml:"query_param"`
	ResultsKey     string   `yaml:"results_key"`
	Render         bool     `yaml:"render"`
	WaitSelector   string   `yaml:"wait_selector"`
	Card           string   `yaml:"card"`
	Name           string   `yaml:"name"`
	First          string   `yaml:"first"`
	Last           string   `yaml:"last"`
	Email          string   `yaml:"email"`
	StartURLs      []string `yaml:"start_urls"`
	AllowedDomains []string `yaml:"allowed_domains"`
	MaxDepth       int      `yaml:"max_depth"`
	DelayMs        int      `yaml:"delay_ms"`
	Path           string   `yaml:"path"`
}

const (
	DirectoryNone    = "none"
	DirectoryJSON    = "json"
	DirectoryHTML    = "html"
	DirectoryHarvest = "harvest"
	DirectoryStatic  = "static"

	StrategyRules = "rules"
	StrategyScan  = "scan"
)

type InstitutionLoader struct {
	dir string
}

func NewInstitutionLoader(dir string) *InstitutionLoader {
	return &InstitutionLoader{dir: dir}
}

// LoadAll reads every *.yaml and *.yml file in the directory, keyed by id.
// A missing directory yields an empty set.
func (l *InstitutionLoader) LoadAll() (map[string]*Institution, error) {
	out := map[string]*Institution{}
	if _, err := os.Stat(l.dir); os.IsNotExist(err) {
		return out, nil
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("find institution files: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(l.dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("find institution files: %w", err)
	}
	files = append(files, ymlFiles...)
	sort.Strings(files)

	for _, file := range files {
		inst, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
		if err := inst.Validate(); err != nil {
			return nil, fmt.Errorf("invalid institution %s: %w", file, err)
		}
		if _, dup := out[inst.ID]; dup {
			return nil, fmt.Errorf("duplicate institution id %q in %s", inst.ID, file)
		}
		out[inst.ID] = inst
	}
	return out, nil
}

// Load returns the profile with the given id.
func (l *InstitutionLoader) Load(id string) (*Institution, error) {
	all, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	inst, ok := all[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("unknown institution %q (looked in %s)", id, l.dir)
	}
	return inst, nil
}

func (l *InstitutionLoader) loadFile(path string) (*Institution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var inst Institution
	if err := yaml.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if inst.ID == "" {
		inst.ID = strings.TrimSuffix(strings.TrimSuffix(filepath.Base(path), ".yaml"), ".yml")
	}
	inst.setDefaults()
	return &inst, nil
}

func (i *Institution) setDefaults() {
	i.Domain = strings.ToLower(strings.Trim(strings.TrimSpace(i.Domain), "@"))
	if i.Strategy == "" {
		i.Strategy = StrategyRules
	}
	if i.Directory.Kind == "" {
		i.Directory.Kind = DirectoryNone
	}
	if i.Directory.QueryParam == "" {
		i.Directory.QueryParam = "q"
	}
	if i.Directory.MaxDepth == 0 {
		i.Directory.MaxDepth = 2
	}
	if i.Directory.DelayMs == 0 {
		i.Directory.DelayMs = 1000
	}
	if i.Directory.Kind == DirectoryHTML && i.Directory.Email == "" {
		i.Directory.Email = `a[href^="mailto:"]`
	}
}

func (i *Institution) Validate() error {
	if i.Domain != "" {
		if err := ValidateDomain(i.Domain); err != nil {
			return err
		}
	}
	switch i.Strategy {
	case StrategyRules, StrategyScan:
	default:
		return fmt.Errorf("unknown strategy %q", i.Strategy)
	}

	d := i.Directory
	switch d.Kind {
	case DirectoryNone:
	case DirectoryJSON:
		if d.URL == "" {
			return fmt.Errorf("directory.url is required for kind json")
		}
	case DirectoryHTML:
		if d.URL == "" || d.Card == "" || d.Name == "" {
			return fmt.Errorf("directory.url, directory.card and directory.name are required for kind html")
		}
	case DirectoryHarvest:
		if len(d.StartURLs) == 0 {
			return fmt.Errorf("directory.start_urls is required for kind harvest")
		}
		if d.Path == "" {
			return fmt.Errorf("directory.path is required for kind harvest")
		}
	case DirectoryStatic:
		if d.Path == "" {
			return fmt.Errorf("directory.path is required for kind static")
		}
	default:
		return fmt.Errorf("unknown directory kind %q", d.Kind)
	}
	if d.MaxDepth < 0 || d.DelayMs < 0 {
		return fmt.Errorf("directory.max_depth and directory.delay_ms must be non-negative")
	}
	return nil
}

// ValidateDomain rejects domains that are not under a public suffix, such
// as "localhost" or a bare "ca".
func ValidateDomain(domain string) error {
	etld1, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil || etld1 == "" {
		return fmt.Errorf("invalid email domain %q", domain)
	}
	return nil
}
