package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"outreach/internal/config"
	"outreach/internal/logging"
	"outreach/internal/pipeline"
)

type rootFlags struct {
	envFile     string
	institution string
	logLevel    string
	logFormat   string
}

type commandContext struct {
	flags *rootFlags

	configOnce sync.Once
	config     config.Config
	logger     *slog.Logger
	rules      *pipeline.Rules
	configErr  error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		var files []string
		if f := strings.TrimSpace(c.flags.envFile); f != "" {
			files = append(files, f)
		}
		cfg, err := config.Load(files...)
		if err != nil {
			c.configErr = err
			return
		}
		if c.flags.institution != "" {
			cfg.Institution = c.flags.institution
		}
		if c.flags.logLevel != "" {
			cfg.LogLevel = c.flags.logLevel
		}
		if c.flags.logFormat != "" {
			cfg.LogFormat = c.flags.logFormat
		}

		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.configErr = err
			return
		}
		rules, err := pipeline.LoadRules(cfg.RulesPath)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = logger
		c.rules = rules
	})
	return c.config, c.configErr
}

// institution loads the selected profile, or nil when none is selected.
func (c *commandContext) institution() (*config.Institution, error) {
	if strings.TrimSpace(c.config.Institution) == "" {
		return nil, nil
	}
	return config.NewInstitutionLoader(c.config.InstitutionsDir).Load(c.config.Institution)
}

type target struct {
	inst     *config.Institution
	pattern  pipeline.EmailPattern
	domain   string
	strategy string
}

// target merges the institution profile with EMAIL_PATTERN and
// EMAIL_DOMAIN; the environment wins.
func (c *commandContext) target() (target, error) {
	inst, err := c.institution()
	if err != nil {
		return target{}, err
	}
	t := target{inst: inst, strategy: config.StrategyRules}
	patternValue := c.config.EmailPattern
	if inst != nil {
		if patternValue == "" {
			patternValue = inst.EmailPattern
		}
		t.domain = inst.Domain
		t.strategy = inst.Strategy
	}
	if c.config.EmailDomain != "" {
		t.domain = strings.ToLower(strings.Trim(strings.TrimSpace(c.config.EmailDomain), "@"))
		if err := config.ValidateDomain(t.domain); err != nil {
			return target{}, err
		}
	}
	t.pattern, err = pipeline.ParseEmailPattern(patternValue)
	if err != nil {
		return target{}, fmt.Errorf("email pattern: %w", err)
	}
	return t, nil
}
