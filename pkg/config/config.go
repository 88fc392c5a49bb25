package config

import (
	"fmt"
	"strings"

	"github.com/xplshn/clex/pkg/cli"
)

type Feature int

const (
	FeatCComments Feature = iota
	FeatBlockComments
	FeatCRLF
	FeatUnterminated
	FeatCount
)

type Warning int

const (
	WarnUnexpectedChar Warning = iota
	WarnUnterminated
	WarnTrailingDot
	WarnGenericSymbol
	WarnPedantic
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features    map[Feature]Info
	Warnings    map[Warning]Info
	FeatureMap  map[string]Feature
	WarningMap  map[string]Warning
	ProfileName string
}

func NewConfig() *Config {
	cfg := &Config{
		Features:    make(map[Feature]Info),
		Warnings:    make(map[Warning]Info),
		FeatureMap:  make(map[string]Feature),
		WarningMap:  make(map[string]Warning),
		ProfileName: "compat",
	}

	features := map[Feature]Info{
		FeatCComments:     {"c-comments", true, "Recognize C-style '//' line comments."},
		FeatBlockComments: {"block-comments", true, "Recognize '/* ... */' block comments."},
		FeatCRLF:          {"crlf", false, "Treat carriage returns as whitespace."},
		FeatUnterminated:  {"unterminated", false, "Report an unclosed comment or string once and stop, instead of per character."},
	}

	warnings := map[Warning]Info{
		WarnUnexpectedChar: {"unexpected-char", true, "Print a diagnostic for every unrecognized character."},
		WarnUnterminated:   {"unterminated", true, "Print a diagnostic for unclosed comments and strings."},
		WarnTrailingDot:    {"trailing-dot", false, "Warn on float literals ending in '.', such as '3.'."},
		WarnGenericSymbol:  {"generic-symbol", false, "Warn on operators without a dedicated token kind, such as '++'."},
		WarnPedantic:       {"pedantic", false, "Issue every warning the lexer knows about."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool {
	if c.Warnings[WarnPedantic].Enabled && wt != WarnPedantic {
		return true
	}
	return c.Warnings[wt].Enabled
}

// ApplyProfile switches between the reference-compatible behavior and the
// extended one. Individual -F/-W flags applied afterwards still win.
func (c *Config) ApplyProfile(name string) error {
	type profileSettings struct {
		feature     Feature
		compatValue bool
		modernValue bool
	}

	settings := []profileSettings{
		{FeatCComments, true, true},
		{FeatBlockComments, true, true},
		{FeatCRLF, false, true},
		{FeatUnterminated, false, true},
	}

	switch name {
	case "compat":
		for _, s := range settings {
			c.SetFeature(s.feature, s.compatValue)
		}
		c.SetWarning(WarnTrailingDot, false)
		c.SetWarning(WarnGenericSymbol, false)
	case "modern":
		for _, s := range settings {
			c.SetFeature(s.feature, s.modernValue)
		}
		c.SetWarning(WarnTrailingDot, true)
		c.SetWarning(WarnGenericSymbol, true)
	default:
		return fmt.Errorf("unsupported profile '%s'. Supported: 'compat', 'modern'", name)
	}
	c.ProfileName = name
	return nil
}

func (c *Config) applyFlag(flag string) {
	trimmed := strings.TrimPrefix(flag, "-")
	isNo := strings.HasPrefix(trimmed, "Wno-") || strings.HasPrefix(trimmed, "Fno-")
	enable := !isNo

	var name string
	var isWarning bool

	switch {
	case strings.HasPrefix(trimmed, "W"):
		name = strings.TrimPrefix(trimmed, "W")
		if isNo {
			name = strings.TrimPrefix(name, "no-")
		}
		isWarning = true
	case strings.HasPrefix(trimmed, "F"):
		name = strings.TrimPrefix(trimmed, "F")
		if isNo {
			name = strings.TrimPrefix(name, "no-")
		}
	default:
		name = trimmed
		isWarning = true
	}

	if name == "all" && isWarning {
		for i := Warning(0); i < WarnCount; i++ {
			if i != WarnPedantic {
				c.SetWarning(i, enable)
			}
		}
		return
	}

	if isWarning {
		if w, ok := c.WarningMap[name]; ok {
			c.SetWarning(w, enable)
		}
	} else {
		if f, ok := c.FeatureMap[name]; ok {
			c.SetFeature(f, enable)
		}
	}
}

// ProcessFlags applies flag names such as "Wall", "Fno-crlf" or "pedantic".
// -Wall style flags go first so specific ones can override them.
func (c *Config) ProcessFlags(names []string) {
	isGlobal := func(name string) bool {
		return name == "Wall" || name == "Wno-all" || name == "pedantic"
	}
	for _, name := range names {
		if isGlobal(name) {
			c.applyFlag("-" + name)
		}
	}
	for _, name := range names {
		if !isGlobal(name) {
			c.applyFlag("-" + name)
		}
	}
}

// SetupFlagGroups registers -W<name>/-Wno-<name> and -F<name>/-Fno-<name>
// on fs. The returned entries are indexed by Warning and Feature.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) ([]cli.FlagGroupEntry, []cli.FlagGroupEntry) {
	warningFlags := make([]cli.FlagGroupEntry, WarnCount)
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		warningFlags[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description,
			Enabled: new(bool), Disabled: new(bool),
		}
	}

	featureFlags := make([]cli.FlagGroupEntry, FeatCount)
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		featureFlags[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description,
			Enabled: new(bool), Disabled: new(bool),
		}
	}

	fs.AddFlagGroup("Warning Flags", "Enable or disable specific warnings", "warning flag", "Available Warning Flags:", warningFlags)
	fs.AddFlagGroup("Feature Flags", "Enable or disable specific features", "feature flag", "Available feature flags:", featureFlags)
	return warningFlags, featureFlags
}

// ApplyFlagGroups copies parsed group entries back into the config.
func (c *Config) ApplyFlagGroups(warningFlags, featureFlags []cli.FlagGroupEntry) {
	for i, entry := range warningFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, entry := range featureFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}
