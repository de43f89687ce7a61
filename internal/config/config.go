// internal/config/config.go

// Package config is for app wide settings unmarshalled from Viper
// (see: /internal/commands). Settings reach core code only as the
// explicit structs built here; core packages never read global state.
package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"

	"hybgo-core/analysis"
	"hybgo-core/hyb"
	"hybgo-core/pair"
)

// InputConfig controls hyb / fold input parsing.
type InputConfig struct {
	// the fold sequence reconciliation policy: static or dynamic
	SeqType string `mapstructure:"seq-type"`

	// infer read_count from "<read_id>_<read_count>" identifiers
	HybformatID bool `mapstructure:"hybformat-id"`

	// infer seg types from "<gene>_<transcript>_<name>_<type>" names
	HybformatRef bool `mapstructure:"hybformat-ref"`

	// accept flags outside the defined vocabulary
	AllowUndefinedFlags bool `mapstructure:"allow-undefined-flags"`

	// additional permitted flag keys
	CustomFlags []string `mapstructure:"custom-flags"`
}

// IterConfig controls paired iteration.
type IterConfig struct {
	// disposal of consistency failures: raise, warn_return,
	// warn_skip, skip, or return
	ErrorMode string `mapstructure:"error-mode"`

	// the enabled consistency checks
	ErrorChecks []string `mapstructure:"error-checks"`

	// skip-run bound before the sources are considered desynchronized
	MaxSequentialSkips int `mapstructure:"max-sequential-skips"`

	// tolerated hyb/fold sequence mismatches
	AllowedMismatches int `mapstructure:"allowed-mismatches"`
}

// AnalysisConfig controls aggregation.
type AnalysisConfig struct {
	// record- or read-weighted counting
	CountMode string `mapstructure:"count-mode"`

	// list the miRNA type first in type-pair keys
	MiRNASort bool `mapstructure:"mirna-sort"`

	// include miRNA/miRNA hybrids in target and fold analyses
	AllowMiRNADimers bool `mapstructure:"allow-mirna-dimers"`

	// output field delimiter: "," or "\t"
	OutDelim string `mapstructure:"out-delim"`

	// segment types treated as miRNAs
	MiRNATypes []string `mapstructure:"mirna-types"`
}

// Config is the root-level settings struct: a mix of settings from
// hybgo.yaml, HYBGO_* environment variables, and command line flags.
type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Iter     IterConfig     `mapstructure:"iter"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
}

// Setup points Viper at the optional hybgo.yaml and the HYBGO_*
// environment. Called once from the command tree's initializer.
func Setup() {
	viper.SetConfigName("hybgo")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("HYBGO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("input.seq-type", "static")
	viper.SetDefault("iter.error-mode", pair.ModeWarnSkip)
	viper.SetDefault("iter.error-checks", pair.DefaultSettings().ErrorChecks)
	viper.SetDefault("iter.max-sequential-skips", pair.DefaultSettings().MaxSequentialSkips)
	viper.SetDefault("analysis.count-mode", "record")
	viper.SetDefault("analysis.mirna-sort", true)
	viper.SetDefault("analysis.out-delim", ",")
	viper.SetDefault("analysis.mirna-types", hyb.DefaultMiRNATypes)

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			log.Printf("WARN: config file ignored: %v", err)
		}
	}
}

// New returns a Config populated by Viper.
func New() Config {
	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		log.Fatalf("unable to decode settings, %v", err)
	}
	return c
}

// LineOptions converts the input section to hyb parse options.
func (c Config) LineOptions() hyb.LineOptions {
	return hyb.LineOptions{
		HybformatID:         c.Input.HybformatID,
		HybformatRef:        c.Input.HybformatRef,
		AllowUndefinedFlags: c.Input.AllowUndefinedFlags,
		CustomFlags:         c.Input.CustomFlags,
	}
}

// SeqType converts the input section's seq-type name.
func (c Config) SeqType() (hyb.SeqType, error) {
	return hyb.ParseSeqType(c.Input.SeqType)
}

// PairSettings converts the iter section to iterator settings.
func (c Config) PairSettings() pair.Settings {
	return pair.Settings{
		ErrorChecks:        c.Iter.ErrorChecks,
		ErrorMode:          c.Iter.ErrorMode,
		MaxSequentialSkips: c.Iter.MaxSequentialSkips,
		AllowedMismatches:  c.Iter.AllowedMismatches,
	}
}

// AnalysisSettings converts the analysis section to aggregation
// settings.
func (c Config) AnalysisSettings() (analysis.Settings, error) {
	s := analysis.DefaultSettings()
	s.CountMode = c.Analysis.CountMode
	s.MiRNASort = c.Analysis.MiRNASort
	s.AllowMiRNADimers = c.Analysis.AllowMiRNADimers
	if len(c.Analysis.MiRNATypes) > 0 {
		s.MiRNATypes = c.Analysis.MiRNATypes
	}
	switch c.Analysis.OutDelim {
	case "", ",":
		s.OutDelim = ','
	case "\t", "tab":
		s.OutDelim = '\t'
	default:
		return s, fmt.Errorf("unsupported out-delim %q (allowed: \",\", tab)", c.Analysis.OutDelim)
	}
	return s, nil
}
