// Package behave converts spreadsheet-based behavioral survey data
// into a BIDS-compliant directory of JSON sidecars and TSV tables.
package behave

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config carries every knob the conversion pipeline reads. It is
// passed explicitly into each transform entry point; there is no
// package-level state.
type Config struct {
	// MinTaskSheets is the sheet count a task definition must have.
	MinTaskSheets int
	// Anonymize replaces item descriptions with numbered placeholders.
	Anonymize bool
	// MissingValueToken is written for absent cells ("n/a").
	MissingValueToken string
	// MissingValueCode is a numeric sentinel treated as missing.
	MissingValueCode int64
	// BIDSVersion is the fallback for dataset descriptions without a
	// valid one.
	BIDSVersion string
	// ValidatorTimeout bounds the external BIDS validator run.
	ValidatorTimeout time.Duration
	// SkipValidation disables the external validator entirely.
	SkipValidation bool
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		MinTaskSheets:     3,
		MissingValueToken: "n/a",
		MissingValueCode:  -999,
		BIDSVersion:       "1.8.0",
		ValidatorTimeout:  5 * time.Minute,
	}
}

// LoadConfig returns the default configuration, overridden by a
// behave.yaml file in dir when one exists. Only missing_value_code,
// bids_version and validator_timeout may be overridden from file; the
// rest is CLI territory.
func LoadConfig(dir string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("behave")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading behave.yaml in %s: %w", dir, err)
	}

	if v.IsSet("missing_value_code") {
		cfg.MissingValueCode = v.GetInt64("missing_value_code")
	}
	if v.IsSet("bids_version") {
		cfg.BIDSVersion = v.GetString("bids_version")
	}
	if v.IsSet("validator_timeout") {
		cfg.ValidatorTimeout = v.GetDuration("validator_timeout")
	}
	return cfg, nil
}
