// Package config holds runtime settings. Values are layered: defaults,
// then an optional HCL settings file, then REGIONCORE_* environment
// variables. Command-line flags are applied last by the caller.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// DefaultFile is the settings file looked up next to the game content.
const DefaultFile = "regioncore.hcl"

// Settings are the runtime options of the host harness.
type Settings struct {
	SaveDir           string `env:"REGIONCORE_SAVE_DIR"`
	LogLevel          string `env:"REGIONCORE_LOG_LEVEL"`
	LogFormat         string `env:"REGIONCORE_LOG_FORMAT"`
	AllowScripts      bool   `env:"REGIONCORE_ALLOW_SCRIPTS"`
	DamageFloorAmount int    `env:"REGIONCORE_DAMAGE_FLOOR_AMOUNT"`
	Seed              int64  `env:"REGIONCORE_SEED"`
	Plain             bool   `env:"REGIONCORE_PLAIN"`
	Trace             bool   `env:"REGIONCORE_TRACE"`
}

// fileSettings mirrors Settings for HCL decoding. Pointers tell an
// absent attribute from a zero value.
type fileSettings struct {
	SaveDir           *string `hcl:"save_dir,optional"`
	LogLevel          *string `hcl:"log_level,optional"`
	LogFormat         *string `hcl:"log_format,optional"`
	AllowScripts      *bool   `hcl:"allow_scripts,optional"`
	DamageFloorAmount *int    `hcl:"damage_floor_amount,optional"`
	Seed              *int64  `hcl:"seed,optional"`
	Plain             *bool   `hcl:"plain,optional"`
	Trace             *bool   `hcl:"trace,optional"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		SaveDir:           ".",
		LogLevel:          "warn",
		LogFormat:         "text",
		DamageFloorAmount: 10,
	}
}

// Load builds settings from defaults, the HCL file at path (skipped when
// path is empty) and the environment.
func Load(path string) (Settings, error) {
	s := Defaults()
	if path != "" {
		if err := s.applyFile(path); err != nil {
			return Settings{}, err
		}
	}
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// FileExists reports whether path names a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (s *Settings) applyFile(path string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse settings file %s: %s", path, diags.Error())
	}

	var fs fileSettings
	diags = gohcl.DecodeBody(file.Body, nil, &fs)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode settings file %s: %s", path, diags.Error())
	}

	if fs.SaveDir != nil {
		s.SaveDir = *fs.SaveDir
	}
	if fs.LogLevel != nil {
		s.LogLevel = *fs.LogLevel
	}
	if fs.LogFormat != nil {
		s.LogFormat = *fs.LogFormat
	}
	if fs.AllowScripts != nil {
		s.AllowScripts = *fs.AllowScripts
	}
	if fs.DamageFloorAmount != nil {
		s.DamageFloorAmount = *fs.DamageFloorAmount
	}
	if fs.Seed != nil {
		s.Seed = *fs.Seed
	}
	if fs.Plain != nil {
		s.Plain = *fs.Plain
	}
	if fs.Trace != nil {
		s.Trace = *fs.Trace
	}
	return nil
}

// Validate rejects settings the harness cannot run with.
func (s Settings) Validate() error {
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", s.LogLevel)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", s.LogFormat)
	}
	if s.DamageFloorAmount < 0 {
		return fmt.Errorf("damage_floor_amount must not be negative, got %d", s.DamageFloorAmount)
	}
	return nil
}

// ParseEnv populates target from environment variables. Unset variables
// leave the current field values untouched.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
