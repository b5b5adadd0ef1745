package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvStartupInfoFile overrides detector.startup_info_file when set.
const EnvStartupInfoFile = "REBOOTLOOPD_STARTUP_INFO_FILE"

// Load reads a YAML config file.
// An empty path yields an empty Config (all defaults after Normalize).
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decode(data, cfg, true); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// LoadBestEffort never fails. It keeps every section that can be kept and
// reports what it had to drop:
//   - unknown keys are reported and the file is decoded again without them
//   - an unreadable or unparsable file yields defaults
//   - a section failing validation is reset on its own (see Repair)
//
// The result is normalized.
func LoadBestEffort(path string) (*Config, []error) {
	var errs []error

	cfg, err := Load(path)
	if err != nil {
		errs = append(errs, err)
		cfg = loadLoose(path)
	}

	errs = append(errs, Repair(cfg)...)
	Normalize(cfg)
	return cfg, errs
}

// loadLoose decodes without the unknown-key check. Type errors keep the
// fields that did decode; any other failure yields an empty Config.
func loadLoose(path string) *Config {
	cfg := &Config{}
	if data, err := os.ReadFile(path); err == nil {
		var typeErr *yaml.TypeError
		if err := decode(data, cfg, false); err != nil && !errors.As(err, &typeErr) {
			cfg = &Config{}
		}
	}
	applyEnv(cfg)
	return cfg
}

func decode(data []byte, cfg *Config, strict bool) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(strict)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvStartupInfoFile); v != "" {
		cfg.Detector.StartupInfoFile = v
	}
}
