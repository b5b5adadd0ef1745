package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}
	if err := ValidateDetector(cfg.Detector); err != nil {
		return err
	}
	return ValidateEscalation(cfg.Escalation)
}

// ValidateDetector checks the detector section only.
func ValidateDetector(d DetectorConfig) error {
	if d.MinRebootIntervalSec < 0 {
		return fmt.Errorf(
			"detector: min_reboot_interval_sec must be >= 0, got %d",
			d.MinRebootIntervalSec,
		)
	}
	return nil
}

// ValidateEscalation checks the escalation section only.
func ValidateEscalation(e EscalationConfig) error {
	if e.TimeoutMs < 0 {
		return fmt.Errorf("escalation: timeout_ms must be >= 0, got %d", e.TimeoutMs)
	}

	switch e.Request {
	case "", RequestMalf, RequestShutdown:
	default:
		return fmt.Errorf("escalation: unknown request %q", e.Request)
	}

	for i := 0; i < len(e.DeviceName); i++ {
		if e.DeviceName[i] > 0x7F {
			return fmt.Errorf("escalation: device_name must contain ASCII characters only")
		}
	}

	switch e.Transport {
	case "", TransportNone:
	case TransportModbus:
		if e.Modbus.Endpoint == "" {
			return fmt.Errorf("escalation: transport %q requires modbus.endpoint", e.Transport)
		}
	case TransportIngest:
		if e.Ingest.Endpoint == "" {
			return fmt.Errorf("escalation: transport %q requires ingest.endpoint", e.Transport)
		}
	case TransportNATS:
		if e.NATS.URL == "" {
			return fmt.Errorf("escalation: transport %q requires nats.url", e.Transport)
		}
	default:
		return fmt.Errorf("escalation: unknown transport %q", e.Transport)
	}

	return nil
}

// Repair resets only the offending part of each invalid section and
// returns the validation errors it acted on. It MUST be called before
// Normalize.
//
// The history file path and the thresholds are never dropped because of an
// escalation problem: losing them would stop boots from being counted.
func Repair(cfg *Config) []error {
	if cfg == nil {
		return nil
	}

	var errs []error

	if err := ValidateDetector(cfg.Detector); err != nil {
		errs = append(errs, err)
		cfg.Detector.MinRebootIntervalSec = 0
	}

	if err := ValidateEscalation(cfg.Escalation); err != nil {
		errs = append(errs, err)
		cfg.Escalation = EscalationConfig{Transport: TransportNone}
	}

	return errs
}
