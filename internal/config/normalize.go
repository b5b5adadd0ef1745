package config

import (
	"github.com/tamzrod/rebootloopd/internal/loopdetect"
	"github.com/tamzrod/rebootloopd/internal/startupinfo"
)

const (
	DefaultEscalationTimeoutMs = 2000
	DefaultNATSSubject         = "device.mode.request"
	DefaultNATSName            = "rebootloopd"
)

// Normalize applies defaults after validation.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	d := &cfg.Detector
	if d.StartupInfoFile == "" {
		d.StartupInfoFile = startupinfo.DefaultPath
	}
	if d.MinRebootIntervalSec == 0 {
		d.MinRebootIntervalSec = int(loopdetect.DefaultMinRebootInterval.Seconds())
	}
	if d.MaxRebootCount == nil {
		v := uint32(loopdetect.DefaultMaxRebootCount)
		d.MaxRebootCount = &v
	}

	e := &cfg.Escalation
	if e.Transport == "" {
		e.Transport = TransportNone
	}
	if e.Request == "" {
		e.Request = RequestMalf
	}
	if e.TimeoutMs == 0 {
		e.TimeoutMs = DefaultEscalationTimeoutMs
	}

	// ASCII already validated; truncate to 16 characters.
	if len(e.DeviceName) > 16 {
		e.DeviceName = e.DeviceName[:16]
	}

	if e.NATS.Subject == "" {
		e.NATS.Subject = DefaultNATSSubject
	}
	if e.NATS.Name == "" {
		e.NATS.Name = DefaultNATSName
	}
}
