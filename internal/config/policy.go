package config

import (
	"time"

	"github.com/tamzrod/rebootloopd/internal/loopdetect"
)

// Policy converts the normalized detector section into detector thresholds.
func (d DetectorConfig) Policy() loopdetect.Policy {
	p := loopdetect.DefaultPolicy()
	if d.MinRebootIntervalSec > 0 {
		p.MinRebootInterval = time.Duration(d.MinRebootIntervalSec) * time.Second
	}
	if d.MaxRebootCount != nil {
		p.MaxRebootCount = *d.MaxRebootCount
	}
	return p
}

// Timeout bounds one escalation attempt.
func (e EscalationConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutMs) * time.Millisecond
}
