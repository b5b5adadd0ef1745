// Package loopdetect decides, once per boot, whether the device is stuck
// in a reboot loop.
package loopdetect

import (
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/rebootloopd/internal/startupinfo"
)

// Decide is the pure core of the detector.
// No IO. No clock. No side effects.
func Decide(now int64, prior startupinfo.Record, hasPrior bool, p Policy) Result {
	res := Result{
		Now:      now,
		Prior:    prior,
		HasPrior: hasPrior,
		Gap:      GapNoHistory,
		Verdict:  NotALoop,
	}

	if !hasPrior {
		res.Record = startupinfo.Record{LastStartup: now, RebootCount: 0}
		return res
	}

	res.Elapsed = now - prior.LastStartup

	// Negative elapsed (clock went backwards) lands here as well.
	if res.Elapsed < int64(p.MinRebootInterval/time.Second) {
		count := prior.RebootCount
		if count < math.MaxUint32 {
			count++
		}

		res.Gap = GapTight
		res.Record = startupinfo.Record{LastStartup: now, RebootCount: count}

		if count > p.MaxRebootCount {
			res.Verdict = LoopDetected
		} else {
			res.Verdict = NotYetALoop
		}
		return res
	}

	res.Gap = GapNormal
	res.Record = startupinfo.Record{LastStartup: now, RebootCount: 0}
	return res
}

// Detector runs one load -> decide -> persist pass.
// It keeps no state between calls.
type Detector struct {
	store  Store
	policy Policy
	now    func() time.Time
	log    zerolog.Logger
}

// Config wires a Detector.
type Config struct {
	Store  Store
	Policy Policy
	Now    func() time.Time // defaults to time.Now
}

// New validates cfg and returns a Detector.
func New(cfg Config, log zerolog.Logger) (*Detector, error) {
	if cfg.Store == nil {
		return nil, errors.New("loopdetect: store required")
	}
	if cfg.Policy.MinRebootInterval < time.Second {
		return nil, errors.New("loopdetect: min reboot interval must be >= 1s")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Detector{
		store:  cfg.Store,
		policy: cfg.Policy,
		now:    now,
		log:    log,
	}, nil
}

// Policy returns the thresholds in effect.
func (d *Detector) Policy() Policy { return d.policy }

// Run performs exactly one detection pass.
// The new record is written whatever the verdict; a failed write is
// reported in Result.SaveErr and logged, and never changes the verdict.
func (d *Detector) Run() Result {
	now := d.now().Unix()

	prior, ok := d.store.Load()
	res := Decide(now, prior, ok, d.policy)

	switch res.Gap {
	case GapNoHistory:
		d.log.Debug().Msg("no startup history; assuming first boot")
	case GapNormal:
		d.log.Debug().
			Int64("elapsed_s", res.Elapsed).
			Dur("min_interval", d.policy.MinRebootInterval).
			Msg("normal gap since last startup; resetting reboot count")
	case GapTight:
		if res.Verdict == LoopDetected {
			d.log.Debug().
				Uint32("reboot_count", res.Record.RebootCount).
				Msg("reboots in a succession; reboot loop detected")
		} else {
			d.log.Debug().
				Int64("elapsed_s", res.Elapsed).
				Uint32("reboot_count", res.Record.RebootCount).
				Msg("tight gap since last startup")
		}
	}

	if err := d.store.Save(res.Record); err != nil {
		res.SaveErr = err
		d.log.Warn().Err(err).Msg("startup info not persisted; keeping previous record")
	}

	return res
}
