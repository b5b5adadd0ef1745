// Package module exposes the reboot loop detector as a loadable module:
// Init runs the full detection pass as a side effect of loading, Fini
// releases nothing because nothing is held.
package module

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/rebootloopd/internal/escalation"
	"github.com/tamzrod/rebootloopd/internal/loopdetect"
)

const name = "rebootloopdetector"

// Runner is the detection pass.
type Runner interface {
	Run() loopdetect.Result
}

// RequesterFactory connects the escalation transport on demand.
type RequesterFactory func() (escalation.Requester, error)

// Options wires a Module.
type Options struct {
	Detector   Runner
	Requester  RequesterFactory
	Kind       escalation.Kind
	DeviceName string
	Timeout    time.Duration // bounds the escalation request; 0 means no bound
	Log        zerolog.Logger
}

// Module holds wiring only; no state survives Init.
type Module struct {
	opts Options
}

func New(opts Options) (*Module, error) {
	if opts.Detector == nil {
		return nil, errors.New("module: detector required")
	}
	if opts.Kind == 0 {
		opts.Kind = escalation.KindMalfunction
	}
	return &Module{opts: opts}, nil
}

// Init performs the detection pass and, on a loop, requests escalation.
// Nothing here is fatal: every failure is logged and the result returned.
func (m *Module) Init(ctx context.Context) loopdetect.Result {
	log := m.opts.Log
	log.Debug().Msg(name + " loaded")

	res := m.opts.Detector.Run()

	log.Info().
		Stringer("verdict", res.Verdict).
		Stringer("gap", res.Gap).
		Uint32("reboot_count", res.Record.RebootCount).
		Bool("persisted", res.SaveErr == nil).
		Msg("startup checked")

	if res.Verdict == loopdetect.LoopDetected {
		log.Error().
			Uint32("reboot_count", res.Record.RebootCount).
			Msg("going to MALF due to a reboot loop")
		m.escalate(ctx, res)
	}

	return res
}

// Fini is the teardown hook.
func (m *Module) Fini() {
	m.opts.Log.Debug().Msg(name + " unloaded")
}

func (m *Module) escalate(ctx context.Context, res loopdetect.Result) {
	log := m.opts.Log

	if m.opts.Requester == nil {
		log.Warn().Msg("no escalation requester wired; request not sent")
		return
	}

	req := escalation.NewRequest(m.opts.Kind, res, m.opts.DeviceName)
	log = log.With().Str("request_id", req.ID).Stringer("kind", req.Kind).Logger()

	r, err := m.opts.Requester()
	if err != nil {
		log.Error().Err(err).Msg("escalation transport unavailable")
		return
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Debug().Err(err).Msg("escalation transport close failed")
		}
	}()

	if m.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.Timeout)
		defer cancel()
	}

	if err := r.Request(ctx, req); err != nil {
		log.Error().Err(err).Msg("escalation request failed")
		return
	}

	log.Info().Msg("escalation requested")
}
