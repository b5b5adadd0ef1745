package loopdetect

import (
	"time"

	"github.com/tamzrod/rebootloopd/internal/startupinfo"
)

// Defaults for Policy. These are deployment policy, not invariants.
const (
	DefaultMinRebootInterval = 120 * time.Second
	DefaultMaxRebootCount    = 10
)

// Policy is the pair of thresholds the detector applies.
type Policy struct {
	// MinRebootInterval is the smallest gap since the previous startup
	// for a boot to be considered normal.
	MinRebootInterval time.Duration
	// MaxRebootCount is the number of tight-gap boots tolerated before
	// a loop is reported. The loop is reported when the count exceeds it.
	MaxRebootCount uint32
}

// DefaultPolicy returns 120s / 10 boots.
func DefaultPolicy() Policy {
	return Policy{
		MinRebootInterval: DefaultMinRebootInterval,
		MaxRebootCount:    DefaultMaxRebootCount,
	}
}

// Verdict is the outcome of one boot.
type Verdict uint8

const (
	NotALoop Verdict = iota
	NotYetALoop
	LoopDetected
)

func (v Verdict) String() string {
	switch v {
	case NotALoop:
		return "not-a-loop"
	case NotYetALoop:
		return "not-yet-a-loop"
	case LoopDetected:
		return "loop-detected"
	default:
		return "unknown"
	}
}

// Gap classifies the time since the previous recorded startup.
type Gap uint8

const (
	GapNoHistory Gap = iota
	GapNormal
	GapTight
)

func (g Gap) String() string {
	switch g {
	case GapNoHistory:
		return "no-history"
	case GapNormal:
		return "normal"
	case GapTight:
		return "tight"
	default:
		return "unknown"
	}
}

// Result is everything one detection pass produced.
type Result struct {
	Now      int64
	Prior    startupinfo.Record
	HasPrior bool
	Elapsed  int64 // seconds; meaningful only when HasPrior
	Gap      Gap
	Record   startupinfo.Record
	Verdict  Verdict

	// SaveErr is set when persisting Record failed. The verdict stands.
	SaveErr error
}

// Store is what the detector needs from the startup history store.
type Store interface {
	Load() (startupinfo.Record, bool)
	Save(startupinfo.Record) error
}
