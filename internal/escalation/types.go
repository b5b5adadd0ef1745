// Package escalation delivers the "enter malfunction mode" request to the
// external mode-management collaborator. Delivery is fire-and-forget: no
// response is read or interpreted beyond transport-level acknowledgement.
package escalation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/rebootloopd/internal/loopdetect"
	"github.com/tamzrod/rebootloopd/internal/status"
)

// ErrDisabled is returned by the requester used when no transport is configured.
var ErrDisabled = errors.New("escalation: disabled")

// Kind is the mode being requested.
type Kind uint8

const (
	KindMalfunction Kind = iota + 1
	KindShutdown
)

func (k Kind) String() string {
	switch k {
	case KindMalfunction:
		return "malf"
	case KindShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Code maps a Kind onto the request block code.
func (k Kind) Code() uint16 {
	switch k {
	case KindMalfunction:
		return status.RequestMalfunction
	case KindShutdown:
		return status.RequestShutdown
	default:
		return status.RequestNone
	}
}

// Request is one escalation request.
type Request struct {
	ID          string
	Kind        Kind
	Reason      string
	RebootCount uint32
	LastStartup int64 // previous recorded startup, epoch seconds
	DetectedAt  time.Time
	DeviceName  string
}

// NewRequest builds a request from a loop-detected result.
func NewRequest(kind Kind, res loopdetect.Result, deviceName string) Request {
	return Request{
		ID:          uuid.NewString(),
		Kind:        kind,
		Reason:      "reboot loop",
		RebootCount: res.Record.RebootCount,
		LastStartup: res.Prior.LastStartup,
		DetectedAt:  time.Unix(res.Now, 0).UTC(),
		DeviceName:  deviceName,
	}
}

// Snapshot is the request as the register block sees it.
func (r Request) Snapshot() status.Snapshot {
	return status.Snapshot{
		RequestCode: r.Kind.Code(),
		RebootCount: r.RebootCount,
		LastStartup: r.LastStartup,
		DetectedAt:  r.DetectedAt.Unix(),
		DeviceName:  r.DeviceName,
	}
}

// Requester sends escalation requests.
type Requester interface {
	Request(ctx context.Context, r Request) error
	Close() error
}
