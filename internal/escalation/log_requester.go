package escalation

import (
	"context"

	"github.com/rs/zerolog"
)

// logRequester records the request and reports ErrDisabled.
type logRequester struct {
	log zerolog.Logger
}

func (l logRequester) Request(_ context.Context, r Request) error {
	l.log.Warn().
		Str("request_id", r.ID).
		Stringer("kind", r.Kind).
		Uint32("reboot_count", r.RebootCount).
		Msg("no escalation transport configured; request not delivered")
	return ErrDisabled
}

func (logRequester) Close() error { return nil }
