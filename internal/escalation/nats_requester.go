package escalation

import (
	"context"

	"github.com/tamzrod/rebootloopd/internal/escalation/natspub"
)

type natsRequester struct {
	pub *natspub.Publisher
}

func (n natsRequester) Request(ctx context.Context, r Request) error {
	return n.pub.Publish(ctx, natspub.Message{
		ID:          r.ID,
		Kind:        r.Kind.String(),
		Reason:      r.Reason,
		RebootCount: r.RebootCount,
		LastStartup: r.LastStartup,
		DetectedAt:  r.DetectedAt,
		DeviceName:  r.DeviceName,
	})
}

func (n natsRequester) Close() error { return n.pub.Close() }
