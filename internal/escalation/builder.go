package escalation

import (
	"fmt"

	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/rebootloopd/internal/config"
	"github.com/tamzrod/rebootloopd/internal/escalation/ingest"
	emodbus "github.com/tamzrod/rebootloopd/internal/escalation/modbus"
	"github.com/tamzrod/rebootloopd/internal/escalation/natspub"
)

// KindFor maps the configured request name onto a Kind.
func KindFor(request string) Kind {
	if request == cfg.RequestShutdown {
		return KindShutdown
	}
	return KindMalfunction
}

// Build connects the configured transport.
// Assumes config has already passed Validate and Normalize.
func Build(e cfg.EscalationConfig, log zerolog.Logger) (Requester, error) {
	switch e.Transport {
	case cfg.TransportModbus:
		c, err := emodbus.NewEndpointClient(emodbus.Config{
			Endpoint: e.Modbus.Endpoint,
			Timeout:  e.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("escalation: modbus %s: %w", e.Modbus.Endpoint, err)
		}
		return newRegisterRequester(c, e.Modbus.UnitID, e.Modbus.Slot), nil

	case cfg.TransportIngest:
		c, err := ingest.NewEndpointClient(ingest.Config{
			Endpoint: e.Ingest.Endpoint,
			Timeout:  e.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("escalation: ingest %s: %w", e.Ingest.Endpoint, err)
		}
		return newRegisterRequester(c, e.Ingest.UnitID, e.Ingest.Slot), nil

	case cfg.TransportNATS:
		p, err := natspub.Connect(natspub.Config{
			URL:     e.NATS.URL,
			Subject: e.NATS.Subject,
			Name:    e.NATS.Name,
			Timeout: e.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("escalation: %w", err)
		}
		return natsRequester{pub: p}, nil

	case cfg.TransportNone, "":
		return logRequester{log: log}, nil

	default:
		return nil, fmt.Errorf("escalation: unknown transport %q", e.Transport)
	}
}
