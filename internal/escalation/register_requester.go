package escalation

import (
	"context"
	"errors"
	"fmt"

	"github.com/tamzrod/rebootloopd/internal/status"
)

// endpointClient is the exact contract the register requester uses.
// Implemented by the modbus and ingest transports.
type endpointClient interface {
	WriteRegisters(ctx context.Context, unitID uint8, addr uint16, regs []uint16) error
	Close() error
}

// registerRequester writes the full request block into register memory.
type registerRequester struct {
	cli    endpointClient
	unitID uint8
	slot   uint16
}

func newRegisterRequester(cli endpointClient, unitID uint8, slot uint16) *registerRequester {
	return &registerRequester{cli: cli, unitID: unitID, slot: slot}
}

// Request writes the whole block in one call, so the controller never sees
// a request code without its context.
func (rr *registerRequester) Request(ctx context.Context, r Request) error {
	if rr == nil || rr.cli == nil {
		return errors.New("escalation: register requester has no client")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("escalation: %w", err)
	}

	regs := status.Encode(r.Snapshot())

	if err := rr.cli.WriteRegisters(ctx, rr.unitID, rr.baseAddr(), regs); err != nil {
		return fmt.Errorf("escalation: request block write failed unit=%d slot=%d: %w", rr.unitID, rr.slot, err)
	}
	return nil
}

func (rr *registerRequester) Close() error {
	if rr == nil || rr.cli == nil {
		return nil
	}
	return rr.cli.Close()
}

func (rr *registerRequester) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return rr.slot * status.SlotsPerDevice
}
