// Package ingest writes request blocks using the Raw Ingest v1 protocol.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const (
	magicHi byte = 0x52 // 'R'
	magicLo byte = 0x49 // 'I'

	versionV1 byte = 0x01

	// AreaHoldingRegisters is the only area the request block is written to.
	AreaHoldingRegisters byte = 3

	respOK       byte = 0x00
	respRejected byte = 0x01
)

// HeaderLen is the fixed Raw Ingest v1 header size.
const HeaderLen = 10

// ErrRejected is returned when the endpoint answers with the rejected status.
var ErrRejected = errors.New("escalation ingest: rejected")

// EndpointClient is a stateless Raw Ingest v1 client (1 packet = 1 connection).
type EndpointClient struct {
	endpoint string
	timeout  time.Duration
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("escalation ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &EndpointClient{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
	}, nil
}

func (c *EndpointClient) Close() error { return nil }

// WriteRegisters sends one holding-register packet and waits for the status byte.
// Cancelling ctx aborts the exchange.
func (c *EndpointClient) WriteRegisters(ctx context.Context, unitID uint8, addr uint16, regs []uint16) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.send(ctx, AreaHoldingRegisters, unitID, addr, uint16(len(regs)), packRegisters(regs))
}

func (c *EndpointClient) send(
	ctx context.Context,
	area byte,
	unitID uint8,
	addr uint16,
	count uint16,
	payload []byte,
) error {
	pkt := buildPacketV1(area, unitID, addr, count, payload)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.endpoint)
	if err != nil {
		return fmt.Errorf("escalation ingest: dial: %w", err)
	}
	defer conn.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := writeAll(conn, pkt); err != nil {
		return fmt.Errorf("escalation ingest: write: %w", err)
	}

	var resp [1]byte
	if _, err := io.ReadFull(conn, resp[:]); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("escalation ingest: read status: %w", ctxErr)
		}
		return fmt.Errorf("escalation ingest: read status: %w", err)
	}

	switch resp[0] {
	case respOK:
		return nil
	case respRejected:
		return ErrRejected
	default:
		return fmt.Errorf("escalation ingest: unknown status 0x%02x", resp[0])
	}
}

//
// ---- Raw Ingest v1 packet builder (LOCKED) ----
//
// Layout (10 bytes header):
// 0–1  Magic "RI"
// 2    Version (0x01)
// 3    Area
// 4–5  UnitID
// 6–7  Address
// 8–9  Count
// 10+  Payload
//

func buildPacketV1(
	area byte,
	unitID uint8,
	addr uint16,
	count uint16,
	payload []byte,
) []byte {
	header := make([]byte, HeaderLen, HeaderLen+len(payload))

	header[0] = magicHi
	header[1] = magicLo
	header[2] = versionV1
	header[3] = area

	putU16(header[4:6], uint16(unitID))
	putU16(header[6:8], addr)
	putU16(header[8:10], count)

	return append(header, payload...)
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func putU16(dst []byte, v uint16) {
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}

// Modbus register memory order (BIG-ENDIAN)
func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
