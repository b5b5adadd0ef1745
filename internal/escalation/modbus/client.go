// Package modbus writes request blocks to a Modbus TCP holding-register memory.
package modbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// MaxRegistersPerWrite is the FC16 limit on quantity.
const MaxRegistersPerWrite = 123

// registerWriter is the goburrow call this package depends on.
type registerWriter interface {
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

// EndpointClient is a single TCP connection to one mode-controller endpoint.
// It serializes requests because it mutates SlaveId per write.
type EndpointClient struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  registerWriter
	timeout time.Duration
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("escalation modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}

	if err := h.Connect(); err != nil {
		return nil, err
	}

	return &EndpointClient{
		handler: h,
		client:  modbus.NewClient(h),
		timeout: h.Timeout,
	}, nil
}

func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handler == nil {
		return nil
	}
	return c.handler.Close()
}

// WriteRegisters issues one FC16 write.
// The transaction deadline is the earlier of the configured timeout and the
// deadline carried by ctx.
func (c *EndpointClient) WriteRegisters(ctx context.Context, unitID uint8, addr uint16, regs []uint16) error {
	if len(regs) == 0 {
		return nil
	}
	if len(regs) > MaxRegistersPerWrite {
		return fmt.Errorf("escalation modbus: %d registers exceeds FC16 limit %d", len(regs), MaxRegistersPerWrite)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("escalation modbus: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handler != nil {
		c.handler.SlaveId = unitID
		c.handler.Timeout = c.timeoutFor(ctx)
	}

	qty := uint16(len(regs))
	payload := packRegisters(regs)

	_, err := c.client.WriteMultipleRegisters(addr, qty, payload)
	return err
}

// timeoutFor shortens the configured timeout to what is left of ctx.
func (c *EndpointClient) timeoutFor(ctx context.Context) time.Duration {
	t := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		left := time.Until(dl)
		if left <= 0 {
			left = time.Millisecond
		}
		if t <= 0 || left < t {
			t = left
		}
	}
	return t
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
