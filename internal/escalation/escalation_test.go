package escalation

import (
	"context"
	"errors"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/tamzrod/rebootloopd/internal/config"
	"github.com/tamzrod/rebootloopd/internal/logger"
	"github.com/tamzrod/rebootloopd/internal/loopdetect"
	"github.com/tamzrod/rebootloopd/internal/startupinfo"
	"github.com/tamzrod/rebootloopd/internal/status"
)

// ---- fake endpoint client ----

type fakeEndpointClient struct {
	lastUnit uint8
	lastAddr uint16
	lastRegs []uint16
	lastCtx  context.Context
	writes   int
	closed   bool
	err      error
}

func (f *fakeEndpointClient) WriteRegisters(ctx context.Context, unitID uint8, addr uint16, regs []uint16) error {
	f.writes++
	f.lastCtx = ctx
	f.lastUnit, f.lastAddr, f.lastRegs = unitID, addr, regs
	return f.err
}

func (f *fakeEndpointClient) Close() error {
	f.closed = true
	return nil
}

func loopResult() loopdetect.Result {
	return loopdetect.Result{
		Now:      1008,
		Prior:    startupinfo.Record{LastStartup: 1005, RebootCount: 10},
		HasPrior: true,
		Elapsed:  3,
		Gap:      loopdetect.GapTight,
		Record:   startupinfo.Record{LastStartup: 1008, RebootCount: 11},
		Verdict:  loopdetect.LoopDetected,
	}
}

// ---- tests ----

func TestNewRequest(t *testing.T) {
	r := NewRequest(KindMalfunction, loopResult(), "DEV-01")

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, KindMalfunction, r.Kind)
	assert.Equal(t, uint32(11), r.RebootCount)
	assert.Equal(t, int64(1005), r.LastStartup)
	assert.Equal(t, int64(1008), r.DetectedAt.Unix())

	other := NewRequest(KindMalfunction, loopResult(), "DEV-01")
	assert.NotEqual(t, r.ID, other.ID)
}

func TestRegisterRequester_WritesFullBlock(t *testing.T) {
	cli := &fakeEndpointClient{}
	rr := newRegisterRequester(cli, 5, 2)

	req := NewRequest(KindMalfunction, loopResult(), "DEV-01")
	require.NoError(t, rr.Request(context.Background(), req))

	require.Equal(t, 1, cli.writes)
	assert.Equal(t, uint8(5), cli.lastUnit)
	assert.Equal(t, uint16(2*status.SlotsPerDevice), cli.lastAddr)
	require.Len(t, cli.lastRegs, status.SlotsPerDevice)
	assert.Equal(t, status.RequestMalfunction, cli.lastRegs[status.SlotRequestCode])
	assert.Equal(t, uint16(11), cli.lastRegs[status.SlotRebootCount])
	assert.Equal(t, status.EncodeDeviceName("DEV-01"), cli.lastRegs[status.SlotDeviceNameStart:status.SlotDeviceNameEnd+1])

	require.NoError(t, rr.Close())
	assert.True(t, cli.closed)
}

func TestRegisterRequester_PassesContextToClient(t *testing.T) {
	cli := &fakeEndpointClient{}
	rr := newRegisterRequester(cli, 1, 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	require.NoError(t, rr.Request(ctx, NewRequest(KindMalfunction, loopResult(), "")))
	require.NotNil(t, cli.lastCtx)
	want, _ := ctx.Deadline()
	got, ok := cli.lastCtx.Deadline()
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRegisterRequester_ShutdownCode(t *testing.T) {
	cli := &fakeEndpointClient{}
	rr := newRegisterRequester(cli, 1, 0)

	require.NoError(t, rr.Request(context.Background(), NewRequest(KindShutdown, loopResult(), "")))
	assert.Equal(t, status.RequestShutdown, cli.lastRegs[status.SlotRequestCode])
}

func TestRegisterRequester_Errors(t *testing.T) {
	cli := &fakeEndpointClient{err: errors.New("connection reset")}
	rr := newRegisterRequester(cli, 1, 0)
	require.Error(t, rr.Request(context.Background(), Request{Kind: KindMalfunction}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok := &fakeEndpointClient{}
	require.ErrorIs(t, newRegisterRequester(ok, 1, 0).Request(ctx, Request{}), context.Canceled)
	assert.Zero(t, ok.writes)

	var nilRR *registerRequester
	require.Error(t, nilRR.Request(context.Background(), Request{}))
	require.NoError(t, nilRR.Close())
}

func TestKindFor(t *testing.T) {
	assert.Equal(t, KindMalfunction, KindFor(cfg.RequestMalf))
	assert.Equal(t, KindMalfunction, KindFor(""))
	assert.Equal(t, KindShutdown, KindFor(cfg.RequestShutdown))
	assert.Equal(t, "malf", KindMalfunction.String())
	assert.Equal(t, status.RequestNone, Kind(0).Code())
}

func TestBuild_None(t *testing.T) {
	r, err := Build(cfg.EscalationConfig{Transport: cfg.TransportNone}, logger.NewTestLogger())
	require.NoError(t, err)

	require.ErrorIs(t, r.Request(context.Background(), Request{Kind: KindMalfunction}), ErrDisabled)
	require.NoError(t, r.Close())
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(cfg.EscalationConfig{Transport: "carrier-pigeon"}, logger.NewTestLogger())
	require.Error(t, err)

	_, err = Build(cfg.EscalationConfig{Transport: cfg.TransportModbus, TimeoutMs: 200,
		Modbus: cfg.RegisterTargetConfig{Endpoint: "127.0.0.1:1"}}, logger.NewTestLogger())
	require.Error(t, err, "modbus connects eagerly")

	_, err = Build(cfg.EscalationConfig{Transport: cfg.TransportNATS, TimeoutMs: 200,
		NATS: cfg.NATSConfig{URL: "nats://127.0.0.1:1", Subject: "x"}}, logger.NewTestLogger())
	require.Error(t, err)
}

func TestBuild_Ingest(t *testing.T) {
	r, err := Build(cfg.EscalationConfig{Transport: cfg.TransportIngest,
		Ingest: cfg.RegisterTargetConfig{Endpoint: "127.0.0.1:1", UnitID: 2}}, logger.NewTestLogger())
	require.NoError(t, err, "ingest dials per request")
	require.NoError(t, r.Close())
}

func TestBuild_NATSEndToEnd(t *testing.T) {
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	s := natsserver.RunServer(&opts)
	defer s.Shutdown()

	sub, err := nats.Connect(s.ClientURL())
	require.NoError(t, err)
	defer sub.Close()
	msgs, err := sub.SubscribeSync(cfg.DefaultNATSSubject)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	e := cfg.EscalationConfig{Transport: cfg.TransportNATS, NATS: cfg.NATSConfig{URL: s.ClientURL()}}
	c := &cfg.Config{Escalation: e}
	cfg.Normalize(c)

	r, err := Build(c.Escalation, logger.NewTestLogger())
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), c.Escalation.Timeout())
	defer cancel()
	require.NoError(t, r.Request(ctx, NewRequest(KindMalfunction, loopResult(), "DEV-01")))

	m, err := msgs.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Contains(t, string(m.Data), `"kind":"malf"`)
	assert.Contains(t, string(m.Data), `"reboot_count":11`)
}
