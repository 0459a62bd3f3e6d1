package serial

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.uber.org/atomic"
	"i4.energy/across/gsmlink/uart"
)

const (
	DataBits7 = 7
	DataBits8 = 8

	// DefaultQueueSize is the capacity of each ring buffer.
	DefaultQueueSize = 100
	// DefaultBaudRate is used by DefaultConfig.
	DefaultBaudRate = 9600
)

// Config is the line configuration of a Port.
type Config struct {
	BaudRate uint32
	DataBits int
	StopBits uart.StopBits
	Parity   uart.Parity
}

// DefaultConfig returns 9600 baud 8N1.
func DefaultConfig() Config {
	return Config{
		BaudRate: DefaultBaudRate,
		DataBits: DataBits8,
		StopBits: uart.StopBits1,
		Parity:   uart.ParityNone,
	}
}

// Line maps the port configuration onto a peripheral frame. The parity bit
// occupies one bit of the hardware word, so 8 data bits with parity need a
// 9-bit word and 7 data bits with parity fit an 8-bit one.
func (c Config) Line() (uart.LineConfig, error) {
	line := uart.LineConfig{
		BaudRate:   c.BaudRate,
		WordLength: uart.WordLength8,
		StopBits:   c.StopBits,
		Parity:     c.Parity,
		Mode:       uart.ModeTxRx,
	}

	switch c.DataBits {
	case DataBits8:
		if c.Parity != uart.ParityNone {
			line.WordLength = uart.WordLength9
		}
	case DataBits7:
		if c.Parity == uart.ParityNone {
			return line, fmt.Errorf("%w: 7 data bits require parity", ErrInvalidConfig)
		}
	default:
		return line, fmt.Errorf("%w: %d data bits", ErrInvalidConfig, c.DataBits)
	}
	if c.BaudRate == 0 {
		return line, fmt.Errorf("%w: zero baud rate", ErrInvalidConfig)
	}
	return line, nil
}

type options struct {
	txSize int
	rxSize int
	logger *slog.Logger
}

// Option configures a Port.
type Option func(*options)

// WithQueueSizes sets the transmit and receive ring buffer capacities.
func WithQueueSizes(tx, rx int) Option {
	return func(o *options) {
		o.txSize = tx
		o.rxSize = rx
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Port is a buffered duplex byte stream over a Driver.
//
// Tx may be called from any goroutine. Rx has a single consumer. The
// callbacks registered on the driver run on whatever goroutine services the
// peripheral.
type Port struct {
	drv    Driver
	logger *slog.Logger

	cfgMu sync.Mutex
	cfg   Config

	txMu   sync.Mutex
	tx     *RingBuffer
	txBusy bool
	txXfer int

	// rxMu serializes the receive callbacks; Rx does not take it.
	rxMu  sync.Mutex
	rx    *RingBuffer
	rxSeg int
	mask7 atomic.Bool

	overrun atomic.Bool
	closed  atomic.Bool
}

// Open configures the peripheral behind drv, installs the transfer
// callbacks and starts the circular reception.
func Open(drv Driver, cfg Config, opts ...Option) (*Port, error) {
	line, err := cfg.Line()
	if err != nil {
		return nil, err
	}

	o := options{txSize: DefaultQueueSize, rxSize: DefaultQueueSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.txSize <= 0 || o.rxSize <= 0 {
		return nil, fmt.Errorf("%w: queue sizes must be positive", ErrInvalidConfig)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	p := &Port{
		drv:    drv,
		logger: o.logger,
		cfg:    cfg,
		tx:     NewRingBuffer(o.txSize),
		rx:     NewRingBuffer(o.rxSize),
	}
	p.mask7.Store(cfg.DataBits == DataBits7)

	if err := drv.Setup(line); err != nil {
		return nil, fmt.Errorf("serial: setup line: %w", err)
	}
	if err := drv.SetupTxDMA(false); err != nil {
		return nil, fmt.Errorf("serial: setup transmit dma: %w", err)
	}
	if err := drv.SetupRxDMA(true); err != nil {
		return nil, fmt.Errorf("serial: setup receive dma: %w", err)
	}

	for _, cb := range []struct {
		kind uart.CallbackKind
		fn   uart.Callback
	}{
		{uart.CallbackTxComplete, p.onTxComplete},
		{uart.CallbackRxComplete, p.onRxComplete},
		{uart.CallbackRxHalfComplete, p.onRxProgress},
		{uart.CallbackRxIdle, p.onRxProgress},
		{uart.CallbackError, p.onError},
	} {
		if err := drv.RegisterCallback(cb.kind, cb.fn); err != nil {
			return nil, fmt.Errorf("serial: register %v callback: %w", cb.kind, err)
		}
	}

	if err := drv.ReceiveDMAToIdle(p.rx.Bytes()); err != nil {
		return nil, fmt.Errorf("serial: start reception: %w", err)
	}

	p.logger.Debug("port open", "baud", cfg.BaudRate, "data_bits", cfg.DataBits,
		"parity", cfg.Parity.String(), "tx_queue", o.txSize, "rx_queue", o.rxSize)
	return p, nil
}

// Tx queues as much of b as fits into the transmit buffer and returns the
// number of bytes taken. It never blocks; the caller retries the rest.
func (p *Port) Tx(b []byte) int {
	if p.closed.Load() || len(b) == 0 {
		return 0
	}

	p.txMu.Lock()
	defer p.txMu.Unlock()

	n := p.tx.Write(b)
	if n > 0 && !p.txBusy {
		p.startTxLocked()
	}
	return n
}

// Rx moves up to len(b) received bytes into b and returns the count. Bytes
// lost to an overrun are skipped and flagged through Overrun.
func (p *Port) Rx(b []byte) int {
	if p.closed.Load() || len(b) == 0 {
		return 0
	}

	n, overrun := p.rx.Read(b)
	if overrun {
		p.overrun.Store(true)
		p.logger.Warn("receive queue overrun, oldest bytes dropped")
	}
	if p.mask7.Load() {
		for i := range b[:n] {
			b[i] &= 0x7F
		}
	}
	return n
}

// Buffered returns the number of received bytes waiting for Rx.
func (p *Port) Buffered() int {
	return min(p.rx.Len(), p.rx.Cap())
}

// Queued returns the number of bytes waiting to be sent.
func (p *Port) Queued() int {
	return p.tx.Len()
}

// Overrun reports whether received bytes were lost since the last
// ClearOverrun.
func (p *Port) Overrun() bool {
	return p.overrun.Load()
}

func (p *Port) ClearOverrun() {
	p.overrun.Store(false)
}

// Config returns the line configuration in effect.
func (p *Port) Config() Config {
	p.cfgMu.Lock()
	defer p.cfgMu.Unlock()
	return p.cfg
}

// SetBaudRate reprograms the line speed keeping the frame format.
func (p *Port) SetBaudRate(baud uint32) error {
	p.cfgMu.Lock()
	defer p.cfgMu.Unlock()

	cfg := p.cfg
	cfg.BaudRate = baud
	line, err := cfg.Line()
	if err != nil {
		return err
	}
	if err := p.drv.Setup(line); err != nil {
		return fmt.Errorf("serial: setup line: %w", err)
	}
	p.cfg = cfg
	return nil
}

// Close stops the reception. Queued bytes are discarded.
func (p *Port) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrPortClosed
	}
	if err := p.drv.AbortReceive(); err != nil {
		return fmt.Errorf("serial: abort reception: %w", err)
	}
	return nil
}

// startTxLocked hands the next contiguous chunk to the driver or marks the
// transmitter idle.
func (p *Port) startTxLocked() {
	chunk := p.tx.Contiguous()
	if len(chunk) == 0 {
		p.txBusy = false
		return
	}

	p.txBusy = true
	p.txXfer = len(chunk)
	if err := p.drv.TransmitDMA(chunk); err != nil {
		p.txBusy = false
		p.txXfer = 0
		p.logger.Error("transmit failed", "error", err, "queued", p.tx.Len())
	}
}

func (p *Port) onTxComplete() {
	p.txMu.Lock()
	defer p.txMu.Unlock()

	p.tx.Consume(p.txXfer)
	p.txXfer = 0
	p.startTxLocked()
}

func (p *Port) onRxComplete() {
	p.rxMu.Lock()
	defer p.rxMu.Unlock()

	p.produce(p.rx.Cap() - p.rx.Tail())

	// A circular transfer restarts at its own first byte, which is only
	// the start of the buffer for a full-buffer transfer.
	if p.rxSeg != 0 {
		p.rxSeg = 0
		p.rearmLocked()
	}
}

// onRxProgress serves both half-complete and idle events.
func (p *Port) onRxProgress() {
	p.rxMu.Lock()
	defer p.rxMu.Unlock()

	p.produce(p.rx.Cap() - p.drv.RemainingRx() - p.rx.Tail())
}

// onError recovers from an aborted transfer. The driver stops a reception on
// any error other than an overrun; the bytes captured up to the fault are
// kept and reception restarts right behind them.
func (p *Port) onError() {
	if p.closed.Load() {
		return
	}

	if !p.drv.Receiving() {
		p.rxMu.Lock()
		p.produce(p.rx.Cap() - p.drv.RemainingRx() - p.rx.Tail())
		p.rxSeg = p.rx.Tail()
		p.logger.Warn("reception aborted, restarting", "offset", p.rxSeg)
		if err := p.drv.ReceiveDMAToIdle(p.rx.Bytes()[p.rxSeg:]); err != nil {
			p.logger.Error("restart reception failed", "error", err)
		}
		p.rxMu.Unlock()
	}

	p.txMu.Lock()
	if p.txBusy && !p.drv.Transmitting() {
		sent := p.txXfer - p.drv.RemainingTx()
		p.logger.Warn("transmission aborted, resuming", "sent", sent, "chunk", p.txXfer)
		p.tx.Consume(sent)
		p.txXfer = 0
		p.startTxLocked()
	}
	p.txMu.Unlock()
}

func (p *Port) rearmLocked() {
	if err := p.drv.AbortReceive(); err != nil {
		p.logger.Error("abort reception failed", "error", err)
		return
	}
	if err := p.drv.ReceiveDMAToIdle(p.rx.Bytes()[p.rxSeg:]); err != nil {
		p.logger.Error("restart reception failed", "error", err)
	}
}

func (p *Port) produce(n int) {
	if n <= 0 {
		return
	}
	if p.rx.Produce(n) {
		p.overrun.Store(true)
	}
}
