package modem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	tarm "github.com/tarm/serial"
	goserial "go.bug.st/serial"

	"i4.energy/across/gsmlink/serial"
	"i4.energy/across/gsmlink/uart"
	"i4.energy/across/gsmlink/uart/sim"
)

//go:generate go tool mockgen -destination=mock_transport.go -package=modem . Transport,Dialer

// Transport represents an established, bidirectional byte stream to a GSM modem.
//
// A Transport is assumed to be already connected and ready for use. Tx and Rx
// never block: Tx queues what fits and returns the count, Rx returns what has
// been received so far. A serial.Port is the usual implementation; in-memory
// fakes are used for testing.
type Transport interface {
	Tx(p []byte) int
	Rx(p []byte) int
	Close() error
}

// OverrunReporter is implemented by transports that can lose received bytes.
type OverrunReporter interface {
	Overrun() bool
	ClearOverrun()
}

// Dialer opens a Transport to a GSM modem.
//
// Dialer abstracts how the modem connection is created (for example, via a
// serial port, an emulator, or a test double) and is intended to be used
// during modem construction only. Once a Transport is obtained, the Dialer is
// no longer needed.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport. It may
	// perform blocking operations and should respect cancellation and deadlines
	// provided by the context. Dial returns an error if the transport cannot be
	// established.
	Dial(ctx context.Context) (Transport, error)
}

// LineDialer drives a byte stream through the simulated UART peripheral and
// the ring-buffered serial port. Line is owned by the returned Transport and
// closed with it.
type LineDialer struct {
	Line   io.ReadWriteCloser
	Config serial.Config
	Logger *slog.Logger
}

func (d LineDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("gsm: context is nil")
	}
	if d.Line == nil {
		return nil, errors.New("gsm: line is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg := d.Config
	if cfg.BaudRate == 0 {
		cfg = serial.DefaultConfig()
	}

	dev := sim.New(d.Line, sim.WithLogger(logger.With("component", "uart-sim")))
	eng := uart.New(dev,
		uart.WithTxDMA(dev.TxDMA()),
		uart.WithRxDMA(dev.RxDMA()),
		uart.WithLogger(logger.With("component", "uart")),
	)
	dev.SetIRQHandler(eng.IRQHandler)

	port, err := serial.Open(eng, cfg, serial.WithLogger(logger.With("component", "serial")))
	if err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("gsm: open serial port: %w", err)
	}
	return &lineTransport{Port: port, dev: dev}, nil
}

type lineTransport struct {
	*serial.Port
	dev *sim.Device
}

func (t *lineTransport) Close() error {
	return errors.Join(t.Port.Close(), t.dev.Close())
}

// SerialDialer opens a GSM modem attached to a local serial device using
// go.bug.st/serial. Mode defaults to the line settings in Config.
type SerialDialer struct {
	PortName string
	Config   serial.Config
	Mode     *goserial.Mode
	Logger   *slog.Logger
}

func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("gsm: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("gsm: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := d.Config
	if cfg.BaudRate == 0 {
		cfg = serial.DefaultConfig()
	}
	mode := d.Mode
	if mode == nil {
		mode = modeFor(cfg)
	}

	p, err := goserial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("gsm: open %s: %w", d.PortName, err)
	}
	return LineDialer{Line: p, Config: cfg, Logger: d.Logger}.Dial(ctx)
}

func modeFor(cfg serial.Config) *goserial.Mode {
	mode := &goserial.Mode{
		BaudRate: int(cfg.BaudRate),
		DataBits: cfg.DataBits,
		Parity:   goserial.NoParity,
		StopBits: goserial.OneStopBit,
	}
	switch cfg.Parity {
	case uart.ParityEven:
		mode.Parity = goserial.EvenParity
	case uart.ParityOdd:
		mode.Parity = goserial.OddParity
	}
	if cfg.StopBits == uart.StopBits2 {
		mode.StopBits = goserial.TwoStopBits
	}
	return mode
}

// TarmDialer opens the serial device with github.com/tarm/serial. It serves
// hosts where go.bug.st/serial cannot enumerate or open the device.
type TarmDialer struct {
	PortName string
	Config   serial.Config
	Logger   *slog.Logger
}

func (d TarmDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("gsm: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("gsm: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := d.Config
	if cfg.BaudRate == 0 {
		cfg = serial.DefaultConfig()
	}
	c := &tarm.Config{
		Name:     d.PortName,
		Baud:     int(cfg.BaudRate),
		Size:     byte(cfg.DataBits),
		Parity:   tarm.ParityNone,
		StopBits: tarm.Stop1,
	}
	switch cfg.Parity {
	case uart.ParityEven:
		c.Parity = tarm.ParityEven
	case uart.ParityOdd:
		c.Parity = tarm.ParityOdd
	}
	if cfg.StopBits == uart.StopBits2 {
		c.StopBits = tarm.Stop2
	}

	p, err := tarm.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("gsm: open %s: %w", d.PortName, err)
	}
	return LineDialer{Line: p, Config: cfg, Logger: d.Logger}.Dial(ctx)
}
