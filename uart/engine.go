package uart

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultPeripheralClock is the bus clock feeding the peripheral.
	DefaultPeripheralClock = 16_000_000
	// DefaultSpinTimeout bounds each wait on a status flag in the blocking
	// transfer paths.
	DefaultSpinTimeout = 100 * time.Millisecond

	spinBackoff = 20 * time.Microsecond
)

type transferState uint8

const (
	stateReady transferState = iota
	statePolling
	stateInterrupt
	stateDMA
)

// Engine drives one serial peripheral.
//
// Task-context methods and the interrupt entry points (IRQHandler and the
// DMA events) may run on different goroutines. Engine state is guarded by a
// mutex that is never held while a registered Callback runs.
type Engine struct {
	regs  Registers
	txDMA DMAChannel
	rxDMA DMAChannel

	logger       *slog.Logger
	pclk         uint32
	oversampling Oversampling
	spinTimeout  time.Duration

	mu   sync.Mutex
	line LineConfig

	txBuf      []byte
	txSize     int
	txCount    int
	txState    transferState
	txDMAReady bool
	txCircular bool

	rxBuf      []byte
	rxSize     int
	rxCount    int
	rxState    transferState
	rxDMAReady bool
	rxCircular bool

	errCode   ErrorCode
	callbacks [callbackKinds]Callback
}

// Option configures an Engine.
type Option func(*Engine)

// WithTxDMA attaches the channel used by TransmitDMA.
func WithTxDMA(ch DMAChannel) Option {
	return func(e *Engine) { e.txDMA = ch }
}

// WithRxDMA attaches the channel used by ReceiveDMA and ReceiveDMAToIdle.
func WithRxDMA(ch DMAChannel) Option {
	return func(e *Engine) { e.rxDMA = ch }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithPeripheralClock(hz uint32) Option {
	return func(e *Engine) { e.pclk = hz }
}

func WithOversampling(ov Oversampling) Option {
	return func(e *Engine) { e.oversampling = ov }
}

func WithSpinTimeout(d time.Duration) Option {
	return func(e *Engine) { e.spinTimeout = d }
}

// New returns an Engine over regs. The line stays untouched until Setup.
func New(regs Registers, opts ...Option) *Engine {
	e := &Engine{
		regs:         regs,
		pclk:         DefaultPeripheralClock,
		oversampling: Oversampling16,
		spinTimeout:  DefaultSpinTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e
}

// Setup programs the frame format, baud rate divider and enabled
// directions. The peripheral is disabled while it is reprogrammed.
func (e *Engine) Setup(cfg LineConfig) error {
	if cfg.BaudRate == 0 || cfg.Mode&ModeTxRx == 0 {
		return ErrInvalidConfig
	}
	if cfg.WordLength > WordLength9 || cfg.StopBits > StopBits2 || cfg.Parity > ParityOdd {
		return ErrInvalidConfig
	}
	// 9-bit data units do not fit the byte-oriented buffers.
	if cfg.WordLength == WordLength9 && cfg.Parity == ParityNone {
		return ErrInvalidConfig
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.regs.Disable()
	e.regs.SetWordLength(cfg.WordLength)
	e.regs.SetStopBits(cfg.StopBits)
	e.regs.SetParity(cfg.Parity)
	e.regs.SetOversampling(e.oversampling)
	e.regs.SetBaudDivider(BaudDivider(e.pclk, cfg.BaudRate, e.oversampling))
	e.regs.SetMode(cfg.Mode)
	e.regs.Enable()

	e.line = cfg
	e.logger.Debug("line configured",
		"baud", cfg.BaudRate, "parity", cfg.Parity.String(), "mode", cfg.Mode)
	return nil
}

// SetupTxDMA configures the transmit channel. In circular mode the transmit
// complete callback runs straight from the DMA completion and the buffer is
// sent again.
func (e *Engine) SetupTxDMA(circular bool) error {
	if e.txDMA == nil {
		return ErrNoDMA
	}
	if err := e.txDMA.Configure(DMAConfig{Direction: MemoryToPeripheral, Circular: circular}); err != nil {
		return err
	}
	e.txDMA.SetEvents(DMAEvents{
		Complete: e.txDMAComplete,
		Error:    e.txDMAError,
	})

	e.mu.Lock()
	e.txDMAReady = true
	e.txCircular = circular
	e.mu.Unlock()
	return nil
}

// SetupRxDMA configures the receive channel. In circular mode a reception
// never completes on its own and must be stopped with AbortReceive.
func (e *Engine) SetupRxDMA(circular bool) error {
	if e.rxDMA == nil {
		return ErrNoDMA
	}
	if err := e.rxDMA.Configure(DMAConfig{Direction: PeripheralToMemory, Circular: circular}); err != nil {
		return err
	}
	e.rxDMA.SetEvents(DMAEvents{
		Complete:     e.rxDMAComplete,
		HalfComplete: e.rxDMAHalfComplete,
		Error:        e.rxDMAError,
	})

	e.mu.Lock()
	e.rxDMAReady = true
	e.rxCircular = circular
	e.mu.Unlock()
	return nil
}

// RegisterCallback installs fn for the given event, replacing any previous
// one.
func (e *Engine) RegisterCallback(kind CallbackKind, fn Callback) error {
	if kind >= callbackKinds || fn == nil {
		return ErrInvalidCallback
	}
	e.mu.Lock()
	e.callbacks[kind] = fn
	e.mu.Unlock()
	return nil
}

// Transmit sends p and returns once the last unit has left the shift
// register. It spins on the hardware and is meant for short sends only.
func (e *Engine) Transmit(p []byte) error {
	if len(p) == 0 {
		return ErrInvalidBuffer
	}

	e.mu.Lock()
	if e.txState != stateReady {
		e.mu.Unlock()
		return ErrBusy
	}
	e.txState = statePolling
	e.txBuf, e.txSize, e.txCount = p, len(p), len(p)
	e.errCode = ErrorNone
	e.mu.Unlock()

	defer e.finishTx()

	for _, b := range p {
		if err := e.waitFor(StatusTXE); err != nil {
			return err
		}
		e.regs.WriteData(uint16(b))

		e.mu.Lock()
		e.txCount--
		e.mu.Unlock()
	}

	if err := e.waitFor(StatusTC); err != nil {
		return err
	}
	e.regs.ClearStatus(StatusTC)
	return nil
}

// TransmitInterrupt starts sending p one unit per transmit-empty interrupt.
// The transmit complete callback runs once the line is drained.
func (e *Engine) TransmitInterrupt(p []byte) error {
	if len(p) == 0 {
		return ErrInvalidBuffer
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.txState != stateReady {
		return ErrBusy
	}
	e.txState = stateInterrupt
	e.txBuf, e.txSize, e.txCount = p, len(p), len(p)
	e.errCode = ErrorNone
	e.regs.EnableInterrupt(InterruptTXE)
	return nil
}

// TransmitDMA hands p to the transmit channel. p must stay untouched until
// the transmit complete or error callback runs.
func (e *Engine) TransmitDMA(p []byte) error {
	if len(p) == 0 {
		return ErrInvalidBuffer
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.txDMAReady {
		return ErrNoDMA
	}
	if e.txState != stateReady {
		return ErrBusy
	}

	e.txBuf, e.txSize, e.txCount = p, len(p), len(p)
	e.errCode = ErrorNone

	e.txDMA.SetTransfer(p)
	if err := e.txDMA.Start(); err != nil {
		return err
	}
	e.txState = stateDMA
	e.regs.ClearStatus(StatusTC)
	e.regs.EnableDMA(DirectionTx)
	return nil
}

// Receive blocks until len(p) units arrived or a non-overrun error aborted
// the reception. It returns the number of bytes stored in p.
func (e *Engine) Receive(p []byte) (int, error) {
	return e.receivePolling(p, false)
}

// ReceiveToIdle is Receive that also returns as soon as the line goes idle
// after at least one unit.
func (e *Engine) ReceiveToIdle(p []byte) (int, error) {
	return e.receivePolling(p, true)
}

// ReceiveInterrupt starts receiving len(p) units, one per receive-ready
// interrupt.
func (e *Engine) ReceiveInterrupt(p []byte) error {
	return e.startReceiveInterrupt(p, false)
}

// ReceiveInterruptToIdle is ReceiveInterrupt that also completes through
// the idle callback when the line goes quiet after at least one unit.
func (e *Engine) ReceiveInterruptToIdle(p []byte) error {
	return e.startReceiveInterrupt(p, true)
}

// ReceiveDMA starts a DMA reception into p.
func (e *Engine) ReceiveDMA(p []byte) error {
	return e.startReceiveDMA(p, false)
}

// ReceiveDMAToIdle starts a DMA reception into p and reports every idle
// line through the idle callback. RemainingRx tells the callback how far
// the channel got.
func (e *Engine) ReceiveDMAToIdle(p []byte) error {
	return e.startReceiveDMA(p, true)
}

// AbortReceive stops an interrupt or DMA reception without running any
// callback. It is a no-op when nothing is being received.
func (e *Engine) AbortReceive() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.rxState {
	case stateInterrupt:
		e.regs.DisableInterrupt(InterruptRXNE | InterruptIdle)
	case stateDMA:
		e.regs.DisableInterrupt(InterruptPE | InterruptError | InterruptIdle)
		e.regs.DisableDMA(DirectionRx)
		e.rxCount = e.rxDMA.Abort()
	case statePolling:
		return ErrBusy
	}
	e.rxState = stateReady
	return nil
}

// Error returns the error mask of the latest transfer.
func (e *Engine) Error() ErrorCode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errCode
}

// RemainingRx returns how many units of the current or last reception were
// not received. While a DMA reception runs, the channel is asked directly.
func (e *Engine) RemainingRx() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rxState == stateDMA {
		return e.rxDMA.Remaining()
	}
	return e.rxCount
}

func (e *Engine) RemainingTx() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.txCount
}

func (e *Engine) TransmittedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.txSize - e.txCount
}

func (e *Engine) ReceivedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rxState == stateDMA {
		return e.rxSize - e.rxDMA.Remaining()
	}
	return e.rxSize - e.rxCount
}

// Receiving reports whether a reception is active.
func (e *Engine) Receiving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rxState != stateReady
}

// Transmitting reports whether a transmission is active.
func (e *Engine) Transmitting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.txState != stateReady
}

// Line returns the configuration applied by the last Setup.
func (e *Engine) Line() LineConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.line
}

func (e *Engine) receivePolling(p []byte, toIdle bool) (int, error) {
	if len(p) == 0 {
		return 0, ErrInvalidBuffer
	}

	e.mu.Lock()
	if e.rxState != stateReady {
		e.mu.Unlock()
		return 0, ErrBusy
	}
	e.rxState = statePolling
	e.rxBuf, e.rxSize, e.rxCount = p, len(p), len(p)
	e.errCode = ErrorNone
	line := e.line
	e.mu.Unlock()

	defer e.finishRx()

	n := 0
	for n < len(p) {
		deadline := time.Now().Add(e.spinTimeout)
		for {
			st := e.regs.Status()
			if st&StatusRXNE != 0 {
				break
			}
			if toIdle && st&StatusIdle != 0 {
				e.regs.ClearStatus(StatusIdle)
				if n > 0 {
					return n, nil
				}
			}
			if time.Now().After(deadline) {
				return n, ErrTimeout
			}
			time.Sleep(spinBackoff)
		}

		code := e.collectErrors(line.Parity)
		v := e.regs.ReadData()

		e.mu.Lock()
		e.errCode |= code
		if code.Fatal() {
			err := e.errCode
			e.mu.Unlock()
			return n, err
		}
		p[n] = maskUnit(v, line)
		n++
		e.rxCount--
		e.mu.Unlock()
	}
	return n, nil
}

func (e *Engine) startReceiveInterrupt(p []byte, toIdle bool) error {
	if len(p) == 0 {
		return ErrInvalidBuffer
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rxState != stateReady {
		return ErrBusy
	}
	e.rxBuf, e.rxSize, e.rxCount = p, len(p), len(p)
	e.errCode = ErrorNone
	e.rxState = stateInterrupt

	e.regs.ClearStatus(statusErrors | StatusRXNE | StatusIdle)
	if toIdle {
		e.regs.EnableInterrupt(InterruptIdle)
	}
	e.regs.EnableInterrupt(InterruptRXNE)
	return nil
}

func (e *Engine) startReceiveDMA(p []byte, toIdle bool) error {
	if len(p) == 0 {
		return ErrInvalidBuffer
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.rxDMAReady {
		return ErrNoDMA
	}
	if e.rxState != stateReady {
		return ErrBusy
	}
	e.rxBuf, e.rxSize, e.rxCount = p, len(p), len(p)

	e.rxDMA.SetTransfer(p)
	if err := e.rxDMA.Start(); err != nil {
		return err
	}
	e.rxState = stateDMA

	e.regs.ClearStatus(statusErrors | StatusIdle | StatusRXNE)
	e.regs.EnableInterrupt(InterruptError)
	if e.line.Parity != ParityNone {
		e.regs.EnableInterrupt(InterruptPE)
	}
	if toIdle {
		e.regs.EnableInterrupt(InterruptIdle)
	}
	e.regs.EnableDMA(DirectionRx)
	return nil
}

// collectErrors reads and clears the per-unit error flags.
func (e *Engine) collectErrors(parity Parity) ErrorCode {
	st := e.regs.Status()
	code := ErrorNone
	if st&StatusPE != 0 && parity != ParityNone {
		code |= ErrorParity
	}
	if st&StatusNE != 0 {
		code |= ErrorNoise
	}
	if st&StatusFE != 0 {
		code |= ErrorFraming
	}
	if st&StatusORE != 0 {
		code |= ErrorOverrun
	}
	if st&statusErrors != 0 {
		e.regs.ClearStatus(st & statusErrors)
	}
	return code
}

func (e *Engine) waitFor(flag Status) error {
	deadline := time.Now().Add(e.spinTimeout)
	for e.regs.Status()&flag == 0 {
		if time.Now().After(deadline) {
			return ErrTimeout
		}
		time.Sleep(spinBackoff)
	}
	return nil
}

func (e *Engine) finishTx() {
	e.mu.Lock()
	e.txState = stateReady
	e.mu.Unlock()
}

func (e *Engine) finishRx() {
	e.mu.Lock()
	e.rxState = stateReady
	e.mu.Unlock()
}

// maskUnit strips the parity bit from an 8-bit word carrying 7 data bits.
func maskUnit(v uint16, line LineConfig) byte {
	if line.Parity != ParityNone && line.WordLength == WordLength8 {
		return byte(v & 0x7F)
	}
	return byte(v & 0xFF)
}
