// Package sim is a software model of a serial peripheral with two DMA
// channels.
//
// A Device moves bytes between an io.ReadWriter (an OS serial port, a pipe,
// a modem emulator) and the register and DMA interfaces consumed by
// uart.Engine. A worker goroutine plays the hardware: it shifts bytes in and
// out, raises DMA events at exact half and full buffer boundaries, flags an
// idle line after a quiet gap, and calls the interrupt handler while an
// enabled condition is pending. It never holds its own lock while calling
// out.
package sim

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"i4.energy/across/gsmlink/uart"
)

const (
	// DefaultIdleGap is the quiet time after the last received byte before
	// the idle flag is raised.
	DefaultIdleGap = 2 * time.Millisecond
	// DefaultTick is the worker period when nothing wakes it up.
	DefaultTick = time.Millisecond

	// maxSteps bounds the work done per wake-up, so a handler that leaves
	// its condition pending cannot spin the worker forever.
	maxSteps = 256
	readSize = 64
)

var _ uart.Registers = (*Device)(nil)

// Device is a simulated serial peripheral.
type Device struct {
	line    io.ReadWriter
	logger  *slog.Logger
	idleGap time.Duration
	tick    time.Duration

	mu sync.Mutex

	enabled      bool
	mode         uart.Mode
	word         uart.WordLength
	stop         uart.StopBits
	parity       uart.Parity
	oversampling uart.Oversampling
	mantissa     uint16
	fraction     uint8

	status uart.Status
	ier    uart.Interrupt
	dmaTx  bool
	dmaRx  bool

	dr        uint16
	txData    byte
	txPending bool

	rxQueue    []byte
	pendingErr uart.Status
	lastRx     time.Time
	idleArmed  bool
	readErr    error

	irq func()

	tx *Channel
	rx *Channel

	wake      chan struct{}
	done      chan struct{}
	worker    sync.WaitGroup
	closeOnce sync.Once
}

// Option configures a Device.
type Option func(*Device)

func WithIdleGap(d time.Duration) Option {
	return func(dev *Device) { dev.idleGap = d }
}

func WithTick(d time.Duration) Option {
	return func(dev *Device) { dev.tick = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(dev *Device) { dev.logger = logger }
}

// New starts a Device on line. Close stops it.
func New(line io.ReadWriter, opts ...Option) *Device {
	d := &Device{
		line:    line,
		idleGap: DefaultIdleGap,
		tick:    DefaultTick,
		status:  uart.StatusTXE | uart.StatusTC,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d.tx = &Channel{dev: d, dir: uart.MemoryToPeripheral}
	d.rx = &Channel{dev: d, dir: uart.PeripheralToMemory}

	d.worker.Add(1)
	go d.work()
	go d.read()
	return d
}

// TxDMA returns the channel serving transmit requests.
func (d *Device) TxDMA() *Channel { return d.tx }

// RxDMA returns the channel serving receive requests.
func (d *Device) RxDMA() *Channel { return d.rx }

// SetIRQHandler installs the interrupt service routine, normally
// (*uart.Engine).IRQHandler.
func (d *Device) SetIRQHandler(fn func()) {
	d.mu.Lock()
	d.irq = fn
	d.mu.Unlock()
	d.notify()
}

// InjectErrors attaches error flags to the next byte the device receives.
func (d *Device) InjectErrors(s uart.Status) {
	d.mu.Lock()
	d.pendingErr |= s & (uart.StatusPE | uart.StatusFE | uart.StatusNE | uart.StatusORE)
	d.mu.Unlock()
}

// FailDMA makes the next step of the given channel end in a transfer error.
func (d *Device) FailDMA(dir uart.Direction) {
	d.mu.Lock()
	if dir == uart.DirectionTx {
		d.tx.fail = true
	} else {
		d.rx.fail = true
	}
	d.mu.Unlock()
	d.notify()
}

// BaudDivider returns the programmed baud rate register.
func (d *Device) BaudDivider() (uint16, uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mantissa, d.fraction
}

// Frame returns the programmed frame format.
func (d *Device) Frame() (uart.WordLength, uart.StopBits, uart.Parity, uart.Oversampling) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.word, d.stop, d.parity, d.oversampling
}

// Err returns the error that stopped reading from the line, if any.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readErr
}

// Close stops the worker and closes the line when it is an io.Closer.
func (d *Device) Close() error {
	var err error
	d.closeOnce.Do(func() {
		close(d.done)
		if c, ok := d.line.(io.Closer); ok {
			err = c.Close()
		}
		d.worker.Wait()
	})
	return err
}

func (d *Device) Enable() {
	d.mu.Lock()
	d.enabled = true
	d.mu.Unlock()
	d.notify()
}

func (d *Device) Disable() {
	d.mu.Lock()
	d.enabled = false
	d.mu.Unlock()
}

func (d *Device) SetWordLength(w uart.WordLength) {
	d.mu.Lock()
	d.word = w
	d.mu.Unlock()
}

func (d *Device) SetStopBits(s uart.StopBits) {
	d.mu.Lock()
	d.stop = s
	d.mu.Unlock()
}

func (d *Device) SetParity(p uart.Parity) {
	d.mu.Lock()
	d.parity = p
	d.mu.Unlock()
}

func (d *Device) SetOversampling(ov uart.Oversampling) {
	d.mu.Lock()
	d.oversampling = ov
	d.mu.Unlock()
}

func (d *Device) SetBaudDivider(mantissa uint16, fraction uint8) {
	d.mu.Lock()
	d.mantissa, d.fraction = mantissa, fraction
	d.mu.Unlock()
}

func (d *Device) SetMode(m uart.Mode) {
	d.mu.Lock()
	d.mode = m
	d.mu.Unlock()
	d.notify()
}

func (d *Device) Status() uart.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Device) ClearStatus(s uart.Status) {
	d.mu.Lock()
	d.status &^= s
	d.mu.Unlock()
	d.notify()
}

func (d *Device) WriteData(v uint16) {
	d.mu.Lock()
	d.txData = byte(v)
	d.txPending = true
	d.status &^= uart.StatusTXE | uart.StatusTC
	d.mu.Unlock()
	d.notify()
}

func (d *Device) ReadData() uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status &^= uart.StatusRXNE
	v := d.dr
	d.notify()
	return v
}

func (d *Device) EnableInterrupt(i uart.Interrupt) {
	d.mu.Lock()
	d.ier |= i
	d.mu.Unlock()
	d.notify()
}

func (d *Device) DisableInterrupt(i uart.Interrupt) {
	d.mu.Lock()
	d.ier &^= i
	d.mu.Unlock()
}

func (d *Device) InterruptEnabled(i uart.Interrupt) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ier&i == i
}

func (d *Device) EnableDMA(dir uart.Direction) {
	d.mu.Lock()
	if dir == uart.DirectionTx {
		d.dmaTx = true
	} else {
		d.dmaRx = true
	}
	d.mu.Unlock()
	d.notify()
}

func (d *Device) DisableDMA(dir uart.Direction) {
	d.mu.Lock()
	if dir == uart.DirectionTx {
		d.dmaTx = false
	} else {
		d.dmaRx = false
	}
	d.mu.Unlock()
}

func (d *Device) DMAEnabled(dir uart.Direction) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if dir == uart.DirectionTx {
		return d.dmaTx
	}
	return d.dmaRx
}

func (d *Device) notify() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Device) read() {
	buf := make([]byte, readSize)
	for {
		n, err := d.line.Read(buf)
		if n > 0 {
			d.mu.Lock()
			d.rxQueue = append(d.rxQueue, buf[:n]...)
			d.mu.Unlock()
			d.notify()
		}
		if err != nil {
			select {
			case <-d.done:
			default:
				if !errors.Is(err, io.EOF) {
					d.logger.Warn("line read failed", "error", err)
				}
			}
			d.mu.Lock()
			d.readErr = err
			d.mu.Unlock()
			return
		}
		select {
		case <-d.done:
			return
		default:
		}
	}
}

func (d *Device) work() {
	defer d.worker.Done()

	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-d.wake:
		case <-ticker.C:
		}
		d.service()
	}
}

func (d *Device) service() {
	for range maxSteps {
		actions, out := d.step(time.Now())
		if len(out) > 0 {
			d.flush(out)
		}
		for _, action := range actions {
			action()
		}
		if len(actions) == 0 && len(out) == 0 {
			return
		}
	}
}

// flush puts shifted-out bytes on the line and raises TC once nothing else
// is queued for transmission.
func (d *Device) flush(out []byte) {
	if _, err := d.line.Write(out); err != nil {
		d.logger.Warn("line write failed", "error", err, "bytes", len(out))
	}

	d.mu.Lock()
	if !d.txPending && !d.tx.pendingLocked(d.dmaTx) {
		d.status |= uart.StatusTC
	}
	d.mu.Unlock()
}

func (d *Device) step(now time.Time) ([]func(), []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.enabled {
		return nil, nil
	}

	var actions []func()
	var out []byte

	if d.mode&uart.ModeTx != 0 {
		if d.txPending {
			out = append(out, d.txData)
			d.txPending = false
			d.status |= uart.StatusTXE
		}
		if d.tx.pendingLocked(d.dmaTx) {
			var events []func()
			out, events = d.tx.transmitLocked(out)
			actions = append(actions, events...)
		}
	}

	if d.mode&uart.ModeRx != 0 && len(d.rxQueue) > 0 {
		switch {
		case d.dmaRx && d.rx.active:
			actions = append(actions, d.rx.receiveLocked(now)...)
		case !d.dmaRx && d.status&uart.StatusRXNE == 0:
			d.dr = uint16(d.rxQueue[0])
			d.rxQueue = d.rxQueue[1:]
			d.status |= uart.StatusRXNE | d.popErrorsLocked()
			d.markRxLocked(now)
		}
	}

	if d.idleArmed && len(d.rxQueue) == 0 && now.Sub(d.lastRx) >= d.idleGap {
		d.status |= uart.StatusIdle
		d.idleArmed = false
	}

	if d.irq != nil && d.interruptPendingLocked() {
		actions = append(actions, d.irq)
	}
	return actions, out
}

func (d *Device) popErrorsLocked() uart.Status {
	s := d.pendingErr
	d.pendingErr = 0
	return s
}

func (d *Device) markRxLocked(now time.Time) {
	d.lastRx = now
	d.idleArmed = true
}

func (d *Device) interruptPendingLocked() bool {
	st, ie := d.status, d.ier
	switch {
	case st&uart.StatusPE != 0 && ie&uart.InterruptPE != 0:
		return true
	case st&(uart.StatusFE|uart.StatusNE|uart.StatusORE) != 0 && ie&uart.InterruptError != 0 && d.dmaRx:
		return true
	case st&uart.StatusORE != 0 && ie&uart.InterruptRXNE != 0:
		return true
	case st&uart.StatusIdle != 0 && ie&uart.InterruptIdle != 0:
		return true
	case st&uart.StatusRXNE != 0 && ie&uart.InterruptRXNE != 0:
		return true
	case st&uart.StatusTXE != 0 && ie&uart.InterruptTXE != 0:
		return true
	case st&uart.StatusTC != 0 && ie&uart.InterruptTC != 0:
		return true
	}
	return false
}
