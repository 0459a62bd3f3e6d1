package sim

import (
	"errors"
	"time"

	"i4.energy/across/gsmlink/uart"
)

var (
	// ErrDirection is returned by Configure when a channel is asked to move
	// data the other way.
	ErrDirection = errors.New("sim: dma direction does not match channel")
	// ErrNoTransfer is returned by Start without a prior SetTransfer.
	ErrNoTransfer = errors.New("sim: no dma transfer set")
)

var _ uart.DMAChannel = (*Channel)(nil)

// Channel is one DMA stream of a Device. Its state is guarded by the
// device lock.
type Channel struct {
	dev *Device
	dir uart.DMADirection

	circular bool
	events   uart.DMAEvents

	buf      []byte
	pos      int
	active   bool
	halfDone bool
	fail     bool
}

func (c *Channel) Configure(cfg uart.DMAConfig) error {
	if cfg.Direction != c.dir {
		return ErrDirection
	}
	c.dev.mu.Lock()
	c.circular = cfg.Circular
	c.dev.mu.Unlock()
	return nil
}

func (c *Channel) SetEvents(ev uart.DMAEvents) {
	c.dev.mu.Lock()
	c.events = ev
	c.dev.mu.Unlock()
}

func (c *Channel) SetTransfer(buf []byte) {
	c.dev.mu.Lock()
	c.buf = buf
	c.pos = 0
	c.halfDone = false
	c.dev.mu.Unlock()
}

func (c *Channel) Start() error {
	c.dev.mu.Lock()
	if len(c.buf) == 0 {
		c.dev.mu.Unlock()
		return ErrNoTransfer
	}
	c.active = true
	c.dev.mu.Unlock()
	c.dev.notify()
	return nil
}

func (c *Channel) Abort() int {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	c.active = false
	return len(c.buf) - c.pos
}

func (c *Channel) Remaining() int {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	return len(c.buf) - c.pos
}

// pendingLocked reports whether the channel has bytes to push to the line.
func (c *Channel) pendingLocked(requested bool) bool {
	return requested && c.active && c.pos < len(c.buf)
}

// transmitLocked shifts the rest of the transmit buffer into out.
func (c *Channel) transmitLocked(out []byte) ([]byte, []func()) {
	if c.fail {
		c.fail = false
		c.active = false
		return out, c.fire(c.events.Error)
	}

	out = append(out, c.buf[c.pos:]...)
	c.pos = len(c.buf)
	if c.circular {
		c.pos = 0
	} else {
		c.active = false
	}
	return out, c.fire(c.events.Complete)
}

// receiveLocked copies queued bytes into the buffer up to the next event
// boundary. A byte carrying error flags ends the burst so the interrupt
// handler sees the exact position of the fault.
func (c *Channel) receiveLocked(now time.Time) []func() {
	d := c.dev
	if c.fail {
		c.fail = false
		c.active = false
		return c.fire(c.events.Error)
	}

	half := len(c.buf) / 2
	boundary := len(c.buf)
	if !c.halfDone && half > 0 && c.pos < half {
		boundary = half
	}

	for c.pos < boundary && len(d.rxQueue) > 0 {
		c.buf[c.pos] = d.rxQueue[0]
		d.rxQueue = d.rxQueue[1:]
		c.pos++
		if errs := d.popErrorsLocked(); errs != 0 {
			d.status |= errs
			break
		}
	}
	d.markRxLocked(now)

	var actions []func()
	if !c.halfDone && half > 0 && c.pos == half {
		c.halfDone = true
		actions = append(actions, c.fire(c.events.HalfComplete)...)
	}
	if c.pos == len(c.buf) {
		c.halfDone = false
		if c.circular {
			c.pos = 0
		} else {
			c.active = false
		}
		actions = append(actions, c.fire(c.events.Complete)...)
	}
	return actions
}

func (c *Channel) fire(fn func()) []func() {
	if fn == nil {
		return nil
	}
	return []func(){fn}
}
