package modem

import (
	"context"
	"fmt"
	"time"

	"i4.energy/across/gsmlink/at"
)

// SendCommand frames cmd as "AT<text>\r" and transmits it without waiting
// for the response. The modem is busy until a terminal result code arrives,
// the command times out or it is aborted.
func (m *Modem) SendCommand(cmd Command) error {
	_, err := m.send(cmd, nil, false)
	return err
}

// SendCommandWait sends cmd and blocks until its terminal result code.
//
// wait bounds how long the caller queues for the command slot behind other
// blocking callers; zero queues until ctx is done. The command itself is
// bounded by cmd.Timeout and ctx. A cancelled ctx aborts the command.
//
// It returns nil on OK, an error wrapping ErrCommandFailed on ERROR or
// +CME ERROR, and ErrCommandAborted when the command was aborted.
func (m *Modem) SendCommandWait(ctx context.Context, cmd Command, wait time.Duration) error {
	var expired <-chan time.Time
	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		expired = t.C
	}
	select {
	case <-m.sem:
	case <-expired:
		return fmt.Errorf("%w: no command slot within %v", ErrBusy, wait)
	case <-ctx.Done():
		return ctx.Err()
	}

	done := make(chan at.Frame, 1)
	gen, err := m.send(cmd, done, true)
	if err != nil {
		m.release()
		return err
	}

	select {
	case f := <-done:
		switch f.Code {
		case at.ResultOK:
			return nil
		case at.ResultNone:
			return ErrCommandAborted
		default:
			return fmt.Errorf("%w: %s", ErrCommandFailed, f.Text)
		}
	case <-ctx.Done():
		m.mu.Lock()
		notify := func() {}
		if m.busy && m.gen == gen {
			notify = m.abortLocked()
		}
		m.mu.Unlock()
		notify()
		return ctx.Err()
	}
}

// AbortCommand drops the outstanding command, if any, and any partial
// response frame. The command's callback sees ResultNone.
func (m *Modem) AbortCommand() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrAlreadyClosed
	}
	notify := m.abortLocked()
	m.mu.Unlock()

	notify()
	return nil
}

func (m *Modem) send(cmd Command, done chan at.Frame, slot bool) (uint64, error) {
	text := cmd.Text
	if cmd.Length > 0 {
		if cmd.Length > len(text) {
			return 0, ErrInvalidCommand
		}
		text = text[:cmd.Length]
	}

	m.mu.Lock()
	switch {
	case m.closed:
		m.mu.Unlock()
		return 0, ErrAlreadyClosed
	case m.state != StateCommand:
		m.mu.Unlock()
		return 0, ErrWrongState
	case m.busy:
		m.mu.Unlock()
		return 0, ErrBusy
	}

	var buf [at.CommandBufferSize]byte
	line, err := at.Compose(buf[:0], text)
	if err != nil {
		m.mu.Unlock()
		return 0, err
	}

	m.gen++
	gen := m.gen
	m.busy = true
	m.callback = cmd.Callback
	m.arg = cmd.Arg
	m.done = done
	m.slot = slot
	m.cmdTimeout = cmd.Timeout
	m.cmdTimer.Clear()
	m.mu.Unlock()

	m.logger.Info("sending", "command", "AT"+text)

	if !m.transmit(line) {
		m.mu.Lock()
		if m.busy && m.gen == gen {
			m.busy = false
			m.callback = nil
			m.arg = nil
			m.done = nil
			m.slot = false
		}
		m.mu.Unlock()
		m.logger.Error("command not sent", "command", "AT"+text)
		return 0, ErrTxFailed
	}

	m.mu.Lock()
	if cmd.Timeout > 0 && m.busy && m.gen == gen {
		m.cmdTimer.Start(m.config.Clock)
	}
	m.mu.Unlock()
	return gen, nil
}

// transmit hands line to the transport, retrying while its queue is full.
func (m *Modem) transmit(line []byte) bool {
	deadline := time.Now().Add(m.config.TxTimeout)
	for sent := 0; ; {
		sent += m.transport.Tx(line[sent:])
		if sent >= len(line) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}

// abortLocked resets the command and framing state. The returned function
// delivers the abort to the command's owner and must be called without mu.
// While a callback is running the delivery is left to dispatch, so the
// callback never sees ResultNone before its current frame returns.
func (m *Modem) abortLocked() func() {
	m.interOctet.Clear()
	m.cmdTimer.Clear()
	m.parser.Reset()

	if !m.busy {
		return func() {}
	}
	cb, arg, done, slot := m.callback, m.arg, m.done, m.slot
	m.busy = false
	m.callback = nil
	m.arg = nil
	m.done = nil
	m.slot = false

	notify := func() {
		if cb != nil {
			if err := cb(at.ResultNone, "", arg); err != nil {
				m.logger.Error("response handler failed", "error", err)
			}
		}
		if done != nil {
			done <- at.Frame{Code: at.ResultNone}
		}
		if slot {
			m.release()
		}
	}
	if m.dispatching {
		m.pendingAbort = notify
		return func() {}
	}
	return notify
}
