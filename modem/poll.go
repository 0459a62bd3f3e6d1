package modem

import (
	"errors"

	"i4.energy/across/gsmlink/at"
)

// Poll is the periodic protocol task. It enforces the inter-octet and
// command timeouts, then drains the transport and dispatches every complete
// frame. Outside StateCommand received bytes are read and discarded so the
// receive queue cannot grow without bound. Loop calls it every TaskPeriod;
// tests may call it directly.
func (m *Modem) Poll() {
	m.pollMu.Lock()
	defer m.pollMu.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if m.state != StateCommand {
		m.parser.Reset()
		m.interOctet.Clear()
		m.mu.Unlock()
		if n := m.discard(); n > 0 {
			m.logger.Debug("discarded bytes outside command state", "count", n)
		}
		m.checkOverrun()
		return
	}
	clock := m.config.Clock
	if m.interOctet.IsStarted() && m.interOctet.Elapsed(clock) > uint64(m.config.InterOctetTimeout.Milliseconds()) {
		notify := m.abortLocked()
		m.mu.Unlock()
		m.logger.Warn("inter-octet timeout, frame dropped")
		notify()
		m.mu.Lock()
	}
	if m.cmdTimer.IsStarted() && m.cmdTimer.Elapsed(clock) > uint64(m.cmdTimeout.Milliseconds()) {
		notify := m.abortLocked()
		m.mu.Unlock()
		m.logger.Warn("command timed out")
		notify()
		m.mu.Lock()
	}
	m.mu.Unlock()

	for {
		n := m.transport.Rx(m.rxBuf[:])
		for _, b := range m.rxBuf[:n] {
			m.feed(b)
		}
		if n < len(m.rxBuf) {
			break
		}
	}

	m.checkOverrun()
}

func (m *Modem) discard() int {
	total := 0
	for {
		n := m.transport.Rx(m.rxBuf[:])
		total += n
		if n < len(m.rxBuf) {
			return total
		}
	}
}

func (m *Modem) checkOverrun() {
	if r, ok := m.transport.(OverrunReporter); ok && r.Overrun() {
		r.ClearOverrun()
		m.logger.Warn("receive overrun, bytes lost")
	}
}

func (m *Modem) feed(b byte) {
	m.mu.Lock()
	f, ok, err := m.parser.Feed(b)
	if m.parser.InFrame() {
		m.interOctet.Start(m.config.Clock)
	} else {
		m.interOctet.Clear()
	}
	if !ok {
		m.mu.Unlock()
		if err != nil {
			m.logFramingError(err, b)
		}
		return
	}

	if !m.busy {
		unsolicited := m.config.Unsolicited
		m.mu.Unlock()
		m.logger.Info("received", "text", f.Text)
		m.logger.Debug("classified", "code", f.Code)
		if unsolicited != nil {
			unsolicited(f.Code, f.Text)
		}
		return
	}

	gen := m.gen
	m.mu.Unlock()

	m.logger.Info("received", "text", f.Text)
	m.logger.Debug("classified", "code", f.Code)
	m.dispatch(f, gen)
}

// dispatch hands f to the command identified by gen. A command aborted since
// the frame was parsed no longer sees it. A terminal frame completes the
// command before its callback runs.
func (m *Modem) dispatch(f at.Frame, gen uint64) {
	m.mu.Lock()
	if !m.busy || m.gen != gen {
		m.mu.Unlock()
		m.logger.Debug("frame of an aborted command dropped", "text", f.Text)
		return
	}
	cb, arg := m.callback, m.arg
	terminal := f.Code.Terminal()
	var (
		done chan at.Frame
		slot bool
	)
	if terminal {
		done, slot = m.done, m.slot
		m.busy = false
		m.cmdTimer.Clear()
		m.callback = nil
		m.arg = nil
		m.done = nil
		m.slot = false
	}
	m.dispatching = true
	m.mu.Unlock()

	if cb != nil {
		if err := cb(f.Code, f.Text, arg); err != nil {
			m.logger.Error("response handler failed", "error", err)
		}
	}

	m.mu.Lock()
	m.dispatching = false
	pending := m.pendingAbort
	m.pendingAbort = nil
	m.mu.Unlock()

	if pending != nil {
		pending()
	}
	if !terminal {
		return
	}
	if f.Code != at.ResultOK {
		m.logger.Error("command failed", "result", f.Text)
	}
	if done != nil {
		done <- f
	}
	if slot {
		m.release()
	}
}

func (m *Modem) logFramingError(err error, b byte) {
	if errors.Is(err, at.ErrRxBufferFull) {
		m.logger.Warn("response too long, byte dropped")
		return
	}
	m.logger.Warn("unexpected response byte", "byte", b, "error", err)
}
