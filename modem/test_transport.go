package modem

import (
	"bytes"
	"sync"
)

// TestTransport is an in-memory Transport for tests. Bytes queued with
// SendData are returned by Rx; bytes passed to Tx are recorded.
type TestTransport struct {
	mu      sync.Mutex
	rx      []byte
	tx      bytes.Buffer
	txLimit int
	overrun bool
	closed  bool
}

// NewTestTransport creates a new test transport for testing.
// Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{txLimit: -1}
}

func (t *TestTransport) Tx(p []byte) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(p)
	if t.txLimit >= 0 && n > t.txLimit {
		n = t.txLimit
	}
	if t.txLimit >= 0 {
		t.txLimit -= n
	}
	t.tx.Write(p[:n])
	return n
}

func (t *TestTransport) Rx(p []byte) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := copy(p, t.rx)
	t.rx = t.rx[n:]
	return n
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// SendData queues data to be read by the transport.
// This simulates receiving data from the modem.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rx = append(t.rx, data...)
}

// Sent returns everything written so far and forgets it.
func (t *TestTransport) Sent() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.tx.String()
	t.tx.Reset()
	return s
}

// LimitTx makes Tx accept at most n more bytes. A negative n lifts the
// limit.
func (t *TestTransport) LimitTx(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.txLimit = n
}

// SetOverrun raises the overrun flag reported through OverrunReporter.
func (t *TestTransport) SetOverrun() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.overrun = true
}

func (t *TestTransport) Overrun() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.overrun
}

func (t *TestTransport) ClearOverrun() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.overrun = false
}

// Closed reports whether Close was called.
func (t *TestTransport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
