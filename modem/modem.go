package modem

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"

	"i4.energy/across/gsmlink/at"
	"i4.energy/across/gsmlink/timer"
)

// State is the operating state of the DCE as seen by the command layer.
type State uint8

const (
	// StateCommand is the offline command state. It is the only state in
	// which commands are accepted and responses are parsed.
	StateCommand State = iota
	StateOnlineCommand
	StateOnlineData
)

func (s State) String() string {
	switch s {
	case StateCommand:
		return "command"
	case StateOnlineCommand:
		return "online-command"
	case StateOnlineData:
		return "online-data"
	}
	return "unknown"
}

// ResponseFunc is invoked for every frame received while its command is
// outstanding, including the terminal one. An aborted command sees one last
// call with at.ResultNone and empty text. A returned error is logged.
type ResponseFunc func(code at.ResultCode, text string, arg any) error

// Command is one AT command line to send.
type Command struct {
	// Text is the command without the "AT" prefix, e.g. "+CGMI".
	Text string
	// Length, when non-zero, limits how many bytes of Text are sent.
	Length int
	// Callback receives the response frames. It may be nil.
	Callback ResponseFunc
	// Arg is passed back to Callback unchanged.
	Arg any
	// Timeout aborts the command when no terminal result code arrives in
	// time. Zero waits forever.
	Timeout time.Duration
}

// Modem represents a GSM/3G/4G cellular modem that communicates via AT commands.
// It correlates commands with their response frames and runs a periodic task
// that drains the transport and enforces the protocol timeouts.
type Modem struct {
	// transport provides the physical connection to the modem
	transport Transport
	// config contains the modem configuration settings
	config Config
	logger *slog.Logger

	// mu guards everything below up to pollMu
	mu     sync.Mutex
	state  State
	closed bool
	// busy is set while a command waits for its terminal result code
	busy bool
	// gen identifies the outstanding command so late completions of an
	// older one are ignored
	gen        uint64
	parser     at.Parser
	interOctet timer.Timer
	cmdTimer   timer.Timer
	cmdTimeout time.Duration
	callback   ResponseFunc
	arg        any
	// done is signalled with the terminal frame of a blocking command
	done chan at.Frame
	// slot records that the outstanding command holds the sem token
	slot bool
	// dispatching is set while Poll runs a command callback. An abort in
	// that window parks its notification in pendingAbort and Poll delivers
	// it once the callback has returned.
	dispatching  bool
	pendingAbort func()

	// pollMu serializes Poll
	pollMu sync.Mutex
	rxBuf  [drainChunk]byte

	// sem is a binary semaphore admitting one blocking command at a time.
	// It starts out given.
	sem chan struct{}

	loopRunning atomic.Bool
	// loopCtx controls the lifecycle of Loop
	loopCtx context.Context
	// loopCancel stops Loop on Close
	loopCancel context.CancelFunc
}

// New creates a new Modem instance with the given configuration. It
// establishes the transport connection and leaves the modem in
// StateCommand with no command outstanding. Loop must be started for
// responses to be processed.
func New(ctx context.Context, config Config) (*Modem, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial modem: %w", err)
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	m := &Modem{
		transport: transport,
		config:    config,
		logger:    config.Logger,
		state:     StateCommand,
		sem:       make(chan struct{}, 1),
	}
	m.sem <- struct{}{}
	m.loopCtx, m.loopCancel = context.WithCancel(context.WithoutCancel(ctx))
	return m, nil
}

// Loop runs the periodic task every TaskPeriod until ctx is cancelled or
// the modem is closed. Only one Loop may run at a time.
//
// Usage:
//
//	m, err := modem.New(ctx, config)
//	if err != nil { return err }
//
//	go m.Loop(ctx)
func (m *Modem) Loop(ctx context.Context) error {
	if !m.loopRunning.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer m.loopRunning.Store(false)

	ticker := time.NewTicker(m.config.TaskPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.loopCtx.Done():
			return nil
		case <-ticker.C:
			m.Poll()
		}
	}
}

// Close aborts any outstanding command, stops Loop and closes the
// transport.
func (m *Modem) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrAlreadyClosed
	}
	m.closed = true
	notify := m.abortLocked()
	m.mu.Unlock()

	notify()
	m.loopCancel()
	return m.transport.Close()
}

// State returns the current operating state.
func (m *Modem) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetState records a change of operating state, e.g. after CONNECT.
func (m *Modem) SetState(s State) error {
	if s > StateOnlineData {
		return ErrInvalidState
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != s {
		m.logger.Info("state changed", "from", m.state, "to", s)
	}
	m.state = s
	return nil
}

// Busy reports whether a command is waiting for its terminal result code.
func (m *Modem) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

func (m *Modem) release() {
	select {
	case m.sem <- struct{}{}:
	default:
	}
}
