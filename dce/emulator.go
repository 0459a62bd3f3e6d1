// Package dce emulates the modem side of an AT command line. An Emulator
// is an io.ReadWriteCloser: the DTE writes command lines into it and reads
// back V.25ter verbose responses from a script.
package dce

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"sync"

	"i4.energy/across/gsmlink/at"
)

// Script maps command text, without the "AT" prefix, to the response
// lines sent back. The last line is normally the result code. An empty
// slice makes the emulator stay silent.
type Script map[string][]string

// DefaultScript answers the commands every DTE sends on startup.
func DefaultScript() Script {
	return Script{
		"":        {at.OK},
		"+CMEE=1": {at.OK},
		"+CMEE=2": {at.OK},
	}
}

type Emulator struct {
	mu       sync.Mutex
	cond     *sync.Cond
	script   Script
	echo     bool
	pending  []byte
	out      bytes.Buffer
	commands []string
	closed   bool
	logger   *slog.Logger
}

type Option func(*Emulator)

// WithScript adds s to the default script, replacing entries with the
// same command.
func WithScript(s Script) Option {
	return func(e *Emulator) {
		for k, v := range s {
			e.script[k] = v
		}
	}
}

// WithEcho starts the emulator with command echo on, as a real DCE does
// after power-up.
func WithEcho(on bool) Option {
	return func(e *Emulator) { e.echo = on }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Emulator) { e.logger = logger }
}

func New(opts ...Option) *Emulator {
	e := &Emulator{script: DefaultScript()}
	e.cond = sync.NewCond(&e.mu)
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e
}

// Handle sets the response to text.
func (e *Emulator) Handle(text string, lines ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.script[text] = lines
}

// Write consumes DTE output. Complete command lines are answered
// immediately; a partial line is kept until its CR arrives.
func (e *Emulator) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, io.ErrClosedPipe
	}

	if e.echo {
		e.out.Write(p)
	}
	e.pending = append(e.pending, p...)
	for {
		advance, token, _ := at.CommandSplitter(e.pending, false)
		if advance == 0 {
			break
		}
		e.pending = e.pending[advance:]
		if token != nil {
			e.respondLocked(string(token))
		}
	}
	e.cond.Broadcast()
	return len(p), nil
}

// Read blocks until response bytes are available or the emulator is
// closed.
func (e *Emulator) Read(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.out.Len() == 0 && !e.closed {
		e.cond.Wait()
	}
	if e.out.Len() == 0 {
		return 0, io.EOF
	}
	return e.out.Read(p)
}

func (e *Emulator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.cond.Broadcast()
	return nil
}

// Unsolicited sends line as an unsolicited result code.
func (e *Emulator) Unsolicited(line string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameLocked(line)
	e.cond.Broadcast()
}

// Raw sends data to the DTE without framing.
func (e *Emulator) Raw(data string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.out.WriteString(data)
	e.cond.Broadcast()
}

// Commands returns the command lines received so far, prefix included.
func (e *Emulator) Commands() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.commands...)
}

func (e *Emulator) respondLocked(line string) {
	e.commands = append(e.commands, line)
	if len(line) < len(at.Prefix) || !strings.EqualFold(line[:len(at.Prefix)], at.Prefix) {
		e.logger.Debug("ignoring line", "line", line)
		return
	}
	text := line[len(at.Prefix):]

	switch strings.ToUpper(text) {
	case "E0":
		e.echo = false
		e.frameLocked(at.OK)
		return
	case "E1":
		e.echo = true
		e.frameLocked(at.OK)
		return
	}

	lines, ok := e.script[text]
	if !ok {
		e.logger.Debug("unknown command", "command", line)
		e.frameLocked(at.ERROR)
		return
	}
	for _, l := range lines {
		e.frameLocked(l)
	}
}

func (e *Emulator) frameLocked(line string) {
	e.out.WriteByte(at.CR)
	e.out.WriteByte(at.LF)
	e.out.WriteString(line)
	e.out.WriteByte(at.CR)
	e.out.WriteByte(at.LF)
}
