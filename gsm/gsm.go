// Package gsm implements the small part of the 3GPP TS 27.007 command set
// the gateway needs: DCE identification and network registration reports.
// It sits on top of the modem package and only assembles command strings
// and extracts fields from the information text.
package gsm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"i4.energy/across/gsmlink/modem"
)

//go:generate go tool mockgen -destination=mock_commander.go -package=gsm . Commander

// DefaultCommandTimeout bounds every query sent by this package.
const DefaultCommandTimeout = 300 * time.Millisecond

// Field sizes reported by the DCE are cut to these lengths.
const (
	ManufacturerMaxSize = 32
	ModelMaxSize        = 32
	RevisionMaxSize     = 48
	IMEISize            = 15
	IMSISize            = 15
)

const (
	CmdAttention       = ""
	CmdEchoOff         = "E0"
	CmdNumericErrors   = "+CMEE=1"
	CmdGetManufacturer = "+CGMI"
	CmdGetModel        = "+CGMM"
	CmdGetRevision     = "+CGMR"
	CmdGetIMEI         = "+CGSN"
	CmdGetIMSI         = "+CIMI"
	CmdGetRegistration = "+CREG?"
)

var (
	// ErrNoInformation is returned when a query completed with OK but
	// without the information text it asks for.
	ErrNoInformation = errors.New("gsm: no information text")
	// ErrInvalidResponse is returned for information text that does not
	// follow the expected syntax.
	ErrInvalidResponse = errors.New("gsm: invalid response")
	// ErrInvalidReporting is returned for an unknown reporting level.
	ErrInvalidReporting = errors.New("gsm: invalid registration reporting level")
)

// Commander executes one command and collects its response.
// *modem.Modem implements it.
type Commander interface {
	Exec(ctx context.Context, text string, timeout time.Duration) (modem.Response, error)
}

var _ Commander = (*modem.Modem)(nil)

// Identity describes the DCE.
type Identity struct {
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Revision     string `json:"revision"`
	IMEI         string `json:"imei"`
	IMSI         string `json:"imsi"`
}

type Modem struct {
	cmd     Commander
	logger  *slog.Logger
	timeout time.Duration
}

type Option func(*Modem)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Modem) { m.logger = logger }
}

// WithTimeout overrides DefaultCommandTimeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Modem) { m.timeout = d }
}

func New(cmd Commander, opts ...Option) *Modem {
	m := &Modem{cmd: cmd, timeout: DefaultCommandTimeout}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return m
}

// Init turns command echo off, checks that the DCE answers and switches
// to numeric +CME ERROR reports.
//
// A DCE fresh from power-up echoes commands, which garbles the framing of
// the response to the first one. E0 therefore goes first and its result
// is not checked.
func (m *Modem) Init(ctx context.Context) error {
	if err := m.expectOK(ctx, CmdEchoOff); err != nil {
		m.logger.Debug("echo off not acknowledged", "error", err)
	}
	if err := m.expectOK(ctx, CmdAttention); err != nil {
		return fmt.Errorf("modem not responding: %w", err)
	}
	if err := m.expectOK(ctx, CmdNumericErrors); err != nil {
		return fmt.Errorf("could not enable error reports: %w", err)
	}
	return nil
}

func (m *Modem) Manufacturer(ctx context.Context) (string, error) {
	return m.query(ctx, CmdGetManufacturer, ManufacturerMaxSize-1)
}

func (m *Modem) Model(ctx context.Context) (string, error) {
	return m.query(ctx, CmdGetModel, ModelMaxSize-1)
}

func (m *Modem) Revision(ctx context.Context) (string, error) {
	return m.query(ctx, CmdGetRevision, RevisionMaxSize-1)
}

func (m *Modem) IMEI(ctx context.Context) (string, error) {
	return m.query(ctx, CmdGetIMEI, IMEISize)
}

func (m *Modem) IMSI(ctx context.Context) (string, error) {
	return m.query(ctx, CmdGetIMSI, IMSISize)
}

// Identity runs all identification queries. It stops at the first
// failure and returns what was gathered so far.
func (m *Modem) Identity(ctx context.Context) (Identity, error) {
	var id Identity
	for _, q := range []struct {
		get func(context.Context) (string, error)
		dst *string
	}{
		{m.Manufacturer, &id.Manufacturer},
		{m.Model, &id.Model},
		{m.Revision, &id.Revision},
		{m.IMEI, &id.IMEI},
		{m.IMSI, &id.IMSI},
	} {
		v, err := q.get(ctx)
		if err != nil {
			return id, err
		}
		*q.dst = v
	}
	return id, nil
}

func (m *Modem) expectOK(ctx context.Context, text string) error {
	_, err := m.cmd.Exec(ctx, text, m.timeout)
	return err
}

func (m *Modem) query(ctx context.Context, text string, limit int) (string, error) {
	resp, err := m.cmd.Exec(ctx, text, m.timeout)
	if err != nil {
		m.logger.Error("query failed", "command", text, "error", err)
		return "", fmt.Errorf("%s: %w", text, err)
	}
	if len(resp.Lines) == 0 {
		return "", fmt.Errorf("%s: %w", text, ErrNoInformation)
	}
	v := resp.Lines[0]
	if len(v) > limit {
		v = v[:limit]
	}
	return v, nil
}
