package gsm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// RegistrationPrefix starts both the +CREG? response and the unsolicited
// registration report.
const RegistrationPrefix = "+CREG: "

// Reporting selects which unsolicited registration reports the DCE sends.
type Reporting int

const (
	ReportingDisabled Reporting = iota
	ReportingEnabled
	ReportingWithLocation
)

// RegistrationStatus is the <stat> field of +CREG.
type RegistrationStatus uint8

const (
	NotRegistered RegistrationStatus = iota
	RegisteredHome
	Searching
	RegistrationDenied
	RegistrationUnknown
	RegisteredRoaming
)

func (s RegistrationStatus) String() string {
	switch s {
	case NotRegistered:
		return "not registered"
	case RegisteredHome:
		return "registered, home network"
	case Searching:
		return "searching"
	case RegistrationDenied:
		return "registration denied"
	case RegistrationUnknown:
		return "unknown"
	case RegisteredRoaming:
		return "registered, roaming"
	}
	return "invalid"
}

// Registered reports whether the DCE is attached to a network.
func (s RegistrationStatus) Registered() bool {
	return s == RegisteredHome || s == RegisteredRoaming
}

// Registration is the decoded +CREG information. LAC and CellID are
// upper-case hex and only present when location reporting is enabled.
type Registration struct {
	Status RegistrationStatus `json:"status"`
	LAC    string             `json:"lac,omitempty"`
	CellID string             `json:"cell_id,omitempty"`
}

// SetRegistrationReporting sends +CREG=<level>.
func (m *Modem) SetRegistrationReporting(ctx context.Context, level Reporting) error {
	if level < ReportingDisabled || level > ReportingWithLocation {
		return ErrInvalidReporting
	}
	text := fmt.Sprintf("+CREG=%d", level)
	if err := m.expectOK(ctx, text); err != nil {
		m.logger.Error("registration reporting not set", "level", int(level), "error", err)
		return fmt.Errorf("%s: %w", text, err)
	}
	return nil
}

// Registration queries the current registration with +CREG?.
func (m *Modem) Registration(ctx context.Context) (Registration, error) {
	resp, err := m.cmd.Exec(ctx, CmdGetRegistration, m.timeout)
	if err != nil {
		return Registration{}, fmt.Errorf("%s: %w", CmdGetRegistration, err)
	}
	for _, line := range resp.Lines {
		if IsRegistration(line) {
			return ParseRegistration(line)
		}
	}
	return Registration{}, fmt.Errorf("%s: %w", CmdGetRegistration, ErrNoInformation)
}

// IsRegistration reports whether text is a +CREG line.
func IsRegistration(text string) bool {
	return strings.HasPrefix(text, RegistrationPrefix)
}

// ParseRegistration decodes "+CREG: [<n>,]<stat>[,<lac>,<ci>]". Both the
// unsolicited report and the +CREG? response are accepted.
func ParseRegistration(text string) (Registration, error) {
	rest, ok := strings.CutPrefix(text, RegistrationPrefix)
	if !ok {
		return Registration{}, fmt.Errorf("%w: %q", ErrInvalidResponse, text)
	}
	fields := strings.Split(rest, ",")
	for i := range fields {
		fields[i] = strings.Trim(strings.TrimSpace(fields[i]), `"`)
	}

	var stat string
	var loc []string
	switch len(fields) {
	case 1:
		stat = fields[0]
	case 2:
		stat = fields[1]
	case 3:
		stat, loc = fields[0], fields[1:]
	case 4:
		stat, loc = fields[1], fields[2:]
	default:
		return Registration{}, fmt.Errorf("%w: %q", ErrInvalidResponse, text)
	}

	v, err := strconv.ParseUint(stat, 10, 8)
	if err != nil || v > uint64(RegisteredRoaming) {
		return Registration{}, fmt.Errorf("%w: status %q", ErrInvalidResponse, stat)
	}
	reg := Registration{Status: RegistrationStatus(v)}

	if loc != nil {
		for _, f := range loc {
			if _, err := strconv.ParseUint(f, 16, 32); err != nil {
				return Registration{}, fmt.Errorf("%w: location %q", ErrInvalidResponse, f)
			}
		}
		reg.LAC = strings.ToUpper(loc[0])
		reg.CellID = strings.ToUpper(loc[1])
	}
	return reg, nil
}
