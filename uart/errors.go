package uart

import (
	"errors"
	"strings"
)

// ErrorCode is the accumulated hardware error mask of a transfer. Each
// condition is an independent bit.
type ErrorCode uint16

const (
	ErrorNone    ErrorCode = 0x00
	ErrorParity  ErrorCode = 0x01
	ErrorNoise   ErrorCode = 0x02
	ErrorFraming ErrorCode = 0x04
	ErrorOverrun ErrorCode = 0x08
	ErrorDMA     ErrorCode = 0x10
)

// Fatal reports whether the mask holds anything other than an overrun.
// Overruns are tolerated: the arriving unit is still accepted.
func (c ErrorCode) Fatal() bool {
	return c&^ErrorOverrun != 0
}

func (c ErrorCode) Error() string {
	if c == ErrorNone {
		return "uart: no error"
	}
	var names []string
	for _, e := range []struct {
		bit  ErrorCode
		name string
	}{
		{ErrorParity, "parity"},
		{ErrorNoise, "noise"},
		{ErrorFraming, "framing"},
		{ErrorOverrun, "overrun"},
		{ErrorDMA, "dma"},
	} {
		if c&e.bit != 0 {
			names = append(names, e.name)
		}
	}
	return "uart: " + strings.Join(names, "|") + " error"
}

var (
	// ErrInvalidConfig is returned by Setup for a line configuration the
	// engine cannot drive, such as a 9-bit word without parity.
	ErrInvalidConfig = errors.New("uart: invalid line configuration")

	// ErrInvalidBuffer is returned when a transfer is requested with an
	// empty buffer.
	ErrInvalidBuffer = errors.New("uart: empty transfer buffer")

	// ErrInvalidCallback is returned by RegisterCallback for an unknown kind
	// or a nil function.
	ErrInvalidCallback = errors.New("uart: invalid callback")

	// ErrBusy is returned when a transfer is started while another one is
	// active in the same direction.
	ErrBusy = errors.New("uart: transfer in progress")

	// ErrNoDMA is returned by DMA operations when no channel was provided or
	// the channel was never set up.
	ErrNoDMA = errors.New("uart: dma channel not configured")

	// ErrTimeout is returned when a bounded spin on a status flag expires.
	//
	// Blocking transfers wait for the hardware one unit at a time; the bound
	// applies to each wait, not to the whole transfer.
	ErrTimeout = errors.New("uart: timed out waiting for hardware")
)
