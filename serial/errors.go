package serial

import "errors"

var (
	// ErrInvalidConfig is returned when a line configuration cannot be
	// mapped onto the peripheral. Seven data bits need a parity bit to fill
	// the smallest supported word.
	ErrInvalidConfig = errors.New("serial: invalid port configuration")

	// ErrInvalidPort is returned for a handle outside the arena.
	ErrInvalidPort = errors.New("serial: invalid port handle")

	// ErrPortInUse is returned by Open for a handle that is already open.
	ErrPortInUse = errors.New("serial: port already open")

	// ErrPortClosed is returned when a closed or never opened port is used.
	ErrPortClosed = errors.New("serial: port closed")
)
