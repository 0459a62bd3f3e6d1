package modem

import (
	"errors"

	"i4.energy/across/gsmlink/at"
)

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the modem.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when the Dialer produced no Transport.
	ErrNotInitialized = errors.New("modem not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Modem that has
	// already been closed, or when a closed Modem is used.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrLoopRunning is returned when Loop is started a second time.
	ErrLoopRunning = errors.New("loop already running")

	// ErrWrongState is returned by SendCommand when the DCE is not in
	// offline command state.
	//
	// Commands can only be issued in StateCommand. While the line carries
	// data (or the DCE sits in online command state) the command layer stays
	// out of the way.
	ErrWrongState = errors.New("modem not in command state")

	// ErrBusy is returned by SendCommand when another command is still
	// waiting for its terminal result code.
	ErrBusy = errors.New("command in progress")

	// ErrBufferFull is returned when a command line does not fit the
	// command buffer. Nothing is sent and no state changes.
	ErrBufferFull = at.ErrBufferFull

	// ErrInvalidCommand is returned when Command.Length exceeds the text.
	ErrInvalidCommand = errors.New("invalid command length")

	// ErrTxFailed is returned when the transport would not take the whole
	// command line in time.
	//
	// The command is dropped: busy is cleared and a blocked caller is
	// released. Part of the line may already be on the wire.
	ErrTxFailed = errors.New("command transmission failed")

	// ErrCommandAborted is returned by SendCommandWait when the command was
	// aborted before a terminal result code arrived, either by AbortCommand
	// or by one of the timeouts.
	ErrCommandAborted = errors.New("command aborted")

	// ErrCommandFailed is returned by SendCommandWait when the DCE answered
	// ERROR or +CME ERROR.
	ErrCommandFailed = errors.New("command failed")

	// ErrInvalidState is returned by SetState for an unknown state.
	ErrInvalidState = errors.New("invalid modem state")
)
