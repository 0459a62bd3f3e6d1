// Package at implements the V.25ter framing spoken between a terminal (DTE)
// and a modem (DCE): composing "AT" command lines and parsing verbose result
// frames of the form "\r\n<text>\r\n".
package at

import (
	"errors"
	"strings"
)

const (
	// Terminal Control
	CR     = '\r'
	LF     = '\n'
	Prefix = "AT"

	// CommandBufferSize bounds a composed command line, terminator included.
	CommandBufferSize = 64
	// ResponseBufferSize bounds the text of one received frame.
	ResponseBufferSize = 64

	// Result Codes (verbose form)
	OK         = "OK"
	ERROR      = "ERROR"
	Connect    = "CONNECT"
	NoCarrier  = "NO CARRIER"
	NoAnswer   = "NO ANSWER"
	Busy       = "BUSY"
	NoDialtone = "NO DIALTONE"
	Ring       = "RING"
	CmeError   = "+CME ERROR: "
)

var (
	// ErrBufferFull is returned by Compose when the command line would not
	// fit CommandBufferSize.
	ErrBufferFull = errors.New("at: command too long")

	// ErrUnexpectedResponse is returned by the parser for a byte that breaks
	// the frame structure. The parser is back at the start of a frame.
	ErrUnexpectedResponse = errors.New("at: unexpected response")

	// ErrRxBufferFull is returned by the parser when a frame body outgrows
	// ResponseBufferSize. The byte is dropped; the frame continues.
	ErrRxBufferFull = errors.New("at: response buffer full")
)

// ResultCode is the classification of a received frame.
type ResultCode int

const (
	// ResultNone means no frame was classified. Aborted commands report it.
	ResultNone ResultCode = iota
	ResultOK
	ResultError
	ResultConnect
	ResultNoCarrier
	ResultNoAnswer
	ResultBusy
	ResultNoDialtone
	ResultRing
	ResultCMEError
	ResultNotRecognized
)

func (c ResultCode) String() string {
	switch c {
	case ResultNone:
		return "NONE"
	case ResultOK:
		return OK
	case ResultError:
		return ERROR
	case ResultConnect:
		return Connect
	case ResultNoCarrier:
		return NoCarrier
	case ResultNoAnswer:
		return NoAnswer
	case ResultBusy:
		return Busy
	case ResultNoDialtone:
		return NoDialtone
	case ResultRing:
		return Ring
	case ResultCMEError:
		return "CME ERROR"
	case ResultNotRecognized:
		return "NOT RECOGNIZED"
	}
	return "UNKNOWN"
}

// Terminal reports whether the code ends a command exchange.
func (c ResultCode) Terminal() bool {
	switch c {
	case ResultOK, ResultError, ResultCMEError:
		return true
	}
	return false
}

// Classify maps the text of a frame to its result code. Matching is exact
// and case-sensitive; "+CME ERROR: " is matched as a prefix. Anything else,
// including information text, is ResultNotRecognized.
func Classify(text string) ResultCode {
	switch text {
	case OK:
		return ResultOK
	case ERROR:
		return ResultError
	case Connect:
		return ResultConnect
	case NoCarrier:
		return ResultNoCarrier
	case NoAnswer:
		return ResultNoAnswer
	case Busy:
		return ResultBusy
	case NoDialtone:
		return ResultNoDialtone
	case Ring:
		return ResultRing
	}

	if strings.HasPrefix(text, CmeError) {
		return ResultCMEError
	}
	return ResultNotRecognized
}

// Compose appends the command line "AT" + text + CR to dst.
func Compose(dst []byte, text string) ([]byte, error) {
	// The longest accepted line leaves one byte of the buffer unused.
	if len(Prefix)+len(text)+1 >= CommandBufferSize {
		return dst, ErrBufferFull
	}
	dst = append(dst, Prefix...)
	dst = append(dst, text...)
	return append(dst, CR), nil
}
