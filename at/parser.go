package at

// State is the position of the Parser within a frame.
type State uint8

const (
	StateHeaderCR State = iota
	StateHeaderLF
	StateBody
	// StateTrailerCR is never entered: a CR in the body moves straight to
	// StateTrailerLF. It is kept so the state numbering stays stable.
	StateTrailerCR
	StateTrailerLF
)

func (s State) String() string {
	switch s {
	case StateHeaderCR:
		return "header-cr"
	case StateHeaderLF:
		return "header-lf"
	case StateBody:
		return "body"
	case StateTrailerCR:
		return "trailer-cr"
	case StateTrailerLF:
		return "trailer-lf"
	}
	return "unknown"
}

// Frame is one complete response line.
type Frame struct {
	Code ResultCode
	Text string
}

// Parser assembles verbose result frames one byte at a time. The zero value
// is ready to use.
type Parser struct {
	state State
	body  [ResponseBufferSize]byte
	n     int
}

// Feed consumes b. It returns the frame b completed, if any. A non-nil
// error reports a malformed or oversized frame; the parser has already
// recovered and the next byte can be fed.
func (p *Parser) Feed(b byte) (Frame, bool, error) {
	switch p.state {
	case StateHeaderCR:
		if b != CR {
			return Frame{}, false, ErrUnexpectedResponse
		}
		p.n = 0
		p.state = StateHeaderLF

	case StateHeaderLF:
		if b != LF {
			p.Reset()
			return Frame{}, false, ErrUnexpectedResponse
		}
		p.state = StateBody

	case StateBody:
		switch b {
		case CR:
			p.state = StateTrailerLF
		case LF:
			p.Reset()
			return Frame{}, false, ErrUnexpectedResponse
		default:
			if p.n >= len(p.body)-1 {
				return Frame{}, false, ErrRxBufferFull
			}
			p.body[p.n] = b
			p.n++
		}

	case StateTrailerLF:
		if b != LF {
			p.Reset()
			return Frame{}, false, ErrUnexpectedResponse
		}
		text := string(p.body[:p.n])
		p.Reset()
		return Frame{Code: Classify(text), Text: text}, true, nil

	default:
		p.Reset()
		return Frame{}, false, ErrUnexpectedResponse
	}
	return Frame{}, false, nil
}

// Reset drops any partial frame.
func (p *Parser) Reset() {
	p.state = StateHeaderCR
	p.n = 0
}

func (p *Parser) State() State { return p.state }

// InFrame reports whether a frame has been started and not finished.
func (p *Parser) InFrame() bool { return p.state != StateHeaderCR }
