package modem

import (
	"context"
	"sync"
	"time"

	"i4.energy/across/gsmlink/at"
)

// Response collects the frames of one command.
type Response struct {
	// Result is the terminal result code, or ResultNone after an abort.
	Result at.ResultCode
	// Final is the text of the terminal frame.
	Final string
	// Lines holds the information text received before it.
	Lines []string
}

// Exec sends text with SendCommandWait and gathers the response. The
// Response is filled in even when an error is returned.
func (m *Modem) Exec(ctx context.Context, text string, timeout time.Duration) (Response, error) {
	var (
		mu   sync.Mutex
		resp Response
	)
	cmd := Command{
		Text:    text,
		Timeout: timeout,
		Callback: func(code at.ResultCode, line string, _ any) error {
			mu.Lock()
			defer mu.Unlock()
			switch {
			case code.Terminal(), code == at.ResultNone:
				resp.Result = code
				resp.Final = line
			default:
				resp.Lines = append(resp.Lines, line)
			}
			return nil
		},
	}

	err := m.SendCommandWait(ctx, cmd, 0)

	mu.Lock()
	defer mu.Unlock()
	return resp, err
}
