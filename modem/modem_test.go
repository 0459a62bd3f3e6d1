package modem_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"i4.energy/across/gsmlink/at"
	"i4.energy/across/gsmlink/modem"
	"i4.energy/across/gsmlink/timer"
)

type call struct {
	code at.ResultCode
	text string
	arg  any
}

// recorder collects callback invocations from the polling goroutine.
type recorder struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (r *recorder) callback(code at.ResultCode, text string, arg any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{code, text, arg})
	return r.err
}

func (r *recorder) unsolicited(code at.ResultCode, text string) {
	_ = r.callback(code, text, nil)
}

func (r *recorder) get() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func newModem(t *testing.T, configure ...func(*modem.ConfigBuilder)) (*modem.Modem, *modem.TestTransport, *timer.ManualClock) {
	t.Helper()
	ctrl := gomock.NewController(t)

	transport := modem.NewTestTransport()
	clock := &timer.ManualClock{}
	dialer := modem.NewMockDialer(ctrl)
	dialer.EXPECT().Dial(gomock.Any()).Return(transport, nil)

	b := modem.NewConfigBuilder().
		WithDialer(dialer).
		WithClock(clock).
		WithTaskPeriod(time.Millisecond)
	for _, fn := range configure {
		fn(b)
	}
	cfg, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}

	m, err := modem.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m, transport, clock
}

func runLoop(t *testing.T, m *modem.Modem) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Loop(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func waitBusy(t *testing.T, m *modem.Modem) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !m.Busy() {
		if time.Now().After(deadline) {
			t.Error("command never became outstanding")
			return
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNew(t *testing.T) {
	t.Run("ErrNoDialer when no dialer provided", func(t *testing.T) {
		_, err := modem.New(context.Background(), modem.Config{})
		if !errors.Is(err, modem.ErrNoDialer) {
			t.Errorf("expected ErrNoDialer, got: %v", err)
		}
	})

	t.Run("Dial errors are wrapped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dialErr := errors.New("dial failed")
		dialer := modem.NewMockDialer(ctrl)
		dialer.EXPECT().Dial(gomock.Any()).Return(nil, dialErr)

		_, err := modem.New(context.Background(), modem.Config{Dialer: dialer})
		if !errors.Is(err, dialErr) {
			t.Errorf("expected dial error, got: %v", err)
		}
	})

	t.Run("ErrNotInitialized without a transport", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dialer := modem.NewMockDialer(ctrl)
		dialer.EXPECT().Dial(gomock.Any()).Return(nil, nil)

		_, err := modem.New(context.Background(), modem.Config{Dialer: dialer})
		if !errors.Is(err, modem.ErrNotInitialized) {
			t.Errorf("expected ErrNotInitialized, got: %v", err)
		}
	})

	t.Run("Starts idle in command state", func(t *testing.T) {
		m, _, _ := newModem(t)
		if m.State() != modem.StateCommand {
			t.Errorf("expected %v, got %v", modem.StateCommand, m.State())
		}
		if m.Busy() {
			t.Error("new modem should not be busy")
		}
	})
}

func TestSendCommand(t *testing.T) {
	t.Run("Frames the command line", func(t *testing.T) {
		m, tr, _ := newModem(t)
		if err := m.SendCommand(modem.Command{Text: "+CGMI"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sent := tr.Sent(); sent != "AT+CGMI\r" {
			t.Errorf("expected %q, got %q", "AT+CGMI\r", sent)
		}
		if !m.Busy() {
			t.Error("modem should be busy until the terminal result code")
		}
	})

	t.Run("Explicit length truncates the text", func(t *testing.T) {
		m, tr, _ := newModem(t)
		if err := m.SendCommand(modem.Command{Text: "+CGMIXYZ", Length: 5}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sent := tr.Sent(); sent != "AT+CGMI\r" {
			t.Errorf("expected %q, got %q", "AT+CGMI\r", sent)
		}
	})

	t.Run("Length beyond the text", func(t *testing.T) {
		m, tr, _ := newModem(t)
		err := m.SendCommand(modem.Command{Text: "+CGMI", Length: 6})
		if !errors.Is(err, modem.ErrInvalidCommand) {
			t.Errorf("expected ErrInvalidCommand, got: %v", err)
		}
		if tr.Sent() != "" || m.Busy() {
			t.Error("rejected command must not change state")
		}
	})

	t.Run("Oversized command leaves the state unchanged", func(t *testing.T) {
		m, tr, _ := newModem(t)
		err := m.SendCommand(modem.Command{Text: strings.Repeat("X", 61)})
		if !errors.Is(err, modem.ErrBufferFull) {
			t.Errorf("expected ErrBufferFull, got: %v", err)
		}
		if tr.Sent() != "" || m.Busy() {
			t.Error("rejected command must not change state")
		}

		if err := m.SendCommand(modem.Command{Text: strings.Repeat("X", 60)}); err != nil {
			t.Errorf("longest command should fit, got: %v", err)
		}
	})

	t.Run("Second command while busy", func(t *testing.T) {
		m, tr, _ := newModem(t)
		if err := m.SendCommand(modem.Command{Text: "+CGMI"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tr.Sent()

		err := m.SendCommand(modem.Command{Text: "+CGMM"})
		if !errors.Is(err, modem.ErrBusy) {
			t.Errorf("expected ErrBusy, got: %v", err)
		}
		if sent := tr.Sent(); sent != "" {
			t.Errorf("nothing should be sent, got %q", sent)
		}
	})

	t.Run("Rejected outside command state", func(t *testing.T) {
		m, _, _ := newModem(t)
		if err := m.SetState(modem.StateOnlineData); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err := m.SendCommand(modem.Command{Text: "+CGMI"})
		if !errors.Is(err, modem.ErrWrongState) {
			t.Errorf("expected ErrWrongState, got: %v", err)
		}
	})

	t.Run("Rejected after close", func(t *testing.T) {
		m, _, _ := newModem(t)
		_ = m.Close()
		err := m.SendCommand(modem.Command{Text: "+CGMI"})
		if !errors.Is(err, modem.ErrAlreadyClosed) {
			t.Errorf("expected ErrAlreadyClosed, got: %v", err)
		}
	})

	t.Run("Transmit failure clears busy", func(t *testing.T) {
		m, tr, _ := newModem(t, func(b *modem.ConfigBuilder) {
			b.WithTxTimeout(10 * time.Millisecond)
		})
		tr.LimitTx(2)

		err := m.SendCommand(modem.Command{Text: "+CGMI"})
		if !errors.Is(err, modem.ErrTxFailed) {
			t.Errorf("expected ErrTxFailed, got: %v", err)
		}
		if m.Busy() {
			t.Error("failed command must not stay outstanding")
		}

		tr.LimitTx(-1)
		if err := m.SendCommand(modem.Command{Text: "+CGMI"}); err != nil {
			t.Errorf("next command should go out, got: %v", err)
		}
	})

	t.Run("Partial writes are retried", func(t *testing.T) {
		m, tr, _ := newModem(t)
		tr.LimitTx(3)
		go func() {
			time.Sleep(5 * time.Millisecond)
			tr.LimitTx(-1)
		}()
		if err := m.SendCommand(modem.Command{Text: "+CGMI"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sent := tr.Sent(); sent != "AT+CGMI\r" {
			t.Errorf("expected %q, got %q", "AT+CGMI\r", sent)
		}
	})
}

func TestPoll(t *testing.T) {
	t.Run("OK completes the command", func(t *testing.T) {
		m, tr, _ := newModem(t)
		rec := &recorder{}
		if err := m.SendCommand(modem.Command{Text: "", Callback: rec.callback, Arg: 7}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tr.SendData("\r\nOK\r\n")
		m.Poll()

		calls := rec.get()
		if len(calls) != 1 || calls[0] != (call{at.ResultOK, "OK", 7}) {
			t.Errorf("expected one OK callback with the argument, got %v", calls)
		}
		if m.Busy() {
			t.Error("OK should clear busy")
		}
	})

	t.Run("Information text keeps the command outstanding", func(t *testing.T) {
		m, tr, _ := newModem(t)
		rec := &recorder{}
		if err := m.SendCommand(modem.Command{Text: "+CGMI", Callback: rec.callback}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tr.SendData("\r\nACME\r\n")
		m.Poll()
		if !m.Busy() {
			t.Error("information text must not clear busy")
		}

		tr.SendData("\r\nOK\r\n")
		m.Poll()
		if m.Busy() {
			t.Error("OK should clear busy")
		}

		expected := []call{{at.ResultNotRecognized, "ACME", nil}, {at.ResultOK, "OK", nil}}
		calls := rec.get()
		if len(calls) != len(expected) {
			t.Fatalf("expected %v, got %v", expected, calls)
		}
		for i := range expected {
			if calls[i] != expected[i] {
				t.Errorf("call %d: expected %v, got %v", i, expected[i], calls[i])
			}
		}
	})

	t.Run("Unknown text is not recognized", func(t *testing.T) {
		m, tr, _ := newModem(t)
		rec := &recorder{}
		_ = m.SendCommand(modem.Command{Text: "", Callback: rec.callback})

		tr.SendData("\r\nFOO\r\n")
		m.Poll()

		calls := rec.get()
		if len(calls) != 1 || calls[0].code != at.ResultNotRecognized || calls[0].text != "FOO" {
			t.Errorf("expected one not-recognized callback, got %v", calls)
		}
		if !m.Busy() {
			t.Error("unrecognized text must not clear busy")
		}
	})

	t.Run("Error results complete the command", func(t *testing.T) {
		for _, resp := range []struct {
			line string
			code at.ResultCode
		}{
			{"ERROR", at.ResultError},
			{"+CME ERROR: 10", at.ResultCMEError},
		} {
			m, tr, _ := newModem(t)
			rec := &recorder{}
			_ = m.SendCommand(modem.Command{Text: "+CIMI", Callback: rec.callback})

			tr.SendData("\r\n" + resp.line + "\r\n")
			m.Poll()

			calls := rec.get()
			if len(calls) != 1 || calls[0].code != resp.code || calls[0].text != resp.line {
				t.Errorf("%s: unexpected callbacks %v", resp.line, calls)
			}
			if m.Busy() {
				t.Errorf("%s should clear busy", resp.line)
			}
		}
	})

	t.Run("Frames split across polls", func(t *testing.T) {
		m, tr, _ := newModem(t)
		rec := &recorder{}
		_ = m.SendCommand(modem.Command{Text: "", Callback: rec.callback})

		tr.SendData("\r\nO")
		m.Poll()
		if len(rec.get()) != 0 {
			t.Fatal("partial frame must not be dispatched")
		}
		tr.SendData("K\r\n")
		m.Poll()
		if calls := rec.get(); len(calls) != 1 || calls[0].code != at.ResultOK {
			t.Errorf("expected OK, got %v", calls)
		}
	})

	t.Run("Responses longer than a drain chunk", func(t *testing.T) {
		m, tr, _ := newModem(t)
		rec := &recorder{}
		_ = m.SendCommand(modem.Command{Text: "+CGMR", Callback: rec.callback})

		long := strings.Repeat("R", 40)
		tr.SendData("\r\n" + long + "\r\n\r\nOK\r\n")
		m.Poll()

		calls := rec.get()
		if len(calls) != 2 || calls[0].text != long || calls[1].code != at.ResultOK {
			t.Errorf("unexpected callbacks %v", calls)
		}
	})

	t.Run("Garbage before a frame is skipped", func(t *testing.T) {
		m, tr, _ := newModem(t)
		rec := &recorder{}
		_ = m.SendCommand(modem.Command{Text: "", Callback: rec.callback})

		tr.SendData("xx\r\nOK\r\n")
		m.Poll()

		if calls := rec.get(); len(calls) != 1 || calls[0].code != at.ResultOK {
			t.Errorf("expected OK, got %v", calls)
		}
	})

	t.Run("Unsolicited frames while idle", func(t *testing.T) {
		rec := &recorder{}
		m, tr, _ := newModem(t, func(b *modem.ConfigBuilder) {
			b.WithUnsolicited(rec.unsolicited)
		})

		tr.SendData("\r\nRING\r\n\r\n+CREG: 1\r\n")
		m.Poll()

		calls := rec.get()
		if len(calls) != 2 || calls[0].code != at.ResultRing || calls[1].text != "+CREG: 1" {
			t.Errorf("unexpected unsolicited frames %v", calls)
		}
	})

	t.Run("Handler errors do not keep the command outstanding", func(t *testing.T) {
		m, tr, _ := newModem(t)
		rec := &recorder{err: errors.New("handler failed")}
		_ = m.SendCommand(modem.Command{Text: "", Callback: rec.callback})

		tr.SendData("\r\nOK\r\n")
		m.Poll()
		if m.Busy() {
			t.Error("OK should clear busy")
		}
	})

	t.Run("Bytes are discarded outside command state", func(t *testing.T) {
		m, tr, _ := newModem(t)
		rec := &recorder{}
		_ = m.SendCommand(modem.Command{Text: "D123", Callback: rec.callback})
		_ = m.SetState(modem.StateOnlineData)

		tr.SendData("\r\nOK\r\n" + strings.Repeat("x", 100) + "\r\nBU")
		m.Poll()
		if len(rec.get()) != 0 {
			t.Fatal("frames must not be dispatched in online data state")
		}
		buf := make([]byte, 8)
		if n := tr.Rx(buf); n != 0 {
			t.Fatalf("receive queue should be drained, %d bytes left", n)
		}

		_ = m.SetState(modem.StateCommand)
		tr.SendData("\r\nOK\r\n")
		m.Poll()
		calls := rec.get()
		if len(calls) != 1 || calls[0].code != at.ResultOK || calls[0].text != "OK" {
			t.Errorf("expected a single OK after returning to command state, got %v", calls)
		}
	})

	t.Run("Overrun is cleared", func(t *testing.T) {
		m, tr, _ := newModem(t)
		tr.SetOverrun()
		m.Poll()
		if tr.Overrun() {
			t.Error("overrun flag should be cleared")
		}
	})
}

func TestTimeouts(t *testing.T) {
	t.Run("Command timeout aborts the command", func(t *testing.T) {
		m, _, clock := newModem(t)
		rec := &recorder{}
		_ = m.SendCommand(modem.Command{Text: "+CGMI", Callback: rec.callback, Timeout: 300 * time.Millisecond})

		clock.Advance(300 * time.Millisecond)
		m.Poll()
		if !m.Busy() {
			t.Fatal("command should still be outstanding at the deadline")
		}

		clock.Advance(time.Millisecond)
		m.Poll()
		if m.Busy() {
			t.Error("command should be aborted after the deadline")
		}
		if calls := rec.get(); len(calls) != 1 || calls[0].code != at.ResultNone {
			t.Errorf("expected one abort callback, got %v", calls)
		}
	})

	t.Run("Zero timeout waits forever", func(t *testing.T) {
		m, _, clock := newModem(t)
		_ = m.SendCommand(modem.Command{Text: "+CGMI"})

		clock.Advance(time.Hour)
		m.Poll()
		if !m.Busy() {
			t.Error("command without timeout should stay outstanding")
		}
	})

	t.Run("Inter-octet timeout drops the partial frame", func(t *testing.T) {
		m, tr, clock := newModem(t)
		rec := &recorder{}
		_ = m.SendCommand(modem.Command{Text: "+CGMI", Callback: rec.callback})

		tr.SendData("\r\nAC")
		m.Poll()
		clock.Advance(101 * time.Millisecond)
		m.Poll()

		if m.Busy() {
			t.Error("stalled frame should abort the command")
		}
		if calls := rec.get(); len(calls) != 1 || calls[0].code != at.ResultNone {
			t.Fatalf("expected one abort callback, got %v", calls)
		}

		rec2 := &recorder{}
		_ = m.SendCommand(modem.Command{Text: "", Callback: rec2.callback})
		tr.SendData("\r\nOK\r\n")
		m.Poll()
		if calls := rec2.get(); len(calls) != 1 || calls[0].code != at.ResultOK {
			t.Errorf("parser should start from a clean header, got %v", calls)
		}
	})

	t.Run("Inter-octet timer stops between frames", func(t *testing.T) {
		m, tr, clock := newModem(t)
		_ = m.SendCommand(modem.Command{Text: "+CGMI"})

		tr.SendData("\r\nACME\r\n")
		m.Poll()
		clock.Advance(time.Second)
		m.Poll()
		if !m.Busy() {
			t.Error("a completed frame must not arm the inter-octet timeout")
		}
	})
}

func TestAbortCommand(t *testing.T) {
	t.Run("Outstanding command sees ResultNone once", func(t *testing.T) {
		m, _, _ := newModem(t)
		rec := &recorder{}
		_ = m.SendCommand(modem.Command{Text: "+CGMI", Callback: rec.callback, Arg: "x"})

		if err := m.AbortCommand(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := m.AbortCommand(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if calls := rec.get(); len(calls) != 1 || calls[0] != (call{at.ResultNone, "", "x"}) {
			t.Errorf("expected one abort callback, got %v", calls)
		}
		if m.Busy() {
			t.Error("abort should clear busy")
		}
	})

	t.Run("Closed modem", func(t *testing.T) {
		m, _, _ := newModem(t)
		_ = m.Close()
		if err := m.AbortCommand(); !errors.Is(err, modem.ErrAlreadyClosed) {
			t.Errorf("expected ErrAlreadyClosed, got: %v", err)
		}
	})
}

func TestSendCommandWait(t *testing.T) {
	tests := []struct {
		name     string
		response string
		check    func(t *testing.T, err error)
	}{
		{
			name:     "OK returns nil",
			response: "\r\nOK\r\n",
			check: func(t *testing.T, err error) {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			},
		},
		{
			name:     "ERROR fails the command",
			response: "\r\nERROR\r\n",
			check: func(t *testing.T, err error) {
				if !errors.Is(err, modem.ErrCommandFailed) {
					t.Errorf("expected ErrCommandFailed, got: %v", err)
				}
			},
		},
		{
			name:     "CME error keeps the cause",
			response: "\r\n+CME ERROR: 10\r\n",
			check: func(t *testing.T, err error) {
				if !errors.Is(err, modem.ErrCommandFailed) || !strings.Contains(err.Error(), "+CME ERROR: 10") {
					t.Errorf("expected ErrCommandFailed with the cause, got: %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, tr, _ := newModem(t)
			runLoop(t, m)

			go func() {
				waitBusy(t, m)
				tr.SendData(tt.response)
			}()

			err := m.SendCommandWait(context.Background(), modem.Command{Text: "+CPIN?"}, 0)
			tt.check(t, err)
			if m.Busy() {
				t.Error("terminal result should clear busy")
			}
		})
	}

	t.Run("Abort unblocks the caller", func(t *testing.T) {
		m, _, _ := newModem(t)
		go func() {
			waitBusy(t, m)
			_ = m.AbortCommand()
		}()

		err := m.SendCommandWait(context.Background(), modem.Command{Text: "+COPS=?"}, 0)
		if !errors.Is(err, modem.ErrCommandAborted) {
			t.Errorf("expected ErrCommandAborted, got: %v", err)
		}
	})

	t.Run("Command timeout unblocks the caller", func(t *testing.T) {
		m, _, clock := newModem(t)
		runLoop(t, m)
		go func() {
			waitBusy(t, m)
			clock.Advance(time.Second)
		}()

		err := m.SendCommandWait(context.Background(), modem.Command{Text: "+CGMI", Timeout: 300 * time.Millisecond}, 0)
		if !errors.Is(err, modem.ErrCommandAborted) {
			t.Errorf("expected ErrCommandAborted, got: %v", err)
		}
	})

	t.Run("Cancelled context aborts the command", func(t *testing.T) {
		m, _, _ := newModem(t)
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			waitBusy(t, m)
			cancel()
		}()

		err := m.SendCommandWait(ctx, modem.Command{Text: "+CGMI"}, 0)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got: %v", err)
		}
		if m.Busy() {
			t.Error("cancelled command should be aborted")
		}
	})

	t.Run("Slot wait times out", func(t *testing.T) {
		m, _, _ := newModem(t)
		first := make(chan error, 1)
		go func() {
			first <- m.SendCommandWait(context.Background(), modem.Command{Text: "+CGMI"}, 0)
		}()
		waitBusy(t, m)

		err := m.SendCommandWait(context.Background(), modem.Command{Text: "+CGMM"}, 20*time.Millisecond)
		if !errors.Is(err, modem.ErrBusy) {
			t.Errorf("expected ErrBusy, got: %v", err)
		}

		_ = m.AbortCommand()
		if err := <-first; !errors.Is(err, modem.ErrCommandAborted) {
			t.Errorf("expected ErrCommandAborted, got: %v", err)
		}
	})

	t.Run("Slot is released after completion", func(t *testing.T) {
		m, tr, _ := newModem(t)
		runLoop(t, m)

		for _, text := range []string{"+CGMI", "+CGMM", "+CGMR"} {
			go func() {
				waitBusy(t, m)
				tr.SendData("\r\nOK\r\n")
			}()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			err := m.SendCommandWait(ctx, modem.Command{Text: text}, 100*time.Millisecond)
			cancel()
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", text, err)
			}
		}
	})

	t.Run("Slot is released after a transmit failure", func(t *testing.T) {
		m, tr, _ := newModem(t, func(b *modem.ConfigBuilder) {
			b.WithTxTimeout(5 * time.Millisecond)
		})
		tr.LimitTx(0)

		err := m.SendCommandWait(context.Background(), modem.Command{Text: "+CGMI"}, 0)
		if !errors.Is(err, modem.ErrTxFailed) {
			t.Fatalf("expected ErrTxFailed, got: %v", err)
		}

		tr.LimitTx(-1)
		go func() {
			waitBusy(t, m)
			_ = m.AbortCommand()
		}()
		err = m.SendCommandWait(context.Background(), modem.Command{Text: "+CGMI"}, 100*time.Millisecond)
		if !errors.Is(err, modem.ErrCommandAborted) {
			t.Errorf("slot should be free again, got: %v", err)
		}
	})
}

func TestExec(t *testing.T) {
	m, tr, _ := newModem(t)
	runLoop(t, m)

	go func() {
		waitBusy(t, m)
		tr.SendData("\r\nACME\r\n\r\nOK\r\n")
	}()

	resp, err := m.Exec(context.Background(), "+CGMI", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Result != at.ResultOK || resp.Final != "OK" {
		t.Errorf("unexpected result %v %q", resp.Result, resp.Final)
	}
	if len(resp.Lines) != 1 || resp.Lines[0] != "ACME" {
		t.Errorf("expected [ACME], got %v", resp.Lines)
	}
}

func TestLoop(t *testing.T) {
	t.Run("Only one loop runs", func(t *testing.T) {
		rec := &recorder{}
		m, tr, _ := newModem(t, func(b *modem.ConfigBuilder) {
			b.WithUnsolicited(rec.unsolicited)
		})
		tr.SendData("\r\nRING\r\n")
		runLoop(t, m)

		deadline := time.Now().Add(2 * time.Second)
		for len(rec.get()) == 0 {
			if time.Now().After(deadline) {
				t.Fatal("loop never polled")
			}
			time.Sleep(time.Millisecond)
		}

		if err := m.Loop(context.Background()); !errors.Is(err, modem.ErrLoopRunning) {
			t.Errorf("expected ErrLoopRunning, got: %v", err)
		}
	})

	t.Run("Cancelled context stops the loop", func(t *testing.T) {
		m, _, _ := newModem(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := m.Loop(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got: %v", err)
		}
	})

	t.Run("Close stops the loop", func(t *testing.T) {
		m, _, _ := newModem(t)
		done := make(chan error, 1)
		go func() { done <- m.Loop(context.Background()) }()

		_ = m.Close()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected nil, got: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("loop did not stop")
		}
	})
}

func TestClose(t *testing.T) {
	m, tr, _ := newModem(t)
	rec := &recorder{}
	_ = m.SendCommand(modem.Command{Text: "+CGMI", Callback: rec.callback})

	if err := m.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tr.Closed() {
		t.Error("transport should be closed")
	}
	if calls := rec.get(); len(calls) != 1 || calls[0].code != at.ResultNone {
		t.Errorf("outstanding command should be aborted, got %v", calls)
	}
	if err := m.Close(); !errors.Is(err, modem.ErrAlreadyClosed) {
		t.Errorf("expected ErrAlreadyClosed, got: %v", err)
	}
}

func TestSetState(t *testing.T) {
	m, _, _ := newModem(t)
	if err := m.SetState(modem.State(9)); !errors.Is(err, modem.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got: %v", err)
	}
	if err := m.SetState(modem.StateOnlineCommand); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.State() != modem.StateOnlineCommand || m.State().String() != "online-command" {
		t.Errorf("unexpected state %v", m.State())
	}
}

// hookHandler runs fn when a record with the given message is logged. It
// lets a test act in the window between parsing a frame and dispatching it.
type hookHandler struct {
	message string
	mu      sync.Mutex
	fn      func()
}

func (h *hookHandler) set(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fn = fn
}

func (h *hookHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *hookHandler) Handle(_ context.Context, r slog.Record) error {
	if r.Message != h.message {
		return nil
	}
	h.mu.Lock()
	fn := h.fn
	h.fn = nil
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

func (h *hookHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *hookHandler) WithGroup(string) slog.Handler      { return h }

func TestAbortDuringDispatch(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "Terminal frame after abort is dropped", response: "\r\nOK\r\n"},
		{name: "Information frame after abort is dropped", response: "\r\nACME\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook := &hookHandler{message: "received"}
			m, tr, _ := newModem(t, func(b *modem.ConfigBuilder) {
				b.WithLogger(slog.New(hook))
			})
			hook.set(func() { _ = m.AbortCommand() })

			rec := &recorder{}
			if err := m.SendCommand(modem.Command{Text: "+CGMI", Callback: rec.callback}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tr.SendData(tt.response)
			m.Poll()

			calls := rec.get()
			if len(calls) != 1 || calls[0].code != at.ResultNone {
				t.Fatalf("expected exactly one ResultNone callback, got %v", calls)
			}
			if m.Busy() {
				t.Error("abort should clear busy")
			}
		})
	}

	t.Run("Exec reports the abort consistently", func(t *testing.T) {
		hook := &hookHandler{message: "received"}
		m, tr, _ := newModem(t, func(b *modem.ConfigBuilder) {
			b.WithLogger(slog.New(hook))
		})
		hook.set(func() { _ = m.AbortCommand() })

		type result struct {
			resp modem.Response
			err  error
		}
		done := make(chan result, 1)
		go func() {
			resp, err := m.Exec(context.Background(), "+CGMI", 0)
			done <- result{resp, err}
		}()
		waitBusy(t, m)

		tr.SendData("\r\nOK\r\n")
		m.Poll()

		r := <-done
		if !errors.Is(r.err, modem.ErrCommandAborted) {
			t.Fatalf("expected ErrCommandAborted, got: %v", r.err)
		}
		if r.resp.Result != at.ResultNone || len(r.resp.Lines) != 0 {
			t.Errorf("aborted response should carry no frames, got %+v", r.resp)
		}
	})

	t.Run("Abort from an information callback waits for it", func(t *testing.T) {
		m, tr, _ := newModem(t)
		var (
			mu    sync.Mutex
			codes []at.ResultCode
		)
		cb := func(code at.ResultCode, _ string, _ any) error {
			mu.Lock()
			codes = append(codes, code)
			mu.Unlock()
			if code == at.ResultNotRecognized {
				_ = m.AbortCommand()
			}
			return nil
		}
		_ = m.SendCommand(modem.Command{Text: "+CGMI", Callback: cb})

		tr.SendData("\r\nACME\r\n\r\nOK\r\n")
		m.Poll()

		mu.Lock()
		defer mu.Unlock()
		if len(codes) != 2 || codes[0] != at.ResultNotRecognized || codes[1] != at.ResultNone {
			t.Errorf("expected ACME then NONE, got %v", codes)
		}
		if m.Busy() {
			t.Error("abort should clear busy")
		}
	})

	t.Run("Abort from a terminal callback is a no-op", func(t *testing.T) {
		m, tr, _ := newModem(t)
		rec := &recorder{}
		cb := func(code at.ResultCode, text string, arg any) error {
			_ = m.AbortCommand()
			return rec.callback(code, text, arg)
		}
		_ = m.SendCommand(modem.Command{Text: "+CGMI", Callback: cb})

		tr.SendData("\r\nOK\r\n")
		m.Poll()

		calls := rec.get()
		if len(calls) != 1 || calls[0].code != at.ResultOK {
			t.Errorf("expected a single OK, got %v", calls)
		}
	})
}
