package serial_test

import (
	"errors"
	"testing"

	"go.uber.org/mock/gomock"
	"i4.energy/across/gsmlink/serial"
	"i4.energy/across/gsmlink/uart"
)

// driver wraps the generated mock and keeps what the port hands over, so a
// test can act as the peripheral: write into the armed buffer and run the
// callbacks.
type driver struct {
	*serial.MockDriver
	callbacks map[uart.CallbackKind]uart.Callback
	armed     []byte
}

func (d *driver) fire(kind uart.CallbackKind) {
	d.callbacks[kind]()
}

func openPort(t *testing.T, ctrl *gomock.Controller, cfg serial.Config, opts ...serial.Option) (*serial.Port, *driver) {
	t.Helper()

	d := &driver{
		MockDriver: serial.NewMockDriver(ctrl),
		callbacks:  make(map[uart.CallbackKind]uart.Callback),
	}
	line, err := cfg.Line()
	if err != nil {
		t.Fatalf("unexpected error from Line(): %v", err)
	}

	gomock.InOrder(
		d.EXPECT().Setup(line).Return(nil),
		d.EXPECT().SetupTxDMA(false).Return(nil),
		d.EXPECT().SetupRxDMA(true).Return(nil),
		d.EXPECT().RegisterCallback(gomock.Any(), gomock.Any()).Times(5).DoAndReturn(
			func(kind uart.CallbackKind, fn uart.Callback) error {
				d.callbacks[kind] = fn
				return nil
			}),
		d.EXPECT().ReceiveDMAToIdle(gomock.Any()).DoAndReturn(func(p []byte) error {
			d.armed = p
			return nil
		}),
	)

	p, err := serial.Open(d, cfg, opts...)
	if err != nil {
		t.Fatalf("unexpected error from Open(): %v", err)
	}
	return p, d
}

func TestConfigLine(t *testing.T) {
	tests := []struct {
		name     string
		cfg      serial.Config
		word     uart.WordLength
		expected error
	}{
		{"8N1 uses an 8-bit word", serial.DefaultConfig(), uart.WordLength8, nil},
		{"8 bits with parity use a 9-bit word",
			serial.Config{BaudRate: 9600, DataBits: 8, Parity: uart.ParityEven}, uart.WordLength9, nil},
		{"7 bits with parity use an 8-bit word",
			serial.Config{BaudRate: 9600, DataBits: 7, Parity: uart.ParityOdd}, uart.WordLength8, nil},
		{"7 bits without parity are rejected",
			serial.Config{BaudRate: 9600, DataBits: 7}, 0, serial.ErrInvalidConfig},
		{"5 data bits are rejected",
			serial.Config{BaudRate: 9600, DataBits: 5}, 0, serial.ErrInvalidConfig},
		{"Zero baud rate is rejected",
			serial.Config{DataBits: 8}, 0, serial.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := tt.cfg.Line()
			if !errors.Is(err, tt.expected) {
				t.Fatalf("expected error %v, got: %v", tt.expected, err)
			}
			if err == nil && line.WordLength != tt.word {
				t.Errorf("expected word length %v, got %v", tt.word, line.WordLength)
			}
		})
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := serial.Open(serial.NewMockDriver(ctrl), serial.Config{BaudRate: 9600, DataBits: 7})
	if !errors.Is(err, serial.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got: %v", err)
	}
}

func TestPortTransmit(t *testing.T) {
	t.Run("Idle port starts a transfer immediately", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		p, d := openPort(t, ctrl, serial.DefaultConfig())
		d.EXPECT().TransmitDMA([]byte("AT\r")).Return(nil)

		if n := p.Tx([]byte("AT\r")); n != 3 {
			t.Errorf("expected 3 queued, got %d", n)
		}
	})

	t.Run("Completion chains the queued bytes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		p, d := openPort(t, ctrl, serial.DefaultConfig())
		gomock.InOrder(
			d.EXPECT().TransmitDMA([]byte("AT")).Return(nil),
			d.EXPECT().TransmitDMA([]byte("I\r")).Return(nil),
		)

		p.Tx([]byte("AT"))
		p.Tx([]byte("I\r"))
		if got := p.Queued(); got != 4 {
			t.Errorf("expected 4 queued, got %d", got)
		}

		d.fire(uart.CallbackTxComplete)
		d.fire(uart.CallbackTxComplete)

		if got := p.Queued(); got != 0 {
			t.Errorf("expected empty queue, got %d", got)
		}
	})

	t.Run("Chunks stop at the end of the buffer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		p, d := openPort(t, ctrl, serial.DefaultConfig(), serial.WithQueueSizes(8, 8))
		gomock.InOrder(
			d.EXPECT().TransmitDMA([]byte("abcdef")).Return(nil),
			d.EXPECT().TransmitDMA([]byte("gh")).Return(nil),
			d.EXPECT().TransmitDMA([]byte("ijk")).Return(nil),
		)

		p.Tx([]byte("abcdef"))
		d.fire(uart.CallbackTxComplete)
		p.Tx([]byte("ghijk"))
		d.fire(uart.CallbackTxComplete)
		d.fire(uart.CallbackTxComplete)
	})

	t.Run("Partial write returns the free space", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		p, d := openPort(t, ctrl, serial.DefaultConfig(), serial.WithQueueSizes(4, 8))
		d.EXPECT().TransmitDMA([]byte("abcd")).Return(nil)

		if n := p.Tx([]byte("abcdef")); n != 4 {
			t.Errorf("expected 4 queued, got %d", n)
		}
		if n := p.Tx([]byte("x")); n != 0 {
			t.Errorf("expected nothing queued on a full buffer, got %d", n)
		}
	})

	t.Run("Aborted transfer resumes after the sent bytes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		p, d := openPort(t, ctrl, serial.DefaultConfig())
		gomock.InOrder(
			d.EXPECT().TransmitDMA([]byte("hello")).Return(nil),
			d.EXPECT().Receiving().Return(true),
			d.EXPECT().Transmitting().Return(false),
			d.EXPECT().RemainingTx().Return(3),
			d.EXPECT().TransmitDMA([]byte("llo")).Return(nil),
		)

		p.Tx([]byte("hello"))
		d.fire(uart.CallbackError)
	})

	t.Run("Driver failure leaves the bytes queued", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		p, d := openPort(t, ctrl, serial.DefaultConfig())
		gomock.InOrder(
			d.EXPECT().TransmitDMA([]byte("AT")).Return(uart.ErrBusy),
			d.EXPECT().TransmitDMA([]byte("AT\r")).Return(nil),
		)

		p.Tx([]byte("AT"))
		p.Tx([]byte("\r"))
	})
}

func TestPortReceive(t *testing.T) {
	t.Run("Idle line delivers captured bytes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		p, d := openPort(t, ctrl, serial.DefaultConfig())
		copy(d.armed, "\r\nOK\r\n")
		d.EXPECT().RemainingRx().Return(serial.DefaultQueueSize - 6)
		d.fire(uart.CallbackRxIdle)

		if got := p.Buffered(); got != 6 {
			t.Errorf("expected 6 buffered, got %d", got)
		}
		buf := make([]byte, 32)
		n := p.Rx(buf)
		if got := string(buf[:n]); got != "\r\nOK\r\n" {
			t.Errorf("expected %q, got %q", "\r\nOK\r\n", got)
		}
	})

	t.Run("Overrun keeps the newest bytes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		p, d := openPort(t, ctrl, serial.DefaultConfig(), serial.WithQueueSizes(8, 8))
		gomock.InOrder(
			d.EXPECT().RemainingRx().Return(4),
			d.EXPECT().RemainingRx().Return(5),
		)

		copy(d.armed, "abcd")
		d.fire(uart.CallbackRxHalfComplete)
		copy(d.armed[4:], "efgh")
		d.fire(uart.CallbackRxComplete)
		copy(d.armed, "ijk")
		d.fire(uart.CallbackRxIdle)

		if !p.Overrun() {
			t.Error("overrun should be flagged by the producer")
		}

		buf := make([]byte, 16)
		n := p.Rx(buf)
		if got := string(buf[:n]); got != "defghijk" {
			t.Errorf("expected %q, got %q", "defghijk", got)
		}

		p.ClearOverrun()
		if p.Overrun() {
			t.Error("overrun should be cleared")
		}
	})

	t.Run("Parity bit is masked off 7-bit data", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cfg := serial.Config{BaudRate: 9600, DataBits: 7, StopBits: uart.StopBits1, Parity: uart.ParityEven}
		p, d := openPort(t, ctrl, cfg)
		d.armed[0] = 0xC1
		d.EXPECT().RemainingRx().Return(serial.DefaultQueueSize - 1)
		d.fire(uart.CallbackRxIdle)

		buf := make([]byte, 1)
		if n := p.Rx(buf); n != 1 || buf[0] != 0x41 {
			t.Errorf("expected 0x41, got %#x (n=%d)", buf[0], n)
		}
	})

	t.Run("Reception restarts behind a fault", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		p, d := openPort(t, ctrl, serial.DefaultConfig(), serial.WithQueueSizes(8, 16))
		full := d.armed

		gomock.InOrder(
			d.EXPECT().Receiving().Return(false),
			d.EXPECT().RemainingRx().Return(13),
			d.EXPECT().ReceiveDMAToIdle(gomock.Any()).DoAndReturn(func(b []byte) error {
				if len(b) != 13 {
					t.Errorf("expected reception re-armed over 13 bytes, got %d", len(b))
				}
				d.armed = b
				return nil
			}),
			d.EXPECT().AbortReceive().Return(nil),
			d.EXPECT().ReceiveDMAToIdle(gomock.Any()).DoAndReturn(func(b []byte) error {
				if len(b) != 16 {
					t.Errorf("expected reception re-armed over the full buffer, got %d", len(b))
				}
				return nil
			}),
		)

		copy(full, "abc")
		d.fire(uart.CallbackError)

		buf := make([]byte, 16)
		if n := p.Rx(buf); string(buf[:n]) != "abc" {
			t.Errorf("expected %q, got %q", "abc", buf[:n])
		}

		copy(d.armed, "0123456789012")
		d.fire(uart.CallbackRxComplete)

		if n := p.Rx(buf); string(buf[:n]) != "0123456789012" {
			t.Errorf("expected %q, got %q", "0123456789012", buf[:n])
		}
	})
}

func TestPortSetBaudRate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, d := openPort(t, ctrl, serial.DefaultConfig())

	line, _ := serial.DefaultConfig().Line()
	line.BaudRate = 115200
	d.EXPECT().Setup(line).Return(nil)

	if err := p.SetBaudRate(115200); err != nil {
		t.Fatalf("unexpected error from SetBaudRate(): %v", err)
	}
	if got := p.Config().BaudRate; got != 115200 {
		t.Errorf("expected 115200, got %d", got)
	}
	if err := p.SetBaudRate(0); !errors.Is(err, serial.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got: %v", err)
	}
}

func TestPorts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ports := serial.NewPorts(2)

	if _, err := ports.Get(2); !errors.Is(err, serial.ErrInvalidPort) {
		t.Errorf("expected ErrInvalidPort, got: %v", err)
	}
	if _, err := ports.Tx(1, []byte("x")); !errors.Is(err, serial.ErrPortClosed) {
		t.Errorf("expected ErrPortClosed, got: %v", err)
	}

	d := &driver{MockDriver: serial.NewMockDriver(ctrl), callbacks: map[uart.CallbackKind]uart.Callback{}}
	d.EXPECT().Setup(gomock.Any()).Return(nil)
	d.EXPECT().SetupTxDMA(false).Return(nil)
	d.EXPECT().SetupRxDMA(true).Return(nil)
	d.EXPECT().RegisterCallback(gomock.Any(), gomock.Any()).Times(5).Return(nil)
	d.EXPECT().ReceiveDMAToIdle(gomock.Any()).Return(nil)
	d.EXPECT().TransmitDMA([]byte("AT\r")).Return(nil)
	d.EXPECT().AbortReceive().Return(nil)

	if _, err := ports.Open(1, d, serial.DefaultConfig()); err != nil {
		t.Fatalf("unexpected error from Open(): %v", err)
	}
	if _, err := ports.Open(1, d, serial.DefaultConfig()); !errors.Is(err, serial.ErrPortInUse) {
		t.Errorf("expected ErrPortInUse, got: %v", err)
	}

	n, err := ports.Tx(1, []byte("AT\r"))
	if err != nil || n != 3 {
		t.Errorf("expected 3 queued, got %d (%v)", n, err)
	}
	n, err = ports.Rx(1, make([]byte, 4))
	if err != nil || n != 0 {
		t.Errorf("expected nothing received, got %d (%v)", n, err)
	}

	if err := ports.Close(1); err != nil {
		t.Errorf("unexpected error from Close(): %v", err)
	}
	if err := ports.Close(1); !errors.Is(err, serial.ErrPortClosed) {
		t.Errorf("expected ErrPortClosed, got: %v", err)
	}
}
