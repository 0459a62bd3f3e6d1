package modem

import (
	"io"
	"log/slog"
	"time"

	"i4.energy/across/gsmlink/at"
	"i4.energy/across/gsmlink/timer"
)

const (
	DefaultTaskPeriod        = 50 * time.Millisecond
	DefaultInterOctetTimeout = 100 * time.Millisecond
	DefaultTxTimeout         = time.Second

	// drainChunk is how many bytes Poll pulls from the transport at once.
	drainChunk = 32
)

// UnsolicitedFunc receives frames that arrive while no command is
// outstanding.
type UnsolicitedFunc func(code at.ResultCode, text string)

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

type Config struct {
	Dialer Dialer
	// TaskPeriod is the interval at which Loop polls the transport. It must
	// be shorter than the time the line needs to fill the receive buffer.
	TaskPeriod time.Duration
	// InterOctetTimeout aborts a frame whose bytes stop arriving.
	InterOctetTimeout time.Duration
	// TxTimeout bounds how long SendCommand retries a full transport.
	TxTimeout   time.Duration
	Clock       timer.Clock
	Logger      *slog.Logger
	Unsolicited UnsolicitedFunc
}

func (c *Config) setDefaults() {
	if c.TaskPeriod == 0 {
		c.TaskPeriod = DefaultTaskPeriod
	}
	if c.InterOctetTimeout == 0 {
		c.InterOctetTimeout = DefaultInterOctetTimeout
	}
	if c.TxTimeout == 0 {
		c.TxTimeout = DefaultTxTimeout
	}
	if c.Clock == nil {
		c.Clock = timer.NewSystemClock()
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// ConfigBuilder assembles a Config.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithTaskPeriod(d time.Duration) *ConfigBuilder {
	b.config.TaskPeriod = d
	return b
}

func (b *ConfigBuilder) WithInterOctetTimeout(d time.Duration) *ConfigBuilder {
	b.config.InterOctetTimeout = d
	return b
}

func (b *ConfigBuilder) WithTxTimeout(d time.Duration) *ConfigBuilder {
	b.config.TxTimeout = d
	return b
}

func (b *ConfigBuilder) WithClock(c timer.Clock) *ConfigBuilder {
	b.config.Clock = c
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

func (b *ConfigBuilder) WithUnsolicited(fn UnsolicitedFunc) *ConfigBuilder {
	b.config.Unsolicited = fn
	return b
}

// Build validates the configuration and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}
