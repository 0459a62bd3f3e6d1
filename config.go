package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"i4.energy/across/gsmlink/serial"
	"i4.energy/across/gsmlink/uart"
)

const (
	BackendBugst    = "bugst"
	BackendTarm     = "tarm"
	BackendEmulator = "emulator"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string
	// SerialPort is the path to the modem's serial port (e.g. "/dev/ttyUSB0")
	SerialPort string
	// SerialBackend selects how the serial port is opened ("bugst", "tarm"
	// or "emulator")
	SerialBackend string
	// BaudRate is the baud rate for serial communication with the modem (e.g. 9600)
	BaudRate int
	// DataBits is 7 or 8
	DataBits int
	// Parity is "none", "even" or "odd"
	Parity string
	// StopBits is 1 or 2
	StopBits int
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string
	// TaskPeriod is the polling period of the protocol task
	TaskPeriod time.Duration
	// CommandTimeout bounds commands that do not specify their own timeout
	CommandTimeout time.Duration
	// MQTTBroker enables the MQTT bridge when set (e.g. "tcp://localhost:1883")
	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string
	MQTTUsername string
	// MQTTPassword is read from MQTT_PASSWORD only, never from a flag
	MQTTPassword string
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.SerialBackend = BackendBugst
		c.BaudRate = serial.DefaultBaudRate
		c.DataBits = serial.DataBits8
		c.Parity = "none"
		c.StopBits = 1
		c.LogLevel = "info"
		c.TaskPeriod = 50 * time.Millisecond
		c.CommandTimeout = 300 * time.Millisecond
		c.MQTTTopic = "gsmlink"
		c.MQTTClientID = "gsmlink-1"
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if port := os.Getenv("SERIAL_PORT"); port != "" {
			c.SerialPort = port
		}

		if backend := os.Getenv("SERIAL_BACKEND"); backend != "" {
			c.SerialBackend = backend
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if bits := os.Getenv("DATA_BITS"); bits != "" {
			if b, err := strconv.Atoi(bits); err == nil {
				c.DataBits = b
			}
		}

		if parity := os.Getenv("PARITY"); parity != "" {
			c.Parity = parity
		}

		if stop := os.Getenv("STOP_BITS"); stop != "" {
			if s, err := strconv.Atoi(stop); err == nil {
				c.StopBits = s
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if period := os.Getenv("TASK_PERIOD"); period != "" {
			if d, err := time.ParseDuration(period); err == nil {
				c.TaskPeriod = d
			}
		}

		if timeout := os.Getenv("COMMAND_TIMEOUT"); timeout != "" {
			if d, err := time.ParseDuration(timeout); err == nil {
				c.CommandTimeout = d
			}
		}

		if broker := os.Getenv("MQTT_BROKER"); broker != "" {
			c.MQTTBroker = broker
		}

		if topic := os.Getenv("MQTT_TOPIC"); topic != "" {
			c.MQTTTopic = topic
		}

		if id := os.Getenv("MQTT_CLIENT_ID"); id != "" {
			c.MQTTClientID = id
		}

		if user := os.Getenv("MQTT_USERNAME"); user != "" {
			c.MQTTUsername = user
		}

		if pass := os.Getenv("MQTT_PASSWORD"); pass != "" {
			c.MQTTPassword = pass
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "serial-backend":
				c.SerialBackend = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "data-bits":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.DataBits = b
				}
			case "parity":
				c.Parity = f.Value.String()
			case "stop-bits":
				if s, err := strconv.Atoi(f.Value.String()); err == nil {
					c.StopBits = s
				}
			case "log-level":
				c.LogLevel = f.Value.String()
			case "task-period":
				if d, err := time.ParseDuration(f.Value.String()); err == nil {
					c.TaskPeriod = d
				}
			case "command-timeout":
				if d, err := time.ParseDuration(f.Value.String()); err == nil {
					c.CommandTimeout = d
				}
			case "mqtt-broker":
				c.MQTTBroker = f.Value.String()
			case "mqtt-topic":
				c.MQTTTopic = f.Value.String()
			case "mqtt-client-id":
				c.MQTTClientID = f.Value.String()
			case "mqtt-username":
				c.MQTTUsername = f.Value.String()
			}
		})
		return nil
	}
}

// SerialConfig converts the line settings for the serial package.
func (c *Config) SerialConfig() (serial.Config, error) {
	if c.BaudRate <= 0 {
		return serial.Config{}, fmt.Errorf("invalid baud rate %d", c.BaudRate)
	}
	sc := serial.Config{
		BaudRate: uint32(c.BaudRate),
		DataBits: c.DataBits,
	}

	switch strings.ToLower(c.Parity) {
	case "none", "n":
		sc.Parity = uart.ParityNone
	case "even", "e":
		sc.Parity = uart.ParityEven
	case "odd", "o":
		sc.Parity = uart.ParityOdd
	default:
		return serial.Config{}, fmt.Errorf("invalid parity %q", c.Parity)
	}

	switch c.StopBits {
	case 1:
		sc.StopBits = uart.StopBits1
	case 2:
		sc.StopBits = uart.StopBits2
	default:
		return serial.Config{}, fmt.Errorf("invalid stop bits %d", c.StopBits)
	}

	if _, err := sc.Line(); err != nil {
		return serial.Config{}, err
	}
	return sc, nil
}
