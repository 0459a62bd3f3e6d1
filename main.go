package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"i4.energy/across/gsmlink/at"
	"i4.energy/across/gsmlink/gsm"
	"i4.energy/across/gsmlink/modem"
)

func main() {
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port to connect to the modem")
	flag.String("serial-backend", BackendBugst, "Serial backend (bugst, tarm, emulator)")
	flag.Int("baud-rate", 9600, "Baud rate for serial communication")
	flag.Int("data-bits", 8, "Data bits (7 or 8)")
	flag.String("parity", "none", "Parity (none, even, odd)")
	flag.Int("stop-bits", 1, "Stop bits (1 or 2)")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Duration("task-period", 50*time.Millisecond, "Polling period of the AT protocol task")
	flag.Duration("command-timeout", 300*time.Millisecond, "Default AT command timeout")
	flag.String("mqtt-broker", "", "MQTT broker URL, empty disables the bridge")
	flag.String("mqtt-topic", "gsmlink", "MQTT topic prefix")
	flag.String("mqtt-client-id", "gsmlink-1", "MQTT client ID")
	flag.String("mqtt-username", "", "MQTT username (password from MQTT_PASSWORD)")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	dialer, err := newDialer(config, logger)
	if err != nil {
		logger.Error("Failed to configure serial line", "error", err)
		os.Exit(1)
	}

	server := &Server{
		Logger:         logger.With("component", "server"),
		CommandTimeout: config.CommandTimeout,
	}

	var bridge *Bridge
	if config.MQTTBroker != "" {
		bridge = NewBridge(config, logger.With("component", "mqtt"))
	}

	unsolicited := func(code at.ResultCode, text string) {
		logger.Info("Unsolicited result code", "code", code.String(), "text", text)
		server.HandleUnsolicited(code, text)
		if bridge != nil {
			bridge.Unsolicited(code, text)
		}
	}

	modemConfig, err := modem.NewConfigBuilder().
		WithDialer(dialer).
		WithLogger(logger.With("component", "modem")).
		WithTaskPeriod(config.TaskPeriod).
		WithUnsolicited(unsolicited).
		Build()
	if err != nil {
		logger.Error("Failed to create modem config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, err := modem.New(ctx, modemConfig)
	if err != nil {
		logger.Error("Failed to create modem", "error", err)
		os.Exit(1)
	}
	server.Modem = m

	if bridge != nil {
		bridge.Modem = m
		if err := bridge.Start(ctx); err != nil {
			logger.Error("Failed to connect to MQTT broker", "error", err)
		}
	}

	go func() {
		if err := m.Loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Modem loop stopped", "error", err)
		}
	}()

	g := gsm.New(m, gsm.WithLogger(logger.With("component", "gsm")), gsm.WithTimeout(config.CommandTimeout))
	if err := initModem(ctx, g, server); err != nil {
		logger.Error("Modem initialization incomplete", "error", err)
	}

	logger.Info("Starting GSM link", "port", config.SerialPort, "backend", config.SerialBackend)

	httpServer := &http.Server{
		Addr:    config.BindAddress,
		Handler: server,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
	}

	cancel()
	logger.Info("Closing modem connection")
	if err := m.Close(); err != nil {
		logger.Error("Failed to close modem", "error", err)
		os.Exit(1)
	}
}

// initModem brings the DCE into a known state and caches its identity.
func initModem(ctx context.Context, g *gsm.Modem, server *Server) error {
	if err := g.Init(ctx); err != nil {
		return err
	}
	id, err := g.Identity(ctx)
	if err != nil {
		return err
	}
	server.SetIdentity(id)
	server.Logger.Info("Modem identified", "manufacturer", id.Manufacturer, "model", id.Model, "imei", id.IMEI)
	return g.SetRegistrationReporting(ctx, gsm.ReportingWithLocation)
}
