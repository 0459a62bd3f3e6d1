package main

import (
	"fmt"
	"log/slog"

	"i4.energy/across/gsmlink/dce"
	"i4.energy/across/gsmlink/modem"
)

// emulatorScript answers the commands the gateway sends on startup.
var emulatorScript = dce.Script{
	"+CGMI":   {"GSMLINK", "OK"},
	"+CGMM":   {"EMULATOR", "OK"},
	"+CGMR":   {"1.0", "OK"},
	"+CGSN":   {"000000000000000", "OK"},
	"+CIMI":   {"001010000000000", "OK"},
	"+CREG=0": {"OK"},
	"+CREG=1": {"OK"},
	"+CREG=2": {"OK"},
	"+CREG?":  {"+CREG: 2,1,\"0001\",\"0001\"", "OK"},
	"+CSQ":    {"+CSQ: 20,99", "OK"},
}

// newDialer picks the transport for the configured backend.
func newDialer(config *Config, logger *slog.Logger) (modem.Dialer, error) {
	line, err := config.SerialConfig()
	if err != nil {
		return nil, err
	}

	switch config.SerialBackend {
	case BackendBugst:
		return modem.SerialDialer{PortName: config.SerialPort, Config: line, Logger: logger}, nil
	case BackendTarm:
		return modem.TarmDialer{PortName: config.SerialPort, Config: line, Logger: logger}, nil
	case BackendEmulator:
		e := dce.New(dce.WithEcho(true), dce.WithScript(emulatorScript), dce.WithLogger(logger))
		return modem.LineDialer{Line: e, Config: line, Logger: logger}, nil
	}
	return nil, fmt.Errorf("unknown serial backend %q", config.SerialBackend)
}
