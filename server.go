package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"i4.energy/across/gsmlink/at"
	"i4.energy/across/gsmlink/gsm"
	"i4.energy/across/gsmlink/modem"
)

// Server handles incoming HTTP requests for interacting with the
// configured modem instance
type Server struct {
	Logger *slog.Logger
	Modem  gsm.Commander
	// CommandTimeout applies when a request does not set timeout_ms
	CommandTimeout time.Duration

	mu           sync.RWMutex
	identity     *gsm.Identity
	registration *gsm.Registration
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /at", s.handleCommand)
	mux.HandleFunc("GET /identity", s.handleIdentity)
	mux.HandleFunc("GET /registration", s.handleRegistration)
	mux.ServeHTTP(w, r)
}

// SetIdentity caches the DCE identity served on /identity.
func (s *Server) SetIdentity(id gsm.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = &id
}

// HandleUnsolicited tracks +CREG reports for /registration.
func (s *Server) HandleUnsolicited(_ at.ResultCode, text string) {
	if !gsm.IsRegistration(text) {
		return
	}
	reg, err := gsm.ParseRegistration(text)
	if err != nil {
		s.Logger.Warn("Ignoring registration report", "text", text, "error", err)
		return
	}
	s.mu.Lock()
	s.registration = &reg
	s.mu.Unlock()
	s.Logger.Info("Network registration changed", "status", reg.Status.String(), "lac", reg.LAC, "cell_id", reg.CellID)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) sendJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// CommandRequest is the body of POST /at.
type CommandRequest struct {
	Command   string `json:"command"`
	TimeoutMS int    `json:"timeout_ms,omitempty"`
}

// CommandResponse reports the outcome of one command.
type CommandResponse struct {
	Result string   `json:"result"`
	Lines  []string `json:"lines"`
}

// commandText strips an "AT" prefix the caller may have included and
// rejects line terminators, which would inject a second command.
func commandText(cmd string) (string, error) {
	if strings.ContainsAny(cmd, "\r\n") {
		return "", errors.New("command must not contain line terminators")
	}
	if len(cmd) >= len(at.Prefix) && strings.EqualFold(cmd[:len(at.Prefix)], at.Prefix) {
		cmd = cmd[len(at.Prefix):]
	}
	return cmd, nil
}

// handleCommand relays one AT command to the modem and returns its
// information text and result code
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	text, err := commandText(req.Command)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	timeout := s.CommandTimeout
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}

	resp, err := s.Modem.Exec(r.Context(), text, timeout)
	switch {
	case err == nil, errors.Is(err, modem.ErrCommandFailed):
		// The DCE answered; ERROR is a valid result for the caller.
	case errors.Is(err, modem.ErrBufferFull), errors.Is(err, modem.ErrInvalidCommand):
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, modem.ErrBusy), errors.Is(err, modem.ErrWrongState):
		s.sendError(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, modem.ErrCommandAborted):
		s.sendError(w, err.Error(), http.StatusGatewayTimeout)
		return
	default:
		s.Logger.Error("Failed to execute command", "error", err, "command", text)
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.Logger.Info("Command executed", "command", text, "result", resp.Final)
	lines := resp.Lines
	if lines == nil {
		lines = []string{}
	}
	s.sendJSON(w, CommandResponse{Result: resp.Final, Lines: lines})
}

func (s *Server) handleIdentity(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	id := s.identity
	s.mu.RUnlock()

	if id == nil {
		s.sendError(w, "identity not available", http.StatusServiceUnavailable)
		return
	}
	s.sendJSON(w, id)
}

func (s *Server) handleRegistration(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	reg := s.registration
	s.mu.RUnlock()

	if reg == nil {
		s.sendError(w, "no registration report received", http.StatusServiceUnavailable)
		return
	}

	type RegistrationResponse struct {
		gsm.Registration
		Description string `json:"description"`
		Registered  bool   `json:"registered"`
	}
	s.sendJSON(w, RegistrationResponse{
		Registration: *reg,
		Description:  reg.Status.String(),
		Registered:   reg.Status.Registered(),
	})
}
