// Package api exposes the tool registry and the LLM forwarder over HTTP.
// It shares all semantics with the stdio RPC transport; only the framing
// differs.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"toolbridge/internal/chat"
	apperrors "toolbridge/internal/errors"
	"toolbridge/internal/tools"
)

// Server routes HTTP requests to the dispatch table and the forwarder.
// The forwarder may be nil when no API key is configured; the /llm
// endpoints then answer 503 while the tool endpoints keep working.
type Server struct {
	registry  *tools.Registry
	forwarder *chat.Forwarder
	version   string
	log       zerolog.Logger
}

// NewServer creates an HTTP server over the given registry and forwarder.
func NewServer(registry *tools.Registry, forwarder *chat.Forwarder, version string, logger zerolog.Logger) *Server {
	return &Server{
		registry:  registry,
		forwarder: forwarder,
		version:   version,
		log:       logger,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /tools", s.handleListTools)
	mux.HandleFunc("POST /tools/call", s.handleCallTool)
	mux.HandleFunc("POST /llm/message", s.handleMessage)
	mux.HandleFunc("POST /llm/message-with-tools", s.handleMessageWithTools)
	return mux
}

// ListenAndServe blocks serving the API on addr. The write timeout leaves
// room for a slow upstream LLM round-trip.
func (s *Server) ListenAndServe(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("HTTP API listening")
	return server.ListenAndServe()
}

type callRequest struct {
	ToolName  string                 `json:"tool_name"`
	Arguments map[string]interface{} `json:"arguments"`
}

type messageRequest struct {
	Message string   `json:"message"`
	Tools   []string `json:"tools,omitempty"`
}

type messageResponse struct {
	Response  string   `json:"response"`
	ToolsUsed []string `json:"tools_used"`
}

type messageWithToolsResponse struct {
	Response       string   `json:"response"`
	AvailableTools []string `json:"available_tools"`
	Message        string   `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRoot(w http.ResponseWriter, req *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "toolbridge API server",
		"version": s.version,
		"status":  "running",
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, req *http.Request) {
	descs := s.registry.Descriptors()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"tools": descs,
		"count": len(descs),
	})
}

func (s *Server) handleCallTool(w http.ResponseWriter, req *http.Request) {
	var call callRequest
	if err := json.NewDecoder(req.Body).Decode(&call); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	// Failed tool calls are still HTTP 200; the envelope carries the
	// failure.
	result := s.registry.Execute(req.Context(), call.ToolName, call.Arguments)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMessage(w http.ResponseWriter, req *http.Request) {
	message, ok := s.decodeMessage(w, req)
	if !ok {
		return
	}

	response, err := s.forwarder.Forward(req.Context(), message.Message)
	if err != nil {
		s.log.Error().Err(err).Msg("LLM forward failed")
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Response: response, ToolsUsed: []string{}})
}

func (s *Server) handleMessageWithTools(w http.ResponseWriter, req *http.Request) {
	message, ok := s.decodeMessage(w, req)
	if !ok {
		return
	}

	descs := s.selectTools(message.Tools)
	response, err := s.forwarder.ForwardWithTools(req.Context(), message.Message, descs)
	if err != nil {
		s.log.Error().Err(err).Msg("LLM forward with tools failed")
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	names := make([]string, 0, len(descs))
	for _, desc := range descs {
		names = append(names, desc.Name)
	}
	s.writeJSON(w, http.StatusOK, messageWithToolsResponse{
		Response:       response,
		AvailableTools: names,
		Message:        "Use the /tools/call endpoint to invoke tools.",
	})
}

// decodeMessage validates the shared preconditions of the /llm endpoints.
func (s *Server) decodeMessage(w http.ResponseWriter, req *http.Request) (*messageRequest, bool) {
	if s.forwarder == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "LLM client is not configured"})
		return nil, false
	}

	var message messageRequest
	if err := json.NewDecoder(req.Body).Decode(&message); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return nil, false
	}
	if message.Message == "" {
		err := apperrors.New(apperrors.CodeValidation, "'message' is required")
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return nil, false
	}
	return &message, true
}

// selectTools filters descriptors down to the requested names, keeping
// registry order. Unknown names are dropped; an empty selection means all
// tools.
func (s *Server) selectTools(requested []string) []tools.Descriptor {
	descs := s.registry.Descriptors()
	if len(requested) == 0 {
		return descs
	}

	wanted := make(map[string]bool, len(requested))
	for _, name := range requested {
		wanted[name] = true
	}
	selected := make([]tools.Descriptor, 0, len(requested))
	for _, desc := range descs {
		if wanted[desc.Name] {
			selected = append(selected, desc)
		}
	}
	return selected
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		s.log.Error().Err(err).Msg("Failed to write response")
	}
}
