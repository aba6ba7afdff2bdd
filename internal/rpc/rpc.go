// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package rpc implements the line-oriented JSON-RPC transport: one JSON
// request object per input line, one response object per output line, no
// batching and no session state.
package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	apperrors "toolbridge/internal/errors"
	"toolbridge/internal/tools"
)

// JSON-RPC error codes used by this transport.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInternalError  = -32603
)

// ProtocolVersion is the fixed protocol version reported by initialize.
const ProtocolVersion = "2024-11-05"

// ServerInfo identifies the server in the initialize response.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Request is one incoming JSON-RPC envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// Response is one outgoing JSON-RPC envelope, echoing the request id with
// either a result or an error, never both.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the error member of a failed response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// callParams is the tools/call parameter shape.
type callParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// textContent is one content chunk in a tools/call result.
type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// callResult is the tools/call result shape.
type callResult struct {
	Content []textContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// Server dispatches JSON-RPC requests against a tool registry.
type Server struct {
	registry *tools.Registry
	info     ServerInfo
	log      zerolog.Logger
}

// NewServer creates an RPC server over the given registry.
func NewServer(registry *tools.Registry, info ServerInfo, logger zerolog.Logger) *Server {
	return &Server{
		registry: registry,
		info:     info,
		log:      logger,
	}
}

// maxRequestBytes caps a single request line. An oversized line is
// answered with a parse error and drained; it never stops the loop.
const maxRequestBytes = 1024 * 1024

var errRequestTooLarge = apperrors.New(apperrors.CodeTransport, "request line too large")

// Serve reads requests line by line until EOF or context cancellation,
// writing exactly one response line per request line. A malformed,
// oversized or failing request never stops the loop.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReaderSize(r, 64*1024)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := readRequestLine(reader)
		if err == io.EOF {
			return nil
		}
		if stderrors.Is(err, errRequestTooLarge) {
			s.log.Warn().Msg("Oversized request line dropped")
			response := errorResponse(nil, CodeParseError,
				fmt.Sprintf("parse error: request exceeds %d bytes", maxRequestBytes))
			if werr := writeResponse(w, response); werr != nil {
				return apperrors.Wrap(apperrors.CodeTransport, "failed to write response", werr)
			}
			continue
		}
		if err != nil {
			return apperrors.Wrap(apperrors.CodeTransport, "failed to read request", err)
		}

		line := strings.TrimSpace(string(raw))
		if line == "" {
			continue
		}
		s.log.Debug().Str("request", line).Msg("Request received")

		response := s.handleLine(ctx, line)
		if err := writeResponse(w, response); err != nil {
			return apperrors.Wrap(apperrors.CodeTransport, "failed to write response", err)
		}
	}
}

// readRequestLine reads one newline-terminated line, accumulating across
// buffer refills. A line over maxRequestBytes is consumed to its end and
// reported as errRequestTooLarge so the caller can answer and keep going.
func readRequestLine(reader *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, err := reader.ReadSlice('\n')
		if len(line)+len(chunk) > maxRequestBytes {
			for err == bufio.ErrBufferFull {
				_, err = reader.ReadSlice('\n')
			}
			if err != nil && err != io.EOF {
				return nil, err
			}
			return nil, errRequestTooLarge
		}
		line = append(line, chunk...)

		switch err {
		case nil:
			return line, nil
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if len(line) == 0 {
				return nil, io.EOF
			}
			return line, nil
		default:
			return nil, err
		}
	}
}

// handleLine turns one input line into one response, converting panics
// into internal-error responses so the loop survives any single request.
func (s *Server) handleLine(ctx context.Context, line string) (response *Response) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error().Interface("panic", rec).Msg("Request handler panicked")
			response = errorResponse(nil, CodeInternalError, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return errorResponse(nil, CodeParseError, fmt.Sprintf("parse error: %v", err))
	}
	return s.Handle(ctx, &req)
}

// Handle dispatches a single decoded request.
func (s *Server) Handle(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return s.handleListTools(req)
	case "tools/call":
		return s.handleCallTool(ctx, req)
	default:
		return errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("unsupported method: %s", req.Method))
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	s.log.Info().Msg("Initialize requested")
	return resultResponse(req.ID, map[string]interface{}{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": s.info,
	})
}

func (s *Server) handleListTools(req *Request) *Response {
	s.log.Info().Msg("Tool list requested")
	return resultResponse(req.ID, map[string]interface{}{
		"tools": s.registry.Descriptors(),
	})
}

func (s *Server) handleCallTool(ctx context.Context, req *Request) *Response {
	var params callParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, CodeParseError, fmt.Sprintf("invalid params: %v", err))
		}
	}

	// An unknown tool is a protocol-level error, everything else comes
	// back inside the result envelope.
	if !s.registry.Has(params.Name) {
		return errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("unknown tool: %s", params.Name))
	}

	result := s.registry.Execute(ctx, params.Name, params.Arguments)
	if !result.Success {
		return resultResponse(req.ID, callResult{
			Content: []textContent{{Type: "text", Text: "Error: " + result.Error}},
			IsError: true,
		})
	}
	return resultResponse(req.ID, callResult{
		Content: []textContent{{Type: "text", Text: result.Result}},
	})
}

func resultResponse(id json.RawMessage, result interface{}) *Response {
	return &Response{JSONRPC: "2.0", ID: normalizeID(id), Result: result}
}

func errorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{JSONRPC: "2.0", ID: normalizeID(id), Error: &Error{Code: code, Message: message}}
}

// normalizeID keeps the request id as-is and substitutes an explicit null
// when the request carried none (or could not be parsed).
func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

func writeResponse(w io.Writer, response *Response) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
