// Package ipc is the control socket between vega invocations and a running
// daemon. Requests and responses are single-line JSON documents.
package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandRun       CommandType = "RUN"
	CommandGetStatus CommandType = "GET_STATUS"
)

// ErrDaemonNotRunning is returned by the client when nothing is listening on
// the socket.
var ErrDaemonNotRunning = errors.New("daemon is not running")

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// RunPayload carries the tiling command for RUN.
type RunPayload struct {
	Command string `json:"command"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	PID           int    `json:"pid" yaml:"pid"`
	UptimeSeconds int64  `json:"uptime_seconds" yaml:"uptime_seconds"`
	Pending       int    `json:"pending" yaml:"pending"`
	Submitted     uint64 `json:"submitted" yaml:"submitted"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
