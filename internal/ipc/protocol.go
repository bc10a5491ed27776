package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandListWindows CommandType = "LIST_WINDOWS"
	CommandIconify     CommandType = "ICONIFY"
	CommandClose       CommandType = "CLOSE"
)

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

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Windows       int    `json:"windows"`
	Visible       int    `json:"visible"`
	Transitioning int    `json:"transitioning"`
	Hung          int    `json:"hung"`
	Iconified     int    `json:"iconified"`
	Compositing   bool   `json:"compositing"`
	Renderer      string `json:"renderer"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// WindowInfo describes one composited window.
type WindowInfo struct {
	ID        uint32  `json:"id"`
	Status    string  `json:"status"`
	Visible   bool    `json:"visible"`
	Mapped    bool    `json:"mapped"`
	Iconified bool    `json:"iconified"`
	Blurred   bool    `json:"blurred"`
	ZValue    int     `json:"z"`
	Opacity   float64 `json:"opacity"`
	Behind    uint32  `json:"behind,omitempty"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// WindowPayload targets one window. A zero ID means the active window.
type WindowPayload struct {
	WindowID uint32 `json:"window_id,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
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
