package mcp

import "github.com/1broseidon/compwm/internal/ipc"

// StatusInput is the input for the compositor_status tool.
type StatusInput struct{}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	HungOnly bool `json:"hung_only,omitempty" jsonschema:"Only list windows that stopped answering pings"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []ipc.WindowInfo `json:"windows"`
}

// WindowInput selects a window for iconify_window and close_window.
type WindowInput struct {
	WindowID uint32 `json:"window_id,omitempty" jsonschema:"X11 window id; 0 or omitted targets the active window"`
}

// WindowOutput confirms a window command.
type WindowOutput struct {
	WindowID uint32 `json:"window_id"`
	Action   string `json:"action"`
}

// ReloadInput is the input for the reload_config tool.
type ReloadInput struct{}

// ReloadOutput confirms a reload.
type ReloadOutput struct {
	Reloaded bool `json:"reloaded"`
}
