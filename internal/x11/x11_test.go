package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"
)

func TestClipWorkArea(t *testing.T) {
	monitor := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	got := clipWorkArea(monitor, Rect{X: 0, Y: 30, Width: 1920, Height: 1050})
	assert.Equal(t, Rect{X: 0, Y: 30, Width: 1920, Height: 1050}, got)

	// A work area on another monitor leaves this one whole.
	got = clipWorkArea(monitor, Rect{X: 1920, Y: 0, Width: 1280, Height: 1024})
	assert.Equal(t, monitor, got)
}

func TestMonitorAt(t *testing.T) {
	monitors := []Monitor{
		{Name: "left", Rect: Rect{Width: 1920, Height: 1080}},
		{Name: "right", Rect: Rect{X: 1920, Width: 1280, Height: 1024}},
	}
	m := monitorAt(monitors, 2000, 10)
	if assert.NotNil(t, m) {
		assert.Equal(t, "right", m.Name)
	}
	assert.Nil(t, monitorAt(monitors, 5000, 10))
}

func TestClientMessagePingReply(t *testing.T) {
	const pingAtom = xproto.Atom(301)

	msg := ClientMessage{Window: 1, Type: "WM_PROTOCOLS", Data: []uint32{301, 7, 0x400001, 0, 0}}
	win, serial, ok := msg.PingReply(pingAtom)
	assert.True(t, ok)
	assert.Equal(t, xproto.Window(0x400001), win)
	assert.Equal(t, uint32(7), serial)

	msg.Data[0] = 302 // WM_DELETE_WINDOW or similar
	_, _, ok = msg.PingReply(pingAtom)
	assert.False(t, ok)

	_, _, ok = ClientMessage{Type: "_NET_ACTIVE_WINDOW", Data: []uint32{301, 1, 2}}.PingReply(pingAtom)
	assert.False(t, ok)
}

func TestClientMessageChangeState(t *testing.T) {
	iconic, ok := ClientMessage{Type: "WM_CHANGE_STATE", Data: []uint32{3, 0, 0, 0, 0}}.ChangeState()
	assert.True(t, ok)
	assert.True(t, iconic)

	iconic, ok = ClientMessage{Type: "WM_CHANGE_STATE", Data: []uint32{1, 0, 0, 0, 0}}.ChangeState()
	assert.True(t, ok)
	assert.False(t, iconic)

	_, ok = ClientMessage{Type: "WM_PROTOCOLS", Data: []uint32{3}}.ChangeState()
	assert.False(t, ok)
}
