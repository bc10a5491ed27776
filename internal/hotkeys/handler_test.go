package hotkeys

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActions struct {
	iconified []uint32
	closed    []uint32
	err       error
}

func (a *fakeActions) IconifyWindow(id uint32) error {
	a.iconified = append(a.iconified, id)
	return a.err
}

func (a *fakeActions) CloseWindow(id uint32) error {
	a.closed = append(a.closed, id)
	return a.err
}

func TestBindingsTargetActiveWindow(t *testing.T) {
	actions := &fakeActions{}
	h := NewHandler(nil, 0, actions, nil)

	bds := h.bindings(Bindings{Iconify: "Mod4-Down", Close: "Mod4-q"})
	require.Len(t, bds, 2)
	assert.Equal(t, "Mod4-Down", bds[0].sequence)
	assert.Equal(t, "Mod4-q", bds[1].sequence)

	for _, bd := range bds {
		h.trigger(bd)
	}
	assert.Equal(t, []uint32{0}, actions.iconified)
	assert.Equal(t, []uint32{0}, actions.closed)
}

func TestTriggerSwallowsActionError(t *testing.T) {
	actions := &fakeActions{err: errors.New("no active window")}
	h := NewHandler(nil, 0, actions, nil)

	assert.NotPanics(t, func() {
		h.trigger(h.bindings(Bindings{Iconify: "Mod4-Down"})[0])
	})
	assert.Len(t, actions.iconified, 1)
}

func TestRegisterWithoutConnection(t *testing.T) {
	h := NewHandler(nil, 0, &fakeActions{}, nil)

	assert.NoError(t, h.Register(Bindings{}), "empty sequences are skipped")
	assert.Error(t, h.Register(Bindings{Close: "Mod4-q"}))
}
