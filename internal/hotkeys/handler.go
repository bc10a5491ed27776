package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Actions are the window commands a hotkey can trigger. The zero window means
// the active window.
type Actions interface {
	IconifyWindow(id uint32) error
	CloseWindow(id uint32) error
}

// Bindings maps key sequences (xgbutil keybind syntax, e.g. "Mod4-Down") to
// actions. An empty sequence leaves the action unbound.
type Bindings struct {
	Iconify string
	Close   string
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	actions Actions
	logger  *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. A nil xu produces a handler that
// can only be triggered programmatically.
func NewHandler(xu *xgbutil.XUtil, root xproto.Window, actions Actions, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if xu != nil {
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(xu)
		})
	}

	return &Handler{
		xu:      xu,
		root:    root,
		actions: actions,
		logger:  logger,
	}
}

type binding struct {
	name     string
	sequence string
	run      func() error
}

func (h *Handler) bindings(b Bindings) []binding {
	return []binding{
		{name: "iconify", sequence: b.Iconify, run: func() error { return h.actions.IconifyWindow(0) }},
		{name: "close", sequence: b.Close, run: func() error { return h.actions.CloseWindow(0) }},
	}
}

// trigger runs one binding and logs its outcome.
func (h *Handler) trigger(bd binding) {
	h.logger.Debug("hotkey triggered", "action", bd.name, "keys", bd.sequence)
	if err := bd.run(); err != nil {
		h.logger.Warn("hotkey action failed", "action", bd.name, "error", err)
	}
}

// Register grabs every non-empty sequence in b on the root window.
func (h *Handler) Register(b Bindings) error {
	for _, bd := range h.bindings(b) {
		if bd.sequence == "" {
			continue
		}
		if err := h.RegisterFunc(bd.sequence, func() { h.trigger(bd) }); err != nil {
			return fmt.Errorf("failed to register %s hotkey %q: %w", bd.name, bd.sequence, err)
		}
		h.logger.Info("hotkey registered", "action", bd.name, "keys", bd.sequence)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	if h.xu == nil {
		return fmt.Errorf("no X connection")
	}
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
