package compositor

// StartPing starts liveness probing. The first probe goes out immediately;
// repeated calls do not extend the interval.
func (w *Window) StartPing() {
	if w.inert() || w.pingTimer.Active() {
		return
	}
	w.pingWindow()
	w.pingTimer.Start()
}

// StopPing cancels the probe and reappear timers.
func (w *Window) StopPing() {
	if w.pingTimer != nil {
		w.pingTimer.Stop()
	}
	if w.reappearTimer != nil {
		w.reappearTimer.Stop()
	}
}

// IsPinging reports whether the probe timer is running.
func (w *Window) IsPinging() bool {
	return w.pingTimer != nil && w.pingTimer.Active()
}

// PingSerials returns the last sent and last received probe serials.
func (w *Window) PingSerials() (sent, received uint32) {
	return w.sentPing, w.receivedPing
}

func (w *Window) pingTimeout() {
	if w.inert() {
		return
	}
	if w.receivedPing < w.sentPing && w.IsMapped() &&
		w.status != StatusHung && w.status != StatusMinimizing && w.status != StatusClosing {
		w.status = StatusHung
		w.m.logger.Info("window not responding", "window_id", w.id, "serial", w.sentPing)
		w.SetBlurred(true)
		w.m.emit(EventHung, w, true)
		w.reappearTimer.Start()
	}
	if w.pingTimer.Active() {
		w.pingWindow()
	}
}

// pingWindow sends the next probe. Nothing is sent while hung so that
// probes do not pile up in a stuck client.
func (w *Window) pingWindow() {
	if w.status == StatusHung {
		return
	}
	w.sentPing++
	if err := w.m.system.SendPing(w.id, w.sentPing); err != nil {
		w.m.logger.Debug("ping failed", "window_id", w.id, "serial", w.sentPing, "error", err)
	}
}

// ReceivedPing handles a probe reply. Any reply un-hangs the window, but
// only the serial actually answered is recorded, so a probe still
// outstanding is detected on the next tick.
func (w *Window) ReceivedPing(serial uint32) {
	if w.inert() {
		return
	}
	w.receivedPing = max(w.receivedPing, serial)
	if w.status == StatusHung {
		w.clearHung()
		w.m.logger.Info("window responding again", "window_id", w.id)
		return
	}
	if w.blurred {
		w.SetBlurred(false)
	}
	w.reappearTimer.Stop()
}

// clearHung returns a hung window to Normal and withdraws the hang
// notification together with the dimming. The caller sets any other
// status itself.
func (w *Window) clearHung() {
	w.status = StatusNormal
	w.m.emit(EventHung, w, false)
	if w.blurred {
		w.SetBlurred(false)
	}
	w.reappearTimer.Stop()
}

// StartDialogReappearTimer re-arms the reappear timer after the user
// dismissed the not-responding UI. It only runs while hung.
func (w *Window) StartDialogReappearTimer() {
	if w.inert() || w.status != StatusHung {
		return
	}
	w.reappearTimer.Start()
}

func (w *Window) reappearTimeout() {
	if w.inert() || w.status != StatusHung {
		return
	}
	w.m.emit(EventHung, w, true)
}
