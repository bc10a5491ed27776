package daemon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/1broseidon/compwm/internal/platform"
)

type fakeTracker struct {
	tracked   []platform.WindowID
	destroyed []platform.WindowID
}

func (f *fakeTracker) Tracked() []platform.WindowID {
	return append([]platform.WindowID(nil), f.tracked...)
}

func (f *fakeTracker) WindowDestroyed(id platform.WindowID) {
	f.destroyed = append(f.destroyed, id)
}

func inline(_ context.Context, fn func()) error {
	fn()
	return nil
}

func listerOf(ids ...platform.WindowID) WindowLister {
	return func() ([]platform.WindowID, error) { return ids, nil }
}

func TestReconcileDropsVanishedWindows(t *testing.T) {
	tracker := &fakeTracker{tracked: []platform.WindowID{1, 2, 3}}
	r := NewReconciler(ReconcilerConfig{}, tracker, listerOf(1, 3, 4), inline)

	assert.Equal(t, 1, r.ReconcileNow(context.Background()))
	assert.Equal(t, []platform.WindowID{2}, tracker.destroyed)
}

func TestReconcileNoChanges(t *testing.T) {
	tracker := &fakeTracker{tracked: []platform.WindowID{1, 2}}
	r := NewReconciler(ReconcilerConfig{}, tracker, listerOf(1, 2), inline)

	assert.Zero(t, r.ReconcileNow(context.Background()))
	assert.Empty(t, tracker.destroyed)
}

func TestReconcileListErrorKeepsState(t *testing.T) {
	tracker := &fakeTracker{tracked: []platform.WindowID{1}}
	failing := func() ([]platform.WindowID, error) { return nil, errors.New("connection lost") }
	r := NewReconciler(ReconcilerConfig{}, tracker, failing, inline)

	assert.Zero(t, r.ReconcileNow(context.Background()))
	assert.Empty(t, tracker.destroyed)
}

func TestReconcileStoppedLoop(t *testing.T) {
	tracker := &fakeTracker{tracked: []platform.WindowID{1}}
	stopped := func(context.Context, func()) error { return errors.New("event loop stopped") }
	r := NewReconciler(ReconcilerConfig{}, tracker, listerOf(), stopped)

	assert.Zero(t, r.ReconcileNow(context.Background()))
	assert.Empty(t, tracker.destroyed)
}

func TestReconcileRecoversFromPanic(t *testing.T) {
	r := NewReconciler(ReconcilerConfig{}, &fakeTracker{}, func() ([]platform.WindowID, error) {
		panic("boom")
	}, inline)

	assert.NotPanics(t, func() { r.ReconcileNow(context.Background()) })
}

func TestReconcilerRunStopsOnCancel(t *testing.T) {
	r := NewReconciler(ReconcilerConfig{Interval: time.Millisecond}, &fakeTracker{}, listerOf(), inline)
	assert.Equal(t, time.Millisecond, r.interval)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}

func TestReconcilerDefaultInterval(t *testing.T) {
	r := NewReconciler(ReconcilerConfig{}, &fakeTracker{}, listerOf(), inline)
	assert.Equal(t, 10*time.Second, r.interval)
}
