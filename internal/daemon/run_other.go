//go:build !linux

package daemon

import (
	"context"
	"errors"
)

// Run is only supported on X11.
func (d *Daemon) Run(ctx context.Context) error {
	return errors.New("compositing requires an X11 display on linux")
}
