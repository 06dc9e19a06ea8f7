//go:build !windows

package adapters

import (
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/skratchdot/open-golang/open"

	"store-upgrader/internal/ports"
)

// ShellAdapter opens URIs with the desktop's default handler.
type ShellAdapter struct{}

func NewShellAdapter() ShellAdapter {
	return ShellAdapter{}
}

func (a ShellAdapter) Open(uri string) error {
	if err := open.Start(uri); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open uri").
			WithCause(err)
	}
	return nil
}

var _ ports.ShellPort = ShellAdapter{}
