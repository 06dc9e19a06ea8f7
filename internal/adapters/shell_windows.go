//go:build windows

package adapters

import (
	"github.com/ZanzyTHEbar/errbuilder-go"
	"golang.org/x/sys/windows"

	"store-upgrader/internal/ports"
)

// ShellAdapter hands URIs to the Windows shell, which routes
// ms-windows-store: links to the Store app.
type ShellAdapter struct{}

func NewShellAdapter() ShellAdapter {
	return ShellAdapter{}
}

func (a ShellAdapter) Open(uri string) error {
	verb, err := windows.UTF16PtrFromString("open")
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(uri)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("uri contains a NUL byte").
			WithCause(err)
	}
	if err := windows.ShellExecute(0, verb, file, nil, nil, windows.SW_SHOWNORMAL); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("ShellExecute failed").
			WithCause(err)
	}
	return nil
}

var _ ports.ShellPort = ShellAdapter{}
