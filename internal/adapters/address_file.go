package adapters

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/dchest/safefile"
)

// AddressFileAdapter publishes the listener address for the host to pick up.
type AddressFileAdapter struct {
	Path string
}

func NewAddressFileAdapter(path string) AddressFileAdapter {
	return AddressFileAdapter{Path: path}
}

// Write replaces the file atomically so the host never reads a partial
// address.
func (a AddressFileAdapter) Write(addr string) error {
	if strings.TrimSpace(a.Path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("address file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create address file directory").
			WithCause(err)
	}
	if err := safefile.WriteFile(a.Path, []byte(addr+"\n"), 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write address file").
			WithCause(err)
	}
	return nil
}

// Read returns the address previously written, without the newline.
func (a AddressFileAdapter) Read() (string, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("address file not found").
			WithCause(err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (a AddressFileAdapter) Remove() error {
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
