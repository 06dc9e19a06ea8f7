package adapters

import (
	"sync"

	"github.com/rs/zerolog/log"

	"store-upgrader/internal/ports"
)

// RecordingShellAdapter logs and remembers URIs instead of launching them.
type RecordingShellAdapter struct {
	mu     *sync.Mutex
	opened *[]string
}

func NewRecordingShellAdapter() RecordingShellAdapter {
	return RecordingShellAdapter{mu: &sync.Mutex{}, opened: &[]string{}}
}

func (a RecordingShellAdapter) Open(uri string) error {
	log.Info().Str("uri", uri).Msg("dry run: not launching uri")
	a.mu.Lock()
	defer a.mu.Unlock()
	*a.opened = append(*a.opened, uri)
	return nil
}

func (a RecordingShellAdapter) Opened() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), *a.opened...)
}

var _ ports.ShellPort = RecordingShellAdapter{}
