package app

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"store-upgrader/internal/adapters"
	"store-upgrader/internal/core"
	"store-upgrader/internal/ports"
	"store-upgrader/internal/types"
)

// Backend is the set of ports one request runs against.
type Backend struct {
	Kind     types.Backend
	Updates  ports.UpdateServicePort
	Identity ports.PackageIdentityPort
	Shell    ports.ShellPort
	Release  func()
}

// BackendFactory opens the ports for a request. Service falls back to the
// platform adapters when none is set.
type BackendFactory func(req BackendRequest) (Backend, error)

func (b Backend) Close() {
	if b.Release != nil {
		b.Release()
	}
}

func (b Backend) bridge() core.Bridge {
	return core.NewBridge(b.Updates, b.Identity, b.Shell)
}

// resolveBackend picks the concrete backend for auto.
func (s Service) resolveBackend(req BackendRequest) types.Backend {
	kind := types.Backend(strings.TrimSpace(string(req.Backend)))
	if kind != "" && kind != types.BackendAuto {
		return kind
	}
	if s.GOOS == "windows" {
		return types.BackendWinRT
	}
	if strings.TrimSpace(req.Scenario) != "" {
		return types.BackendSimulated
	}
	return types.BackendAuto
}

func (s Service) openBackend(req BackendRequest) (Backend, error) {
	if s.Backends != nil {
		return s.Backends(req)
	}
	return s.openPlatformBackend(req)
}

func (s Service) openPlatformBackend(req BackendRequest) (Backend, error) {
	kind := s.resolveBackend(req)
	var shell ports.ShellPort = adapters.NewShellAdapter()
	if req.DryRunShell {
		shell = adapters.NewRecordingShellAdapter()
	}

	switch kind {
	case types.BackendWinRT:
		store, err := adapters.NewWinRTStoreAdapter(adapters.WinRTOptions{OwnerWindow: req.OwnerWindow})
		if err != nil {
			return Backend{}, err
		}
		return Backend{
			Kind:     kind,
			Updates:  store,
			Identity: adapters.NewPackageIdentityAdapter(),
			Shell:    shell,
			Release:  store.Close,
		}, nil
	case types.BackendSimulated:
		path := strings.TrimSpace(req.Scenario)
		if path == "" {
			return Backend{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("the simulated backend requires a scenario file")
		}
		scenario, err := adapters.LoadScenario(path)
		if err != nil {
			return Backend{}, err
		}
		store, err := adapters.NewSimulatedStoreAdapter(scenario)
		if err != nil {
			return Backend{}, err
		}
		log.Debug().Str("scenario", path).Msg("using simulated store")
		return Backend{Kind: kind, Updates: store, Identity: store.Identity(), Shell: shell}, nil
	case types.BackendAuto:
		log.Debug().Str("os", s.GOOS).Msg("no store service on this platform")
		return Backend{
			Kind:     kind,
			Updates:  adapters.NewUnsupportedStoreAdapter(""),
			Identity: adapters.NewPackageIdentityAdapter(),
			Shell:    shell,
		}, nil
	default:
		return Backend{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown backend " + string(kind))
	}
}
