package adapters

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"store-upgrader/internal/core"
	"store-upgrader/internal/ports"
	"store-upgrader/internal/types"
)

// SimulatedStoreAdapter answers store calls from a Scenario. It backs
// development on machines without the Store and the end-to-end tests.
type SimulatedStoreAdapter struct {
	scenario  Scenario
	installed types.PackageVersion
	updates   []types.PackageUpdate
	state     types.UpdateState
}

func NewSimulatedStoreAdapter(scenario Scenario) (SimulatedStoreAdapter, error) {
	adapter := SimulatedStoreAdapter{scenario: scenario, state: types.UpdateStateCompleted}
	if scenario.InstalledVersion != "" {
		installed, err := core.ParsePackageVersion(scenario.InstalledVersion)
		if err != nil {
			return SimulatedStoreAdapter{}, err
		}
		adapter.installed = installed
	}
	for i, update := range scenario.Updates {
		version, err := core.ParsePackageVersion(update.Version)
		if err != nil {
			return SimulatedStoreAdapter{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("updates[%d]: invalid version %q", i, update.Version)).
				WithCause(err)
		}
		if core.ComparePackageVersions(version, adapter.installed) <= 0 {
			log.Debug().
				Str("version", version.String()).
				Str("installed", adapter.installed.String()).
				Msg("simulated update not newer than installed version, skipping")
			continue
		}
		adapter.updates = append(adapter.updates, types.PackageUpdate{
			PackageFamilyName: update.PackageFamilyName,
			Version:           version,
			Mandatory:         update.Mandatory,
		})
	}
	if scenario.Install.State != "" {
		state, ok := types.ParseUpdateState(scenario.Install.State)
		if !ok {
			return SimulatedStoreAdapter{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unknown install state %q", scenario.Install.State))
		}
		adapter.state = state
	}
	return adapter, nil
}

func (a SimulatedStoreAdapter) ListUpdates(ctx context.Context) (types.UpdateBatch, error) {
	if err := ctx.Err(); err != nil {
		return types.UpdateBatch{}, err
	}
	if err := a.scenario.Errors.ListUpdates.asError(); err != nil {
		return types.UpdateBatch{}, err
	}
	updates := append([]types.PackageUpdate(nil), a.updates...)
	return types.NewUpdateBatch(updates, nil, nil), nil
}

func (a SimulatedStoreAdapter) InstallUpdates(ctx context.Context, batch types.UpdateBatch) (types.InstallResult, error) {
	if err := ctx.Err(); err != nil {
		return types.InstallResult{}, err
	}
	if batch.Len() == 0 {
		return types.InstallResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no updates to install")
	}
	if err := a.scenario.Errors.InstallUpdates.asError(); err != nil {
		return types.InstallResult{}, err
	}
	log.Info().
		Int("count", batch.Len()).
		Str("state", a.state.String()).
		Msg("simulated store install")
	return types.InstallResult{OverallState: a.state}, nil
}

func (a SimulatedStoreAdapter) GetProductInfo(ctx context.Context) (types.ProductInfo, error) {
	if err := ctx.Err(); err != nil {
		return types.ProductInfo{}, err
	}
	if err := a.scenario.Errors.ProductInfo.asError(); err != nil {
		return types.ProductInfo{}, err
	}
	return types.ProductInfo{
		StoreID: a.scenario.Product.StoreID,
		Title:   a.scenario.Product.Title,
		LinkURI: a.scenario.Product.ListingURL,
	}, nil
}

// Identity reports the scenario's packaging state.
func (a SimulatedStoreAdapter) Identity() StaticIdentityAdapter {
	return NewStaticIdentityAdapter(a.scenario.Packaged)
}

func (e *ScenarioError) asError() error {
	if e == nil {
		return nil
	}
	if e.Generic {
		message := e.Message
		if message == "" {
			message = "simulated failure"
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(message)
	}
	return &types.PlatformError{HResult: e.HResult, Message: e.Message}
}

var _ ports.UpdateServicePort = SimulatedStoreAdapter{}
