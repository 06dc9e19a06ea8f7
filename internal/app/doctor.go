package app

import (
	"context"
	"runtime"

	"store-upgrader/internal/channel"
	"store-upgrader/internal/shared"
	"store-upgrader/internal/types"
)

// Doctor reports what a serve with the same flags would run against.
func (s Service) Doctor(_ context.Context, req DoctorRequest) (DoctorResult, error) {
	backend, err := s.openBackend(req.BackendRequest)
	if err != nil {
		return DoctorResult{}, err
	}
	defer backend.Close()

	result := DoctorResult{
		Platform: s.GOOS + "/" + runtime.GOARCH,
		Backend:  backend.Kind,
		Channel:  channel.NewServer(backend.bridge(), req.Channel).Channel(),
		Methods: []string{
			string(types.MethodInstallUpdate),
			string(types.MethodOpenStore),
			string(types.MethodGetStoreInfo),
		},
	}
	packaged, err := backend.Identity.IsPackaged()
	if err != nil {
		result.IdentityError = shared.ErrorMessage(err)
	}
	result.Packaged = packaged
	return result, nil
}
