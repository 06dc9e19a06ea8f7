package app

import (
	"fmt"
	"strings"

	"store-upgrader/internal/types"
)

type BackendRequest struct {
	Backend     types.Backend
	Scenario    string
	OwnerWindow uintptr
	DryRunShell bool
}

type ServeRequest struct {
	BackendRequest
	Transport types.Transport
	Listen    string
	AddrFile  string
	HostPID   int
	Channel   string
}

type CallRequest struct {
	BackendRequest
	ID      string
	Method  string
	Args    map[string]any
	Channel string
	// Remote is the address of a running tcp server. When set, or when
	// AddrFile names one, the call is sent there instead of being run
	// in-process.
	Remote   string
	AddrFile string
}

type DoctorRequest struct {
	BackendRequest
	Channel string
}

type DoctorResult struct {
	Platform      string        `json:"platform" yaml:"platform"`
	Backend       types.Backend `json:"backend" yaml:"backend"`
	Packaged      bool          `json:"packaged" yaml:"packaged"`
	IdentityError string        `json:"identity_error,omitempty" yaml:"identity_error,omitempty"`
	Channel       string        `json:"channel" yaml:"channel"`
	Methods       []string      `json:"methods" yaml:"methods"`
}

func (r DoctorResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "platform: %s\n", r.Platform)
	fmt.Fprintf(&b, "backend:  %s\n", r.Backend)
	fmt.Fprintf(&b, "packaged: %t", r.Packaged)
	if r.IdentityError != "" {
		fmt.Fprintf(&b, " (%s)", r.IdentityError)
	}
	fmt.Fprintf(&b, "\nchannel:  %s\n", r.Channel)
	fmt.Fprintf(&b, "methods:  %s", strings.Join(r.Methods, ", "))
	return b.String()
}
