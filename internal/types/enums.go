package types

// ChannelName is the method channel the bridge registers with the host.
const ChannelName = "dev.centroid.upgrader_windows_store"

type Method string

const (
	MethodInstallUpdate Method = "installUpdate"
	MethodOpenStore     Method = "openStore"
	MethodGetStoreInfo  Method = "getStoreInfo"
)

// ErrorCode is the machine-readable code carried by an error reply.
type ErrorCode string

const (
	ErrorCodeBadArgs     ErrorCode = "bad_args"
	ErrorCodeNotPackaged ErrorCode = "not_packaged"
	ErrorCodePlatform    ErrorCode = "winrt_error"
	ErrorCodeUnknown     ErrorCode = "unknown_error"
)

type ReplyStatus string

const (
	ReplyStatusSuccess        ReplyStatus = "success"
	ReplyStatusError          ReplyStatus = "error"
	ReplyStatusNotImplemented ReplyStatus = "not_implemented"
)

// UpdateState mirrors StorePackageUpdateState.
type UpdateState int

const (
	UpdateStatePending UpdateState = iota
	UpdateStateDownloading
	UpdateStateDeploying
	UpdateStateCompleted
	UpdateStateCanceled
	UpdateStateOtherError
	UpdateStateErrorLowBattery
	UpdateStateErrorWiFiRecommended
	UpdateStateErrorWiFiRequired
)

var updateStateNames = map[UpdateState]string{
	UpdateStatePending:              "pending",
	UpdateStateDownloading:          "downloading",
	UpdateStateDeploying:            "deploying",
	UpdateStateCompleted:            "completed",
	UpdateStateCanceled:             "canceled",
	UpdateStateOtherError:           "other_error",
	UpdateStateErrorLowBattery:      "error_low_battery",
	UpdateStateErrorWiFiRecommended: "error_wifi_recommended",
	UpdateStateErrorWiFiRequired:    "error_wifi_required",
}

func (s UpdateState) String() string {
	if name, ok := updateStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseUpdateState accepts the names produced by UpdateState.String.
func ParseUpdateState(value string) (UpdateState, bool) {
	for state, name := range updateStateNames {
		if name == value {
			return state, true
		}
	}
	return 0, false
}

type Backend string

const (
	BackendAuto      Backend = "auto"
	BackendWinRT     Backend = "winrt"
	BackendSimulated Backend = "simulated"
)

type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportTCP   Transport = "tcp"
)
