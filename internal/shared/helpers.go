// Package shared provides small helpers used across the store-upgrader
// packages.
package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ErrorMessage returns the errbuilder message when one is set, otherwise
// err.Error().
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}

// HResultString formats an HRESULT the way Windows tooling prints it.
func HResultString(hr uint32) string {
	return fmt.Sprintf("0x%08X", hr)
}
