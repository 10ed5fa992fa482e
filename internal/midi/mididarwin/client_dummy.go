//go:build !darwin
// +build !darwin

package mididarwin

import (
	"github.com/leandrodaf/pedalsplit/sdk/contracts"
)

// NewRouter reports that CoreMIDI is not available on this platform.
func NewRouter(options *contracts.ClientOptions) (contracts.Router, error) {
	options.Logger.Warn("CoreMIDI backend is not available on this platform")
	return nil, ErrUnsupported
}
