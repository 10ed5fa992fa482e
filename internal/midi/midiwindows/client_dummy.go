//go:build !windows
// +build !windows

package midiwindows

import (
	"github.com/leandrodaf/pedalsplit/sdk/contracts"
)

// NewRouter reports that winmm is not available on this platform.
func NewRouter(options *contracts.ClientOptions) (contracts.Router, error) {
	options.Logger.Warn("winmm backend is not available on this platform")
	return nil, ErrUnsupported
}
