//go:build !cgo || nortmidi

package midiport

import (
	"github.com/leandrodaf/pedalsplit/sdk/contracts"
)

// NewRouter reports that rtmidi is not available in this build.
func NewRouter(options *contracts.ClientOptions) (contracts.Router, error) {
	options.Logger.Warn("rtmidi backend is not available in this build")
	return nil, ErrUnsupported
}
