//go:build !linux || !cgo || nojack

package midijack

import (
	"github.com/leandrodaf/pedalsplit/sdk/contracts"
)

// NewRouter reports that JACK is not available in this build.
func NewRouter(options *contracts.ClientOptions) (contracts.Router, error) {
	options.Logger.Warn("JACK backend is not available in this build")
	return nil, ErrUnsupported
}
