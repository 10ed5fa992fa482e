package midi

import (
	"github.com/leandrodaf/pedalsplit/sdk/contracts"
)

// NewPedalRouter creates a router that rewrites the shared pedal/key contact
// into sustain messages while forwarding everything else.
// It applies default options and opens the selected transport.
//
// opts ...contracts.Option: A variadic list of option functions to customize the router configuration.
//
// Returns:
//   - contracts.Router: The router, registered with the transport but not yet started.
//   - error: An error, if the options are invalid or the transport could not be opened.
func NewPedalRouter(opts ...contracts.Option) (contracts.Router, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	router, err := NewClient(&options)
	if err != nil {
		return nil, err
	}

	return router, nil
}
