package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/pedalsplit/internal/midi/mididarwin"
	"github.com/leandrodaf/pedalsplit/internal/midi/midijack"
	"github.com/leandrodaf/pedalsplit/internal/midi/midiport"
	"github.com/leandrodaf/pedalsplit/internal/midi/midiwindows"
	"github.com/leandrodaf/pedalsplit/sdk/contracts"
)

// ErrUnknownBackend is returned when the requested transport does not exist.
var ErrUnknownBackend = errors.New("unknown MIDI backend")

// clientInitializers maps backend names to corresponding router initializers.
var clientInitializers = map[contracts.Backend]func(*contracts.ClientOptions) (contracts.Router, error){
	contracts.BackendJACK:     midijack.NewRouter,    // JACK, linux only.
	contracts.BackendRtMIDI:   midiport.NewRouter,    // rtmidi through gomidi, any OS with cgo.
	contracts.BackendCoreMIDI: mididarwin.NewRouter,  // macOS (Darwin).
	contracts.BackendWinMM:    midiwindows.NewRouter, // Windows.
}

// osBackends maps OS names to the backend used when none is configured.
var osBackends = map[string]contracts.Backend{
	"linux":   contracts.BackendJACK,
	"darwin":  contracts.BackendCoreMIDI,
	"windows": contracts.BackendWinMM,
}

func defaultBackend() contracts.Backend {
	if b, ok := osBackends[runtime.GOOS]; ok {
		return b
	}
	return contracts.BackendRtMIDI
}

// NewClient opens the router for the backend named in opts.
//
// opts *contracts.ClientOptions: Configuration options with defaults already applied.
//
// Returns:
//   - contracts.Router: An instance of the router.
//   - error: An error if the backend is unknown or if initialization fails.
func NewClient(opts *contracts.ClientOptions) (contracts.Router, error) {
	if initializer, exists := clientInitializers[opts.Backend]; exists {
		opts.Logger.Info("Opening MIDI backend", opts.Logger.Field().String("backend", string(opts.Backend)))
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
}
