// Package midijack routes MIDI through a JACK client with one input and one
// output MIDI port, running the pedal bridge inside the process callback.
package midijack

import "errors"

// Error definitions for JACK client setup.
var (
	ErrServerUnavailable = errors.New("cannot open JACK client (is jackd running?)")
	ErrProcessCallback   = errors.New("cannot set JACK process callback")
	ErrPortRegistration  = errors.New("cannot register JACK MIDI port")
	ErrActivation        = errors.New("cannot activate JACK client")
	ErrUnsupported       = errors.New("JACK backend requires linux and cgo")
)
