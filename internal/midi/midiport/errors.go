// Package midiport routes MIDI through the rtmidi driver of gomidi. Each
// incoming message is processed as a cycle of one event.
package midiport

import "errors"

// Error definitions for rtmidi setup.
var (
	ErrDriver      = errors.New("cannot initialise rtmidi driver")
	ErrPortOpen    = errors.New("cannot open MIDI port")
	ErrListen      = errors.New("cannot listen to MIDI input")
	ErrUnsupported = errors.New("rtmidi backend requires cgo")
)
