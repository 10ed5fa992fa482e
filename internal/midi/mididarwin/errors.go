// Package mididarwin routes MIDI through CoreMIDI on macOS.
package mididarwin

import "errors"

// Error definitions for MIDI connection and handling issues.
var (
	ErrCreateClient     = errors.New("error creating CoreMIDI client")
	ErrCreateInputPort  = errors.New("error creating input port")
	ErrCreateOutputPort = errors.New("error creating output port")
	ErrNoDestination    = errors.New("no MIDI destination connected")
	ErrUnsupported      = errors.New("CoreMIDI backend requires macOS")
)
