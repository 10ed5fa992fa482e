// Package midiwindows routes MIDI through the winmm midiIn/midiOut API.
package midiwindows

import "errors"

// Error definitions for winmm setup.
var (
	ErrNoDevice     = errors.New("no MIDI output connected")
	ErrOpenInput    = errors.New("failed to open MIDI input device")
	ErrOpenOutput   = errors.New("failed to open MIDI output device")
	ErrStartInput   = errors.New("failed to start MIDI input")
	ErrUnsupported  = errors.New("winmm backend requires Windows")
	errDeviceFailed = errors.New("winmm call failed")
)
