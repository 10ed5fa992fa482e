//go:build windows
// +build windows

package midiwindows

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"go.uber.org/multierr"
	"golang.org/x/sys/windows"

	"github.com/leandrodaf/pedalsplit/internal/bridge"
	"github.com/leandrodaf/pedalsplit/internal/midi/wire"
	"github.com/leandrodaf/pedalsplit/sdk/contracts"
)

// Type definitions for MIDI handles
type (
	HMIDIIN  windows.Handle
	HMIDIOUT windows.Handle
)

// Constants for callback flags
const (
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status
	CALLBACK_NULL     = 0x00000000 // No callback
)

// Constants for MIDI message types
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_ERROR     = 0x3C5 // MIDI error
	MIM_LONGERROR = 0x3C6 // Long MIDI error
	MIM_MOREDATA  = 0x3CC // More MIDI data available
)

// Struct representing MIDI input device capabilities
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// Struct representing MIDI output device capabilities
type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

// Router routes MIDI from a winmm input device to a winmm output device.
// Each short message delivered by the driver is a cycle of one event.
type Router struct {
	logger   contracts.Logger
	ports    contracts.PortConfig
	bridge   *bridge.Bridge
	in       HMIDIIN
	out      HMIDIOUT
	callback uintptr
	scratch  [3]byte
	cycle    bridge.Single
	sink     bridge.SinkFunc
	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	done     chan struct{}
}

// Load the winmm.dll library and required functions
var (
	winmm                 = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs  = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps  = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen        = winmm.NewProc("midiInOpen")
	procMidiInStart       = winmm.NewProc("midiInStart")
	procMidiInStop        = winmm.NewProc("midiInStop")
	procMidiInClose       = winmm.NewProc("midiInClose")
	procMidiOutGetNumDevs = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen       = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg   = winmm.NewProc("midiOutShortMsg")
	procMidiOutClose      = winmm.NewProc("midiOutClose")
)

// NewRouter creates a router for Windows. winmm has no client registration,
// so failures only show up in Start.
func NewRouter(options *contracts.ClientOptions) (contracts.Router, error) {
	if err := winmm.Load(); err != nil {
		return nil, fmt.Errorf("%w: %v", errDeviceFailed, err)
	}
	options.Logger.Info("MIDI router created for Windows")

	r := &Router{
		logger: options.Logger,
		ports:  *options.PortConfig,
		bridge: bridge.NewFromOptions(options),
		done:   make(chan struct{}),
	}
	r.sink = r.send
	return r, nil
}

// Start opens the configured output and input devices and starts capture.
// A device that cannot be found is logged and left closed.
func (r *Router) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		r.logger.Warn("Capture already started")
		return nil
	}

	if id, ok := r.findOutput(r.ports.ConnectOutput); ok {
		r1, _, err := procMidiOutOpen.Call(
			uintptr(unsafe.Pointer(&r.out)),
			uintptr(id),
			0,
			0,
			CALLBACK_NULL,
		)
		if r1 != 0 {
			return fmt.Errorf("%w %d: %v", ErrOpenOutput, id, err)
		}
		r.logger.Info(fmt.Sprintf("MIDI output device %d connected", id))
	}

	if id, ok := r.findInput(r.ports.ConnectInput); ok {
		r.callback = windows.NewCallback(midiInCallback)
		fdwOpen := CALLBACK_FUNCTION | MIDI_IO_STATUS

		r1, _, err := procMidiInOpen.Call(
			uintptr(unsafe.Pointer(&r.in)),
			uintptr(id),
			r.callback,
			uintptr(unsafe.Pointer(r)),
			uintptr(fdwOpen),
		)
		if r1 != 0 {
			return multierr.Append(fmt.Errorf("%w %d: %v", ErrOpenInput, id, err), r.closeOutput())
		}

		r1, _, err = procMidiInStart.Call(uintptr(r.in))
		if r1 != 0 {
			return multierr.Combine(fmt.Errorf("%w: %v", ErrStartInput, err), r.closeInput(), r.closeOutput())
		}
		r.logger.Info(fmt.Sprintf("MIDI input device %d connected", id))
	}

	r.started = true
	r.logger.Info("MIDI capture started")
	return nil
}

func (r *Router) findInput(name string) (uint32, bool) {
	if name == "" {
		return 0, false
	}
	r0, _, _ := procMidiInGetNumDevs.Call()
	for i := uint32(0); i < uint32(r0); i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if r1 != 0 {
			r.logger.Warn(fmt.Sprintf("Failed to get information for MIDI input device %d", i))
			continue
		}
		if matches(windows.UTF16ToString(caps.szPname[:]), name) {
			return i, true
		}
	}
	r.logger.Warn("MIDI input device not found", r.logger.Field().String("device", name))
	return 0, false
}

func (r *Router) findOutput(name string) (uint32, bool) {
	if name == "" {
		return 0, false
	}
	r0, _, _ := procMidiOutGetNumDevs.Call()
	for i := uint32(0); i < uint32(r0); i++ {
		var caps midiOutCaps
		r1, _, _ := procMidiOutGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if r1 != 0 {
			r.logger.Warn(fmt.Sprintf("Failed to get information for MIDI output device %d", i))
			continue
		}
		if matches(windows.UTF16ToString(caps.szPname[:]), name) {
			return i, true
		}
	}
	r.logger.Warn("MIDI output device not found", r.logger.Field().String("device", name))
	return 0, false
}

func matches(name, want string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(want))
}

// midiInCallback processes incoming MIDI messages. It runs on a driver
// thread and must not block, so only open/close/error events are logged.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	r := (*Router)(unsafe.Pointer(dwInstance))

	switch wMsg {
	case MIM_OPEN:
		r.logger.Info("MIDI device opened")
	case MIM_CLOSE:
		r.logger.Info("MIDI device closed")
	case MIM_DATA, MIM_MOREDATA:
		r.cycle.Frame = 0
		r.cycle.Data = wire.Unpack(uint32(dwParam1), &r.scratch)
		r.bridge.Process(&r.cycle, r.sink)
	case MIM_ERROR, MIM_LONGERROR:
		r.logger.Error(fmt.Sprintf("MIDI error: msg=0x%X", wMsg))
	}

	return 0
}

func (r *Router) send(_ uint32, data []byte) error {
	if r.out == 0 {
		return ErrNoDevice
	}
	if r1, _, _ := procMidiOutShortMsg.Call(uintptr(r.out), uintptr(wire.Pack(data))); r1 != 0 {
		return errDeviceFailed
	}
	return nil
}

// Stop terminates MIDI event capture and closes both devices.
func (r *Router) Stop() error {
	var err error
	r.stopOnce.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.started {
			err = multierr.Combine(r.closeInput(), r.closeOutput())
			r.started = false
			r.logger.Info("MIDI capture stopped and devices closed")
		}
		bridge.LogStats(r.logger, r.bridge.Stats())
	})
	return err
}

// closeInput stops the capture and releases the input device
func (r *Router) closeInput() error {
	if r.in == 0 {
		return nil
	}

	r1, _, err := procMidiInStop.Call(uintptr(r.in))
	if r1 != 0 {
		return fmt.Errorf("failed to stop MIDI capture: %v", err)
	}

	r1, _, err = procMidiInClose.Call(uintptr(r.in))
	if r1 != 0 {
		return fmt.Errorf("failed to close MIDI input device: %v", err)
	}

	r.in = 0
	return nil
}

func (r *Router) closeOutput() error {
	if r.out == 0 {
		return nil
	}
	if r1, _, err := procMidiOutClose.Call(uintptr(r.out)); r1 != 0 {
		return fmt.Errorf("failed to close MIDI output device: %v", err)
	}
	r.out = 0
	return nil
}

// Done never closes: winmm reports device loss through MIM_CLOSE only.
func (r *Router) Done() <-chan struct{} {
	return r.done
}

// Stats returns the bridge counters.
func (r *Router) Stats() contracts.Stats {
	return r.bridge.Stats()
}
