package contracts

// MIDICommand represents the status nibble of a MIDI channel message.
type MIDICommand byte

const (
	// NoteOn is the MIDI command for a Note On event (0x90).
	NoteOn MIDICommand = 0x90
	// NoteOff is the MIDI command for a Note Off event (0x80).
	NoteOff MIDICommand = 0x80
	// ControlChange is the MIDI command for a Control Change event (0xB0).
	ControlChange MIDICommand = 0xB0
)

// MIDIEvent is a raw MIDI event at a frame offset within the current cycle.
// Data is owned by the transport and is only valid during the cycle.
type MIDIEvent struct {
	Frame uint32 // Offset of the event from the start of the cycle, in frames.
	Data  []byte // Raw bytes, status byte first.
}

// EventSource is the ordered sequence of events received during one cycle.
type EventSource interface {
	Len() int
	At(i int) (frame uint32, data []byte)
}

// EventSink is the outgoing event buffer of one cycle.
type EventSink interface {
	Reset()                                 // Clears any events left from a previous cycle.
	Write(frame uint32, data []byte) error // Appends an event at the given frame offset.
}

// Stats counts the decisions taken since the router started.
type Stats struct {
	Events            uint64 // Events processed.
	PedalPresses      uint64 // Full-velocity Note-On rewritten to a pedal press.
	KeyPresses        uint64 // Note-On kept as a key press.
	PedalReleases     uint64 // Note-Off rewritten to a pedal release.
	KeyReleases       uint64 // Note-Off kept as a key release.
	AmbiguousReleases uint64 // Releases resolved by the weird-mode tie-break.
	SustainOn         uint64 // Sustain controller reported pressed.
	SustainOff        uint64 // Sustain controller reported released.
	PassedThrough     uint64 // Events not involving the target.
	Dropped           uint64 // Events the output buffer refused.
}

// Router moves MIDI events from an input port to an output port through the pedal disambiguator.
type Router interface {
	Start() error          // Activates the transport and connects the configured peers.
	Stop() error           // Stops routing and releases resources.
	Done() <-chan struct{} // Closed when the transport shuts the router down.
	Stats() Stats          // Snapshot of the decision counters.
}
