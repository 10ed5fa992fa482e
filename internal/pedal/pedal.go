// Package pedal separates sustain pedal events from key events on hardware
// where the pedal and one key share the same physical contact.
//
// The device reports a pedal press as a full-velocity Note-On on the target
// key. Everything else is inferred from history: Transform keeps a belief of
// whether the pedal and the key are down and rewrites Note-On/Note-Off on the
// target into sustain Control-Change messages when the belief says so.
//
// Transform and Apply never allocate, block or fail, so they can run inside a
// real-time audio callback.
package pedal

const (
	statusNoteOff       byte = 0x80
	statusNoteOn        byte = 0x90
	statusControlChange byte = 0xB0

	pressVelocity byte = 0x7F
	sustainOnMin  byte = 0x40 // values above this mean pressed
)

// Config is fixed before the first event is processed.
type Config struct {
	Weird   bool  // On a fully ambiguous release, release the pedal instead of the key.
	Target  uint8 // Note number of the shared key; also the sustain controller number.
	Channel uint8 // Channel the shared contact reports on.
}

// State is the belief about the two logical controls sharing the contact.
// Both fields may be true at once.
type State struct {
	Sustained bool // The pedal is believed to be down.
	KeyDown   bool // The target key is believed to be down.
}

// Message is a 3-byte MIDI channel message.
type Message [3]byte

// Status returns the status byte.
func (m Message) Status() byte { return m[0] }

// Data1 returns the note or controller number.
func (m Message) Data1() byte { return m[1] }

// Data2 returns the velocity or control value.
func (m Message) Data2() byte { return m[2] }

// Rule identifies the decision taken for one event.
type Rule uint8

const (
	PassThrough           Rule = iota // Not the target, or not a 3-byte message.
	PedalPress                        // Full-velocity Note-On rewritten to sustain on.
	KeyPress                          // Note-On kept as the key.
	PedalRelease                      // Note-Off rewritten to sustain off, only the pedal was down.
	AmbiguousPedalRelease             // Note-Off with both down, weird tie-break released the pedal.
	AmbiguousKeyRelease               // Note-Off with both down, default tie-break released the key.
	KeyRelease                        // Note-Off kept as the key.
	SustainOn                         // Sustain controller above the threshold.
	SustainOff                        // Sustain controller clamped to 0.

	NumRules = int(SustainOff) + 1
)

var ruleNames = [NumRules]string{
	"pass-through",
	"pedal-press",
	"key-press",
	"pedal-release",
	"ambiguous-pedal-release",
	"ambiguous-key-release",
	"key-release",
	"sustain-on",
	"sustain-off",
}

func (r Rule) String() string {
	if int(r) < NumRules {
		return ruleNames[r]
	}
	return "unknown"
}

// Transform decides what msg means given the current belief and returns the
// message to emit in its place together with the next belief. It is total:
// every input yields exactly one output message.
func Transform(cfg Config, s State, msg Message) (Message, State, Rule) {
	if msg[1] != cfg.Target {
		return msg, s, PassThrough
	}

	ch := cfg.Channel & 0x0F
	cc := statusControlChange | ch

	switch msg[0] {
	case statusNoteOn | ch:
		// The pedal always reports full velocity; a struck key rarely does.
		if msg[2] == pressVelocity {
			msg[0] = cc
			s.Sustained = true
			return msg, s, PedalPress
		}
		s.KeyDown = true
		return msg, s, KeyPress

	case statusNoteOff | ch:
		switch {
		case s.Sustained && s.KeyDown:
			if cfg.Weird {
				msg[0], msg[2] = cc, 0
				s.Sustained = false
				return msg, s, AmbiguousPedalRelease
			}
			s.KeyDown = false
			return msg, s, AmbiguousKeyRelease
		case s.Sustained:
			msg[0], msg[2] = cc, 0
			s.Sustained = false
			return msg, s, PedalRelease
		default:
			s.KeyDown = false
			return msg, s, KeyRelease
		}

	case cc:
		if msg[2] > sustainOnMin {
			s.Sustained = true
			return msg, s, SustainOn
		}
		msg[2] = 0
		s.Sustained = false
		return msg, s, SustainOff
	}

	return msg, s, PassThrough
}

// Apply runs Transform on a raw event and rewrites it in place. Events that
// are not exactly 3 bytes long are left untouched.
func Apply(cfg Config, s State, data []byte) (State, Rule) {
	if len(data) != 3 {
		return s, PassThrough
	}
	out, next, rule := Transform(cfg, s, Message{data[0], data[1], data[2]})
	data[0], data[2] = out[0], out[2]
	return next, rule
}
