package bridge

import "github.com/leandrodaf/pedalsplit/sdk/contracts"

// Events is an EventSource over a slice.
type Events []contracts.MIDIEvent

func (e Events) Len() int { return len(e) }

func (e Events) At(i int) (uint32, []byte) { return e[i].Frame, e[i].Data }

// Buffer is an EventSink that collects events in memory, up to Cap events
// when Cap is positive.
type Buffer struct {
	Events Events
	Cap    int
}

// NewBuffer returns a Buffer preallocated for capacity events.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{Events: make(Events, 0, capacity), Cap: capacity}
}

func (b *Buffer) Reset() { b.Events = b.Events[:0] }

func (b *Buffer) Write(frame uint32, data []byte) error {
	if b.Cap > 0 && len(b.Events) >= b.Cap {
		return ErrBufferFull
	}
	b.Events = append(b.Events, contracts.MIDIEvent{Frame: frame, Data: data})
	return nil
}

// SinkFunc adapts a send function to an EventSink for transports that
// deliver one message at a time.
type SinkFunc func(frame uint32, data []byte) error

func (f SinkFunc) Reset() {}

func (f SinkFunc) Write(frame uint32, data []byte) error { return f(frame, data) }

// Single is an EventSource holding one event.
type Single struct {
	Frame uint32
	Data  []byte
}

func (s *Single) Len() int { return 1 }

func (s *Single) At(int) (uint32, []byte) { return s.Frame, s.Data }
