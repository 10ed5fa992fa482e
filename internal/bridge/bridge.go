// Package bridge feeds each cycle's MIDI events through the pedal
// disambiguator and into the outgoing buffer.
package bridge

import (
	"errors"
	"sync/atomic"

	"github.com/leandrodaf/pedalsplit/internal/pedal"
	"github.com/leandrodaf/pedalsplit/sdk/contracts"
)

// ErrBufferFull is returned by sinks that cannot take another event this cycle.
var ErrBufferFull = errors.New("output buffer full")

// Bridge owns the disambiguation state of one router. Process must only be
// called from the transport's processing thread, one cycle at a time.
type Bridge struct {
	cfg   pedal.Config
	state pedal.State

	events  atomic.Uint64
	dropped atomic.Uint64
	rules   [pedal.NumRules]atomic.Uint64
}

// New creates a Bridge with all beliefs cleared.
func New(cfg pedal.Config) *Bridge {
	return &Bridge{cfg: cfg}
}

// NewFromOptions creates a Bridge from the router options.
func NewFromOptions(opts *contracts.ClientOptions) *Bridge {
	cfg := pedal.Config{Weird: opts.WeirdMode, Target: contracts.DefaultTarget}
	if opts.PedalConfig != nil {
		cfg.Target = opts.PedalConfig.Target
		cfg.Channel = opts.PedalConfig.Channel
	}
	return New(cfg)
}

// Config returns the configuration the Bridge was built with.
func (b *Bridge) Config() pedal.Config {
	return b.cfg
}

// State returns the current belief. It is not synchronized with Process.
func (b *Bridge) State() pedal.State {
	return b.state
}

// Process clears out and writes one output event per input event, in input
// order and at the input frame offset. Event data is rewritten in place.
// It always returns 0.
func (b *Bridge) Process(in contracts.EventSource, out contracts.EventSink) int {
	out.Reset()

	n := in.Len()
	for i := 0; i < n; i++ {
		frame, data := in.At(i)

		var rule pedal.Rule
		b.state, rule = pedal.Apply(b.cfg, b.state, data)
		b.rules[rule].Add(1)

		if err := out.Write(frame, data); err != nil {
			b.dropped.Add(1)
		}
	}
	b.events.Add(uint64(n))

	return 0
}

// Stats returns a snapshot of the decision counters. Safe to call from any goroutine.
func (b *Bridge) Stats() contracts.Stats {
	return contracts.Stats{
		Events:            b.events.Load(),
		PedalPresses:      b.rules[pedal.PedalPress].Load(),
		KeyPresses:        b.rules[pedal.KeyPress].Load(),
		PedalReleases:     b.rules[pedal.PedalRelease].Load() + b.rules[pedal.AmbiguousPedalRelease].Load(),
		KeyReleases:       b.rules[pedal.KeyRelease].Load() + b.rules[pedal.AmbiguousKeyRelease].Load(),
		AmbiguousReleases: b.rules[pedal.AmbiguousPedalRelease].Load() + b.rules[pedal.AmbiguousKeyRelease].Load(),
		SustainOn:         b.rules[pedal.SustainOn].Load(),
		SustainOff:        b.rules[pedal.SustainOff].Load(),
		PassedThrough:     b.rules[pedal.PassThrough].Load(),
		Dropped:           b.dropped.Load(),
	}
}

// LogStats writes a stats summary to log.
func LogStats(log contracts.Logger, s contracts.Stats) {
	log.Info("Pedal router statistics",
		log.Field().Uint64("events", s.Events),
		log.Field().Uint64("pedalPresses", s.PedalPresses),
		log.Field().Uint64("pedalReleases", s.PedalReleases),
		log.Field().Uint64("keyPresses", s.KeyPresses),
		log.Field().Uint64("keyReleases", s.KeyReleases),
		log.Field().Uint64("ambiguousReleases", s.AmbiguousReleases),
		log.Field().Uint64("sustainOn", s.SustainOn),
		log.Field().Uint64("sustainOff", s.SustainOff),
		log.Field().Uint64("passedThrough", s.PassedThrough),
		log.Field().Uint64("dropped", s.Dropped),
	)
}
