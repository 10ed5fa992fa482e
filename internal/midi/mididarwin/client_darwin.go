//go:build darwin
// +build darwin

package mididarwin

import (
	"fmt"
	"strings"
	"sync"

	"github.com/youpy/go-coremidi"

	"github.com/leandrodaf/pedalsplit/internal/bridge"
	"github.com/leandrodaf/pedalsplit/internal/midi/wire"
	"github.com/leandrodaf/pedalsplit/sdk/contracts"
)

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// Router routes MIDI between a CoreMIDI source and destination on Darwin (macOS).
// Packets may hold several messages; each one is a cycle of one event.
type Router struct {
	logger     contracts.Logger
	ports      contracts.PortConfig
	bridge     *bridge.Bridge
	client     coremidi.Client        // CoreMIDI client instance for MIDI operations.
	inputPort  coremidi.InputPort     // Input port for receiving MIDI events.
	outputPort coremidi.OutputPort    // Output port for sending rewritten events.
	portConn   internalPortConnection // Connection of the input port to the source.
	dest       *coremidi.Destination  // Destination the output port sends to, if any.
	cycle      bridge.Single
	sink       bridge.SinkFunc
	mu         sync.Mutex     // Mutex for thread safety on shared resources.
	started    bool           // Indicates if routing is currently active.
	wg         sync.WaitGroup // WaitGroup for packets being processed.
	stopOnce   sync.Once      // Ensures Stop() is executed only once.
	done       chan struct{}
}

// NewRouter creates the CoreMIDI client with its input and output ports.
func NewRouter(options *contracts.ClientOptions) (contracts.Router, error) {
	ports := *options.PortConfig

	client, err := coremidi.NewClient(ports.ClientName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateClient, err)
	}
	options.Logger.Info("MIDI client successfully created")

	r := &Router{
		logger: options.Logger,
		ports:  ports,
		bridge: bridge.NewFromOptions(options),
		client: client,
		done:   make(chan struct{}),
	}
	r.sink = r.send

	r.inputPort, err = coremidi.NewInputPort(client, ports.InputPort, r.handleMIDIMessage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}
	r.outputPort, err = coremidi.NewOutputPort(client, ports.OutputPort)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateOutputPort, err)
	}
	return r, nil
}

// Start connects the input port to the configured source and selects the
// configured destination. Either may be missing; that is logged, not fatal.
func (r *Router) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		r.logger.Warn("CoreMIDI router already started")
		return nil
	}

	r.connectSource()
	r.selectDestination()
	r.started = true
	return nil
}

func (r *Router) connectSource() {
	name := r.ports.ConnectInput
	if name == "" {
		return
	}

	sources, err := coremidi.AllSources()
	if err != nil {
		r.logger.Warn("Error listing MIDI sources", r.logger.Field().Error("error", err))
		return
	}
	for _, source := range sources {
		if !matches(source.Name(), name) {
			continue
		}
		conn, err := r.inputPort.Connect(source)
		if err != nil {
			r.logger.Warn("Error connecting to MIDI source",
				r.logger.Field().String("source", source.Name()),
				r.logger.Field().Error("error", err))
			return
		}
		r.portConn = conn
		r.logger.Info("MIDI source successfully connected", r.logger.Field().String("source", source.Name()))
		return
	}
	r.logger.Warn("MIDI source not found", r.logger.Field().String("source", name))
}

func (r *Router) selectDestination() {
	name := r.ports.ConnectOutput
	if name == "" {
		return
	}

	destinations, err := coremidi.AllDestinations()
	if err != nil {
		r.logger.Warn("Error listing MIDI destinations", r.logger.Field().Error("error", err))
		return
	}
	for i := range destinations {
		if matches(destinations[i].Name(), name) {
			r.dest = &destinations[i]
			r.logger.Info("MIDI destination selected", r.logger.Field().String("destination", destinations[i].Name()))
			return
		}
	}
	r.logger.Warn("MIDI destination not found", r.logger.Field().String("destination", name))
}

func matches(name, want string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(want))
}

// handleMIDIMessage runs every message of the packet through the bridge.
// Adds to WaitGroup so Stop can wait for packets in flight.
func (r *Router) handleMIDIMessage(_ coremidi.Source, packet coremidi.Packet) {
	r.wg.Add(1)
	defer r.wg.Done()

	for rest := packet.Data; len(rest) > 0; {
		r.cycle.Data, rest = wire.Next(rest)
		r.bridge.Process(&r.cycle, r.sink)
	}
}

func (r *Router) send(_ uint32, data []byte) error {
	if r.dest == nil {
		return ErrNoDestination
	}
	packet := coremidi.NewPacket(data, 0)
	return packet.Send(&r.outputPort, r.dest)
}

// Stop disconnects from the source and waits for ongoing processing to complete.
// This function ensures it only executes once, even if called multiple times.
func (r *Router) Stop() error {
	r.stopOnce.Do(func() {
		r.logger.Info("Stopping CoreMIDI router")
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.portConn != nil {
			r.portConn.Disconnect()
			r.portConn = nil
		}
		r.started = false
		r.wg.Wait()

		bridge.LogStats(r.logger, r.bridge.Stats())
	})
	return nil
}

// Done never closes: CoreMIDI keeps the client until the process exits.
func (r *Router) Done() <-chan struct{} {
	return r.done
}

// Stats returns the bridge counters.
func (r *Router) Stats() contracts.Stats {
	return r.bridge.Stats()
}
