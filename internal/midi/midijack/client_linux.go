//go:build linux && cgo && !nojack

package midijack

import (
	"fmt"
	"sync"

	"github.com/xthexder/go-jack"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/leandrodaf/pedalsplit/internal/bridge"
	"github.com/leandrodaf/pedalsplit/sdk/contracts"
)

// Router runs the pedal bridge once per JACK cycle.
// Every field used by process is allocated before activation.
type Router struct {
	logger contracts.Logger
	ports  contracts.PortConfig
	bridge *bridge.Bridge

	client *jack.Client
	input  *jack.Port
	output *jack.Port

	source cycleSource
	sink   cycleSink

	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
}

// cycleSource exposes the input port's events for the current cycle.
type cycleSource struct {
	events []*jack.MidiData
}

func (s *cycleSource) Len() int { return len(s.events) }

func (s *cycleSource) At(i int) (uint32, []byte) {
	return s.events[i].Time, s.events[i].Buffer
}

// cycleSink writes into the output port's buffer for the current cycle.
type cycleSink struct {
	port    *jack.Port
	nframes uint32
	buffer  jack.MidiBuffer
	scratch jack.MidiData
}

func (s *cycleSink) Reset() {
	s.buffer = s.port.MidiClearBuffer(s.nframes)
}

func (s *cycleSink) Write(frame uint32, data []byte) error {
	s.scratch.Time = frame
	s.scratch.Buffer = data
	if s.port.MidiEventWrite(&s.scratch, s.buffer) != 0 {
		return bridge.ErrBufferFull
	}
	return nil
}

// NewRouter opens a JACK client without starting a server and registers the
// input and output MIDI ports. The client is not activated yet.
func NewRouter(options *contracts.ClientOptions) (contracts.Router, error) {
	ports := *options.PortConfig

	client, status := jack.ClientOpen(ports.ClientName, jack.NoStartServer)
	if status != 0 || client == nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, jack.StrError(status))
	}
	options.Logger.Info("JACK client successfully created",
		options.Logger.Field().String("client", ports.ClientName))

	r := &Router{
		logger: options.Logger,
		ports:  ports,
		bridge: bridge.NewFromOptions(options),
		client: client,
		done:   make(chan struct{}),
	}

	if code := client.SetProcessCallback(r.process); code != 0 {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrProcessCallback, jack.StrError(code))
	}
	client.OnShutdown(r.shutdown)

	r.input = client.PortRegister(ports.InputPort, jack.DEFAULT_MIDI_TYPE, jack.PortIsInput, 0)
	r.output = client.PortRegister(ports.OutputPort, jack.DEFAULT_MIDI_TYPE, jack.PortIsOutput, 0)
	if r.input == nil || r.output == nil {
		client.Close()
		return nil, ErrPortRegistration
	}
	r.sink.port = r.output

	r.logger.Info("JACK MIDI ports registered",
		r.logger.Field().String("input", r.input.GetName()),
		r.logger.Field().String("output", r.output.GetName()))
	return r, nil
}

// process is the JACK process callback. It must not block, allocate or log.
func (r *Router) process(nframes uint32) int {
	r.source.events = r.input.GetMidiEvents(nframes)
	r.sink.nframes = nframes
	return r.bridge.Process(&r.source, &r.sink)
}

func (r *Router) shutdown() {
	r.doneOnce.Do(func() {
		r.logger.Error("JACK server shut the client down")
		close(r.done)
	})
}

// Start activates the client and connects the configured peers.
// Connection failures are logged and do not fail Start.
func (r *Router) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		r.logger.Warn("JACK client already active")
		return nil
	}

	lockMemory(r.logger)

	if code := r.client.Activate(); code != 0 {
		return fmt.Errorf("%w: %v", ErrActivation, jack.StrError(code))
	}
	r.started = true
	r.logger.Info("JACK client activated")

	r.connect(r.ports.ConnectInput, r.input.GetName())
	r.connect(r.output.GetName(), r.ports.ConnectOutput)
	return nil
}

func (r *Router) connect(src, dst string) {
	if src == "" || dst == "" {
		r.logger.Debug("Auto-connection disabled",
			r.logger.Field().String("source", src),
			r.logger.Field().String("destination", dst))
		return
	}
	if code := r.client.Connect(src, dst); code != 0 {
		r.logger.Warn("Could not connect JACK ports",
			r.logger.Field().String("source", src),
			r.logger.Field().String("destination", dst),
			r.logger.Field().Error("error", jack.StrError(code)))
		return
	}
	r.logger.Info("JACK ports connected",
		r.logger.Field().String("source", src),
		r.logger.Field().String("destination", dst))
}

// Stop closes the JACK client. It is safe to call more than once.
func (r *Router) Stop() error {
	var err error
	r.stopOnce.Do(func() {
		r.logger.Info("Stopping JACK client")
		r.mu.Lock()
		defer r.mu.Unlock()

		if code := r.client.Close(); code != 0 {
			err = multierr.Append(err, fmt.Errorf("close JACK client: %w", jack.StrError(code)))
		}
		if r.started {
			err = multierr.Append(err, unix.Munlockall())
			r.started = false
		}
		bridge.LogStats(r.logger, r.bridge.Stats())
	})
	return err
}

// Done is closed when the JACK server shuts the client down.
func (r *Router) Done() <-chan struct{} {
	return r.done
}

// Stats returns the bridge counters.
func (r *Router) Stats() contracts.Stats {
	return r.bridge.Stats()
}

// lockMemory keeps the pages already mapped resident so the process callback
// does not page-fault. Only current mappings are locked: locking future ones
// would make later heap growth fail under a small RLIMIT_MEMLOCK.
func lockMemory(log contracts.Logger) {
	if err := unix.Mlockall(unix.MCL_CURRENT); err != nil {
		log.Warn("Could not lock process memory", log.Field().Error("error", err))
	}
}
