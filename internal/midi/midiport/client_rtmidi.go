//go:build cgo && !nortmidi

package midiport

import (
	"fmt"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.uber.org/multierr"

	"github.com/leandrodaf/pedalsplit/internal/bridge"
	"github.com/leandrodaf/pedalsplit/sdk/contracts"
)

// Router forwards messages from an rtmidi input to an rtmidi output.
//
// When a peer is configured its port is opened directly; otherwise, or when
// the peer cannot be found, a virtual port named after the client is created
// for other applications to connect to.
type Router struct {
	logger contracts.Logger
	ports  contracts.PortConfig
	bridge *bridge.Bridge
	drv    *rtmididrv.Driver

	in         drivers.In
	out        drivers.Out
	send       func(midi.Message) error
	stopListen func()

	cycle bridge.Single
	sink  bridge.SinkFunc

	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
}

// NewRouter initialises the rtmidi driver.
func NewRouter(options *contracts.ClientOptions) (contracts.Router, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDriver, err)
	}
	options.Logger.Info("rtmidi driver successfully created")

	r := &Router{
		logger: options.Logger,
		ports:  *options.PortConfig,
		bridge: bridge.NewFromOptions(options),
		drv:    drv,
		done:   make(chan struct{}),
	}
	r.sink = func(_ uint32, data []byte) error {
		return r.send(midi.Message(data))
	}
	return r, nil
}

// Start opens both ports and starts listening.
func (r *Router) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		r.logger.Warn("rtmidi router already started")
		return nil
	}

	in, err := r.openIn()
	if err != nil {
		return err
	}
	out, err := r.openOut()
	if err != nil {
		_ = in.Close()
		return err
	}

	send, err := midi.SendTo(out)
	if err != nil {
		_ = multierr.Append(in.Close(), out.Close())
		return fmt.Errorf("%w: %v", ErrPortOpen, err)
	}
	r.in, r.out, r.send = in, out, send

	stop, err := midi.ListenTo(in, r.receive, midi.HandleError(r.listenError))
	if err != nil {
		_ = multierr.Append(in.Close(), out.Close())
		return fmt.Errorf("%w: %v", ErrListen, err)
	}
	r.stopListen = stop
	r.started = true

	r.logger.Info("rtmidi router started",
		r.logger.Field().String("input", in.String()),
		r.logger.Field().String("output", out.String()))
	return nil
}

// receive is called by the driver for every incoming message, one at a time.
func (r *Router) receive(msg midi.Message, _ int32) {
	r.cycle.Data = msg
	r.bridge.Process(&r.cycle, r.sink)
}

func (r *Router) listenError(err error) {
	r.doneOnce.Do(func() {
		r.logger.Error("MIDI input failed", r.logger.Field().Error("error", err))
		close(r.done)
	})
}

func (r *Router) openIn() (drivers.In, error) {
	if peer := r.ports.ConnectInput; peer != "" {
		ins, err := r.drv.Ins()
		if err == nil {
			if in := findPort(ins, peer); in != nil {
				if err = in.Open(); err == nil {
					r.logger.Info("MIDI input connected", r.logger.Field().String("port", in.String()))
					return in, nil
				}
			}
		}
		r.logger.Warn("Could not connect MIDI input, using a virtual port",
			r.logger.Field().String("peer", peer),
			r.logger.Field().Error("error", err))
	}

	in, err := r.drv.OpenVirtualIn(virtualName(r.ports.ClientName, r.ports.InputPort))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPortOpen, err)
	}
	return in, nil
}

func (r *Router) openOut() (drivers.Out, error) {
	if peer := r.ports.ConnectOutput; peer != "" {
		outs, err := r.drv.Outs()
		if err == nil {
			if out := findPort(outs, peer); out != nil {
				if err = out.Open(); err == nil {
					r.logger.Info("MIDI output connected", r.logger.Field().String("port", out.String()))
					return out, nil
				}
			}
		}
		r.logger.Warn("Could not connect MIDI output, using a virtual port",
			r.logger.Field().String("peer", peer),
			r.logger.Field().Error("error", err))
	}

	out, err := r.drv.OpenVirtualOut(virtualName(r.ports.ClientName, r.ports.OutputPort))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPortOpen, err)
	}
	return out, nil
}

// findPort returns the first port whose name contains name, ignoring case.
func findPort[P interface{ String() string }](ports []P, name string) P {
	var zero P
	for _, p := range ports {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			return p
		}
	}
	return zero
}

func virtualName(client, port string) string {
	return client + " " + port
}

// Stop stops listening and closes the ports and the driver.
func (r *Router) Stop() error {
	var err error
	r.stopOnce.Do(func() {
		r.logger.Info("Stopping rtmidi router")
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.started {
			r.stopListen()
			err = multierr.Combine(r.in.Close(), r.out.Close())
			r.started = false
		}
		err = multierr.Append(err, r.drv.Close())
		bridge.LogStats(r.logger, r.bridge.Stats())
	})
	return err
}

// Done is closed when the input listener fails.
func (r *Router) Done() <-chan struct{} {
	return r.done
}

// Stats returns the bridge counters.
func (r *Router) Stats() contracts.Stats {
	return r.bridge.Stats()
}
