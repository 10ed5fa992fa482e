package contracts

// Backend names a MIDI transport implementation.
type Backend string

const (
	// BackendJACK routes events through a JACK client with one MIDI input and one MIDI output port.
	BackendJACK Backend = "jack"
	// BackendRtMIDI routes events through the rtmidi driver (ALSA sequencer, CoreMIDI or WinMM).
	BackendRtMIDI Backend = "rtmidi"
	// BackendCoreMIDI routes events through CoreMIDI directly (macOS).
	BackendCoreMIDI Backend = "coremidi"
	// BackendWinMM routes events through the winmm midiIn/midiOut API (Windows).
	BackendWinMM Backend = "winmm"
)

// Default values used when an option is not provided.
const (
	DefaultClientName    = "pedalsplit"
	DefaultInputPort     = "input"
	DefaultOutputPort    = "output"
	DefaultConnectInput  = "system:midi_capture_2"
	DefaultConnectOutput = "qsynth:midi"
	DefaultTarget        = 0x40 // E3 on the source hardware.
)

// PedalConfig identifies the physical contact shared by the sustain pedal and a key.
type PedalConfig struct {
	Target  uint8 // Note number of the key, also used as the sustain controller number.
	Channel uint8 // MIDI channel (0-15) the contact reports on.
}

// DefaultPedalConfig returns the mapping of the original hardware: E3 on channel 0.
func DefaultPedalConfig() PedalConfig {
	return PedalConfig{Target: DefaultTarget}
}

// PortConfig holds port naming and auto-connection settings of a transport.
type PortConfig struct {
	ClientName    string // Name registered with the transport.
	InputPort     string // Short name of the MIDI input port.
	OutputPort    string // Short name of the MIDI output port.
	ConnectInput  string // Peer connected to the input port; empty disables auto-connection.
	ConnectOutput string // Peer the output port is connected to; empty disables auto-connection.
}

// DefaultPortConfig returns the port names and peers used when none are configured.
func DefaultPortConfig() PortConfig {
	return PortConfig{
		ClientName:    DefaultClientName,
		InputPort:     DefaultInputPort,
		OutputPort:    DefaultOutputPort,
		ConnectInput:  DefaultConnectInput,
		ConnectOutput: DefaultConnectOutput,
	}
}

// ClientOptions defines the configuration options for the pedal router.
type ClientOptions struct {
	Logger      Logger       // Logger for logging events and errors.
	LogLevel    LogLevel     // Level of logging to use.
	LogFilePath string       // File path for logging if file logging is enabled.
	WeirdMode   bool         // Release the pedal, not the key, when a release cannot be attributed.
	Backend     Backend      // Transport to use; empty selects one by operating system.
	PedalConfig *PedalConfig // Target key/controller and channel.
	PortConfig  *PortConfig  // Port names and auto-connections.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the router.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the router.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile directs log output to the given file.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithWeirdMode selects the tie-break for fully ambiguous releases.
func WithWeirdMode(weird bool) Option {
	return func(opts *ClientOptions) {
		opts.WeirdMode = weird
	}
}

// WithBackend forces a specific transport.
func WithBackend(b Backend) Option {
	return func(opts *ClientOptions) {
		opts.Backend = b
	}
}

// WithPedalConfig sets the target key/controller and channel.
func WithPedalConfig(config PedalConfig) Option {
	return func(opts *ClientOptions) {
		opts.PedalConfig = &config
	}
}

// WithClientName sets the name registered with the transport.
func WithClientName(name string) Option {
	return func(opts *ClientOptions) {
		opts.ports().ClientName = name
	}
}

// WithPortNames sets the short names of the input and output ports.
func WithPortNames(input, output string) Option {
	return func(opts *ClientOptions) {
		p := opts.ports()
		p.InputPort = input
		p.OutputPort = output
	}
}

// WithConnections sets the peers connected at start. An empty name disables that connection.
func WithConnections(input, output string) Option {
	return func(opts *ClientOptions) {
		p := opts.ports()
		p.ConnectInput = input
		p.ConnectOutput = output
	}
}

func (o *ClientOptions) ports() *PortConfig {
	if o.PortConfig == nil {
		p := DefaultPortConfig()
		o.PortConfig = &p
	}
	return o.PortConfig
}
