package midi

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/pedalsplit/internal/logger"
	"github.com/leandrodaf/pedalsplit/sdk/contracts"
)

// Validation errors for ClientOptions.
var (
	ErrInvalidTarget  = errors.New("target must be a MIDI data value (0-127)")
	ErrInvalidChannel = errors.New("channel must be between 0 and 15")
	ErrEmptyPortName  = errors.New("client and port names must not be empty")
)

// applyDefaultOptions sets default values for ClientOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: A structure containing the finalized client options with defaults applied.
//   - error: An error if the resulting options are invalid.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Set defaults if options are not provided
	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.PedalConfig == nil {
		pedal := contracts.DefaultPedalConfig()
		options.PedalConfig = &pedal
	}
	if options.PortConfig == nil {
		ports := contracts.DefaultPortConfig()
		options.PortConfig = &ports
	}
	if options.Backend == "" {
		options.Backend = defaultBackend()
	}

	if err := validateOptions(options); err != nil {
		return contracts.ClientOptions{}, err
	}

	options.Logger.SetLevel(options.LogLevel)
	if options.LogFilePath != "" {
		if err := options.Logger.SetDestination(contracts.FileLog, options.LogFilePath); err != nil {
			return contracts.ClientOptions{}, err
		}
	}
	return *options, nil
}

func validateOptions(options *contracts.ClientOptions) error {
	if options.PedalConfig.Target > 0x7F {
		return fmt.Errorf("%w: %d", ErrInvalidTarget, options.PedalConfig.Target)
	}
	if options.PedalConfig.Channel > 0x0F {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, options.PedalConfig.Channel)
	}
	p := options.PortConfig
	if p.ClientName == "" || p.InputPort == "" || p.OutputPort == "" {
		return ErrEmptyPortName
	}
	if _, ok := clientInitializers[options.Backend]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBackend, options.Backend)
	}
	return nil
}
