// Package config turns PEDALSPLIT_* environment variables into router options.
package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/leandrodaf/pedalsplit/sdk/contracts"
)

// Environment variable names.
const (
	EnvBackend       = "PEDALSPLIT_BACKEND"
	EnvClientName    = "PEDALSPLIT_CLIENT_NAME"
	EnvConnectInput  = "PEDALSPLIT_CONNECT_INPUT"
	EnvConnectOutput = "PEDALSPLIT_CONNECT_OUTPUT"
	EnvTarget        = "PEDALSPLIT_TARGET"
	EnvChannel       = "PEDALSPLIT_CHANNEL"
	EnvLogLevel      = "PEDALSPLIT_LOG_LEVEL"
	EnvLogFile       = "PEDALSPLIT_LOG_FILE"
)

// ErrInvalidValue is returned for variables that cannot be parsed.
var ErrInvalidValue = errors.New("invalid environment value")

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv reads the PEDALSPLIT_* variables. Unset variables leave the
// defaults alone; a set but empty connect variable disables that connection.
func FromEnv(lookup LookupFunc) ([]contracts.Option, error) {
	var opts []contracts.Option

	if v, ok := lookup(EnvBackend); ok && v != "" {
		opts = append(opts, contracts.WithBackend(contracts.Backend(v)))
	}
	if v, ok := lookup(EnvClientName); ok && v != "" {
		opts = append(opts, contracts.WithClientName(v))
	}

	in, inSet := lookup(EnvConnectInput)
	out, outSet := lookup(EnvConnectOutput)
	if inSet || outSet {
		if !inSet {
			in = contracts.DefaultConnectInput
		}
		if !outSet {
			out = contracts.DefaultConnectOutput
		}
		opts = append(opts, contracts.WithConnections(in, out))
	}

	pedal := contracts.DefaultPedalConfig()
	pedalSet := false
	if v, ok := lookup(EnvTarget); ok && v != "" {
		n, err := parseByte(EnvTarget, v, 0x7F)
		if err != nil {
			return nil, err
		}
		pedal.Target, pedalSet = n, true
	}
	if v, ok := lookup(EnvChannel); ok && v != "" {
		n, err := parseByte(EnvChannel, v, 0x0F)
		if err != nil {
			return nil, err
		}
		pedal.Channel, pedalSet = n, true
	}
	if pedalSet {
		opts = append(opts, contracts.WithPedalConfig(pedal))
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		level, err := contracts.ParseLogLevel(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, EnvLogLevel, err)
		}
		opts = append(opts, contracts.WithLogLevel(level))
	}
	if v, ok := lookup(EnvLogFile); ok && v != "" {
		opts = append(opts, contracts.WithLogFile(v))
	}

	return opts, nil
}

// parseByte accepts decimal, 0x-prefixed hex or 0-prefixed octal.
func parseByte(key, v string, max uint64) (uint8, error) {
	n, err := strconv.ParseUint(v, 0, 8)
	if err != nil || n > max {
		return 0, fmt.Errorf("%w: %s=%q (want 0-%d)", ErrInvalidValue, key, v, max)
	}
	return uint8(n), nil
}
