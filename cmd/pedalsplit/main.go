// Command pedalsplit separates a sustain pedal from the key it shares a
// contact with, rewriting the key's events into sustain Control-Change.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/pedalsplit/internal/config"
	"github.com/leandrodaf/pedalsplit/internal/logger"
	"github.com/leandrodaf/pedalsplit/sdk/contracts"
	"github.com/leandrodaf/pedalsplit/sdk/midi"
)

// errUsage is returned for any command line other than an optional --weird.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// parseArgs accepts an optional --weird and nothing else. On error the
// usage message has already been written to stderr.
func parseArgs(args []string, stdout, stderr io.Writer) (bool, error) {
	fs := flag.NewFlagSet("pedalsplit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	weird := fs.Bool("weird", false, "release sustain if indistinguishable from the key")

	if err := fs.Parse(args); err != nil || fs.NArg() > 0 {
		fmt.Fprintln(stderr, "Usage: pedalsplit [--weird]")
		fmt.Fprintln(stderr, "Weird means release sustain if indistinguishable from the target key.")
		return false, errUsage
	}
	if *weird {
		fmt.Fprintln(stdout, "Weird mode engaged!")
	}
	return *weird, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	weird, err := parseArgs(args, stdout, stderr)
	if err != nil {
		return 1
	}

	log := logger.NewZapLogger()

	envOpts, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		log.Error("Invalid configuration", log.Field().Error("error", err))
		return 1
	}

	opts := append([]contracts.Option{
		contracts.WithLogger(log),
		contracts.WithWeirdMode(weird),
	}, envOpts...)

	router, err := midi.NewPedalRouter(opts...)
	if err != nil {
		log.Error("Failed to initialize pedal router", log.Field().Error("error", err))
		return 1
	}

	if err := router.Start(); err != nil {
		log.Error("Failed to start pedal router", log.Field().Error("error", err))
		_ = router.Stop()
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return wait(ctx, router, log)
}

// wait blocks until a termination signal or a transport shutdown.
func wait(ctx context.Context, router contracts.Router, log contracts.Logger) int {
	status := 0
	select {
	case <-ctx.Done():
		log.Info("Termination requested")
	case <-router.Done():
		log.Error("MIDI transport went away")
		status = 1
	}

	if err := router.Stop(); err != nil {
		log.Warn("Errors while stopping pedal router", log.Field().Error("error", err))
	}
	return status
}
