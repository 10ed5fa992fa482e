package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/leandrodaf/pedalsplit/internal/logger"
	"github.com/leandrodaf/pedalsplit/sdk/contracts"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args    []string
		weird   bool
		wantErr bool
		stdout  string
	}{
		{args: nil},
		{args: []string{"--weird"}, weird: true, stdout: "Weird mode engaged!\n"},
		{args: []string{"-weird"}, weird: true, stdout: "Weird mode engaged!\n"},
		{args: []string{"--strange"}, wantErr: true},
		{args: []string{"weird"}, wantErr: true},
		{args: []string{"--weird", "extra"}, wantErr: true},
		{args: []string{"-h"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			weird, err := parseArgs(tt.args, &stdout, &stderr)

			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if weird != tt.weird {
				t.Errorf("weird = %v, want %v", weird, tt.weird)
			}
			if stdout.String() != tt.stdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.stdout)
			}

			lines := strings.Split(strings.TrimRight(stderr.String(), "\n"), "\n")
			if tt.wantErr && (len(lines) != 2 || !strings.HasPrefix(lines[0], "Usage:")) {
				t.Errorf("stderr = %q, want a two-line usage", stderr.String())
			}
			if !tt.wantErr && stderr.Len() != 0 {
				t.Errorf("stderr = %q, want nothing", stderr.String())
			}
		})
	}
}

func TestRunRejectsBadArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--nope"}, &stdout, &stderr); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
}

type fakeRouter struct {
	done    chan struct{}
	stopped int
}

func (f *fakeRouter) Start() error { return nil }

func (f *fakeRouter) Stop() error {
	f.stopped++
	return nil
}

func (f *fakeRouter) Done() <-chan struct{} { return f.done }

func (f *fakeRouter) Stats() contracts.Stats { return contracts.Stats{} }

func TestWait(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewZapLoggerWithCore(core)

	t.Run("signal", func(t *testing.T) {
		r := &fakeRouter{done: make(chan struct{})}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if code := wait(ctx, r, log); code != 0 {
			t.Errorf("wait() = %d, want 0", code)
		}
		if r.stopped != 1 {
			t.Errorf("Stop called %d times", r.stopped)
		}
	})

	t.Run("transport shutdown", func(t *testing.T) {
		r := &fakeRouter{done: make(chan struct{})}
		close(r.done)
		if code := wait(context.Background(), r, log); code != 1 {
			t.Errorf("wait() = %d, want 1", code)
		}
		if r.stopped != 1 {
			t.Errorf("Stop called %d times", r.stopped)
		}
	})

	if logs.FilterMessage("MIDI transport went away").Len() != 1 {
		t.Errorf("missing shutdown log, got %+v", logs.AllUntimed())
	}
}
