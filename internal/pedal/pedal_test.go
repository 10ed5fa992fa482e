package pedal

import (
	"testing"
)

var e3 = Config{Target: 0x40}

func TestTransformDecisionTable(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		state State
		in    Message
		out   Message
		next  State
		rule  Rule
	}{
		{"full velocity note-on is the pedal", e3, State{}, Message{0x90, 0x40, 0x7F}, Message{0xB0, 0x40, 0x7F}, State{Sustained: true}, PedalPress},
		{"pedal press keeps key belief", e3, State{KeyDown: true}, Message{0x90, 0x40, 0x7F}, Message{0xB0, 0x40, 0x7F}, State{Sustained: true, KeyDown: true}, PedalPress},
		{"softer note-on is the key", e3, State{}, Message{0x90, 0x40, 0x60}, Message{0x90, 0x40, 0x60}, State{KeyDown: true}, KeyPress},
		{"key press while sustained", e3, State{Sustained: true}, Message{0x90, 0x40, 0x01}, Message{0x90, 0x40, 0x01}, State{Sustained: true, KeyDown: true}, KeyPress},
		{"zero velocity note-on counts as key press", e3, State{}, Message{0x90, 0x40, 0x00}, Message{0x90, 0x40, 0x00}, State{KeyDown: true}, KeyPress},
		{"release with only pedal down", e3, State{Sustained: true}, Message{0x80, 0x40, 0x25}, Message{0xB0, 0x40, 0x00}, State{}, PedalRelease},
		{"release with only key down", e3, State{KeyDown: true}, Message{0x80, 0x40, 0x00}, Message{0x80, 0x40, 0x00}, State{}, KeyRelease},
		{"release with nothing down", e3, State{}, Message{0x80, 0x40, 0x10}, Message{0x80, 0x40, 0x10}, State{}, KeyRelease},
		{"ambiguous release defaults to the key", e3, State{Sustained: true, KeyDown: true}, Message{0x80, 0x40, 0x00}, Message{0x80, 0x40, 0x00}, State{Sustained: true}, AmbiguousKeyRelease},
		{"ambiguous release in weird mode", Config{Weird: true, Target: 0x40}, State{Sustained: true, KeyDown: true}, Message{0x80, 0x40, 0x00}, Message{0xB0, 0x40, 0x00}, State{KeyDown: true}, AmbiguousPedalRelease},
		{"weird mode does not affect unambiguous release", Config{Weird: true, Target: 0x40}, State{KeyDown: true}, Message{0x80, 0x40, 0x00}, Message{0x80, 0x40, 0x00}, State{}, KeyRelease},
		{"sustain controller pressed", e3, State{}, Message{0xB0, 0x40, 0x7F}, Message{0xB0, 0x40, 0x7F}, State{Sustained: true}, SustainOn},
		{"sustain controller just above threshold", e3, State{}, Message{0xB0, 0x40, 0x41}, Message{0xB0, 0x40, 0x41}, State{Sustained: true}, SustainOn},
		{"sustain controller at threshold is released", e3, State{Sustained: true}, Message{0xB0, 0x40, 0x40}, Message{0xB0, 0x40, 0x00}, State{}, SustainOff},
		{"sustain controller clamp", e3, State{Sustained: true, KeyDown: true}, Message{0xB0, 0x40, 0x30}, Message{0xB0, 0x40, 0x00}, State{KeyDown: true}, SustainOff},
		{"other note", e3, State{Sustained: true}, Message{0x90, 0x41, 0x7F}, Message{0x90, 0x41, 0x7F}, State{Sustained: true}, PassThrough},
		{"other controller", e3, State{}, Message{0xB0, 0x07, 0x7F}, Message{0xB0, 0x07, 0x7F}, State{}, PassThrough},
		{"other channel", e3, State{}, Message{0x91, 0x40, 0x7F}, Message{0x91, 0x40, 0x7F}, State{}, PassThrough},
		{"polyphonic aftertouch on target", e3, State{KeyDown: true}, Message{0xA0, 0x40, 0x7F}, Message{0xA0, 0x40, 0x7F}, State{KeyDown: true}, PassThrough},
		{"configured channel", Config{Target: 0x40, Channel: 3}, State{}, Message{0x93, 0x40, 0x7F}, Message{0xB3, 0x40, 0x7F}, State{Sustained: true}, PedalPress},
		{"configured channel release", Config{Target: 0x40, Channel: 3}, State{Sustained: true}, Message{0x83, 0x40, 0x40}, Message{0xB3, 0x40, 0x00}, State{}, PedalRelease},
		{"configured target", Config{Target: 0x24}, State{}, Message{0x90, 0x24, 0x7F}, Message{0xB0, 0x24, 0x7F}, State{Sustained: true}, PedalPress},
		{"default target ignored when reconfigured", Config{Target: 0x24}, State{}, Message{0x90, 0x40, 0x7F}, Message{0x90, 0x40, 0x7F}, State{}, PassThrough},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, next, rule := Transform(tt.cfg, tt.state, tt.in)
			if out != tt.out {
				t.Errorf("message = % X, want % X", out, tt.out)
			}
			if next != tt.next {
				t.Errorf("state = %+v, want %+v", next, tt.next)
			}
			if rule != tt.rule {
				t.Errorf("rule = %s, want %s", rule, tt.rule)
			}
		})
	}
}

type step struct {
	in   Message
	out  Message
	next State
}

func runSteps(t *testing.T, cfg Config, start State, steps []step) {
	t.Helper()
	s := start
	for i, st := range steps {
		var out Message
		out, s, _ = Transform(cfg, s, st.in)
		if out != st.out {
			t.Fatalf("step %d: message = % X, want % X", i, out, st.out)
		}
		if s != st.next {
			t.Fatalf("step %d: state = %+v, want %+v", i, s, st.next)
		}
	}
}

func TestScenarioCleanPedal(t *testing.T) {
	runSteps(t, e3, State{}, []step{
		{Message{0x90, 0x40, 0x7F}, Message{0xB0, 0x40, 0x7F}, State{Sustained: true}},
		{Message{0x80, 0x40, 0x00}, Message{0xB0, 0x40, 0x00}, State{}},
	})
}

func TestScenarioGenuineKey(t *testing.T) {
	runSteps(t, e3, State{}, []step{
		{Message{0x90, 0x40, 0x60}, Message{0x90, 0x40, 0x60}, State{KeyDown: true}},
		{Message{0x80, 0x40, 0x00}, Message{0x80, 0x40, 0x00}, State{}},
	})
}

func TestScenarioAmbiguousRelease(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		runSteps(t, e3, State{Sustained: true, KeyDown: true}, []step{
			{Message{0x80, 0x40, 0x00}, Message{0x80, 0x40, 0x00}, State{Sustained: true}},
			// The next release can only be the pedal.
			{Message{0x80, 0x40, 0x00}, Message{0xB0, 0x40, 0x00}, State{}},
		})
	})
	t.Run("weird", func(t *testing.T) {
		runSteps(t, Config{Weird: true, Target: 0x40}, State{Sustained: true, KeyDown: true}, []step{
			{Message{0x80, 0x40, 0x00}, Message{0xB0, 0x40, 0x00}, State{KeyDown: true}},
			{Message{0x80, 0x40, 0x00}, Message{0x80, 0x40, 0x00}, State{}},
		})
	})
}

func TestScenarioPedalThenKeyOverlap(t *testing.T) {
	runSteps(t, e3, State{}, []step{
		{Message{0x90, 0x40, 0x7F}, Message{0xB0, 0x40, 0x7F}, State{Sustained: true}},
		{Message{0x90, 0x40, 0x50}, Message{0x90, 0x40, 0x50}, State{Sustained: true, KeyDown: true}},
		{Message{0x80, 0x40, 0x00}, Message{0x80, 0x40, 0x00}, State{Sustained: true}},
		{Message{0x80, 0x40, 0x00}, Message{0xB0, 0x40, 0x00}, State{}},
	})
}

func TestDirectControllerIsIdempotent(t *testing.T) {
	s := State{}
	for i := 0; i < 2; i++ {
		in := Message{0xB0, 0x40, 0x7F}
		var out Message
		out, s, _ = Transform(e3, s, in)
		if out != in {
			t.Fatalf("press %d: message = % X, want pass-through", i, out)
		}
		if !s.Sustained {
			t.Fatalf("press %d: not sustained", i)
		}
	}
}

func TestApply(t *testing.T) {
	t.Run("rewrites in place", func(t *testing.T) {
		data := []byte{0x90, 0x40, 0x7F}
		s, rule := Apply(e3, State{}, data)
		if want := []byte{0xB0, 0x40, 0x7F}; string(data) != string(want) {
			t.Errorf("data = % X, want % X", data, want)
		}
		if !s.Sustained || rule != PedalPress {
			t.Errorf("state = %+v rule = %s", s, rule)
		}
	})

	for _, data := range [][]byte{
		nil,
		{0x90},
		{0x90, 0x40},
		{0x90, 0x40, 0x7F, 0x00},
		{0xF0, 0x7E, 0x40, 0x7F, 0xF7},
	} {
		orig := string(data)
		start := State{Sustained: true, KeyDown: true}
		s, rule := Apply(Config{Weird: true, Target: 0x40}, start, data)
		if string(data) != orig {
			t.Errorf("len %d: data changed to % X", len(data), data)
		}
		if s != start || rule != PassThrough {
			t.Errorf("len %d: state = %+v rule = %s", len(data), s, rule)
		}
	}
}

func TestTransformTotal(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive sweep")
	}
	for flags := 0; flags < 8; flags++ {
		cfg := Config{Weird: flags&4 != 0, Target: 0x40}
		start := State{Sustained: flags&1 != 0, KeyDown: flags&2 != 0}
		for status := 0; status < 256; status++ {
			for d1 := 0; d1 < 128; d1++ {
				for d2 := 0; d2 < 128; d2++ {
					in := Message{byte(status), byte(d1), byte(d2)}
					out, _, rule := Transform(cfg, start, in)
					if out[1] != in[1] {
						t.Fatalf("% X: data1 rewritten to %#x", in, out[1])
					}
					if rule == PassThrough && out != in {
						t.Fatalf("% X: pass-through changed message to % X", in, out)
					}
					if int(rule) >= NumRules {
						t.Fatalf("% X: rule %d out of range", in, rule)
					}
				}
			}
		}
	}
}

func TestRuleString(t *testing.T) {
	if got := AmbiguousPedalRelease.String(); got != "ambiguous-pedal-release" {
		t.Errorf("String() = %q", got)
	}
	if got := Rule(200).String(); got != "unknown" {
		t.Errorf("String() = %q", got)
	}
}

func BenchmarkTransform(b *testing.B) {
	msgs := []Message{
		{0x90, 0x40, 0x7F},
		{0x90, 0x40, 0x50},
		{0x80, 0x40, 0x00},
		{0x80, 0x40, 0x00},
		{0x90, 0x3C, 0x40},
	}
	var s State
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, s, _ = Transform(e3, s, msgs[i%len(msgs)])
	}
}
