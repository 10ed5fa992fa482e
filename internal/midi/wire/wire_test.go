package wire

import (
	"bytes"
	"testing"
)

func TestLen(t *testing.T) {
	tests := map[byte]int{
		0x40: 1,
		0x80: 3, 0x93: 3, 0xA0: 3, 0xBF: 3,
		0xC0: 2, 0xDF: 2,
		0xE5: 3,
		0xF0: 0,
		0xF1: 2, 0xF2: 3, 0xF3: 2,
		0xF6: 1, 0xF8: 1, 0xFE: 1,
	}
	for status, want := range tests {
		if got := Len(status); got != want {
			t.Errorf("Len(%#x) = %d, want %d", status, got, want)
		}
	}
}

func TestNext(t *testing.T) {
	data := []byte{
		0x90, 0x40, 0x7F,
		0xF8,
		0xC1, 0x05,
		0xF0, 0x7E, 0x01, 0xF7,
		0xB0, 0x40,
	}
	want := [][]byte{
		{0x90, 0x40, 0x7F},
		{0xF8},
		{0xC1, 0x05},
		{0xF0, 0x7E, 0x01, 0xF7},
		{0xB0, 0x40},
	}

	var got [][]byte
	for rest := data; len(rest) > 0; {
		var msg []byte
		msg, rest = Next(rest)
		got = append(got, msg)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d messages, want %d: % X", len(got), len(want), got)
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("message %d = % X, want % X", i, got[i], want[i])
		}
	}
}

func TestNextSysExWithoutTerminator(t *testing.T) {
	msg, rest := Next([]byte{0xF0, 0x01, 0x02})
	if !bytes.Equal(msg, []byte{0xF0, 0x01, 0x02}) || len(rest) != 0 {
		t.Errorf("Next() = % X, % X", msg, rest)
	}
}

func TestPackUnpack(t *testing.T) {
	if got := Pack([]byte{0x90, 0x40, 0x7F}); got != 0x7F4090 {
		t.Errorf("Pack() = %#x", got)
	}
	if got := Pack([]byte{0xC0, 0x05}); got != 0x05C0 {
		t.Errorf("Pack() = %#x", got)
	}

	var buf [3]byte
	if got := Unpack(0x004080, &buf); !bytes.Equal(got, []byte{0x80, 0x40, 0x00}) {
		t.Errorf("Unpack() = % X", got)
	}
	if got := Unpack(0x0705C2, &buf); !bytes.Equal(got, []byte{0xC2, 0x05}) {
		t.Errorf("Unpack() = % X", got)
	}
	if got := Unpack(0xF8, &buf); !bytes.Equal(got, []byte{0xF8}) {
		t.Errorf("Unpack() = % X", got)
	}
}
