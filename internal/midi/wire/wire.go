// Package wire splits raw MIDI byte streams into single messages.
package wire

// Len returns the length of a message starting with status, or 0 for a
// system exclusive message whose length depends on its terminator.
// Data bytes without a preceding status count as one-byte messages.
func Len(status byte) int {
	switch {
	case status < 0x80:
		return 1
	case status < 0xC0, status >= 0xE0 && status < 0xF0:
		return 3
	case status < 0xE0:
		return 2
	}
	switch status {
	case 0xF0:
		return 0
	case 0xF1, 0xF3:
		return 2
	case 0xF2:
		return 3
	}
	return 1
}

// Next returns the first message of data and the remaining bytes. A message
// cut short by the end of data is returned as is.
func Next(data []byte) (msg, rest []byte) {
	if len(data) == 0 {
		return nil, nil
	}
	n := Len(data[0])
	if n == 0 {
		n = len(data)
		for i := 1; i < len(data); i++ {
			if data[i] == 0xF7 {
				n = i + 1
				break
			}
		}
	}
	if n > len(data) {
		n = len(data)
	}
	return data[:n:n], data[n:]
}

// Pack encodes a short message the way winmm expects it: status in the low byte.
func Pack(msg []byte) uint32 {
	n := len(msg)
	if n > 3 {
		n = 3
	}
	var v uint32
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint32(msg[i])
	}
	return v
}

// Unpack decodes a winmm short message into buf and returns the message.
func Unpack(v uint32, buf *[3]byte) []byte {
	buf[0], buf[1], buf[2] = byte(v), byte(v>>8), byte(v>>16)
	n := Len(buf[0])
	if n == 0 || n > 3 {
		n = 3
	}
	return buf[:n]
}
