package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestCommandPacketEncode(t *testing.T) {
	tests := []struct {
		name     string
		did      DeviceID
		cid      byte
		seq      byte
		data     []byte
		expected []byte
	}{
		{
			name:     "ping with empty payload",
			did:      DeviceCore,
			cid:      CoreCmdPing,
			seq:      0x00,
			data:     nil,
			expected: []byte{0xFF, 0xFF, 0x00, 0x01, 0x00, 0x01, 0xFD},
		},
		{
			name:     "set rgb led output",
			did:      DeviceSphero,
			cid:      SpheroCmdSetRGBLEDOutput,
			seq:      0x01,
			data:     []byte{0xFF, 0x00, 0x00, 0x00},
			expected: []byte{0xFF, 0xFF, 0x02, 0x20, 0x01, 0x05, 0xFF, 0x00, 0x00, 0x00, 0xD8},
		},
		{
			name:     "roll",
			did:      DeviceSphero,
			cid:      SpheroCmdRoll,
			seq:      0x05,
			data:     []byte{0x80, 0x01, 0x0E, 0x01},
			expected: []byte{0xFF, 0xFF, 0x02, 0x30, 0x05, 0x05, 0x80, 0x01, 0x0E, 0x01, 0x33},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewCommandPacket(tt.did, tt.cid, tt.seq, tt.data)
			if err != nil {
				t.Fatalf("NewCommandPacket() error: %v", err)
			}

			got := p.Encode()
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("Encode() = % X, want % X", got, tt.expected)
			}
		})
	}
}

func TestNewCommandPacketValidation(t *testing.T) {
	t.Run("unknown device id", func(t *testing.T) {
		_, err := NewCommandPacket(DeviceID(0x09), CoreCmdPing, 0, nil)
		var badDev *BadDeviceIDError
		if !errors.As(err, &badDev) {
			t.Fatalf("NewCommandPacket() error = %v, want *BadDeviceIDError", err)
		}
	})

	t.Run("command id outside device code space", func(t *testing.T) {
		_, err := NewCommandPacket(DeviceCore, 0xEE, 0, nil)
		var badCmd *BadCommandIDError
		if !errors.As(err, &badCmd) {
			t.Fatalf("NewCommandPacket() error = %v, want *BadCommandIDError", err)
		}
	})

	t.Run("payload overflows one-byte dlen", func(t *testing.T) {
		_, err := NewCommandPacket(DeviceSphero, SpheroCmdAppendMacroChunk, 0, make([]byte, MaxPayload+1))
		var badLen *BadDataLengthError
		if !errors.As(err, &badLen) {
			t.Fatalf("NewCommandPacket() error = %v, want *BadDataLengthError", err)
		}
	})

	t.Run("payload at the dlen limit is accepted", func(t *testing.T) {
		p, err := NewCommandPacket(DeviceSphero, SpheroCmdAppendMacroChunk, 0, make([]byte, MaxPayload))
		if err != nil {
			t.Fatalf("NewCommandPacket() error: %v", err)
		}
		if p.DLen != 0xFF {
			t.Errorf("DLen = 0x%02X, want 0xFF", p.DLen)
		}
	})
}

func TestCommandPacketRoundTrip(t *testing.T) {
	orig, err := NewCommandPacket(DeviceSphero, SpheroCmdSetDataStreaming, 0x42,
		[]byte{0x00, 0x0A, 0x00, 0x01, 0x00, 0x00, 0x00, 0x03, 0x00})
	if err != nil {
		t.Fatalf("NewCommandPacket() error: %v", err)
	}

	got, err := DecodeCommand(orig.Encode())
	if err != nil {
		t.Fatalf("DecodeCommand() error: %v", err)
	}

	if got.DID != orig.DID || got.CID != orig.CID || got.Seq != orig.Seq ||
		got.DLen != orig.DLen || got.Chk != orig.Chk || !bytes.Equal(got.Data, orig.Data) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, orig)
	}
}

func TestResponsePacketRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		status ResponseStatus
		seq    byte
		data   []byte
	}{
		{name: "ok empty", status: StatusOk, seq: 0x01, data: nil},
		{name: "ok with payload", status: StatusOk, seq: 0x10, data: []byte{0x03, 0x01, 0x16}},
		{name: "documented error", status: StatusChecksumError, seq: 0x02, data: nil},
		{name: "undocumented status carried raw", status: ResponseStatus(0x42), seq: 0x03, data: []byte{0xAA}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig, err := NewResponsePacket(tt.status, tt.seq, tt.data)
			if err != nil {
				t.Fatalf("NewResponsePacket() error: %v", err)
			}

			got, err := DecodeResponse(orig.Encode())
			if err != nil {
				t.Fatalf("DecodeResponse() error: %v", err)
			}

			if got.MRSP != tt.status || got.Seq != tt.seq || !bytes.Equal(got.Data, tt.data) {
				t.Errorf("round trip mismatch: got %+v, want %+v", got, orig)
			}
		})
	}
}

// Undocumented status bytes are not a decode failure; they surface
// through the unused-status carrier so newer firmware still works.
func TestUnknownStatusForwardCompat(t *testing.T) {
	orig, err := NewResponsePacket(ResponseStatus(0x77), 0x01, nil)
	if err != nil {
		t.Fatalf("NewResponsePacket() error: %v", err)
	}

	got, err := DecodeResponse(orig.Encode())
	if err != nil {
		t.Fatalf("DecodeResponse() error: %v", err)
	}

	if got.MRSP.Known() {
		t.Errorf("status 0x77 should not be a documented code")
	}

	var statusErr *StatusError
	if err := got.MRSP.Err(); !errors.As(err, &statusErr) {
		t.Fatalf("Err() = %v, want *StatusError", err)
	}
	if statusErr.Status != 0x77 {
		t.Errorf("carried status = 0x%02X, want 0x77", uint8(statusErr.Status))
	}
}

func TestAsyncPacketRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		idCode byte
		data   []byte
	}{
		{name: "empty payload", idCode: 0x03, data: nil},
		{name: "small payload", idCode: 0x07, data: []byte{0x01, 0x02, 0x03}},
		{name: "payload beyond one-byte dlen", idCode: 0x03, data: bytes.Repeat([]byte{0x5A}, 300)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig, err := NewAsyncPacket(tt.idCode, tt.data)
			if err != nil {
				t.Fatalf("NewAsyncPacket() error: %v", err)
			}

			encoded := orig.Encode()
			if want := 5 + len(tt.data) + 1; len(encoded) != want {
				t.Fatalf("Encode() produced %d bytes, want %d", len(encoded), want)
			}

			got, err := DecodeAsync(encoded)
			if err != nil {
				t.Fatalf("DecodeAsync() error: %v", err)
			}

			if got.IDCode != tt.idCode || got.DLen != uint16(len(tt.data)+1) || !bytes.Equal(got.Data, tt.data) {
				t.Errorf("round trip mismatch: got %+v, want %+v", got, orig)
			}
		})
	}
}

func TestDecodeDispatch(t *testing.T) {
	resp, err := NewResponsePacket(StatusOk, 0x09, []byte{0x01})
	if err != nil {
		t.Fatalf("NewResponsePacket() error: %v", err)
	}
	async, err := NewAsyncPacket(0x03, []byte{0x01, 0x02})
	if err != nil {
		t.Fatalf("NewAsyncPacket() error: %v", err)
	}

	t.Run("sop2 0xFF routes to response", func(t *testing.T) {
		m, err := Decode(resp.Encode())
		if err != nil {
			t.Fatalf("Decode() error: %v", err)
		}
		if _, ok := m.(*ResponsePacket); !ok {
			t.Errorf("Decode() = %T, want *ResponsePacket", m)
		}
	})

	t.Run("sop2 0xFE routes to async", func(t *testing.T) {
		m, err := Decode(async.Encode())
		if err != nil {
			t.Fatalf("Decode() error: %v", err)
		}
		if _, ok := m.(*AsyncPacket); !ok {
			t.Errorf("Decode() = %T, want *AsyncPacket", m)
		}
	})

	t.Run("unknown sop2 fails", func(t *testing.T) {
		if _, err := Decode([]byte{0xFF, 0xFD, 0x00, 0x00, 0x01, 0xFF}); !errors.Is(err, ErrInvalidPacket) {
			t.Errorf("Decode() error = %v, want ErrInvalidPacket", err)
		}
	})

	t.Run("bad sop1 fails", func(t *testing.T) {
		if _, err := Decode([]byte{0x00, 0xFF, 0x00, 0x00, 0x01, 0xFF}); !errors.Is(err, ErrInvalidPacket) {
			t.Errorf("Decode() error = %v, want ErrInvalidPacket", err)
		}
	})
}

func TestDecodeResponseInvalid(t *testing.T) {
	valid, err := NewResponsePacket(StatusOk, 0x01, []byte{0x10, 0x20})
	if err != nil {
		t.Fatalf("NewResponsePacket() error: %v", err)
	}
	encoded := valid.Encode()

	tests := []struct {
		name string
		buf  []byte
	}{
		{name: "empty buffer", buf: nil},
		{name: "below minimum frame size", buf: encoded[:5]},
		{name: "fewer bytes than dlen declares", buf: encoded[:len(encoded)-1]},
		{name: "trailing bytes beyond dlen", buf: append(append([]byte(nil), encoded...), 0x00)},
		{name: "zero dlen", buf: []byte{0xFF, 0xFF, 0x00, 0x01, 0x00, 0xFE}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeResponse(tt.buf); !errors.Is(err, ErrInvalidPacket) {
				t.Errorf("DecodeResponse() error = %v, want ErrInvalidPacket", err)
			}
		})
	}
}

// Any single-bit corruption of the checksum byte must fail the decode,
// never parse successfully.
func TestChecksumCorruptionDetected(t *testing.T) {
	valid, err := NewResponsePacket(StatusOk, 0x07, []byte{0xDE, 0xAD})
	if err != nil {
		t.Fatalf("NewResponsePacket() error: %v", err)
	}
	encoded := valid.Encode()

	for bit := 0; bit < 8; bit++ {
		corrupted := append([]byte(nil), encoded...)
		corrupted[len(corrupted)-1] ^= 1 << bit

		if _, err := DecodeResponse(corrupted); !errors.Is(err, ErrInvalidPacket) {
			t.Errorf("bit %d flip: DecodeResponse() error = %v, want ErrInvalidPacket", bit, err)
		}
	}
}

func TestDecodeAsyncInvalid(t *testing.T) {
	valid, err := NewAsyncPacket(0x03, []byte{0x01, 0x02, 0x03})
	if err != nil {
		t.Fatalf("NewAsyncPacket() error: %v", err)
	}
	encoded := valid.Encode()

	tests := []struct {
		name string
		buf  []byte
	}{
		{name: "below minimum frame size", buf: encoded[:4]},
		{name: "truncated payload", buf: encoded[:len(encoded)-2]},
		{name: "corrupted checksum", buf: func() []byte {
			b := append([]byte(nil), encoded...)
			b[len(b)-1] ^= 0x01
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeAsync(tt.buf); !errors.Is(err, ErrInvalidPacket) {
				t.Errorf("DecodeAsync() error = %v, want ErrInvalidPacket", err)
			}
		})
	}
}
