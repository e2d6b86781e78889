// Package protocol implements the Sphero v1.20 wire protocol: the framed
// packet shapes, the checksum, the device and command identifier
// catalogs, and the command builders. Multi-byte numbers travel MSB
// first in both directions.
//
// The package is pure and stateless. Every encode and decode is a
// function from an immutable input to a value or an error; calls on
// independent inputs can run concurrently without coordination.
// https://docs.gosphero.com/api/Sphero_API_1.20.pdf
package protocol

import (
	"encoding/binary"
	"fmt"
)

// Start-of-packet marker values for the fixed-header framing.
const (
	SOP1 = 0xFF
	// SOP2Sync marks a command or its synchronous acknowledgement.
	SOP2Sync = 0xFF
	// SOP2Async marks an asynchronous message from the device.
	SOP2Async = 0xFE
)

// MaxPayload is the largest payload representable by the one-byte DLEN
// field of the command and response shapes (DLEN counts the checksum).
const MaxPayload = 0xFE

// MaxAsyncPayload is the largest payload representable by the async
// shape's 16-bit DLEN field.
const MaxAsyncPayload = 0xFFFE

// CommandPacket is a client-to-device frame:
//
//	FF FF <did> <cid> <seq> <dlen> <payload...> <chk>
//
// DLen and Chk are derived at construction and never caller-supplied.
type CommandPacket struct {
	DID  DeviceID
	CID  byte
	Seq  byte
	DLen byte
	Data []byte
	Chk  byte
}

// NewCommandPacket builds a command frame for the given device, command
// and sequence number. The device and command ids must be in the
// documented catalogs; the payload must fit the one-byte length field.
func NewCommandPacket(did DeviceID, cid, seq byte, data []byte) (*CommandPacket, error) {
	if !did.Valid() {
		return nil, &BadDeviceIDError{ID: did}
	}
	if !ValidCommandID(did, cid) {
		return nil, &BadCommandIDError{Device: did, ID: cid}
	}
	if len(data) > MaxPayload {
		return nil, &BadDataLengthError{Length: len(data), Max: MaxPayload}
	}

	// DLEN counts the payload plus the checksum byte itself.
	dlen := byte(len(data) + 1)

	return &CommandPacket{
		DID:  did,
		CID:  cid,
		Seq:  seq,
		DLen: dlen,
		Data: data,
		Chk:  Checksum([]byte{byte(did), cid, seq, dlen}, data),
	}, nil
}

// Encode serializes the packet to wire bytes.
func (p *CommandPacket) Encode() []byte {
	out := make([]byte, 0, 7+len(p.Data))
	out = append(out, SOP1, SOP2Sync, byte(p.DID), p.CID, p.Seq, p.DLen)
	out = append(out, p.Data...)
	return append(out, p.Chk)
}

// DecodeCommand parses a buffer holding exactly one command frame. The
// device and command ids are carried raw; only framing and the checksum
// are validated.
func DecodeCommand(buf []byte) (*CommandPacket, error) {
	if len(buf) < 7 {
		return nil, fmt.Errorf("%w: command frame truncated at %d bytes", ErrInvalidPacket, len(buf))
	}
	if buf[0] != SOP1 || buf[1] != SOP2Sync {
		return nil, fmt.Errorf("%w: bad command markers %02X %02X", ErrInvalidPacket, buf[0], buf[1])
	}

	dlen := buf[5]
	if dlen == 0 || len(buf) != 6+int(dlen) {
		return nil, fmt.Errorf("%w: command frame is %d bytes, dlen %d declares %d",
			ErrInvalidPacket, len(buf), dlen, 6+int(dlen))
	}

	data := append([]byte(nil), buf[6:6+int(dlen)-1]...)
	chk := buf[len(buf)-1]

	if want := Checksum(buf[2:6], data); chk != want {
		return nil, fmt.Errorf("%w: checksum %02X, expected %02X", ErrInvalidPacket, chk, want)
	}

	return &CommandPacket{
		DID:  DeviceID(buf[2]),
		CID:  buf[3],
		Seq:  buf[4],
		DLen: dlen,
		Data: data,
		Chk:  chk,
	}, nil
}

// ResponsePacket is a synchronous acknowledgement frame:
//
//	FF FF <mrsp> <seq> <dlen> <payload...> <chk>
//
// Seq echoes the originating command's sequence number.
type ResponsePacket struct {
	MRSP ResponseStatus
	Seq  byte
	DLen byte
	Data []byte
	Chk  byte
}

// NewResponsePacket builds a response frame. Any status byte is allowed;
// the documented set is not closed on the wire.
func NewResponsePacket(status ResponseStatus, seq byte, data []byte) (*ResponsePacket, error) {
	if len(data) > MaxPayload {
		return nil, &BadDataLengthError{Length: len(data), Max: MaxPayload}
	}

	dlen := byte(len(data) + 1)

	return &ResponsePacket{
		MRSP: status,
		Seq:  seq,
		DLen: dlen,
		Data: data,
		Chk:  Checksum([]byte{byte(status), seq, dlen}, data),
	}, nil
}

// Encode serializes the packet to wire bytes.
func (p *ResponsePacket) Encode() []byte {
	out := make([]byte, 0, 6+len(p.Data))
	out = append(out, SOP1, SOP2Sync, byte(p.MRSP), p.Seq, p.DLen)
	out = append(out, p.Data...)
	return append(out, p.Chk)
}

// DecodeResponse parses a buffer holding exactly one response frame.
// Undocumented status bytes decode successfully and are carried raw.
func DecodeResponse(buf []byte) (*ResponsePacket, error) {
	if len(buf) < 6 {
		return nil, fmt.Errorf("%w: response frame truncated at %d bytes", ErrInvalidPacket, len(buf))
	}
	if buf[0] != SOP1 || buf[1] != SOP2Sync {
		return nil, fmt.Errorf("%w: bad response markers %02X %02X", ErrInvalidPacket, buf[0], buf[1])
	}

	dlen := buf[4]
	if dlen == 0 || len(buf) != 5+int(dlen) {
		return nil, fmt.Errorf("%w: response frame is %d bytes, dlen %d declares %d",
			ErrInvalidPacket, len(buf), dlen, 5+int(dlen))
	}

	data := append([]byte(nil), buf[5:5+int(dlen)-1]...)
	chk := buf[len(buf)-1]

	if want := Checksum(buf[2:5], data); chk != want {
		return nil, fmt.Errorf("%w: checksum %02X, expected %02X", ErrInvalidPacket, chk, want)
	}

	return &ResponsePacket{
		MRSP: ResponseStatus(buf[2]),
		Seq:  buf[3],
		DLen: dlen,
		Data: data,
		Chk:  chk,
	}, nil
}

// AsyncPacket is an unsolicited device-to-client frame:
//
//	FF FE <idcode> <dlen_hi> <dlen_lo> <payload...> <chk>
//
// The 16-bit DLEN permits payloads beyond 255 bytes (sensor streaming).
// IDCode is unconstrained here; its event map is documented separately.
type AsyncPacket struct {
	IDCode byte
	DLen   uint16
	Data   []byte
	Chk    byte
}

// NewAsyncPacket builds an asynchronous frame.
func NewAsyncPacket(idCode byte, data []byte) (*AsyncPacket, error) {
	if len(data) > MaxAsyncPayload {
		return nil, &BadDataLengthError{Length: len(data), Max: MaxAsyncPayload}
	}

	dlen := uint16(len(data) + 1)

	return &AsyncPacket{
		IDCode: idCode,
		DLen:   dlen,
		Data:   data,
		Chk:    Checksum([]byte{idCode, byte(dlen >> 8), byte(dlen)}, data),
	}, nil
}

// Encode serializes the packet to wire bytes.
func (p *AsyncPacket) Encode() []byte {
	out := make([]byte, 0, 6+len(p.Data))
	out = append(out, SOP1, SOP2Async, p.IDCode, byte(p.DLen>>8), byte(p.DLen))
	out = append(out, p.Data...)
	return append(out, p.Chk)
}

// DecodeAsync parses a buffer holding exactly one asynchronous frame.
func DecodeAsync(buf []byte) (*AsyncPacket, error) {
	if len(buf) < 6 {
		return nil, fmt.Errorf("%w: async frame truncated at %d bytes", ErrInvalidPacket, len(buf))
	}
	if buf[0] != SOP1 || buf[1] != SOP2Async {
		return nil, fmt.Errorf("%w: bad async markers %02X %02X", ErrInvalidPacket, buf[0], buf[1])
	}

	dlen := binary.BigEndian.Uint16(buf[3:5])
	if dlen == 0 || len(buf) != 5+int(dlen) {
		return nil, fmt.Errorf("%w: async frame is %d bytes, dlen %d declares %d",
			ErrInvalidPacket, len(buf), dlen, 5+int(dlen))
	}

	data := append([]byte(nil), buf[5:5+int(dlen)-1]...)
	chk := buf[len(buf)-1]

	if want := Checksum(buf[2:5], data); chk != want {
		return nil, fmt.Errorf("%w: checksum %02X, expected %02X", ErrInvalidPacket, chk, want)
	}

	return &AsyncPacket{
		IDCode: buf[2],
		DLen:   dlen,
		Data:   data,
		Chk:    chk,
	}, nil
}

// Message is a decoded inbound frame: either *ResponsePacket or
// *AsyncPacket. Callers type-switch on the concrete type.
type Message interface {
	message()
}

func (*ResponsePacket) message() {}
func (*AsyncPacket) message() {}

// Decode classifies an inbound buffer by its second marker byte and runs
// the matching decoder. Response and async frames share SOP1 but carry
// distinct SOP2 values, so dispatch is unambiguous; a buffer matching
// neither fails rather than being guessed at.
func Decode(buf []byte) (Message, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: frame truncated at %d bytes", ErrInvalidPacket, len(buf))
	}
	if buf[0] != SOP1 {
		return nil, fmt.Errorf("%w: bad SOP1 marker %02X", ErrInvalidPacket, buf[0])
	}

	switch buf[1] {
	case SOP2Sync:
		return DecodeResponse(buf)
	case SOP2Async:
		return DecodeAsync(buf)
	}
	return nil, fmt.Errorf("%w: bad SOP2 marker %02X", ErrInvalidPacket, buf[1])
}
