package protocol

import (
	"errors"
	"fmt"
)

// ErrInvalidPacket is returned when a buffer cannot be decoded: truncated
// frame, unknown marker bytes, bad escape sequence, or checksum mismatch.
// Decode errors wrap it, so callers can test with errors.Is.
var ErrInvalidPacket = errors.New("invalid packet")

// BadDeviceIDError reports a device id outside the documented set used to
// construct an outbound packet.
type BadDeviceIDError struct {
	ID DeviceID
}

func (e *BadDeviceIDError) Error() string {
	return fmt.Sprintf("bad device id 0x%02X", uint8(e.ID))
}

// BadCommandIDError reports a command id outside the documented code
// space of the addressed device.
type BadCommandIDError struct {
	Device DeviceID
	ID     byte
}

func (e *BadCommandIDError) Error() string {
	return fmt.Sprintf("bad command id 0x%02X for device %s", e.ID, e.Device)
}

// BadDataLengthError reports a payload whose length cannot be represented
// by the frame's length field.
type BadDataLengthError struct {
	Length int
	Max    int
}

func (e *BadDataLengthError) Error() string {
	return fmt.Sprintf("bad data length: payload of %d bytes exceeds maximum %d", e.Length, e.Max)
}

// BadParameterError reports a builder field outside its documented range.
type BadParameterError struct {
	Param string
	Value int
}

func (e *BadParameterError) Error() string {
	return fmt.Sprintf("bad parameter value: %s = %d", e.Param, e.Value)
}

// StatusError carries a non-Ok response status back to the caller. It is
// not a codec failure: unknown status bytes round-trip through it
// losslessly so newer firmware responses still surface.
type StatusError struct {
	Status ResponseStatus
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("device responded %s", e.Status)
}
