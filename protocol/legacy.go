package protocol

import "fmt"

// Legacy framing markers. The three reserved values must never appear
// literally inside payload data on the wire; Escape substitutes a
// two-byte sequence for each occurrence.
const (
	LegacySOP    = 0x8D
	LegacyEOP    = 0xD8
	LegacyEscape = 0xAB
)

// Escaped second bytes. An escape pair is {LegacyEscape, code}.
const (
	escapedEscape = 0x23 // 0xAB
	escapedSOP    = 0x05 // 0x8D
	escapedEOP    = 0x50 // 0xD8
)

// Legacy flags byte bits. The presence bits drive decoding: the frame
// has no length fields for its optional members.
const (
	FlagIsResponse                = 0x01
	FlagRequestsResponse          = 0x02
	FlagRequestsOnlyErrorResponse = 0x04
	FlagResetsInactivityTimeout   = 0x08
	FlagHasTargetID               = 0x10
	FlagHasSourceID               = 0x20
)

// LegacyPacket is the older SLIP-framed packet shape:
//
//	8D <flags> [<tid>] [<sid>] <did> <cid> <seq> [<err>] <escaped-payload...> <chk> D8
//
// TargetID, SourceID and Err are meaningful only when the matching flag
// bit is set. The checksum spans the unescaped header fields and the
// unescaped payload; marker, checksum and header bytes are never escaped.
type LegacyPacket struct {
	Flags    byte
	TargetID byte
	SourceID byte
	DID      byte
	CID      byte
	Seq      byte
	Err      byte
	Data     []byte
	Chk      byte // populated on decode; Encode derives it
}

func (p *LegacyPacket) headerBytes() []byte {
	fields := make([]byte, 0, 7)
	fields = append(fields, p.Flags)
	if p.Flags&FlagHasTargetID != 0 {
		fields = append(fields, p.TargetID)
	}
	if p.Flags&FlagHasSourceID != 0 {
		fields = append(fields, p.SourceID)
	}
	fields = append(fields, p.DID, p.CID, p.Seq)
	if p.Flags&FlagIsResponse != 0 {
		fields = append(fields, p.Err)
	}
	return fields
}

// Encode serializes the packet, escaping reserved bytes in the payload.
func (p *LegacyPacket) Encode() []byte {
	fields := p.headerBytes()
	chk := Checksum(fields, p.Data)

	out := make([]byte, 0, len(fields)+len(p.Data)+3)
	out = append(out, LegacySOP)
	out = append(out, fields...)
	out = append(out, Escape(p.Data)...)
	return append(out, chk, LegacyEOP)
}

// DecodeLegacy parses a buffer holding exactly one legacy frame,
// reversing payload escaping before checksum verification.
func DecodeLegacy(buf []byte) (*LegacyPacket, error) {
	if len(buf) < 7 {
		return nil, fmt.Errorf("%w: legacy frame truncated at %d bytes", ErrInvalidPacket, len(buf))
	}
	if buf[0] != LegacySOP {
		return nil, fmt.Errorf("%w: bad SOP marker %02X", ErrInvalidPacket, buf[0])
	}
	if buf[len(buf)-1] != LegacyEOP {
		return nil, fmt.Errorf("%w: bad EOP marker %02X", ErrInvalidPacket, buf[len(buf)-1])
	}

	p := &LegacyPacket{Flags: buf[1]}

	i := 2
	next := func() (byte, bool) {
		// the last two bytes are checksum and EOP, never header fields
		if i >= len(buf)-2 {
			return 0, false
		}
		b := buf[i]
		i++
		return b, true
	}

	var ok bool
	if p.Flags&FlagHasTargetID != 0 {
		if p.TargetID, ok = next(); !ok {
			return nil, fmt.Errorf("%w: legacy frame too short for target id", ErrInvalidPacket)
		}
	}
	if p.Flags&FlagHasSourceID != 0 {
		if p.SourceID, ok = next(); !ok {
			return nil, fmt.Errorf("%w: legacy frame too short for source id", ErrInvalidPacket)
		}
	}
	if p.DID, ok = next(); !ok {
		return nil, fmt.Errorf("%w: legacy frame too short for device id", ErrInvalidPacket)
	}
	if p.CID, ok = next(); !ok {
		return nil, fmt.Errorf("%w: legacy frame too short for command id", ErrInvalidPacket)
	}
	if p.Seq, ok = next(); !ok {
		return nil, fmt.Errorf("%w: legacy frame too short for sequence", ErrInvalidPacket)
	}
	if p.Flags&FlagIsResponse != 0 {
		if p.Err, ok = next(); !ok {
			return nil, fmt.Errorf("%w: legacy frame too short for error byte", ErrInvalidPacket)
		}
	}

	data, err := Unescape(buf[i : len(buf)-2])
	if err != nil {
		return nil, err
	}
	p.Data = data
	p.Chk = buf[len(buf)-2]

	if want := Checksum(buf[1:i], data); p.Chk != want {
		return nil, fmt.Errorf("%w: checksum %02X, expected %02X", ErrInvalidPacket, p.Chk, want)
	}

	return p, nil
}

// Escape substitutes the two-byte escape sequence for each reserved
// marker byte in data. The input is never modified.
func Escape(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		switch b {
		case LegacyEscape:
			out = append(out, LegacyEscape, escapedEscape)
		case LegacySOP:
			out = append(out, LegacyEscape, escapedSOP)
		case LegacyEOP:
			out = append(out, LegacyEscape, escapedEOP)
		default:
			out = append(out, b)
		}
	}
	return out
}

// Unescape reverses Escape. Each escape pair is consumed atomically: the
// second byte of a pair is never re-examined as the start of another
// pair, so back-to-back sequences like AB 05 AB 05 decode to 8D 8D.
func Unescape(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b != LegacyEscape {
			out = append(out, b)
			continue
		}
		i++
		if i >= len(data) {
			return nil, fmt.Errorf("%w: dangling escape byte", ErrInvalidPacket)
		}
		switch data[i] {
		case escapedEscape:
			out = append(out, LegacyEscape)
		case escapedSOP:
			out = append(out, LegacySOP)
		case escapedEOP:
			out = append(out, LegacyEOP)
		default:
			return nil, fmt.Errorf("%w: unknown escape sequence AB %02X", ErrInvalidPacket, data[i])
		}
	}
	return out, nil
}
