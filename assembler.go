package sphero

import (
	"bytes"
	"encoding/binary"

	"github.com/robomote/sphero/protocol"
)

// frameAssembler accumulates notification chunks from the transport and
// slices out complete v1 frames. BLE notifications are not aligned to
// frame boundaries, so bytes are buffered until the shape's declared
// length is satisfied.
type frameAssembler struct {
	buf []byte
}

// feed appends a chunk and returns any frames it completed, in order.
func (a *frameAssembler) feed(chunk []byte) [][]byte {
	a.buf = append(a.buf, chunk...)

	var frames [][]byte
	for {
		// discard noise before the next start marker
		start := bytes.IndexByte(a.buf, protocol.SOP1)
		if start < 0 {
			a.buf = a.buf[:0]
			return frames
		}
		if start > 0 {
			a.buf = a.buf[start:]
		}

		n := frameLen(a.buf)
		if n < 0 {
			// unknown second marker, resync one byte further on
			a.buf = a.buf[1:]
			continue
		}
		if n == 0 || len(a.buf) < n {
			return frames
		}

		frame := make([]byte, n)
		copy(frame, a.buf[:n])
		a.buf = a.buf[n:]
		frames = append(frames, frame)
	}
}

// frameLen returns the total frame size declared by the header, 0 when
// more bytes are needed to tell, or -1 when the second marker matches no
// known shape.
func frameLen(buf []byte) int {
	if len(buf) < 2 {
		return 0
	}
	switch buf[1] {
	case protocol.SOP2Sync:
		if len(buf) < 5 {
			return 0
		}
		return 5 + int(buf[4])
	case protocol.SOP2Async:
		if len(buf) < 5 {
			return 0
		}
		return 5 + int(binary.BigEndian.Uint16(buf[3:5]))
	}
	return -1
}
