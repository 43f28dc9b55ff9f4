package wire

import (
	"encoding/binary"
	"fmt"
)

// DefaultMaxFrameSize bounds an accepted frame's declared length, as a
// guard against memory exhaustion from a hostile or corrupt peer.
const DefaultMaxFrameSize = 4 * 1024 * 1024

// frameHeaderSize is the 4-byte big-endian length prefix every frame
// carries. The length it encodes includes the payload's leading command
// code, but not the 4 header bytes themselves.
const frameHeaderSize = 4

// PeekFrameLength reports the declared payload length of the frame at the
// front of buf, without validating or consuming anything. It returns
// ErrNeedMore if buf does not yet hold the 4-byte length prefix.
//
// This mirrors the lineage's own partial-buffer scanning idiom
// (mouse.eventDispatcher.scanInput/readSGR): inspect what is available,
// signal "need more" rather than blocking or erroring on a short read.
func PeekFrameLength(buf []byte) (uint32, error) {
	if len(buf) < frameHeaderSize {
		return 0, ErrNeedMore
	}
	return binary.BigEndian.Uint32(buf[:frameHeaderSize]), nil
}

// sliceFrame validates the header at the front of buf against maxFrameSize
// and, if a complete frame is present, returns its payload (the bytes
// after the length prefix) and the total number of bytes consumed. It
// never slices the payload out until the declared length has been checked
// against maxFrameSize, so a hostile declared length never causes an
// allocation or copy.
func sliceFrame(buf []byte, maxFrameSize uint32) (payload []byte, consumed int, err error) {
	length, err := PeekFrameLength(buf)
	if err != nil {
		return nil, 0, err
	}
	if length == 0 {
		return nil, 0, newProtocolError(ErrFrameSize, "declared length is zero")
	}
	if length > maxFrameSize {
		return nil, 0, newProtocolError(ErrFrameSize, fmt.Sprintf("declared length %d exceeds max %d", length, maxFrameSize))
	}
	total := frameHeaderSize + int(length)
	if len(buf) < total {
		return nil, 0, ErrNeedMore
	}
	return buf[frameHeaderSize:total], total, nil
}

// frameOf prefixes payload with its big-endian length, producing one
// complete wire frame.
func frameOf(payload []byte) []byte {
	out := make([]byte, frameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(out[:frameHeaderSize], uint32(len(payload)))
	copy(out[frameHeaderSize:], payload)
	return out
}
