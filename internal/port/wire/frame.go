// Package wire implements the length-prefixed framing used by binaryport
// and the JSON Command/PlayerStateDiff payload encoding shared by
// binaryport and wsport (wsport sends payloads without the length prefix).
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxFrameSize bounds a single frame's payload so a corrupt or hostile
// length prefix can't make a Port try to allocate gigabytes.
const maxFrameSize = 1 << 20

// WriteFrame writes a 4-byte big-endian length prefix followed by payload.
func WriteFrame(w io.Writer, payload []byte) error {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-prefixed frame from r.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > maxFrameSize {
		return nil, fmt.Errorf("wire: frame size %d exceeds maximum %d", n, maxFrameSize)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
