package mp4io

import (
	"math"

	"github.com/ugparu/mp4edts/utils"
	"github.com/ugparu/mp4edts/utils/bits/pio"
)

// Writer accumulates boxes in memory. StartBox reserves an 8-byte header
// and EndBox fills in the size once the payload is known, so nested boxes
// are written in one pass.
type Writer struct {
	buf   []byte
	stack []int
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

func (w *Writer) StartBox(tag Tag) {
	w.stack = append(w.stack, len(w.buf))
	var hdr [HeaderSize]byte
	pio.PutU32BE(hdr[4:], uint32(tag))
	w.buf = append(w.buf, hdr[:]...)
}

// EndBox closes the innermost open box. Only 32-bit sizes are emitted.
func (w *Writer) EndBox() error {
	if len(w.stack) == 0 {
		return &utils.UnbalancedBoxError{Depth: 0}
	}
	start := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	size := uint64(len(w.buf) - start)
	if size > math.MaxUint32 {
		return &utils.BoxSizeError{Tag: Tag(pio.U32BE(w.buf[start+4:])).String(), Size: size}
	}
	pio.PutU32BE(w.buf[start:], uint32(size))
	return nil
}

func (w *Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the written stream. All boxes must have been closed.
func (w *Writer) Bytes() ([]byte, error) {
	if len(w.stack) != 0 {
		return nil, &utils.UnbalancedBoxError{Depth: len(w.stack)}
	}
	return w.buf, nil
}

// MakeBox wraps content in a box with a 32-bit size header. It panics if
// the result does not fit that header.
func MakeBox(tag Tag, content []byte) []byte {
	size := uint64(HeaderSize + len(content))
	if size > math.MaxUint32 {
		panic(&utils.BoxSizeError{Tag: tag.String(), Size: size})
	}
	b := make([]byte, size)
	pio.PutU32BE(b[0:], uint32(size))
	pio.PutU32BE(b[4:], uint32(tag))
	copy(b[HeaderSize:], content)
	return b
}
