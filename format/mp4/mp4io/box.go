package mp4io

import (
	"iter"

	"github.com/ugparu/mp4edts/utils/bits/pio"
)

// Box describes one box header found in a buffer. It carries no payload and
// only makes sense together with the buffer it was read from.
type Box struct {
	Type       Tag
	Offset     int
	Size       uint64
	HeaderSize int
}

// ContentStart returns the offset of the first byte after the header.
func (box Box) ContentStart() int {
	return box.Offset + box.HeaderSize
}

// End returns the offset just past the box. It is only meaningful when the
// box fits its buffer, which Boxes guarantees.
func (box Box) End() int {
	return box.Offset + int(box.Size)
}

// ContentLen returns the payload length.
func (box Box) ContentLen() uint64 {
	return box.Size - uint64(box.HeaderSize)
}

// fits reports whether the box lies inside [box.Offset, end).
func (box Box) fits(end int) bool {
	return box.Size >= uint64(box.HeaderSize) && box.Size <= uint64(end-box.Offset)
}

// ReadBoxHeader parses the box header at offset. A 32-bit size of 1 is
// followed by a 64-bit size; a size of 0 extends the box to the end of b.
func ReadBoxHeader(b []byte, offset int) (box Box, ok bool) {
	if offset < 0 || offset+HeaderSize > len(b) {
		return
	}
	box = Box{
		Type:       Tag(pio.U32BE(b[offset+4:])),
		Offset:     offset,
		Size:       uint64(pio.U32BE(b[offset:])),
		HeaderSize: HeaderSize,
	}
	switch box.Size {
	case 1:
		if offset+ExtendedHeaderSize > len(b) {
			return Box{}, false
		}
		box.Size = pio.U64BE(b[offset+8:])
		box.HeaderSize = ExtendedHeaderSize
	case 0:
		box.Size = uint64(len(b) - offset)
	}
	return box, true
}

// ReadBox parses b as a single box of the given type. It fails when the
// header is short, the type differs or the declared size overruns b.
func ReadBox(b []byte, tag Tag) (box Box, ok bool) {
	if box, ok = ReadBoxHeader(b, 0); !ok || box.Type != tag || !box.fits(len(b)) {
		return Box{}, false
	}
	return box, true
}

// Boxes yields the sibling boxes laid out in b[start:end] in order. The walk
// stops quietly at the first header that does not parse, declares a size
// below 8 or runs past end, so trailing padding is tolerated.
func Boxes(b []byte, start, end int) iter.Seq[Box] {
	if end > len(b) {
		end = len(b)
	}
	return func(yield func(Box) bool) {
		for offset := start; offset < end; {
			box, ok := ReadBoxHeader(b[:end], offset)
			if !ok || box.Size < HeaderSize || !box.fits(end) {
				return
			}
			if !yield(box) {
				return
			}
			offset = box.End()
		}
	}
}

// FindBox returns the first direct child of the given type in b[start:end].
func FindBox(b []byte, start, end int, tag Tag) (Box, bool) {
	for box := range Boxes(b, start, end) {
		if box.Type == tag {
			return box, true
		}
	}
	return Box{}, false
}

// Data returns the raw bytes of box, header included.
func (box Box) Data(b []byte) []byte {
	return b[box.Offset:box.End()]
}

// Content returns the payload bytes of box.
func (box Box) Content(b []byte) []byte {
	return b[box.ContentStart():box.End()]
}
