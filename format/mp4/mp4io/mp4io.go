// Package mp4io reads and writes ISO-BMFF boxes directly on byte slices.
//
// Boxes are never materialised into a tree. Readers hand out Box descriptors
// that index into the caller's buffer and Writer emits new boxes with a single
// cursor, backpatching sizes when a box is closed.
package mp4io

import (
	"fmt"
	"io"
	"strings"

	"github.com/ugparu/mp4edts/utils/bits/pio"
)

const (
	HeaderSize         = 8
	ExtendedHeaderSize = 16
)

type Tag uint32

func (self Tag) String() string {
	var b [4]byte
	pio.PutU32BE(b[:], uint32(self))
	for i := 0; i < 4; i++ {
		if b[i] == 0 {
			b[i] = ' '
		}
	}
	return string(b[:])
}

func StringToTag(tag string) Tag {
	var b [4]byte
	copy(b[:], []byte(tag))
	return Tag(pio.U32BE(b[:]))
}

const (
	FTYP = Tag(0x66747970)
	FREE = Tag(0x66726565)
	MDAT = Tag(0x6d646174)
	MOOV = Tag(0x6d6f6f76)
	MVHD = Tag(0x6d766864)
	TRAK = Tag(0x7472616b)
	TKHD = Tag(0x746b6864)
	EDTS = Tag(0x65647473)
	ELST = Tag(0x656c7374)
	MDIA = Tag(0x6d646961)
	MDHD = Tag(0x6d646864)
	MINF = Tag(0x6d696e66)
	DINF = Tag(0x64696e66)
	STBL = Tag(0x7374626c)
	UDTA = Tag(0x75647461)
	MVEX = Tag(0x6d766578)
)

// containers lists the boxes FprintBoxes descends into.
var containers = map[Tag]bool{
	MOOV: true,
	TRAK: true,
	EDTS: true,
	MDIA: true,
	MINF: true,
	DINF: true,
	STBL: true,
	MVEX: true,
}

func printboxes(out io.Writer, b []byte, start, end, depth int) {
	for box := range Boxes(b, start, end) {
		fmt.Fprintf(out,
			"%s%s offset=%d size=%d\n",
			strings.Repeat(" ", depth*2), box.Type, box.Offset, box.Size,
		)
		if containers[box.Type] {
			printboxes(out, b, box.ContentStart(), box.End(), depth+1)
		}
	}
}

// FprintBoxes writes an indented listing of the box tree found in b.
func FprintBoxes(out io.Writer, b []byte) {
	printboxes(out, b, 0, len(b), 0)
}
