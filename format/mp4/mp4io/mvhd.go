package mp4io

import "github.com/ugparu/mp4edts/utils/bits/pio"

const (
	mvhdSizeV0 = 16
	mvhdSizeV1 = 24

	// DefaultMovieTimeScale is assumed when a movie carries no usable mvhd.
	DefaultMovieTimeScale = 1000
)

type MovieHeader struct {
	Version   uint8
	Flags     uint32
	TimeScale uint32
}

// ParseMovieHeader decodes the timescale of the mvhd box described by box.
// Versions other than 0 use the 64-bit layout.
func ParseMovieHeader(b []byte, box Box) (self MovieHeader, err error) {
	content := box.Content(b)
	offset := box.ContentStart()
	if len(content) < 4 {
		err = parseErr("Version", offset, err)
		return
	}
	self.Version = pio.U8(content)
	self.Flags = pio.U24BE(content[1:])
	switch self.Version {
	case 0:
		if len(content) < mvhdSizeV0 {
			err = parseErr("TimeScale", offset+12, err)
			return
		}
		self.TimeScale = pio.U32BE(content[12:])
	default:
		if len(content) < mvhdSizeV1 {
			err = parseErr("TimeScale", offset+20, err)
			return
		}
		self.TimeScale = pio.U32BE(content[20:])
	}
	return
}

// ReadMovieTimeScale returns the mvhd timescale found in the moov payload
// b[moovStart:moovEnd], or DefaultMovieTimeScale.
func ReadMovieTimeScale(b []byte, moovStart, moovEnd int) uint32 {
	box, ok := FindBox(b, moovStart, moovEnd, MVHD)
	if !ok {
		return DefaultMovieTimeScale
	}
	mvhd, err := ParseMovieHeader(b, box)
	if err != nil {
		return DefaultMovieTimeScale
	}
	return mvhd.TimeScale
}
