package mp4io

import "github.com/ugparu/mp4edts/utils/bits/pio"

const (
	mdhdSizeV0 = 20
	mdhdSizeV1 = 32
)

// MediaHeader holds the mdhd fields the patcher needs.
type MediaHeader struct {
	Version   uint8
	Flags     uint32
	TimeScale uint32
	Duration  uint64
}

// ParseMediaHeader decodes the payload of the mdhd box described by box.
// Versions other than 0 use the 64-bit layout.
func ParseMediaHeader(b []byte, box Box) (self MediaHeader, err error) {
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
		if len(content) < mdhdSizeV0 {
			err = parseErr("Duration", offset+16, err)
			return
		}
		self.TimeScale = pio.U32BE(content[12:])
		self.Duration = uint64(pio.U32BE(content[16:]))
	default:
		if len(content) < mdhdSizeV1 {
			err = parseErr("Duration", offset+24, err)
			return
		}
		self.TimeScale = pio.U32BE(content[20:])
		self.Duration = pio.U64BE(content[24:])
	}
	return
}

// ReadMediaHeader locates mdhd inside the mdia payload b[mdiaStart:mdiaEnd]
// and returns its timescale and duration, or zeros when it is absent or
// malformed.
func ReadMediaHeader(b []byte, mdiaStart, mdiaEnd int) (timeScale uint32, duration uint64) {
	box, ok := FindBox(b, mdiaStart, mdiaEnd, MDHD)
	if !ok {
		return 0, 0
	}
	mdhd, err := ParseMediaHeader(b, box)
	if err != nil {
		return 0, 0
	}
	return mdhd.TimeScale, mdhd.Duration
}
