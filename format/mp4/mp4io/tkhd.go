package mp4io

import "github.com/ugparu/mp4edts/utils/bits/pio"

const (
	tkhdSizeV0 = 24
	tkhdSizeV1 = 36
)

type TrackHeader struct {
	Version  uint8
	Flags    uint32
	TrackID  uint32
	Duration uint64
}

// ParseTrackHeader reads the track id and duration of a tkhd box. The
// duration is in movie timescale units.
func ParseTrackHeader(b []byte, box Box) (self TrackHeader, err error) {
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
		if len(content) < tkhdSizeV0 {
			err = parseErr("Duration", offset+20, err)
			return
		}
		self.TrackID = pio.U32BE(content[12:])
		self.Duration = uint64(pio.U32BE(content[20:]))
	case 1:
		if len(content) < tkhdSizeV1 {
			err = parseErr("Duration", offset+28, err)
			return
		}
		self.TrackID = pio.U32BE(content[20:])
		self.Duration = pio.U64BE(content[28:])
	default:
		err = parseErr("Version", offset, err)
	}
	return
}
