// Package mp4test builds small but structurally complete MP4 files for tests.
package mp4test

import (
	"github.com/ugparu/mp4edts/format/mp4/mp4io"
	"github.com/ugparu/mp4edts/utils/bits/pio"
)

// Box wraps the concatenated children in a box of the given type.
func Box(tag string, children ...[]byte) []byte {
	var content []byte
	for _, c := range children {
		content = append(content, c...)
	}
	return mp4io.MakeBox(mp4io.StringToTag(tag), content)
}

// Ftyp returns an isom ftyp box.
func Ftyp() []byte {
	return Box("ftyp", []byte("isom\x00\x00\x02\x00isomiso2avc1mp41"))
}

// Free returns a free box with n zero bytes of payload.
func Free(n int) []byte {
	return Box("free", make([]byte, n))
}

// Mdat returns an mdat box filled with a recognisable byte pattern.
func Mdat(n int) []byte {
	payload := make([]byte, n)
	for i := range payload {
		payload[i] = byte(i*7 + 3)
	}
	return Box("mdat", payload)
}

// Mvhd returns a full-size mvhd box of version 0 or 1.
func Mvhd(version uint8, timeScale uint32) []byte {
	if version == 1 {
		b := make([]byte, 112)
		b[0] = 1
		pio.PutU32BE(b[20:], timeScale)
		pio.PutU32BE(b[32:], 0x00010000)
		putMatrix(b[48:])
		pio.PutU32BE(b[108:], 3)
		return Box("mvhd", b)
	}
	b := make([]byte, 100)
	pio.PutU32BE(b[12:], timeScale)
	pio.PutU32BE(b[20:], 0x00010000)
	putMatrix(b[36:])
	pio.PutU32BE(b[96:], 3)
	return Box("mvhd", b)
}

func putMatrix(b []byte) {
	pio.PutU32BE(b[0:], 0x00010000)
	pio.PutU32BE(b[16:], 0x00010000)
	pio.PutU32BE(b[32:], 0x40000000)
}

// Mdhd returns a full-size mdhd box of version 0 or 1.
func Mdhd(version uint8, timeScale uint32, duration uint64) []byte {
	if version == 1 {
		b := make([]byte, 36)
		b[0] = 1
		pio.PutU32BE(b[20:], timeScale)
		pio.PutU64BE(b[24:], duration)
		pio.PutU16BE(b[32:], 0x55c4)
		return Box("mdhd", b)
	}
	b := make([]byte, 24)
	pio.PutU32BE(b[12:], timeScale)
	pio.PutU32BE(b[16:], uint32(duration))
	pio.PutU16BE(b[20:], 0x55c4)
	return Box("mdhd", b)
}

// Tkhd returns a version 0 tkhd box.
func Tkhd(trackID uint32) []byte {
	b := make([]byte, 84)
	pio.PutU24BE(b[1:], 3)
	pio.PutU32BE(b[12:], trackID)
	putMatrix(b[40:])
	return Box("tkhd", b)
}

// EditBox returns an edts box holding a version 0 elst with the given entries.
func EditBox(entries ...mp4io.EditListEntry) []byte {
	b := make([]byte, 8+mp4io.LenEditListEntryV0*len(entries))
	pio.PutU32BE(b[4:], uint32(len(entries)))
	for i, e := range entries {
		off := 8 + i*mp4io.LenEditListEntryV0
		pio.PutU32BE(b[off:], uint32(e.SegmentDuration))
		pio.PutU32BE(b[off+4:], uint32(int32(e.MediaTime)))
		pio.PutU16BE(b[off+8:], e.MediaRateInteger)
		pio.PutU16BE(b[off+10:], e.MediaRateFraction)
	}
	return Box("edts", Box("elst", b))
}

// Mdia returns an mdia box with the given mdhd and a small minf.
func Mdia(mdhd []byte) []byte {
	return Box("mdia", mdhd, Box("minf", Box("stbl", Free(16))))
}

// Trak returns a trak box holding a tkhd followed by an mdia.
func Trak(trackID uint32, version uint8, timeScale uint32, duration uint64) []byte {
	return Box("trak", Tkhd(trackID), Mdia(Mdhd(version, timeScale, duration)))
}

// Moov returns a moov box with an mvhd of the given timescale and the tracks.
func Moov(movieTimeScale uint32, traks ...[]byte) []byte {
	return Box("moov", append([][]byte{Mvhd(0, movieTimeScale)}, traks...)...)
}

// File concatenates top-level boxes.
func File(boxes ...[]byte) []byte {
	var b []byte
	for _, x := range boxes {
		b = append(b, x...)
	}
	return b
}

// Movie returns [ftyp, mdat, moov] with one audio track of 50 seconds at
// 44100 Hz in a movie of timescale 1000.
func Movie() []byte {
	return File(Ftyp(), Mdat(256), Moov(1000, Trak(1, 0, 44100, 2205000)))
}
