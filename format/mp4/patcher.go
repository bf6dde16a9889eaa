// Package mp4 rewrites the edit lists of finished, non-fragmented MP4 files so
// every track plays its whole media timeline from time zero.
package mp4

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/ugparu/mp4edts/format/mp4/mp4io"
	"github.com/ugparu/mp4edts/utils/logger"
)

// editBoxLen is the size of an edts box holding a single version 1 entry.
const editBoxLen = mp4io.HeaderSize + 8 + 4 + 4 + mp4io.LenEditListEntryV1

// movieUnits converts a media duration to the movie timescale, rounding half
// to even. Results beyond 64 bits saturate.
func movieUnits(duration uint64, movieTimeScale, mediaTimeScale uint32) uint64 {
	hi, lo := bits.Mul64(duration, uint64(movieTimeScale))
	div := uint64(mediaTimeScale)
	if hi >= div {
		return math.MaxUint64
	}
	q, r := bits.Div64(hi, lo, div)
	if 2*r > div || (2*r == div && q&1 == 1) {
		if q != math.MaxUint64 {
			q++
		}
	}
	return q
}

// fullSpanEditBox returns an edts box whose single entry plays the whole
// media from its first sample at normal rate.
func fullSpanEditBox(segmentDuration uint64) []byte {
	return mp4io.MakeEditBox(mp4io.MakeEditList([]mp4io.EditListEntry{{
		SegmentDuration:   segmentDuration,
		MediaTime:         0,
		MediaRateInteger:  1,
		MediaRateFraction: 0,
	}}))
}

// trackPatch tags the log lines of one trak. The index comes first so it
// survives the logger's tag truncation.
type trackPatch struct {
	file  string
	index int
}

func (p trackPatch) String() string {
	if p.file == "" {
		return fmt.Sprintf("TRAK#%d", p.index)
	}
	return fmt.Sprintf("TRAK#%d %s", p.index, p.file)
}

// writeTrak writes the patched form of trak into w. It reports false without
// writing anything when the track has no usable mdhd and must be copied as is.
func writeTrak(w *mp4io.Writer, b []byte, trak mp4io.Box, movieTimeScale uint32, tag trackPatch) (bool, error) {
	mdia, ok := mp4io.FindBox(b, trak.ContentStart(), trak.End(), mp4io.MDIA)
	if !ok {
		logger.Debugf(tag, "no mdia at offset %d, track left as is", trak.Offset)
		return false, nil
	}
	mediaTimeScale, mediaDuration := mp4io.ReadMediaHeader(b, mdia.ContentStart(), mdia.End())
	if mediaTimeScale == 0 || mediaDuration == 0 {
		logger.Debugf(tag, "mdhd at offset %d unusable (timescale=%d duration=%d), track left as is",
			trak.Offset, mediaTimeScale, mediaDuration)
		return false, nil
	}

	segmentDuration := movieUnits(mediaDuration, movieTimeScale, mediaTimeScale)
	edts := fullSpanEditBox(segmentDuration)

	w.StartBox(mp4io.TRAK)
	inserted := false
	for child := range mp4io.Boxes(b, trak.ContentStart(), trak.End()) {
		if child.Type == mp4io.EDTS {
			continue
		}
		w.Write(child.Data(b))
		if child.Type == mp4io.TKHD && !inserted {
			w.Write(edts)
			inserted = true
		}
	}
	if inserted {
		logger.Debugf(tag, "offset %d: segment_duration=%d (media %d@%d, movie timescale %d)",
			trak.Offset, segmentDuration, mediaDuration, mediaTimeScale, movieTimeScale)
	} else {
		logger.Debugf(tag, "offset %d has no tkhd, edit list dropped", trak.Offset)
	}
	return true, w.EndBox()
}

// writeMoov writes the patched form of moov into w. file only tags log lines.
func writeMoov(w *mp4io.Writer, b []byte, moov mp4io.Box, file string) error {
	movieTimeScale := mp4io.ReadMovieTimeScale(b, moov.ContentStart(), moov.End())

	w.StartBox(mp4io.MOOV)
	index := 0
	for child := range mp4io.Boxes(b, moov.ContentStart(), moov.End()) {
		if child.Type != mp4io.TRAK {
			w.Write(child.Data(b))
			continue
		}
		patched, err := writeTrak(w, b, child, movieTimeScale, trackPatch{file: file, index: index})
		index++
		if err != nil {
			return err
		}
		if !patched {
			w.Write(child.Data(b))
		}
	}
	return w.EndBox()
}

// PatchTrak returns trak with its edts replaced by a single full-span edit
// placed right after tkhd. The input is returned unchanged when it is not a
// trak box or its mdhd has a zero timescale or duration.
func PatchTrak(trak []byte, movieTimeScale uint32) []byte {
	box, ok := mp4io.ReadBox(trak, mp4io.TRAK)
	if !ok {
		return trak
	}
	w := mp4io.NewWriter(box.End() + editBoxLen)
	patched, err := writeTrak(w, trak, box, movieTimeScale, trackPatch{})
	if err != nil || !patched {
		return trak
	}
	out, err := w.Bytes()
	if err != nil {
		return trak
	}
	return out
}

// PatchMoov patches every trak of moov against the movie timescale from mvhd.
// The input is returned unchanged when it is not a moov box.
func PatchMoov(moov []byte) []byte {
	box, ok := mp4io.ReadBox(moov, mp4io.MOOV)
	if !ok {
		return moov
	}
	w := mp4io.NewWriter(box.End() + 4*editBoxLen)
	if err := writeMoov(w, moov, box, ""); err != nil {
		return moov
	}
	out, err := w.Bytes()
	if err != nil {
		return moov
	}
	return out
}

// Patch rewrites a whole file image. Every top-level box other than moov, and
// any trailing bytes that do not form a box, are copied in place. found is
// false when there is no top-level moov, in which case out is nil.
func Patch(b []byte) (out []byte, found bool, err error) {
	return patchImage(b, "")
}

func patchImage(b []byte, file string) (out []byte, found bool, err error) {
	w := mp4io.NewWriter(len(b) + 4*editBoxLen)
	end := 0
	for box := range mp4io.Boxes(b, 0, len(b)) {
		if box.Type == mp4io.MOOV {
			if err = writeMoov(w, b, box, file); err != nil {
				return nil, true, err
			}
			found = true
		} else {
			w.Write(box.Data(b))
		}
		end = box.End()
	}
	if !found {
		return nil, false, nil
	}
	w.Write(b[end:])
	out, err = w.Bytes()
	return out, true, err
}
