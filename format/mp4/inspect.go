package mp4

import (
	"os"

	"github.com/ugparu/mp4edts/format/mp4/mp4io"
	"github.com/ugparu/mp4edts/utils"
)

// TrackInfo describes the timing of one trak and the edit list it carries.
type TrackInfo struct {
	Index     int                   `json:"index"`
	TrackID   uint32                `json:"track_id"`
	TimeScale uint32                `json:"timescale"`
	Duration  uint64                `json:"duration"`
	EditBoxes int                   `json:"edit_boxes"`
	EditList  []mp4io.EditListEntry `json:"edit_list,omitempty"`
}

// MovieInfo describes the first moov of a file.
type MovieInfo struct {
	MajorBrand string      `json:"major_brand,omitempty"`
	TimeScale  uint32      `json:"timescale"`
	Tracks     []TrackInfo `json:"tracks"`
}

// Inspect reports the movie timescale and per-track edit lists of b.
func Inspect(b []byte) (*MovieInfo, error) {
	moov, ok := mp4io.FindBox(b, 0, len(b), mp4io.MOOV)
	if !ok {
		return nil, &utils.NoMovieError{}
	}
	info := &MovieInfo{
		TimeScale: mp4io.ReadMovieTimeScale(b, moov.ContentStart(), moov.End()),
	}
	if ftyp, ok := mp4io.FindBox(b, 0, len(b), mp4io.FTYP); ok {
		if f, err := mp4io.ParseFileType(b, ftyp); err == nil {
			info.MajorBrand = f.MajorBrand.String()
		}
	}
	for trak := range mp4io.Boxes(b, moov.ContentStart(), moov.End()) {
		if trak.Type != mp4io.TRAK {
			continue
		}
		track := TrackInfo{Index: len(info.Tracks)}
		if tkhd, ok := mp4io.FindBox(b, trak.ContentStart(), trak.End(), mp4io.TKHD); ok {
			if hdr, err := mp4io.ParseTrackHeader(b, tkhd); err == nil {
				track.TrackID = hdr.TrackID
			}
		}
		if mdia, ok := mp4io.FindBox(b, trak.ContentStart(), trak.End(), mp4io.MDIA); ok {
			track.TimeScale, track.Duration = mp4io.ReadMediaHeader(b, mdia.ContentStart(), mdia.End())
		}
		for edts := range mp4io.Boxes(b, trak.ContentStart(), trak.End()) {
			if edts.Type != mp4io.EDTS {
				continue
			}
			track.EditBoxes++
			if track.EditBoxes > 1 {
				continue
			}
			elst, ok := mp4io.FindBox(b, edts.ContentStart(), edts.End(), mp4io.ELST)
			if !ok {
				continue
			}
			list, err := mp4io.ParseEditList(b, elst)
			if err != nil {
				return nil, err
			}
			track.EditList = list.Entries
		}
		info.Tracks = append(info.Tracks, track)
	}
	return info, nil
}

func InspectFile(path string) (*MovieInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Inspect(data)
}
