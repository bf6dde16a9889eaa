package mp4

import (
	"fmt"
	"io"
	"strings"

	gomp4 "github.com/abema/go-mp4"
)

// DumpTree prints the box structure of r along with the timing fields of
// mvhd, mdhd and elst boxes.
func DumpTree(w io.Writer, r io.ReadSeeker) error {
	_, err := gomp4.ReadBoxStructure(r, func(h *gomp4.ReadHandle) (interface{}, error) {
		indent := strings.Repeat("  ", len(h.Path)-1)
		fmt.Fprintf(w, "%s%s offset=%d size=%d", indent, h.BoxInfo.Type, h.BoxInfo.Offset, h.BoxInfo.Size)
		if !h.BoxInfo.IsSupportedType() || h.BoxInfo.Type == gomp4.BoxTypeMdat() {
			fmt.Fprintln(w)
			return nil, nil
		}

		box, _, err := h.ReadPayload()
		if err != nil {
			fmt.Fprintln(w)
			return nil, err
		}
		switch b := box.(type) {
		case *gomp4.Mvhd:
			fmt.Fprintf(w, " version=%d timescale=%d", b.Version, b.Timescale)
		case *gomp4.Mdhd:
			duration := uint64(b.DurationV0)
			if b.Version == 1 {
				duration = b.DurationV1
			}
			fmt.Fprintf(w, " version=%d timescale=%d duration=%d", b.Version, b.Timescale, duration)
		case *gomp4.Elst:
			fmt.Fprintf(w, " version=%d entries=%d", b.Version, b.EntryCount)
			for _, e := range b.Entries {
				if b.Version == 1 {
					fmt.Fprintf(w, " [%d %d %d.%d]", e.SegmentDurationV1, e.MediaTimeV1, e.MediaRateInteger, e.MediaRateFraction)
				} else {
					fmt.Fprintf(w, " [%d %d %d.%d]", e.SegmentDurationV0, e.MediaTimeV0, e.MediaRateInteger, e.MediaRateFraction)
				}
			}
		}
		fmt.Fprintln(w)

		if _, err = h.Expand(); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
