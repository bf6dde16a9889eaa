package mp4io

import "github.com/ugparu/mp4edts/utils/bits/pio"

const (
	baseFtypSize  = 8
	bytesPerBrand = 4
)

type FileType struct {
	MajorBrand       Tag
	MinorVersion     uint32
	CompatibleBrands []Tag
}

// ParseFileType decodes the ftyp box described by box. A trailing partial
// brand is ignored.
func ParseFileType(b []byte, box Box) (f FileType, err error) {
	content := box.Content(b)
	if len(content) < baseFtypSize {
		err = parseErr("MajorBrand", box.ContentStart(), nil)
		return
	}
	f.MajorBrand = Tag(pio.U32BE(content))
	f.MinorVersion = pio.U32BE(content[4:])
	for n := baseFtypSize; n+bytesPerBrand <= len(content); n += bytesPerBrand {
		f.CompatibleBrands = append(f.CompatibleBrands, Tag(pio.U32BE(content[n:])))
	}
	return
}
