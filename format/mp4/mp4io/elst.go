package mp4io

import "github.com/ugparu/mp4edts/utils/bits/pio"

const (
	LenEditListEntryV0 = 12
	LenEditListEntryV1 = 20
)

type EditListEntry struct {
	SegmentDuration   uint64
	MediaTime         int64
	MediaRateInteger  uint16
	MediaRateFraction uint16
}

func GetEditListEntryV0(b []byte) (self EditListEntry) {
	self.SegmentDuration = uint64(pio.U32BE(b[0:]))
	self.MediaTime = int64(int32(pio.U32BE(b[4:])))
	self.MediaRateInteger = pio.U16BE(b[8:])
	self.MediaRateFraction = pio.U16BE(b[10:])
	return
}

func GetEditListEntryV1(b []byte) (self EditListEntry) {
	self.SegmentDuration = pio.U64BE(b[0:])
	self.MediaTime = pio.I64BE(b[8:])
	self.MediaRateInteger = pio.U16BE(b[16:])
	self.MediaRateFraction = pio.U16BE(b[18:])
	return
}

func PutEditListEntryV1(b []byte, self EditListEntry) {
	pio.PutU64BE(b[0:], self.SegmentDuration)
	pio.PutI64BE(b[8:], self.MediaTime)
	pio.PutU16BE(b[16:], self.MediaRateInteger)
	pio.PutU16BE(b[18:], self.MediaRateFraction)
}

// EditList is an elst box. Marshal always writes version 1.
type EditList struct {
	Version uint8
	Flags   uint32
	Entries []EditListEntry
}

func (self EditList) Len() (n int) {
	n += 8
	n += 4
	n += 4
	n += LenEditListEntryV1 * len(self.Entries)
	return
}

func (self EditList) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(ELST))
	n += self.marshal(b[8:]) + 8
	pio.PutU32BE(b[0:], uint32(n))
	return
}

func (self EditList) marshal(b []byte) (n int) {
	b[n] = 1
	n += 1
	pio.PutU24BE(b[n:], self.Flags)
	n += 3
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		PutEditListEntryV1(b[n:], entry)
		n += LenEditListEntryV1
	}
	return
}

// ParseEditList decodes the elst box described by box, version 0 or 1.
func ParseEditList(b []byte, box Box) (self EditList, err error) {
	content := box.Content(b)
	offset := box.ContentStart()
	n := 0
	if len(content) < n+8 {
		err = parseErr("EntryCount", offset+n, err)
		return
	}
	self.Version = pio.U8(content[n:])
	self.Flags = pio.U24BE(content[n+1:])
	count := int(pio.U32BE(content[n+4:]))
	n += 8

	entryLen := LenEditListEntryV0
	get := GetEditListEntryV0
	switch self.Version {
	case 0:
	case 1:
		entryLen = LenEditListEntryV1
		get = GetEditListEntryV1
	default:
		err = parseErr("Version", offset, err)
		return
	}
	if count > (len(content)-n)/entryLen {
		err = parseErr("Entries", offset+n, err)
		return
	}
	self.Entries = make([]EditListEntry, count)
	for i := range self.Entries {
		self.Entries[i] = get(content[n:])
		n += entryLen
	}
	return
}

// MakeEditList builds a version 1 elst box holding entries.
func MakeEditList(entries []EditListEntry) []byte {
	elst := EditList{Version: 1, Entries: entries}
	b := make([]byte, elst.Len())
	elst.Marshal(b)
	return b
}

// MakeEditBox wraps an elst box in an edts box.
func MakeEditBox(elst []byte) []byte {
	return MakeBox(EDTS, elst)
}
