package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version   byte = 1
	kindEntry byte = 1

	hdrLen = 4 + 1 + 1 + 8 + 4
)

var (
	ErrCorrupt = errors.New("scopecache: corrupt entry")
	magic4     = [...]byte{'S', 'C', 'P', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry is a decoded cache value. Payload aliases the input buffer.
type Entry struct {
	StoredAt time.Time
	Payload  []byte
}

// Age reports how long ago the entry was written, relative to now.
func (e Entry) Age(now time.Time) time.Duration {
	if e.StoredAt.IsZero() {
		return 0
	}
	return now.Sub(e.StoredAt)
}

// EncodeEntry frames a codec payload:
//
//	magic(4) | ver(1) | kind(1=entry) | storedAt(i64 be, unix nanos) | vlen(u32 be) | payload(vlen)
func EncodeEntry(storedAt time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindEntry)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(storedAt.UnixNano()))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeEntry validates the frame and returns the entry. Anything that is not
// exactly one well-formed frame (foreign writes, truncation, trailing bytes)
// yields ErrCorrupt.
func DecodeEntry(b []byte) (Entry, error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version || b[5] != kindEntry {
		return Entry{}, ErrCorrupt
	}

	off := 6

	nanos := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // overflow-safe, rejects trailing bytes
		return Entry{}, ErrCorrupt
	}

	return Entry{StoredAt: time.Unix(0, nanos), Payload: b[off : off+vlen]}, nil
}
