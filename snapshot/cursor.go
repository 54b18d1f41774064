package snapshot

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrTruncatedRecord is returned when a record, its thread array, or a chain
// offset would extend past the end of the snapshot buffer.
var ErrTruncatedRecord = errors.New("snapshot record extends past buffer")

// cursor is a bounded view over the raw snapshot buffer. Every record and
// offset is validated against the buffer length before it is dereferenced, so
// a corrupt NextEntryOffset chain fails instead of reading out of bounds.
type cursor struct {
	buf []byte
	off int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

// record returns the process record at the current offset.
func (c *cursor) record() (*systemProcessInformation, error) {
	if c.off < 0 || c.off+processRecordSize > len(c.buf) {
		return nil, fmt.Errorf("%w: record header at offset %d, buffer %d bytes", ErrTruncatedRecord, c.off, len(c.buf))
	}
	return (*systemProcessInformation)(unsafe.Pointer(&c.buf[c.off])), nil
}

// threads returns the inline thread array following the current record.
func (c *cursor) threads(count uint32) ([]systemExtendedThreadInformation, error) {
	if count == 0 {
		return nil, nil
	}
	start := c.off + processRecordSize
	need := int(count) * threadRecordSize
	if need/threadRecordSize != int(count) || start+need > len(c.buf) {
		return nil, fmt.Errorf("%w: %d thread records at offset %d, buffer %d bytes", ErrTruncatedRecord, count, start, len(c.buf))
	}
	return unsafe.Slice((*systemExtendedThreadInformation)(unsafe.Pointer(&c.buf[start])), count), nil
}

// advance moves to the next record in the chain. It reports false when the
// current record carried a zero NextEntryOffset, terminating the walk.
func (c *cursor) advance(next uint32) (bool, error) {
	if next == 0 {
		return false, nil
	}
	target := c.off + int(next)
	if target <= c.off || target+processRecordSize > len(c.buf) {
		return false, fmt.Errorf("%w: next offset %d from %d, buffer %d bytes", ErrTruncatedRecord, next, c.off, len(c.buf))
	}
	c.off = target
	return true, nil
}

// imageName decodes the record's UTF-16 image name. The kernel points the
// string into the snapshot buffer itself; a pointer outside it is rejected.
// An absent name is an empty string, not an error.
func (c *cursor) imageName(s unicodeString) (string, error) {
	if s.Buffer == nil || s.Length == 0 {
		return "", nil
	}
	base := uintptr(unsafe.Pointer(&c.buf[0]))
	p := uintptr(unsafe.Pointer(s.Buffer))
	if p < base || p+uintptr(s.Length) > base+uintptr(len(c.buf)) {
		return "", fmt.Errorf("%w: image name outside buffer", ErrTruncatedRecord)
	}
	u16 := unsafe.Slice(s.Buffer, s.Length/2)
	runes := make([]rune, 0, len(u16))
	for _, v := range u16 {
		if v == 0 {
			break
		}
		runes = append(runes, rune(v))
	}
	return string(runes), nil
}
