// internal/hxc/record.go
package hxc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Record is one slot table row, normalized across versions.
type Record struct {
	Type    string
	Attr    uint8
	Cluster uint32
	Size    uint32
	Name    string
}

// DecodeV1 parses a 38-byte v1 row. The type token is the 8.3 extension
// and the display name is the 17-byte long name.
func DecodeV1(b []byte) Record {
	le := binary.LittleEndian
	return Record{
		Type:    cstr(b[8:11]),
		Attr:    b[12],
		Cluster: le.Uint32(b[13:]),
		Size:    le.Uint32(b[17:]),
		Name:    cstr(b[21 : 21+v1LongLen]),
	}
}

// EncodeV1 builds a v1 row. The 8.3 name field carries shortName.
func EncodeV1(r Record, shortName string) []byte {
	b := make([]byte, V1RecordSize)
	le := binary.LittleEndian
	copy(b[0:8], shortName)
	copy(b[8:11], r.Type)
	b[12] = r.Attr
	le.PutUint32(b[13:], r.Cluster)
	le.PutUint32(b[17:], r.Size)
	copy(b[21:21+v1LongLen], r.Name)
	return b
}

// DecodeV2 parses a 64-byte v2 row.
func DecodeV2(b []byte) Record {
	le := binary.LittleEndian
	return Record{
		Type:    cstr(b[0:v2TypeLen]),
		Attr:    b[3],
		Cluster: le.Uint32(b[4:]),
		Size:    le.Uint32(b[8:]),
		Name:    cstr(b[12 : 12+v2NameLen]),
	}
}

// EncodeV2 builds a v2 row.
func EncodeV2(r Record) []byte {
	b := make([]byte, V2RecordSize)
	le := binary.LittleEndian
	copy(b[0:v2TypeLen], r.Type)
	b[3] = r.Attr
	le.PutUint32(b[4:], r.Cluster)
	le.PutUint32(b[8:], r.Size)
	copy(b[12:12+v2NameLen], r.Name)
	return b
}

// ReadHeader reads and decodes the header at offset 0.
func ReadHeader(r io.ReaderAt) (Header, error) {
	buf := make([]byte, HeaderSize)
	n, err := r.ReadAt(buf, 0)
	if n < HeaderSize {
		if err == nil || err == io.EOF {
			return Header{}, ErrShortHeader
		}
		return Header{}, fmt.Errorf("hxc: read header: %w", err)
	}
	return DecodeHeader(buf)
}

// WriteHeader rewrites the header record in place. Nothing past
// HeaderSize is touched.
func WriteHeader(w io.WriterAt, h Header) error {
	if _, err := w.WriteAt(h.Encode(), 0); err != nil {
		return fmt.Errorf("hxc: write header: %w", err)
	}
	return nil
}

// ReadRecord reads slot nr's row from the table.
func ReadRecord(r io.ReaderAt, h Header, nr uint16) (Record, error) {
	buf := make([]byte, h.RecordSize())
	n, err := r.ReadAt(buf, h.RecordOffset(nr))
	if err != nil && !(err == io.EOF && n == len(buf)) {
		return Record{}, fmt.Errorf("hxc: read slot %d: %w", nr, err)
	}
	if h.Version() == 1 {
		return DecodeV1(buf), nil
	}
	return DecodeV2(buf), nil
}

// ReadMap reads the v2 slot map region.
func ReadMap(r io.ReaderAt, h Header) ([]byte, error) {
	buf := make([]byte, MapSize)
	n, err := r.ReadAt(buf, h.MapOffset())
	if err != nil && !(err == io.EOF && n == len(buf)) {
		return nil, fmt.Errorf("hxc: read slot map: %w", err)
	}
	return buf, nil
}

// Build lays out a complete configuration file: header at 0, then for
// version 2 the slot map, then each record at its table offset.
func Build(h Header, records map[uint16]Record, slotMap []byte) []byte {
	size := int64(HeaderSize)
	grow := func(end int64) {
		if end > size {
			size = end
		}
	}
	if h.Version() == 2 && slotMap != nil {
		grow(h.MapOffset() + int64(len(slotMap)))
	}
	for nr := range records {
		grow(h.RecordOffset(nr) + int64(h.RecordSize()))
	}

	out := make([]byte, size)
	copy(out, h.Encode())
	if h.Version() == 2 && slotMap != nil {
		copy(out[h.MapOffset():], slotMap)
	}
	for nr, r := range records {
		var row []byte
		if h.Version() == 1 {
			row = EncodeV1(r, r.Name)
		} else {
			row = EncodeV2(r)
		}
		copy(out[h.RecordOffset(nr):], row)
	}
	return out
}

func cstr(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
