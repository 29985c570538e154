// Package bufio2 provides the little-endian binary framing shared by
// every file format the pipeline emits: fixed-width integers, floats,
// and length-prefixed sequences, as manual
// encoding/binary.LittleEndian field writes.
package bufio2

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer accumulates a little-endian byte buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer with a small preallocated buffer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 256)}
}

func (w *Writer) Bytes() []byte { return w.buf }
func (w *Writer) Len() int      { return len(w.buf) }

func (w *Writer) U8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) F64(v float64) {
	w.U64(math.Float64bits(v))
}

// Count writes a length prefix for a sequence: a u64 count followed
// by the elements.
func (w *Writer) Count(n int) {
	w.U64(uint64(n))
}

// Raw appends pre-encoded bytes verbatim (used to splice a nested
// Writer's buffer, e.g. a compression descriptor followed by a body).
func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

// Reader consumes a little-endian byte buffer produced by Writer.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("bufio2: need %d bytes, have %d", n, r.Remaining())
	}
	return nil
}

func (r *Reader) U8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) U64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *Reader) F64() (float64, error) {
	v, err := r.U64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Count reads a sequence length prefix written by Writer.Count.
func (r *Reader) Count() (int, error) {
	v, err := r.U64()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
