package bufio2

import "testing"

func TestRoundTrip(t *testing.T) {
	w := NewWriter()
	w.U64(42)
	w.U32(7)
	w.U16(3)
	w.U8(1)
	w.F64(3.5)
	w.Count(2)

	r := NewReader(w.Bytes())
	if v, err := r.U64(); err != nil || v != 42 {
		t.Fatalf("U64 = %d, %v", v, err)
	}
	if v, err := r.U32(); err != nil || v != 7 {
		t.Fatalf("U32 = %d, %v", v, err)
	}
	if v, err := r.U16(); err != nil || v != 3 {
		t.Fatalf("U16 = %d, %v", v, err)
	}
	if v, err := r.U8(); err != nil || v != 1 {
		t.Fatalf("U8 = %d, %v", v, err)
	}
	if v, err := r.F64(); err != nil || v != 3.5 {
		t.Fatalf("F64 = %v, %v", v, err)
	}
	if v, err := r.Count(); err != nil || v != 2 {
		t.Fatalf("Count = %d, %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected buffer exhausted, %d bytes remain", r.Remaining())
	}
}

func TestReaderErrorsOnShortBuffer(t *testing.T) {
	r := NewReader([]byte{1, 2})
	if _, err := r.U64(); err == nil {
		t.Fatal("expected error reading u64 from 2-byte buffer")
	}
}
