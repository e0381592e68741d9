package raff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

// rf64Header writes the RF64 master chunk (size sentinel) followed by
// a ds64 chunk with the given field values.
func rf64Header(fields [8]uint32) *streamBuilder {
	b := newStreamBuilder(binary.LittleEndian)
	b.tag("RF64")
	b.u32(0xFFFFFFFF)
	b.tag("WAVE")
	b.tag("ds64")

	for _, v := range fields {
		b.u32(v)
	}

	return b
}

func TestRF64DataSizeFromDS64(t *testing.T) {
	// data_low_size=0, data_high_size=1: resolved size is 2^32.
	b := rf64Header([8]uint32{28, 1000, 0, 0, 1, 0, 0, 0})
	b.tag("data")
	b.u32(0xFFFFFFFF) // on-disk placeholder, consumed but ignored
	b.raw([]byte("abcd"))

	c := NewFromBytes(b.bytes())

	got, err := collect(c)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}

	if got[0].id != "data" || got[0].size != 1<<32 {
		t.Fatalf("data size mismatch: got %d want %d", got[0].size, uint64(1)<<32)
	}

	// Only the bytes actually present end up in the payload.
	if !bytes.Equal(got[0].payload, []byte("abcd")) {
		t.Fatalf("payload mismatch: %q", got[0].payload)
	}

	ds64 := c.DS64()
	if ds64 == nil || ds64.DataHighSize != 1 || ds64.RiffLowSize != 1000 {
		t.Fatalf("ds64 record mismatch: %+v", ds64)
	}

	// The sentinel master size is replaced by riff_low_size.
	if c.Master().Size != 1000 {
		t.Fatalf("master size mismatch: got %d want 1000", c.Master().Size)
	}

	// ds64 leads the identifier sequence but is addressed through
	// DS64, not the chunk lookup.
	ids := c.Identifiers()
	if len(ids) != 2 || ids[0] != "ds64" || ids[1] != "data" {
		t.Fatalf("identifier sequence mismatch: %v", ids)
	}

	if c.Chunk("ds64") != nil {
		t.Fatal("ds64 side table must not appear as a chunk record")
	}
}

func TestRF64FactSizeFromSampleCounts(t *testing.T) {
	b := rf64Header([8]uint32{28, 100, 0, 0, 0, 8, 0, 0})
	b.tag("fact")
	b.u32(4) // placeholder
	b.raw([]byte("12345678"))
	b.chunk("tail", []byte("after!"))

	c := NewFromBytes(b.bytes())

	got, err := collect(c)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}

	if got[0].id != "fact" || got[0].size != 8 || !bytes.Equal(got[0].payload, []byte("12345678")) {
		t.Fatalf("fact chunk mismatch: %+v", got[0])
	}

	// The placeholder size was consumed, so the next chunk parses
	// from the right position.
	if got[1].id != "tail" || !bytes.Equal(got[1].payload, []byte("after!")) {
		t.Fatalf("chunk after fact mismatch: %+v", got[1])
	}
}

func TestRF64OtherChunksUseOnDiskSize(t *testing.T) {
	b := rf64Header([8]uint32{28, 100, 0, 0, 0, 0, 0, 0})
	b.chunk("fmt ", bytes.Repeat([]byte{0x22}, 16))

	c := NewFromBytes(b.bytes())

	got, err := collect(c)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	if len(got) != 1 || got[0].id != "fmt " || got[0].size != 16 {
		t.Fatalf("fmt chunk mismatch: %+v", got)
	}
}

func TestRF64SizeTableSkipped(t *testing.T) {
	// table_entry_count=1: 12 table bytes sit between ds64 and the
	// first chunk and must be stepped over. The data chunk's size
	// comes from the ds64 override, so data_low_size carries it.
	b := rf64Header([8]uint32{40, 100, 0, 4, 0, 0, 0, 1})
	b.raw(bytes.Repeat([]byte{0xEE}, 12))
	b.chunk("data", []byte("pcm!"))

	c := NewFromBytes(b.bytes())

	got, err := collect(c)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	if len(got) != 1 || got[0].id != "data" || !bytes.Equal(got[0].payload, []byte("pcm!")) {
		t.Fatalf("chunk after size table mismatch: %+v", got)
	}
}

func TestRF64NullIdentifierFiller(t *testing.T) {
	b := rf64Header([8]uint32{28, 100, 0, 0, 0, 0, 0, 0})
	b.chunk("\x00\x00\x00\x00", bytes.Repeat([]byte{0}, 6))
	b.chunk("data", []byte("real"))

	c := NewFromBytes(b.bytes())

	got, err := collect(c)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	// Filler is consumed but never recorded or emitted.
	if len(got) != 1 || got[0].id != "data" {
		t.Fatalf("expected only the data chunk, got %+v", got)
	}

	for _, id := range c.Identifiers() {
		if id == "\x00\x00\x00\x00" {
			t.Fatal("filler must not appear in the identifier sequence")
		}
	}
}

func TestRF64MissingDS64(t *testing.T) {
	b := newStreamBuilder(binary.LittleEndian)
	b.tag("RF64")
	b.u32(0xFFFFFFFF)
	b.tag("WAVE")
	b.chunk("data", []byte("oops"))

	c := NewFromBytes(b.bytes())

	err := c.Parse()
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}

	if !strings.Contains(err.Error(), "expected ds64 chunk") {
		t.Fatalf("error %q should name the missing ds64 chunk", err)
	}
}

func TestRF64TruncatedDS64(t *testing.T) {
	b := newStreamBuilder(binary.LittleEndian)
	b.tag("BW64")
	b.u32(0xFFFFFFFF)
	b.tag("WAVE")
	b.tag("ds64")
	b.u32(28)
	b.u32(100) // stream ends mid-table

	c := NewFromBytes(b.bytes())

	err := c.Parse()
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestRF64IgnoreSetUsesResolvedSize(t *testing.T) {
	// Skipping an ignored data chunk must consume the ds64-resolved
	// size, not the placeholder.
	b := rf64Header([8]uint32{28, 100, 0, 6, 0, 0, 0, 0})
	b.tag("data")
	b.u32(0xFFFFFFFF)
	b.raw([]byte("six by"))
	b.chunk("tail", []byte("kept"))

	c := NewFromBytes(b.bytes(), "data")

	got, err := collect(c)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	if len(got) != 1 || got[0].id != "tail" || !bytes.Equal(got[0].payload, []byte("kept")) {
		t.Fatalf("chunk after ignored data mismatch: %+v", got)
	}
}
