package raff

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
)

// streamBuilder assembles synthetic container byte streams for tests.
type streamBuilder struct {
	buf   bytes.Buffer
	order binary.ByteOrder
}

func newStreamBuilder(order binary.ByteOrder) *streamBuilder {
	return &streamBuilder{order: order}
}

func (b *streamBuilder) tag(id string) *streamBuilder {
	b.buf.WriteString(id)

	return b
}

func (b *streamBuilder) u32(v uint32) *streamBuilder {
	var tmp [4]byte

	b.order.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])

	return b
}

func (b *streamBuilder) u64le(v uint64) *streamBuilder {
	var tmp [8]byte

	binary.LittleEndian.PutUint64(tmp[:], v)
	b.buf.Write(tmp[:])

	return b
}

func (b *streamBuilder) raw(data []byte) *streamBuilder {
	b.buf.Write(data)

	return b
}

// chunk writes a standard chunk header plus payload, adding the pad
// byte odd-sized payloads carry on disk.
func (b *streamBuilder) chunk(id string, payload []byte) *streamBuilder {
	b.tag(id)
	b.u32(uint32(len(payload)))
	b.buf.Write(payload)

	if len(payload)%2 == 1 {
		b.buf.WriteByte(0)
	}

	return b
}

// guidLE writes a GUID in Microsoft mixed-endian layout, the inverse
// of guidFromBytesLE.
func (b *streamBuilder) guidLE(g uuid.UUID) *streamBuilder {
	b.buf.Write([]byte{
		g[3], g[2], g[1], g[0],
		g[5], g[4],
		g[7], g[6],
	})
	b.buf.Write(g[8:])

	return b
}

// wave64Chunk writes a Wave64 chunk. The declared size includes the
// 24-byte GUID+size header, as real Wave64 files declare it.
func (b *streamBuilder) wave64Chunk(g uuid.UUID, payload []byte) *streamBuilder {
	b.guidLE(g)
	b.u64le(uint64(24 + len(payload)))
	b.buf.Write(payload)

	return b
}

func (b *streamBuilder) bytes() []byte {
	return b.buf.Bytes()
}

// riffWave builds a little-endian RIFF/WAVE stream around body, with
// a correct master size field.
func riffWave(body []byte) []byte {
	b := newStreamBuilder(binary.LittleEndian)
	b.tag("RIFF")
	b.u32(uint32(4 + len(body)))
	b.tag("WAVE")
	b.raw(body)

	return b.bytes()
}

// wave64Header builds the 40-byte Wave64 master header. The declared
// size covers the header itself plus bodySize.
func wave64Header(bodySize int) *streamBuilder {
	b := newStreamBuilder(binary.LittleEndian)
	b.guidLE(wave64RiffGUID)
	b.u64le(uint64(40 + bodySize))
	b.guidLE(wave64WaveGUID)

	return b
}

type emitted struct {
	id      string
	size    uint64
	payload []byte
}

// collect walks the container and captures every emitted triple.
func collect(c *Container) ([]emitted, error) {
	var out []emitted

	err := c.Walk(func(ch Chunk) bool {
		out = append(out, emitted{id: ch.ID, size: ch.Size, payload: ch.Payload})

		return true
	})

	return out, err
}
