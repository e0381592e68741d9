package raff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFormat reports an unrecognized signature or a truncated
// mandatory header. Running out of data at a chunk boundary is not an
// error; it simply ends enumeration.
var ErrInvalidFormat = errors.New("invalid format")

const (
	listID          = "LIST"
	ds64ID          = "ds64"
	nullID          = "\x00\x00\x00\x00"
	wave64Signature = "riff"

	// masterSizeSentinel marks RF64/BW64 streams whose true sizes live
	// in the ds64 chunk.
	masterSizeSentinel = 0xFFFFFFFF
)

var (
	masterBig    = map[string]bool{"FORM": true, "RIFX": true, "FIRR": true}
	masterLittle = map[string]bool{"RIFF": true, "RF64": true, "BW64": true}
)

// Walk resets the stream and enumerates the container's chunks,
// invoking visit once per chunk. A nil visit walks to completion.
// State accumulated by earlier walks is reused, not cleared.
func (c *Container) Walk(visit VisitFunc) error {
	if visit == nil {
		visit = func(Chunk) bool { return true }
	}

	if err := c.stream.reset(); err != nil {
		return err
	}

	tag, ok, err := c.readTag()
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: truncated master header", ErrInvalidFormat)
	}

	if tag == wave64Signature {
		return c.walkWave64(visit)
	}

	switch {
	case masterBig[tag]:
		c.byteOrder = binary.BigEndian
	case masterLittle[tag]:
		c.byteOrder = binary.LittleEndian
	default:
		return fmt.Errorf("%w: unknown master identifier %q", ErrInvalidFormat, tag)
	}

	size, ok, err := c.readUint32()
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: truncated master header", ErrInvalidFormat)
	}

	form, ok, err := c.readTag()
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: truncated master header", ErrInvalidFormat)
	}

	c.master = &MasterRecord{ID: tag, Size: uint64(size), Type: form}

	if size == masterSizeSentinel {
		return c.walkRF64(visit)
	}

	return c.walkStandard(visit)
}

// Parse enumerates every chunk, populating the container.
func (c *Container) Parse() error {
	return c.Walk(nil)
}

// walkStandard enumerates plain RIFF/RIFX chunks until the stream
// cannot yield a full chunk header.
func (c *Container) walkStandard(visit VisitFunc) error {
	for {
		offset, err := c.stream.tell()
		if err != nil {
			return err
		}

		id, ok, err := c.readTag()
		if err != nil || !ok {
			return err
		}

		size, ok, err := c.readUint32()
		if err != nil || !ok {
			return err
		}

		more, err := c.consumeChunk(visit, offset, id, uint64(size), false)
		if err != nil || !more {
			return err
		}
	}
}

// consumeChunk reads one chunk body: ignore-set skipping, LIST
// remapping, record/emit, and the even-alignment pad. more is false
// once the visitor has stopped the walk. fillerNulls enables the
// RF64 rule that an all-NUL identifier is consumed but never
// recorded.
func (c *Container) consumeChunk(visit VisitFunc, offset int64, id string, size uint64, fillerNulls bool) (more bool, err error) {
	if c.ignore[id] {
		return true, c.stream.skip(int64(size))
	}

	payload, err := c.stream.readUpTo(int64(size))
	if err != nil {
		return false, err
	}

	switch {
	case fillerNulls && id == nullID:
		// Filler between chunks: consumed and aligned, nothing kept.

	case id == listID:
		head := payload
		if len(head) > 4 {
			head = head[:4]
		}

		listType := strings.TrimSpace(string(head))

		// The raw LIST wrapper stays addressable under "LIST" while
		// the sequence and emission carry the list type. The size
		// arithmetic (declared kept, true size = declared-12) is
		// preserved for compatibility with existing consumers.
		rec := &ChunkRecord{
			ID:         listID,
			Offset:     offset,
			Size:       size,
			Payload:    append([]byte(nil), head...),
			ListType:   listType,
			TrueOffset: offset + 8,
			TrueSize:   size - 12,
		}

		c.records[listID] = rec
		c.order = append(c.order, listType)

		if !visit(Chunk{ID: listType, Size: size - 12, Payload: rec.Payload}) {
			return false, nil
		}

	default:
		rec := &ChunkRecord{ID: id, Offset: offset, Size: size, Payload: payload}
		c.records[id] = rec
		c.order = append(c.order, id)

		if !visit(Chunk{ID: id, Size: size, Payload: payload}) {
			return false, nil
		}
	}

	// Chunks are word aligned: an odd declared size is followed by one
	// pad byte.
	if size%2 == 1 {
		if err := c.stream.skip(1); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (c *Container) readTag() (string, bool, error) {
	var b [4]byte

	ok, err := c.stream.readExact(b[:])
	if err != nil || !ok {
		return "", ok, err
	}

	return string(b[:]), true, nil
}

func (c *Container) readUint32() (uint32, bool, error) {
	var b [4]byte

	ok, err := c.stream.readExact(b[:])
	if err != nil || !ok {
		return 0, ok, err
	}

	return c.byteOrder.Uint32(b[:]), true, nil
}
