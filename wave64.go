package raff

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Wave64 marker GUIDs and the fixed GUID-to-FourCC table. Wave64
// replaces the 4-character tags of RIFF with 128-bit GUIDs whose
// first four little-endian bytes spell the legacy tag.
var (
	wave64RiffGUID = uuid.MustParse("66666972-912E-11CF-A5D6-28DB04C10000")
	wave64WaveGUID = uuid.MustParse("65766177-ACF3-11D3-8CD1-00C04F8EDB8A")

	wave64FourCC = map[uuid.UUID]string{
		wave64RiffGUID: "RIFF",
		wave64WaveGUID: "WAVE",
		uuid.MustParse("7473696C-912F-11CF-A5D6-28DB04C10000"): "LIST",
		uuid.MustParse("20746D66-ACF3-11D3-8CD1-00C04F8EDB8A"): "fmt ",
		uuid.MustParse("74636166-ACF3-11D3-8CD1-00C04F8EDB8A"): "fact",
		uuid.MustParse("61746164-ACF3-11D3-8CD1-00C04F8EDB8A"): "data",
		uuid.MustParse("6C76656C-ACF3-11D3-8CD1-00C04F8EDB8A"): "levl",
		uuid.MustParse("6B6E756A-ACF3-11D3-8CD1-00C04F8EDB8A"): "JUNK",
		uuid.MustParse("74786562-ACF3-11D3-8CD1-00C04F8EDB8A"): "bext",
		uuid.MustParse("ABF76256-392D-11D2-86C7-00C04F8EDB8A"): "MARKER",
		uuid.MustParse("925F94BC-525A-11D2-86DC-00C04F8EDB8A"): "SUMMARYLIST",
	}
)

const wave64Alignment = 8

// walkWave64 enumerates GUID-tagged chunks. Triggered by the
// lowercase "riff" signature; the 4 bytes already consumed are
// re-read as part of the leading GUID.
func (c *Container) walkWave64(visit VisitFunc) error {
	if err := c.stream.reset(); err != nil {
		return err
	}

	riffGUID, ok, err := c.readGUID()
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: truncated master header", ErrInvalidFormat)
	}

	if riffGUID != wave64RiffGUID {
		return fmt.Errorf("%w: unknown RIFF GUID %s", ErrInvalidFormat, riffGUID)
	}

	// Unlike RIFF/RF64, this size includes the 24-byte GUID+size
	// header of the chunk it describes.
	size, ok, err := c.readUint64LE()
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: truncated master header", ErrInvalidFormat)
	}

	waveGUID, ok, err := c.readGUID()
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: truncated master header", ErrInvalidFormat)
	}

	if waveGUID != wave64WaveGUID {
		return fmt.Errorf("%w: unknown WAVE GUID %s", ErrInvalidFormat, waveGUID)
	}

	c.byteOrder = binary.LittleEndian
	c.master = &MasterRecord{
		ID:       "RIFF",
		Size:     size,
		Type:     "WAVE",
		GUID:     riffGUID,
		TypeGUID: waveGUID,
	}

	for {
		offset, err := c.stream.tell()
		if err != nil {
			return err
		}

		guid, ok, err := c.readGUID()
		if err != nil || !ok {
			return err
		}

		size, ok, err := c.readUint64LE()
		if err != nil || !ok {
			return err
		}

		id, known := wave64FourCC[guid]
		if !known {
			id = fmt.Sprintf("custom%d", c.storedCount())
		}

		// Unrecognized chunk types are always skipped; Wave64 never
		// surfaces them regardless of the ignore set.
		if c.ignore[id] || strings.HasPrefix(id, "custom") {
			if err := c.stream.seekTo(offset + int64(size)); err != nil {
				return err
			}

			continue
		}

		payload, err := c.stream.readUpTo(int64(size))
		if err != nil {
			return err
		}

		rec := &ChunkRecord{ID: id, Offset: offset, Size: size, Payload: payload, GUID: guid}
		c.records[id] = rec
		c.order = append(c.order, id)

		if !visit(Chunk{ID: id, Size: size, Payload: payload}) {
			return nil
		}

		// Chunks sit on 8-byte boundaries.
		next := offset + int64(size)
		if rem := next % wave64Alignment; rem != 0 {
			next += wave64Alignment - rem
		}

		if err := c.stream.seekTo(next); err != nil {
			return err
		}
	}
}

func (c *Container) readUint64LE() (uint64, bool, error) {
	var b [8]byte

	ok, err := c.stream.readExact(b[:])
	if err != nil || !ok {
		return 0, ok, err
	}

	return binary.LittleEndian.Uint64(b[:]), true, nil
}

func (c *Container) readGUID() (uuid.UUID, bool, error) {
	var b [16]byte

	ok, err := c.stream.readExact(b[:])
	if err != nil || !ok {
		return uuid.UUID{}, ok, err
	}

	return guidFromBytesLE(b[:]), true, nil
}

// guidFromBytesLE decodes a GUID stored in Microsoft mixed-endian
// layout: the first three fields are little-endian, the last two are
// big-endian.
func guidFromBytesLE(b []byte) uuid.UUID {
	var g uuid.UUID

	g[0], g[1], g[2], g[3] = b[3], b[2], b[1], b[0]
	g[4], g[5] = b[5], b[4]
	g[6], g[7] = b[7], b[6]
	copy(g[8:], b[8:16])

	return g
}
