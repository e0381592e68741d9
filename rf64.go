package raff

import "fmt"

// walkRF64 handles RF64/BW64 streams: the master size field was the
// all-ones sentinel, so the real sizes for the data and fact chunks
// come from the ds64 side table read here.
func (c *Container) walkRF64(visit VisitFunc) error {
	tag, ok, err := c.readTag()
	if err != nil {
		return err
	}

	if !ok || tag != ds64ID {
		return fmt.Errorf("%w: expected ds64 chunk, found %q", ErrInvalidFormat, tag)
	}

	var fields [8]uint32
	for i := range fields {
		v, ok, err := c.readUint32()
		if err != nil {
			return err
		}

		if !ok {
			return fmt.Errorf("%w: truncated ds64 chunk", ErrInvalidFormat)
		}

		fields[i] = v
	}

	c.ds64 = &DS64Record{
		ChunkSize:       fields[0],
		RiffLowSize:     fields[1],
		RiffHighSize:    fields[2],
		DataLowSize:     fields[3],
		DataHighSize:    fields[4],
		SampleLowCount:  fields[5],
		SampleHighCount: fields[6],
		TableEntryCount: fields[7],
	}
	c.order = append(c.order, ds64ID)

	// Only the low 32 bits replace the sentinel master size: overall
	// container size above 4 GiB is not reconstructed, per-chunk sizes
	// are.
	c.master.Size = uint64(c.ds64.RiffLowSize)

	// The oversized-chunk size table covers chunks other than
	// data/fact; it is skipped, not parsed.
	if n := int64(c.ds64.TableEntryCount) * 12; n > 0 {
		if err := c.stream.skip(n); err != nil {
			return err
		}
	}

	for {
		offset, err := c.stream.tell()
		if err != nil {
			return err
		}

		id, ok, err := c.readTag()
		if err != nil || !ok {
			return err
		}

		var size uint64

		switch id {
		case "data":
			// The on-disk size is a placeholder; consume it and use the
			// ds64 override.
			if _, ok, err = c.readUint32(); err != nil || !ok {
				return err
			}

			size = uint64(c.ds64.DataLowSize) | uint64(c.ds64.DataHighSize)<<32

		case "fact":
			if _, ok, err = c.readUint32(); err != nil || !ok {
				return err
			}

			size = uint64(c.ds64.SampleLowCount) | uint64(c.ds64.SampleHighCount)<<32

		default:
			size32, ok, err := c.readUint32()
			if err != nil || !ok {
				return err
			}

			size = uint64(size32)
		}

		more, err := c.consumeChunk(visit, offset, id, size, true)
		if err != nil || !more {
			return err
		}
	}
}
