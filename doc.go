// Package raff reads IFF-family chunk-based containers into a
// queryable record of chunks without interpreting chunk payloads.
//
// Supported variants are classic RIFF/RIFX/FORM (little or big
// endian), the RF64/BW64 64-bit extension with its ds64 side table,
// and Sony Wave64 with GUID-tagged chunks on 8-byte boundaries. The
// variant is detected from the first bytes of the stream; callers
// never choose it.
//
// Enumeration is lazy: Walk invokes a visitor once per chunk and the
// visitor may stop early, leaving the Container partially populated.
// Walk always repositions the stream to its start but never clears
// previously accumulated state; construct a fresh Container for a
// clean parse.
//
//	c, err := raff.Open("take.wav")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	if err := c.Parse(); err != nil {
//		log.Fatal(err)
//	}
//
//	data := c.Chunk("data")
package raff
