package raff

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrInvalidSource is returned when the input cannot be used as a
// seekable byte source (absent file, nil reader).
var ErrInvalidSource = errors.New("invalid source")

// New wraps an already-open seekable reader. The optional ignore list
// names chunk identifiers to skip during enumeration.
func New(r io.ReadSeeker, ignore ...string) (*Container, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrInvalidSource)
	}

	return newContainer(r, nil, ignore), nil
}

// NewFromBytes parses from an in-memory buffer.
func NewFromBytes(data []byte, ignore ...string) *Container {
	return newContainer(bytes.NewReader(data), nil, ignore)
}

// Open resolves path into a file-backed container. The caller owns
// the file handle through Close.
func Open(path string, ignore ...string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	return newContainer(f, f, ignore), nil
}

// stream is the byte cursor shared by the walkers.
type stream struct {
	r io.ReadSeeker
}

// readExact fills b from the stream. ok is false when the stream ends
// before b is full; that is the walkers' end-of-data signal, not an
// error.
func (s *stream) readExact(b []byte) (ok bool, err error) {
	_, err = io.ReadFull(s.r, b)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to read %d bytes: %w", len(b), err)
	}

	return true, nil
}

// readUpTo reads at most n bytes, returning whatever the stream still
// holds. Declared sizes are untrusted, so the buffer grows with the
// actual data instead of being preallocated.
func (s *stream) readUpTo(n int64) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}

	var buf bytes.Buffer

	_, err := io.CopyN(&buf, s.r, n)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *stream) tell() (int64, error) {
	pos, err := s.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("failed to query stream position: %w", err)
	}

	return pos, nil
}

func (s *stream) reset() error {
	_, err := s.r.Seek(0, io.SeekStart)
	if err != nil {
		return fmt.Errorf("failed to seek back to the start: %w", err)
	}

	return nil
}

func (s *stream) skip(n int64) error {
	_, err := s.r.Seek(n, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("failed to skip %d bytes: %w", n, err)
	}

	return nil
}

func (s *stream) seekTo(offset int64) error {
	_, err := s.r.Seek(offset, io.SeekStart)
	if err != nil {
		return fmt.Errorf("failed to seek to offset %d: %w", offset, err)
	}

	return nil
}
