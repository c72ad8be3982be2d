package mask

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/0a3b/antseek/internal/platform"
)

// defaultFindBase is the read granularity of FindInFile when the caller
// does not pick one.
const defaultFindBase = 8192

// ErrMaskSize reports a mask too short to cover its reference buffer.
var ErrMaskSize = errors.New("mask shorter than reference")

// ErrLengthMismatch reports buffers of unequal length where equal lengths
// were required.
var ErrLengthMismatch = errors.New("buffer length mismatch")

// MatchFile reports whether the first len(reference) bytes of the file —
// or the last, when fromEnd is set — match reference under the mask. Files
// shorter than the reference never match. An empty reference matches
// everything.
func MatchFile(path string, reference []byte, m Mask, fromEnd bool) (bool, error) {
	if len(reference) == 0 {
		return true, nil
	}
	if len(m) < words(len(reference)) {
		return false, ErrMaskSize
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() < int64(len(reference)) {
		return false, nil
	}

	offset := int64(0)
	if fromEnd {
		offset = info.Size() - int64(len(reference))
	}

	buf := make([]byte, len(reference))
	if n, err := f.ReadAt(buf, offset); n != len(buf) {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	return matchWindow(buf, reference, m), nil
}

// FindInFile searches the file for any window matching reference under the
// mask. base controls the read granularity; a non-positive base selects
// the default. Windows spanning read boundaries are covered by carrying
// the last len(reference)-1 bytes over between reads.
func FindInFile(path string, reference []byte, m Mask, base int) (bool, error) {
	if len(reference) == 0 {
		return true, nil
	}
	if len(m) < words(len(reference)) {
		return false, ErrMaskSize
	}
	if base <= 0 {
		base = defaultFindBase
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	platform.AdviseSequential(f)

	overlap := len(reference) - 1
	buf := make([]byte, base+overlap)

	n, err := io.ReadFull(f, buf)
	if n < len(reference) {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if searchWindow(buf[:n], reference, m) {
		return true, nil
	}

	// The loop runs only while the previous read filled the buffer, so the
	// carried-over tail is always valid data.
	for err == nil {
		copy(buf, buf[len(buf)-overlap:])
		var nn int
		nn, err = io.ReadFull(f, buf[overlap:])
		if overlap+nn < len(reference) {
			break
		}
		if searchWindow(buf[:overlap+nn], reference, m) {
			return true, nil
		}
	}
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	return false, nil
}
