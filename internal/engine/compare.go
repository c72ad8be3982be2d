package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/0a3b/antseek/internal/platform"
)

// compareResult is the verdict of a byte-level comparison. An error verdict
// is kept distinct from a mismatch so I/O failures are never reported as
// "different".
type compareResult int

const (
	compareMatch compareResult = iota
	compareNoMatch
	compareError
)

const compareBufSize = 64 * 1024

// compareFileContents reports whether two files are byte-identical. Files
// of unequal size are a mismatch without any read. stop is checked between
// buffer reads; a stopped comparison reports an error verdict.
func compareFileContents(a, b FileRecord, stop func() bool) (compareResult, error) {
	if a.Size != b.Size {
		return compareNoMatch, nil
	}

	fa, err := os.Open(a.Path)
	if err != nil {
		return compareError, fmt.Errorf("open %s: %w", a.Path, err)
	}
	defer fa.Close()
	fb, err := os.Open(b.Path)
	if err != nil {
		return compareError, fmt.Errorf("open %s: %w", b.Path, err)
	}
	defer fb.Close()

	platform.AdviseSequential(fa)
	platform.AdviseSequential(fb)

	bufA := make([]byte, compareBufSize)
	bufB := make([]byte, compareBufSize)

	for {
		if stop != nil && stop() {
			return compareError, errors.New("comparison canceled")
		}

		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)
		if na != nb {
			return compareError, fmt.Errorf("read length mismatch between %s and %s", a.Path, b.Path)
		}
		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return compareNoMatch, nil
		}

		aDone := errA == io.EOF || errA == io.ErrUnexpectedEOF
		bDone := errB == io.EOF || errB == io.ErrUnexpectedEOF
		switch {
		case aDone && bDone:
			return compareMatch, nil
		case errA != nil:
			return compareError, fmt.Errorf("read %s: %w", a.Path, errA)
		case errB != nil:
			return compareError, fmt.Errorf("read %s: %w", b.Path, errB)
		}
	}
}
