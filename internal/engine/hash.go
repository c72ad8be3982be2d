package engine

import (
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/0a3b/antseek/internal/platform"
)

// hashFileChunk hashes the first (or, when fromStart is false, the last)
// chunkSize bytes of the file with a 64-bit non-cryptographic hash. Files
// shorter than chunkSize are hashed in full.
func hashFileChunk(path string, fileSize, chunkSize int64, fromStart bool) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if chunkSize > fileSize {
		chunkSize = fileSize
	}
	offset := int64(0)
	if !fromStart {
		offset = fileSize - chunkSize
	}

	platform.AdviseSequential(f)

	buf := make([]byte, chunkSize)
	if n, err := f.ReadAt(buf, offset); int64(n) != chunkSize {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return xxhash.Sum64(buf), nil
}
