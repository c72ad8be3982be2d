//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// AdviseSequential hints the kernel that f will be read sequentially from
// the start, enabling aggressive read-ahead. Best effort; errors are
// ignored.
func AdviseSequential(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
