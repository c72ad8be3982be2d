//go:build !linux

package platform

import "os"

// AdviseSequential is a no-op on platforms without posix_fadvise.
func AdviseSequential(*os.File) {}
