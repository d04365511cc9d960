//go:build !darwin

package codemodule

import "golang.org/x/sys/unix"

// mmapCodeBuffer allocates size bytes of anonymous read-write memory that
// will later be mprotected to read-execute once code is written into it.
func mmapCodeBuffer(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
}
