//go:build linux

package reactor

import (
	"golang.org/x/sys/unix"
)

const (
	EFD_CLOEXEC  = unix.EFD_CLOEXEC
	EFD_NONBLOCK = unix.EFD_NONBLOCK
)

// createWakeFd creates an eventfd for wake-up notifications (Linux).
// Returns the single eventfd as both read and write ends.
func createWakeFd(initval uint, flags int) (int, int, error) {
	fd, err := unix.Eventfd(initval, flags)
	return fd, fd, err
}

// closeWakeFd closes the wake eventfd on Linux.
func closeWakeFd(wakeFd, wakeWriteFd int) error {
	if wakeFd >= 0 {
		_ = unix.Close(wakeFd)
	}
	return nil
}

// writeWakeFd signals the eventfd, unblocking a concurrent EpollWait.
func writeWakeFd(fd int, buf []byte) error {
	if fd < 0 {
		return nil
	}
	_, err := unix.Write(fd, buf)
	return err
}

// drainWakeFd consumes every pending wake-up notification on fd so the
// next real wake-up is not masked by a stale readable eventfd.
func drainWakeFd(fd int) error {
	if fd < 0 {
		return nil
	}
	var buf [8]byte
	for {
		if _, err := unix.Read(fd, buf[:]); err != nil {
			break
		}
	}
	return nil
}
