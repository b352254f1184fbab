//go:build darwin

package reactor

import (
	"syscall"

	"golang.org/x/sys/unix"
)

const (
	EFD_CLOEXEC  = unix.O_CLOEXEC
	EFD_NONBLOCK = unix.O_NONBLOCK
)

// createWakeFd creates a self-pipe for wake-up notifications (Darwin).
// Returns the read end and the write end of the pipe. initval and flags
// are accepted only for API compatibility with the Linux eventfd variant.
func createWakeFd(initval uint, flags int) (int, int, error) {
	_ = initval
	_ = flags

	var fds [2]int
	if err := syscall.Pipe(fds[:]); err != nil {
		return 0, 0, err
	}

	cleanup := func() {
		syscall.Close(fds[0])
		syscall.Close(fds[1])
	}

	syscall.CloseOnExec(fds[0])
	syscall.CloseOnExec(fds[1])

	if err := syscall.SetNonblock(fds[0], true); err != nil {
		cleanup()
		return 0, 0, err
	}
	if err := syscall.SetNonblock(fds[1], true); err != nil {
		cleanup()
		return 0, 0, err
	}

	return fds[0], fds[1], nil
}

// closeWakeFd closes both ends of the self-pipe.
func closeWakeFd(wakeFd, wakeWriteFd int) error {
	if wakeFd >= 0 {
		_ = syscall.Close(wakeFd)
	}
	if wakeWriteFd >= 0 && wakeWriteFd != wakeFd {
		_ = syscall.Close(wakeWriteFd)
	}
	return nil
}

// writeWakeFd writes a single byte to the self-pipe, unblocking a
// concurrent kevent wait on its read end.
func writeWakeFd(fd int, buf []byte) error {
	if fd < 0 {
		return nil
	}
	_, err := syscall.Write(fd, buf[:1])
	return err
}

// drainWakeFd consumes every pending byte from the self-pipe's read end.
func drainWakeFd(fd int) error {
	if fd < 0 {
		return nil
	}
	var buf [64]byte
	for {
		if _, err := syscall.Read(fd, buf[:]); err != nil {
			break
		}
	}
	return nil
}
