//go:build windows

package reactor

// EFD_CLOEXEC and EFD_NONBLOCK are Unix eventfd flags, defined here as
// zero so createWakeFd's signature can stay identical across platforms.
const (
	EFD_CLOEXEC  = 0
	EFD_NONBLOCK = 0
)

// createWakeFd has no Windows equivalent: IOCP wakes GetQueuedCompletionStatus
// via PostQueuedCompletionStatus rather than a readable fd, which the IOCP
// poller variant handles internally. Returning -1 tells Loop there is no
// fd to register or write to; the loop instead relies on its bounded idle
// poll timeout to notice Shutdown requests promptly.
func createWakeFd(initval uint, flags int) (int, int, error) {
	return -1, -1, nil
}

// closeWakeFd is a no-op on Windows; there is no fd to close.
func closeWakeFd(wakeFd, wakeWriteFd int) error {
	return nil
}

// writeWakeFd is a no-op on Windows.
func writeWakeFd(fd int, buf []byte) error {
	return nil
}

// drainWakeFd is a no-op on Windows.
func drainWakeFd(fd int) error {
	return nil
}
