// Package aio provides cancellable async file and socket operations, the
// Go rendering of cppcoro's read_only_file/write_only_file/read_write_file
// and net::socket. Every blocking call takes a context.Context and, where
// the original exposed an explicit cppcoro::cancellation_token parameter,
// a *goro.CancellationToken as well, so callers already holding one of
// goro's tokens (rather than a context) can still cancel in-flight I/O.
//
// Rather than duplicating a raw epoll/kqueue readiness loop the way
// reactor.FastPoller already does for generic fds, File and Socket hand
// their blocking syscalls to goroutines and let the Go runtime's own
// netpoller (the same proactor-style dispatch gaio implements by hand for
// arbitrary fds) do the actual waiting; cancellation races that goroutine
// against ctx.Done()/the token firing and closes the underlying
// descriptor to unblock it, the same "cancel unparks via closing the
// handle" pattern cppcoro's Windows IOCP backend uses for CancelIoEx.
package aio

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joeycumines/goro"
)

// OpenMode mirrors cppcoro::file_open_mode.
type OpenMode int

const (
	// OpenExisting opens an existing file, failing if it does not exist.
	OpenExisting OpenMode = iota
	// CreateAlways creates a new file, overwriting any existing one.
	CreateAlways
	// CreateNew creates a new file, failing if one already exists.
	CreateNew
	// CreateOrOpen opens the file if it exists, else creates a new one.
	CreateOrOpen
	// TruncateExisting opens an existing file and truncates it to zero
	// length, failing if it does not exist.
	TruncateExisting
)

// ShareMode mirrors cppcoro::file_share_mode, a bit-flag set of what
// concurrent access other processes/goroutines are permitted. Go's os
// package has no OS-level share-mode concept on POSIX (that's a Windows
// locking primitive), so on POSIX platforms this is advisory only,
// recorded but not enforced - matching the original's own POSIX back end,
// which also does not enforce sharing restrictions outside Windows.
type ShareMode int

const (
	ShareNone      ShareMode = 0
	ShareRead      ShareMode = 1 << iota
	ShareWrite
	ShareReadWrite = ShareRead | ShareWrite
	ShareDelete    ShareMode = 1 << 4
)

// BufferingMode mirrors cppcoro::file_buffering_mode, advisory hints
// about access pattern and caching. OpenFile accepts a BufferingMode but
// does not act on it: no value, Unbuffered included, changes the OS open
// flags or any other behaviour of the opened File.
type BufferingMode int

const (
	BufferingDefault      BufferingMode = 0
	BufferingSequential   BufferingMode = 1 << iota
	BufferingRandomAccess
	BufferingUnbuffered
	BufferingWriteThrough
	BufferingTemporary
)

// File is a cancellable, sequential-position file handle. ReadOnlyFile,
// WriteOnlyFile and ReadWriteFile (see OpenFile below) all return a *File
// configured for the requested access direction; methods not valid for
// that direction return an error rather than panicking, since the
// distinction is a usage contract, not a type-level one, in this
// rendering.
type File struct {
	f        *os.File
	readable bool
	writable bool
}

func openFlags(mode OpenMode, readable, writable bool) (int, error) {
	var flag int
	switch {
	case readable && writable:
		flag = os.O_RDWR
	case writable:
		flag = os.O_WRONLY
	case readable:
		flag = os.O_RDONLY
	default:
		return 0, fmt.Errorf("aio: file must be readable, writable, or both")
	}
	switch mode {
	case OpenExisting:
	case CreateAlways:
		flag |= os.O_CREATE | os.O_TRUNC
	case CreateNew:
		flag |= os.O_CREATE | os.O_EXCL
	case CreateOrOpen:
		flag |= os.O_CREATE
	case TruncateExisting:
		flag |= os.O_TRUNC
	default:
		return 0, fmt.Errorf("aio: unknown open mode %v", mode)
	}
	return flag, nil
}

// OpenFile opens path for the requested direction with the given open,
// share and buffering modes. share is currently advisory-only; see
// ShareMode. buffering is ignored; see BufferingMode.
func OpenFile(path string, mode OpenMode, share ShareMode, buffering BufferingMode, readable, writable bool) (*File, error) {
	flag, err := openFlags(mode, readable, writable)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, goro.NewSystemError(0, fmt.Errorf("aio: open file: %w", err))
	}
	return &File{f: f, readable: readable, writable: writable}, nil
}

// ReadOnlyFile opens path for reading only.
func ReadOnlyFile(path string, mode OpenMode, share ShareMode, buffering BufferingMode) (*File, error) {
	return OpenFile(path, mode, share, buffering, true, false)
}

// WriteOnlyFile opens path for writing only.
func WriteOnlyFile(path string, mode OpenMode, share ShareMode, buffering BufferingMode) (*File, error) {
	return OpenFile(path, mode, share, buffering, false, true)
}

// ReadWriteFile opens path for both reading and writing.
func ReadWriteFile(path string, mode OpenMode, share ShareMode, buffering BufferingMode) (*File, error) {
	return OpenFile(path, mode, share, buffering, true, true)
}

// Size returns the file's current size in bytes.
func (f *File) Size() (int64, error) {
	info, err := f.f.Stat()
	if err != nil {
		return 0, goro.NewSystemError(0, fmt.Errorf("aio: stat file: %w", err))
	}
	return info.Size(), nil
}

// Close closes the underlying file descriptor.
func (f *File) Close() error {
	return f.f.Close()
}

// ReadAt reads len(buf) bytes starting at offset, cancellable via ctx.
// Cancellation closes the file out from under a blocked read, matching
// the "closing unparks the waiter" discipline the whole package uses.
func (f *File) ReadAt(ctx context.Context, buf []byte, offset int64) (int, error) {
	if !f.readable {
		return 0, fmt.Errorf("aio: file is not readable")
	}
	return runCancellable(ctx, f.f, func() (int, error) {
		return f.f.ReadAt(buf, offset)
	})
}

// WriteAt writes buf starting at offset, cancellable via ctx.
func (f *File) WriteAt(ctx context.Context, buf []byte, offset int64) (int, error) {
	if !f.writable {
		return 0, fmt.Errorf("aio: file is not writable")
	}
	return runCancellable(ctx, f.f, func() (int, error) {
		return f.f.WriteAt(buf, offset)
	})
}

// runCancellable runs op on its own goroutine and returns as soon as
// either it completes or ctx is done. If ctx fires first, closer is
// closed to unblock op's underlying syscall, and the (possibly garbage)
// result from op is discarded in favour of a *goro.CancelledError. This mirrors
// cppcoro's Windows implementation, where cancellation calls CancelIoEx
// against the same handle the pending operation is blocked on.
func runCancellable(ctx context.Context, closer io.Closer, op func() (int, error)) (int, error) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := op()
		done <- result{n, err}
	}()
	select {
	case r := <-done:
		if r.err != nil {
			return r.n, goro.NewSystemError(0, fmt.Errorf("aio: i/o: %w", r.err))
		}
		return r.n, nil
	case <-ctx.Done():
		_ = closer.Close()
		<-done // wait for op to actually unblock before returning
		return 0, &goro.CancelledError{Op: "aio"}
	}
}
