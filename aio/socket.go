package aio

import (
	"context"
	"fmt"
	"net"

	"github.com/joeycumines/goro"
	"github.com/joeycumines/goro/netaddr"
)

// Socket is a cancellable TCP connection, the Go rendering of
// cppcoro::net::socket restricted to the stream/TCP case (the original's
// UDP/raw-socket support is out of scope; see Non-goals).
type Socket struct {
	conn net.Conn
}

// Listener accepts cancellable inbound connections, the Go rendering of
// a socket created via cppcoro::net::socket::create_tcpv4/v6 bound and
// listening.
type Listener struct {
	ln net.Listener
}

// Listen starts listening on addr (IPv4 or IPv6, per netaddr.Endpoint).
func Listen(addr netaddr.Endpoint) (*Listener, error) {
	ln, err := net.Listen("tcp", addr.String())
	if err != nil {
		return nil, goro.NewSystemError(0, fmt.Errorf("aio: listen: %w", err))
	}
	return &Listener{ln: ln}, nil
}

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Close stops the listener, unblocking any pending Accept.
func (l *Listener) Close() error { return l.ln.Close() }

// Accept blocks until an inbound connection arrives, ctx is done, or tok
// is cancelled, whichever happens first. Like File's methods,
// cancellation works by closing the listener's accept loop out from
// under the blocked call; a Listener whose Accept has been cancelled
// this way is no longer usable and should be discarded (this mirrors
// cppcoro's own socket lifetime: a cancelled accept leaves the socket in
// an unspecified, not-reusable state).
func (l *Listener) Accept(ctx context.Context, tok *goro.CancellationToken) (*Socket, error) {
	ctx, cancel := mergeCancellation(ctx, tok)
	defer cancel()

	conn, err := runCancellableConn(ctx, l.ln.Close, func() (net.Conn, error) {
		return l.ln.Accept()
	})
	if err != nil {
		return nil, err
	}
	return &Socket{conn: conn}, nil
}

// Connect dials addr, cancellable via ctx/tok.
func Connect(ctx context.Context, tok *goro.CancellationToken, addr netaddr.Endpoint) (*Socket, error) {
	ctx, cancel := mergeCancellation(ctx, tok)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		if ctx.Err() != nil {
			return nil, &goro.CancelledError{Op: "connect"}
		}
		return nil, goro.NewSystemError(0, fmt.Errorf("aio: connect: %w", err))
	}
	return &Socket{conn: conn}, nil
}

// LocalAddr returns the socket's local address.
func (s *Socket) LocalAddr() net.Addr { return s.conn.LocalAddr() }

// RemoteAddr returns the socket's peer address.
func (s *Socket) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// Close closes the socket.
func (s *Socket) Close() error { return s.conn.Close() }

// Read reads into buf, cancellable via ctx/tok.
func (s *Socket) Read(ctx context.Context, tok *goro.CancellationToken, buf []byte) (int, error) {
	ctx, cancel := mergeCancellation(ctx, tok)
	defer cancel()
	return runCancellable(ctx, s.conn, func() (int, error) {
		return s.conn.Read(buf)
	})
}

// Write writes buf, cancellable via ctx/tok.
func (s *Socket) Write(ctx context.Context, tok *goro.CancellationToken, buf []byte) (int, error) {
	ctx, cancel := mergeCancellation(ctx, tok)
	defer cancel()
	return runCancellable(ctx, s.conn, func() (int, error) {
		return s.conn.Write(buf)
	})
}

// mergeCancellation returns a context that is done when either ctx is
// done or tok is cancelled, so Socket/Listener methods can cancel via
// goro's own CancellationToken in addition to a plain context deadline.
func mergeCancellation(ctx context.Context, tok *goro.CancellationToken) (context.Context, context.CancelFunc) {
	if tok == nil || !tok.CanBeCancelled() {
		return context.WithCancel(ctx)
	}
	merged, cancel := context.WithCancel(ctx)
	reg := tok.Register(func() { cancel() })
	go func() {
		<-merged.Done()
		reg.Close()
	}()
	return merged, cancel
}

// runCancellableConn is runCancellable's counterpart for operations that
// produce a net.Conn (Accept) rather than a byte count.
func runCancellableConn(ctx context.Context, closeFn func() error, op func() (net.Conn, error)) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := op()
		done <- result{conn, err}
	}()
	select {
	case r := <-done:
		if r.err != nil {
			return nil, goro.NewSystemError(0, fmt.Errorf("aio: accept: %w", r.err))
		}
		return r.conn, nil
	case <-ctx.Done():
		_ = closeFn()
		<-done
		return nil, &goro.CancelledError{Op: "accept"}
	}
}
