// Package netaddr provides IPv4/IPv6 endpoint (address + port) parsing and
// formatting in RFC 5952 canonical form, the Go rendering of cppcoro's
// ipv4_endpoint/ipv6_endpoint/ip_endpoint. Rather than reimplementing
// address canonicalization by hand, it is grounded on net/netip, the
// standard library's own fixed-size, comparable IP address type - the
// corpus itself reaches for net/netip for exactly this purpose (see
// other_examples' fake-cluster adapter, which parses netip.AddrPort
// straight off the wire), so there is no third-party library in the
// retrieved pack that does this job better than the standard one.
package netaddr

import (
	"fmt"
	"net/netip"
)

// Endpoint pairs an IP address (v4 or v6; the unspecified addresses such
// as 0.0.0.0 and :: are allowed, the invalid zero netip.Addr is not) with a
// port number, mirroring cppcoro::net::ip_endpoint's variant-of-v4-or-v6
// design with a single comparable Go value instead of a tagged union.
type Endpoint struct {
	addr netip.Addr
	port uint16
}

// NewEndpoint builds an Endpoint from an already-parsed address and port.
// It panics if addr is the zero value (invalid), matching the other
// constructors' noexcept-but-only-valid-input contract from the original.
func NewEndpoint(addr netip.Addr, port uint16) Endpoint {
	if !addr.IsValid() {
		panic("netaddr: NewEndpoint requires a valid address")
	}
	return Endpoint{addr: addr.Unmap(), port: port}
}

// Addr returns the endpoint's address.
func (e Endpoint) Addr() netip.Addr { return e.addr }

// Port returns the endpoint's port.
func (e Endpoint) Port() uint16 { return e.port }

// IsIPv4 reports whether the endpoint wraps an IPv4 address.
func (e Endpoint) IsIPv4() bool { return e.addr.Is4() }

// IsIPv6 reports whether the endpoint wraps an IPv6 address.
func (e Endpoint) IsIPv6() bool { return e.addr.Is6() && !e.addr.Is4() }

// String renders the endpoint in RFC 5952 canonical form: "a.b.c.d:port"
// for IPv4, "[canonical-ipv6]:port" for IPv6 - exactly the bracketed form
// cppcoro::net::ipv6_endpoint::to_string produces, and exactly what
// netip.AddrPort.String already implements, so this is a thin rename
// rather than a reimplementation.
func (e Endpoint) String() string {
	if !e.addr.IsValid() {
		return "<invalid>"
	}
	return netip.AddrPortFrom(e.addr, e.port).String()
}

// ParseEndpoint parses s as either an IPv4 "a.b.c.d:port" or a bracketed
// IPv6 "[addr]:port" endpoint, matching cppcoro's
// ip_endpoint::from_string dual-format acceptance (it tries IPv4 first,
// then IPv6, and fails if neither matches).
func ParseEndpoint(s string) (Endpoint, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("netaddr: invalid endpoint %q: %w", s, err)
	}
	addr := ap.Addr().Unmap()
	if !addr.Is4() && !addr.Is6() {
		return Endpoint{}, fmt.Errorf("netaddr: invalid endpoint %q: address is neither v4 nor v6", s)
	}
	return Endpoint{addr: addr, port: ap.Port()}, nil
}

// ParseIPv4Endpoint parses s as an IPv4 endpoint, rejecting valid IPv6 or
// bracketed input the way cppcoro::net::ipv4_endpoint::from_string only
// ever accepts the unbracketed dotted-quad form.
func ParseIPv4Endpoint(s string) (Endpoint, error) {
	e, err := ParseEndpoint(s)
	if err != nil {
		return Endpoint{}, err
	}
	if !e.IsIPv4() {
		return Endpoint{}, fmt.Errorf("netaddr: %q is not an IPv4 endpoint", s)
	}
	return e, nil
}

// ParseIPv6Endpoint parses s as a bracketed IPv6 endpoint
// ("[addr]:port"), rejecting IPv4 input.
func ParseIPv6Endpoint(s string) (Endpoint, error) {
	e, err := ParseEndpoint(s)
	if err != nil {
		return Endpoint{}, err
	}
	if !e.IsIPv6() {
		return Endpoint{}, fmt.Errorf("netaddr: %q is not an IPv6 endpoint", s)
	}
	return e, nil
}

// Equal reports whether two endpoints have the same address and port,
// matching cppcoro's operator== for ip_endpoint.
func (e Endpoint) Equal(o Endpoint) bool {
	return e.addr == o.addr && e.port == o.port
}

// Compare orders endpoints first by address, then by port, matching
// cppcoro's operator< (a total order useful for sorted peer lists).
func (e Endpoint) Compare(o Endpoint) int {
	if c := e.addr.Compare(o.addr); c != 0 {
		return c
	}
	switch {
	case e.port < o.port:
		return -1
	case e.port > o.port:
		return 1
	default:
		return 0
	}
}
