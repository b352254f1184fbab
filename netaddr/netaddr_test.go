package netaddr

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPv4EndpointRoundTrip(t *testing.T) {
	e, err := ParseIPv4Endpoint("192.168.1.1:8080")
	require.NoError(t, err)
	assert.True(t, e.IsIPv4())
	assert.Equal(t, "192.168.1.1:8080", e.String())
	assert.EqualValues(t, 8080, e.Port())
}

func TestIPv6EndpointRoundTrip(t *testing.T) {
	cases := []string{
		"[::1]:443",
		"[2001:db8::1]:80",
		"[::]:0",
	}
	for _, s := range cases {
		e, err := ParseIPv6Endpoint(s)
		require.NoError(t, err, s)
		assert.True(t, e.IsIPv6(), s)

		roundTripped := e.String()
		e2, err := ParseIPv6Endpoint(roundTripped)
		require.NoError(t, err, roundTripped)
		assert.True(t, e.Equal(e2), "round trip mismatch for %s -> %s", s, roundTripped)
	}
}

func TestIPv6CanonicalCompression(t *testing.T) {
	// RFC 5952: the longest run of zero groups is compressed to "::",
	// lowercase hex digits.
	e, err := ParseIPv6Endpoint("[2001:0DB8:0000:0000:0000:0000:0000:0001]:53")
	require.NoError(t, err)
	assert.Equal(t, "[2001:db8::1]:53", e.String())
}

func TestParseEndpointRejectsWrongFamily(t *testing.T) {
	_, err := ParseIPv4Endpoint("[::1]:80")
	assert.Error(t, err)

	_, err = ParseIPv6Endpoint("127.0.0.1:80")
	assert.Error(t, err)
}

func TestParseEndpointRejectsGarbage(t *testing.T) {
	_, err := ParseEndpoint("not-an-endpoint")
	assert.Error(t, err)
}

func TestEndpointCompareOrdersByAddrThenPort(t *testing.T) {
	a := NewEndpoint(netip.MustParseAddr("10.0.0.1"), 100)
	b := NewEndpoint(netip.MustParseAddr("10.0.0.1"), 200)
	c := NewEndpoint(netip.MustParseAddr("10.0.0.2"), 1)

	assert.Negative(t, a.Compare(b))
	assert.Positive(t, b.Compare(a))
	assert.Negative(t, a.Compare(c))
	assert.Zero(t, a.Compare(a))
}

func TestNewEndpointPanicsOnInvalidAddr(t *testing.T) {
	assert.Panics(t, func() {
		NewEndpoint(netip.Addr{}, 1)
	})
}
