package rpcftp

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortRejectsMissingAddress(t *testing.T) {
	t.Parallel()
	// No connection is needed: the address is checked before any call.
	c := &Client{}

	for _, addr := range []*net.TCPAddr{nil, {Port: 2121}} {
		var err error
		assert.NotPanics(t, func() { err = c.Port(addr) })
		assert.ErrorIs(t, err, ErrInvalidEndpoint)
	}
}

func TestResolveDataAddr(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		addr        *net.TCPAddr
		controlHost string
		want        string
	}{
		{
			name:        "normal address",
			addr:        &net.TCPAddr{IP: net.IPv4(192, 168, 1, 5), Port: 12345},
			controlHost: "10.0.0.1",
			want:        "192.168.1.5:12345",
		},
		{
			name:        "zero address",
			addr:        &net.TCPAddr{IP: net.IPv4zero, Port: 12345},
			controlHost: "10.0.0.1",
			want:        "10.0.0.1:12345",
		},
		{
			name:        "unspecified IPv6",
			addr:        &net.TCPAddr{IP: net.IPv6unspecified, Port: 2000},
			controlHost: "ftp.example.com",
			want:        "ftp.example.com:2000",
		},
		{
			name:        "no IP",
			addr:        &net.TCPAddr{Port: 2000},
			controlHost: "::1",
			want:        "[::1]:2000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveDataAddr(tt.addr, tt.controlHost))
		})
	}
}
