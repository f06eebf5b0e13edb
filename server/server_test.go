package server

import (
	"bytes"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonzalop/rpcftp"
)

// startServer serves s on a loopback listener until the test ends.
func startServer(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()
	t.Cleanup(func() {
		s.Shutdown()
		<-done
	})
	return ln.Addr().String()
}

func dial(t *testing.T, addr string, opts ...rpcftp.Option) *rpcftp.Client {
	t.Helper()
	c, err := rpcftp.Dial(addr, append([]rpcftp.Option{rpcftp.WithTimeout(5 * time.Second)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientNavigation(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	mkdir(t, s, "docs")
	writeFile(t, s, "readme.txt", []byte("hi"))
	c := dial(t, startServer(t, s))

	dir, err := c.CurrentDir()
	require.NoError(t, err)
	assert.Equal(t, "/", dir)

	names, err := c.NameList()
	require.NoError(t, err)
	sort.Strings(names)
	assert.Equal(t, []string{"docs", "readme.txt"}, names)

	require.NoError(t, c.ChangeDir("docs"))
	dir, err = c.CurrentDir()
	require.NoError(t, err)
	assert.Equal(t, "/docs/", dir)

	names, err = c.NameList()
	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)

	require.NoError(t, c.ChangeDirUp())
	dir, err = c.CurrentDir()
	require.NoError(t, err)
	assert.Equal(t, "/", dir)
}

func TestClientErrors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	writeFile(t, s, "file.txt", nil)
	writeFile(t, s, "file not found", nil)
	c := dial(t, startServer(t, s))

	tests := []struct {
		name string
		err  error
		kind error
		code int
	}{
		{"up at root", c.ChangeDirUp(), rpcftp.ErrAlreadyAtRoot, 550},
		{"separator", c.ChangeDir("a/b"), rpcftp.ErrInvalidName, 553},
		{"missing", c.ChangeDir("missing"), rpcftp.ErrNotFound, 550},
		{"not a directory", c.ChangeDir("file.txt"), rpcftp.ErrNotADirectory, 550},
		{"name holding kind text", c.ChangeDir("file not found"), rpcftp.ErrNotADirectory, 550},
		{"no channel", c.Get("file.txt"), rpcftp.ErrNoChannel, 503},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.ErrorIs(t, tt.err, tt.kind)

			var perr *rpcftp.ProtocolError
			require.True(t, errors.As(tt.err, &perr))
			assert.Equal(t, tt.code, perr.Code)
		})
	}
}

func TestClientPassiveTransfer(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	c := dial(t, startServer(t, s))
	data := payload(5000)

	require.NoError(t, c.Store("f", bytes.NewReader(data)))
	assert.Equal(t, data, readFile(t, s, "f"))

	var buf bytes.Buffer
	require.NoError(t, c.Retrieve("f", &buf))
	assert.Equal(t, data, buf.Bytes())
}

func TestClientActiveTransfer(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	c := dial(t, startServer(t, s), rpcftp.WithActiveMode())
	data := payload(5000)

	require.NoError(t, c.Store("f", bytes.NewReader(data)))
	assert.Equal(t, data, readFile(t, s, "f"))

	var buf bytes.Buffer
	require.NoError(t, c.Retrieve("f", &buf))
	assert.Equal(t, data, buf.Bytes())

	err := c.Retrieve("missing", &buf)
	assert.ErrorIs(t, err, rpcftp.ErrFileNotFound)
}

func TestClientLocalFiles(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	c := dial(t, startServer(t, s))

	local := filepath.Join(t.TempDir(), "local.bin")
	require.NoError(t, os.WriteFile(local, payload(2048), 0o644))

	require.NoError(t, c.StoreFrom("remote.bin", local))
	out := filepath.Join(t.TempDir(), "copy.bin")
	require.NoError(t, c.RetrieveTo("remote.bin", out))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, payload(2048), got)
}

func TestClientProgress(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	var last int64
	c := dial(t, startServer(t, s), rpcftp.WithProgress(func(n int64) { last = n }))

	require.NoError(t, c.Store("f", bytes.NewReader(payload(3000))))
	assert.EqualValues(t, 3000, last)
}

func TestClientPasvEndpointsDiffer(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	c := dial(t, startServer(t, s))

	a, err := c.Passive()
	require.NoError(t, err)
	b, err := c.Passive()
	require.NoError(t, err)
	assert.NotZero(t, a.Port)
	assert.NotEqual(t, a.Port, b.Port)
}

func TestBindingsAreIndependent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	mkdir(t, s, "a")
	addr := startServer(t, s)
	c1 := dial(t, addr)
	c2 := dial(t, addr)

	require.NoError(t, c1.ChangeDir("a"))
	dir, err := c2.CurrentDir()
	require.NoError(t, err)
	assert.Equal(t, "/", dir)
}

func TestMaxConnections(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, WithMaxConnections(1))
	addr := startServer(t, s)

	c1 := dial(t, addr)
	_, err := c1.CurrentDir()
	require.NoError(t, err)

	c2 := dial(t, addr)
	_, err = c2.CurrentDir()
	assert.Error(t, err)

	var perr *rpcftp.ProtocolError
	assert.False(t, errors.As(err, &perr), "rejection is a transport error")
}

func TestIdleTimeout(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, WithMaxIdleTime(100*time.Millisecond))
	c := dial(t, startServer(t, s))

	_, err := c.CurrentDir()
	require.NoError(t, err)

	time.Sleep(300 * time.Millisecond)
	_, err = c.CurrentDir()
	assert.Error(t, err)
}
