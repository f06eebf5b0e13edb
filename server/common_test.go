package server

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestServer returns a server rooted at a fresh temporary directory.
// Passive listeners bind to the loopback interface.
func newTestServer(t *testing.T, options ...Option) *Server {
	t.Helper()
	opts := append([]Option{
		WithLogger(discardLogger()),
		WithPassiveHost("127.0.0.1"),
	}, options...)
	s, err := NewServer("127.0.0.1:0", t.TempDir(), opts...)
	require.NoError(t, err)
	return s
}

func newTestSession(t *testing.T, s *Server) *Session {
	t.Helper()
	sess, err := s.NewSession()
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })
	return sess
}

func writeFile(t *testing.T, s *Server, rel string, data []byte) {
	t.Helper()
	path := filepath.Join(s.Root(), filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func readFile(t *testing.T, s *Server, rel string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.Root(), filepath.FromSlash(rel)))
	require.NoError(t, err)
	return data
}

func mkdir(t *testing.T, s *Server, rel string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), filepath.FromSlash(rel)), 0o755))
}

// payload returns n bytes that are not a repetition of the buffer size.
func payload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7 + i/251)
	}
	return b
}

// fetch connects to a passive endpoint and reads until the server closes.
func fetch(t *testing.T, addr *net.TCPAddr) []byte {
	t.Helper()
	conn, err := net.DialTCP("tcp", nil, addr)
	require.NoError(t, err)
	defer conn.Close()

	var buf bytes.Buffer
	_, err = io.Copy(&buf, conn)
	require.NoError(t, err)
	return buf.Bytes()
}

// send connects to a passive endpoint, writes data and closes.
func send(t *testing.T, addr *net.TCPAddr, data []byte) {
	t.Helper()
	conn, err := net.DialTCP("tcp", nil, addr)
	require.NoError(t, err)
	_, err = conn.Write(data)
	require.NoError(t, err)
	require.NoError(t, conn.Close())
}

// listenClient opens a loopback listener standing in for an active-mode
// client.
func listenClient(t *testing.T) *net.TCPListener {
	t.Helper()
	ln, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	return ln
}
