package rpcftp

import "io"

// counter accumulates a byte count and reports each increase.
type counter struct {
	total    int64
	callback func(int64)
}

func (c *counter) add(n int) {
	if n <= 0 {
		return
	}
	c.total += int64(n)
	if c.callback != nil {
		c.callback(c.total)
	}
}

// ProgressReader wraps an io.Reader and reports the running byte count.
// Store uses it when the client was created with WithProgress.
type ProgressReader struct {
	Reader   io.Reader
	Callback func(bytesTransferred int64)

	c counter
}

// Read implements io.Reader.
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	pr.c.callback = pr.Callback
	pr.c.add(n)
	return n, err
}

// Total returns the number of bytes read so far.
func (pr *ProgressReader) Total() int64 {
	return pr.c.total
}

// ProgressWriter wraps an io.Writer and reports the running byte count.
// Retrieve uses it when the client was created with WithProgress.
type ProgressWriter struct {
	Writer   io.Writer
	Callback func(bytesTransferred int64)

	c counter
}

// Write implements io.Writer.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.c.callback = pw.Callback
	pw.c.add(n)
	return n, err
}

// Total returns the number of bytes written so far.
func (pw *ProgressWriter) Total() int64 {
	return pw.c.total
}
