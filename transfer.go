package rpcftp

import (
	"fmt"
	"io"
	"net"
	"os"
)

// Retrieve downloads the remote file name from the working directory into w.
//
// Example:
//
//	file, err := os.Create("local.txt")
//	if err != nil {
//	    return err
//	}
//	defer file.Close()
//
//	err = client.Retrieve("remote.txt", file)
//
// In passive mode the server reports problems that occur after the data
// connection is set up only in its own log, so a failed download shows up
// here as short data rather than as an error.
func (c *Client) Retrieve(name string, w io.Writer) error {
	if c.progress != nil {
		w = &ProgressWriter{Writer: w, Callback: c.progress}
	}
	if c.activeMode {
		return c.retrieveActive(name, w)
	}
	return c.retrievePassive(name, w)
}

// RetrieveTo downloads the remote file name to localPath.
// This is a convenience wrapper around Retrieve.
func (c *Client) RetrieveTo(name, localPath string) error {
	file, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file: %w", err)
	}

	err = c.Retrieve(name, file)
	if cerr := file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close local file: %w", cerr)
	}
	return err
}

// Store uploads data from r as the remote file name in the working
// directory. An existing remote file is replaced.
//
// Example:
//
//	file, err := os.Open("local.txt")
//	if err != nil {
//	    return err
//	}
//	defer file.Close()
//
//	err = client.Store("remote.txt", file)
//
// Store returns after the server has closed the data connection, which it
// does once the file is written.
func (c *Client) Store(name string, r io.Reader) error {
	if c.progress != nil {
		r = &ProgressReader{Reader: r, Callback: c.progress}
	}
	if c.activeMode {
		return c.storeActive(name, r)
	}
	return c.storePassive(name, r)
}

// StoreFrom uploads a local file as the remote file name.
// This is a convenience wrapper around Store.
func (c *Client) StoreFrom(name, localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer file.Close()

	return c.Store(name, file)
}

func (c *Client) retrievePassive(name string, w io.Writer) error {
	addr, err := c.Passive()
	if err != nil {
		return err
	}
	if err := c.Get(name); err != nil {
		return err
	}

	conn, err := c.dialPassive(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := io.Copy(w, conn); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	return nil
}

func (c *Client) storePassive(name string, r io.Reader) error {
	addr, err := c.Passive()
	if err != nil {
		return err
	}
	if err := c.Put(name); err != nil {
		return err
	}

	conn, err := c.dialPassive(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := io.Copy(conn, r); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	return finishUpload(conn)
}

func (c *Client) retrieveActive(name string, w io.Writer) error {
	ln, err := c.listenActive()
	if err != nil {
		return err
	}
	defer ln.Close()

	done := make(chan error, 1)
	go func() {
		done <- c.acceptActive(ln, func(conn net.Conn) error {
			_, err := io.Copy(w, conn)
			return err
		})
	}()

	// The server copies the whole file before Get returns.
	if err := c.Get(name); err != nil {
		ln.Close()
		<-done
		return err
	}
	if err := <-done; err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	return nil
}

func (c *Client) storeActive(name string, r io.Reader) error {
	ln, err := c.listenActive()
	if err != nil {
		return err
	}
	defer ln.Close()

	done := make(chan error, 1)
	go func() {
		done <- c.acceptActive(ln, func(conn net.Conn) error {
			if _, err := io.Copy(conn, r); err != nil {
				return err
			}
			return finishUpload(conn)
		})
	}()

	if err := c.Put(name); err != nil {
		ln.Close()
		<-done
		return err
	}
	if err := <-done; err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	return nil
}

// finishUpload signals end of data and waits for the server to close its
// side, which it does after the file is on disk.
func finishUpload(conn net.Conn) error {
	cw, ok := conn.(interface{ CloseWrite() error })
	if !ok {
		return conn.Close()
	}
	if err := cw.CloseWrite(); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	_, _ = io.Copy(io.Discard, conn)
	return nil
}
