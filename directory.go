package rpcftp

import "github.com/gonzalop/rpcftp/internal/wire"

// ChangeDir changes the working directory to the subdirectory name.
// name must be a single path segment; ".." moves up and "." does nothing.
//
// Example:
//
//	if err := client.ChangeDir("docs"); err != nil {
//	    return err
//	}
func (c *Client) ChangeDir(name string) error {
	return c.call("Cd", &wire.NameArgs{Name: name}, &wire.Empty{})
}

// ChangeDirUp moves to the parent directory. It fails with ErrAlreadyAtRoot
// at the root.
func (c *Client) ChangeDirUp() error {
	return c.ChangeDir("..")
}

// CurrentDir returns the working directory, e.g. "/" or "/docs/2024/".
func (c *Client) CurrentDir() (string, error) {
	var reply wire.PathReply
	if err := c.call("Pwd", &wire.Empty{}, &reply); err != nil {
		return "", err
	}
	return reply.Path, nil
}

// NameList returns the names of the entries in the working directory, in
// the order the server's filesystem reports them.
func (c *Client) NameList() ([]string, error) {
	var reply wire.DirReply
	if err := c.call("Dir", &wire.Empty{}, &reply); err != nil {
		return nil, err
	}
	if reply.Names == nil {
		return []string{}, nil
	}
	return reply.Names, nil
}
