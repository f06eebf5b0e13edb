package server

import (
	"errors"
	"os"
	"time"
)

// Cd changes the working directory.
//
// ".." moves to the parent directory and fails with ErrAlreadyAtRoot at the
// root; "." does nothing. Any other name must be a single path segment naming
// an existing directory inside the current one.
func (sess *Session) Cd(name string) error {
	start := time.Now()
	err := sess.cd(name)
	sess.recordCommand("cd", err, start)
	if err != nil {
		sess.logger.Debug("cd failed", "name", name, "error", err)
		return err
	}

	sess.logger.Debug("cd", "name", name, "cwd", sess.Pwd())
	return nil
}

func (sess *Session) cd(name string) error {
	if !validSegment(name) {
		return opError("cd", name, ErrInvalidName, nil)
	}

	switch name {
	case "..":
		if len(sess.cwd) == 0 {
			return opError("cd", name, ErrAlreadyAtRoot, nil)
		}
		sess.cwd = sess.cwd[:len(sess.cwd)-1]
		return nil
	case ".":
		return nil
	}

	// Check the destination, not the directory we are leaving.
	info, err := sess.box.stat(sess.cwd, name)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return opError("cd", name, ErrNotFound, err)
	case err != nil:
		// Includes symlinks leading out of the root, which os.Root refuses.
		return opError("cd", name, ErrPermissionDenied, err)
	case !info.IsDir():
		return opError("cd", name, ErrNotADirectory, nil)
	}

	sess.cwd = append(sess.cwd, name)
	return nil
}

// Pwd returns the working directory relative to the root: "/" at the root,
// "/a/b/" after Cd("a") and Cd("b").
func (sess *Session) Pwd() string {
	p := separator
	for _, seg := range sess.cwd {
		p += seg + separator
	}
	return p
}

// Dir returns the names of the entries in the working directory. The order
// is the one the filesystem reports.
func (sess *Session) Dir() ([]string, error) {
	start := time.Now()
	names, err := sess.box.list(sess.cwd)
	if err != nil {
		err = listError(sess.Pwd(), err)
	}
	sess.recordCommand("dir", err, start)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// listError classifies a failure to read the working directory.
func listError(dir string, err error) *OpError {
	if errors.Is(err, os.ErrPermission) {
		return opError("dir", dir, ErrPermissionDenied, err)
	}
	return opError("dir", dir, ErrNotFound, err)
}

// Path returns the absolute filesystem path of the working directory,
// always ending in a separator.
func (sess *Session) Path() string {
	return sess.box.resolvedPath(sess.cwd)
}
