package server

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// separator is the path separator forbidden inside a segment.
const separator = "/"

// validSegment reports whether name can be pushed onto the working
// directory stack or used as a file name: it must be non-empty and must not
// contain a separator.
func validSegment(name string) bool {
	return name != "" && !strings.Contains(name, separator)
}

// validFileName is validSegment minus the two navigation names.
func validFileName(name string) bool {
	return validSegment(name) && name != "." && name != ".."
}

// sandbox confines file access to a root directory.
//
// Paths are never built from user input directly. The session keeps a stack
// of validated segments and the sandbox turns that stack into either the
// absolute path (for display and logging) or a root-relative path handed to
// an os.Root, which also refuses symlinks that lead outside the root.
type sandbox struct {
	prefix string // absolute root, without trailing separator ("" for "/")
	root   *os.Root
}

// canonicalRoot validates that prefix is an existing directory and returns
// its absolute path with symlinks resolved. An empty prefix means "/".
func canonicalRoot(prefix string) (string, error) {
	if prefix == "" {
		prefix = separator
	}
	info, err := os.Stat(prefix)
	if err != nil {
		return "", fmt.Errorf("root path validation failed: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root path is not a directory: %s", prefix)
	}

	prefix, err = filepath.EvalSymlinks(prefix)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root path: %w", err)
	}
	return filepath.Abs(prefix)
}

// openSandbox opens a root handle on prefix.
func openSandbox(prefix string) (*sandbox, error) {
	prefix, err := canonicalRoot(prefix)
	if err != nil {
		return nil, err
	}

	root, err := os.OpenRoot(prefix)
	if err != nil {
		return nil, err
	}

	return &sandbox{
		prefix: strings.TrimSuffix(prefix, separator),
		root:   root,
	}, nil
}

// resolvedPath returns the absolute directory for cwd, always ending in a
// separator: "/srv/ftp/" for the root, "/srv/ftp/a/b/" for ["a", "b"].
func (b *sandbox) resolvedPath(cwd []string) string {
	if len(cwd) == 0 {
		return b.prefix + separator
	}
	return b.prefix + separator + strings.Join(cwd, separator) + separator
}

// rel returns the root-relative path of name inside cwd. An empty name
// refers to cwd itself.
func (b *sandbox) rel(cwd []string, name string) string {
	elems := append(append([]string{}, cwd...), name)
	p := path.Join(elems...)
	if p == "" {
		return "."
	}
	return p
}

func (b *sandbox) stat(cwd []string, name string) (os.FileInfo, error) {
	return b.root.Stat(b.rel(cwd, name))
}

func (b *sandbox) openFile(cwd []string, name string, flag int) (*os.File, error) {
	return b.root.OpenFile(b.rel(cwd, name), flag, 0644)
}

// list returns the entry names of cwd in directory order.
func (b *sandbox) list(cwd []string) ([]string, error) {
	f, err := b.root.Open(b.rel(cwd, ""))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.Readdirnames(-1)
}

func (b *sandbox) close() error {
	return b.root.Close()
}
