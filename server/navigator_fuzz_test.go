package server

import (
	"strings"
	"testing"
)

func FuzzCd(f *testing.F) {
	f.Add("docs")
	f.Add("..")
	f.Add(".")
	f.Add("a/b")
	f.Add("/etc")
	f.Add("../../etc")
	f.Add("")
	f.Add("docs\x00")

	dir := f.TempDir()
	s, err := NewServer(":0", dir, WithLogger(discardLogger()))
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, name string) {
		sess, err := s.NewSession()
		if err != nil {
			t.Fatal(err)
		}
		defer sess.Close()

		before := sess.Pwd()
		err = sess.Cd(name)
		after := sess.Pwd()

		if err != nil && after != before {
			t.Fatalf("failed Cd(%q) moved from %q to %q", name, before, after)
		}
		if !strings.HasPrefix(after, "/") || !strings.HasSuffix(after, "/") {
			t.Fatalf("Pwd() = %q after Cd(%q)", after, name)
		}
		if !strings.HasPrefix(sess.Path(), s.Root()) {
			t.Fatalf("Path() = %q escapes root %q", sess.Path(), s.Root())
		}
	})
}
