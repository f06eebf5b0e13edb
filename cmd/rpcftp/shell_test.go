package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/c-bata/go-prompt"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRemote struct {
	mock.Mock
	active bool
}

func (m *mockRemote) ChangeDir(name string) error {
	return m.Called(name).Error(0)
}

func (m *mockRemote) CurrentDir() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockRemote) NameList() ([]string, error) {
	args := m.Called()
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *mockRemote) RetrieveTo(name, localPath string) error {
	return m.Called(name, localPath).Error(0)
}

func (m *mockRemote) StoreFrom(name, localPath string) error {
	return m.Called(name, localPath).Error(0)
}

func (m *mockRemote) SetActiveMode(active bool) { m.active = active }
func (m *mockRemote) ActiveMode() bool          { return m.active }

func newTestShell(t *testing.T) (*shell, *mockRemote, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	r := &mockRemote{}
	var out bytes.Buffer
	return newShell(r, &out), r, &out
}

func TestShellCdPrintsDirectory(t *testing.T) {
	sh, r, out := newTestShell(t)
	r.On("ChangeDir", "docs").Return(nil)
	r.On("CurrentDir").Return("/docs/", nil)

	sh.execute("cd docs")

	r.AssertExpectations(t)
	assert.Equal(t, "/docs/\n", out.String())
}

func TestShellReportsErrors(t *testing.T) {
	sh, r, out := newTestShell(t)
	r.On("ChangeDir", "..").Return(errors.New("already at root directory"))

	sh.execute("cd ..")
	assert.Contains(t, out.String(), "Error: already at root directory")

	out.Reset()
	sh.execute("cd")
	assert.Contains(t, out.String(), "usage: cd NAME")

	out.Reset()
	sh.execute("frobnicate")
	assert.Contains(t, out.String(), `unknown command "frobnicate"`)
}

func TestShellDirRendersTable(t *testing.T) {
	sh, r, out := newTestShell(t)
	r.On("NameList").Return([]string{"a.txt", "sub"}, nil).Once()

	sh.execute("dir")
	assert.Contains(t, out.String(), "a.txt")
	assert.Contains(t, out.String(), "sub")
	assert.Equal(t, []string{"a.txt", "sub"}, sh.names)

	out.Reset()
	r.On("NameList").Return([]string{}, nil).Once()
	sh.execute("ls")
	assert.Contains(t, out.String(), "Directory is empty")
}

func TestShellTransfers(t *testing.T) {
	sh, r, out := newTestShell(t)
	r.On("RetrieveTo", "remote.txt", "remote.txt").Return(nil)
	r.On("RetrieveTo", "remote.txt", "/tmp/copy.txt").Return(nil)
	r.On("StoreFrom", "notes.txt", "/home/me/notes.txt").Return(nil)
	r.On("StoreFrom", "renamed.txt", "local.txt").Return(nil)

	sh.execute("get remote.txt")
	sh.execute("get remote.txt /tmp/copy.txt")
	sh.execute("put /home/me/notes.txt")
	sh.execute("put local.txt renamed.txt")

	r.AssertExpectations(t)
	assert.NotContains(t, out.String(), "Error")
	assert.Contains(t, out.String(), "(passive)")
}

func TestShellModeSwitch(t *testing.T) {
	sh, r, out := newTestShell(t)

	sh.execute("port")
	assert.True(t, r.active)
	sh.execute("mode")
	assert.Contains(t, out.String(), "active\n")

	sh.execute("PASV")
	assert.False(t, r.active)
}

func TestShellQuit(t *testing.T) {
	sh, _, _ := newTestShell(t)
	require.False(t, sh.quit)
	sh.execute("quit")
	assert.True(t, sh.quit)
}

func TestShellComplete(t *testing.T) {
	sh, _, _ := newTestShell(t)
	sh.names = []string{"readme.txt", "reports", "data"}

	buf := prompt.NewBuffer()
	buf.InsertText("pw", false, true)
	got := sh.complete(*buf.Document())
	require.Len(t, got, 1)
	assert.Equal(t, "pwd", got[0].Text)

	buf = prompt.NewBuffer()
	buf.InsertText("get re", false, true)
	got = sh.complete(*buf.Document())
	texts := make([]string, 0, len(got))
	for _, s := range got {
		texts = append(texts, s.Text)
	}
	assert.ElementsMatch(t, []string{"readme.txt", "reports"}, texts)
}
