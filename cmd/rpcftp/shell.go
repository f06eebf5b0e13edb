package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// remote is the part of *rpcftp.Client the shell drives.
type remote interface {
	ChangeDir(name string) error
	CurrentDir() (string, error)
	NameList() ([]string, error)
	RetrieveTo(name, localPath string) error
	StoreFrom(name, localPath string) error
	SetActiveMode(active bool)
	ActiveMode() bool
}

var commands = []prompt.Suggest{
	{Text: "get", Description: "Download a file: get NAME [LOCAL]"},
	{Text: "put", Description: "Upload a file: put LOCAL [NAME]"},
	{Text: "cd", Description: "Change directory (.. moves up)"},
	{Text: "pwd", Description: "Show the working directory"},
	{Text: "dir", Description: "List the working directory"},
	{Text: "ls", Description: "List the working directory"},
	{Text: "port", Description: "Use active mode for transfers"},
	{Text: "pasv", Description: "Use passive mode for transfers"},
	{Text: "mode", Description: "Show the transfer mode"},
	{Text: "help", Description: "Show available commands"},
	{Text: "quit", Description: "Close the session"},
}

type shell struct {
	client remote
	out    io.Writer

	ok   *color.Color
	fail *color.Color
	info *color.Color

	// names caches the last listing for completion
	names []string
	quit  bool
}

func newShell(client remote, out io.Writer) *shell {
	return &shell{
		client: client,
		out:    out,
		ok:     color.New(color.FgGreen),
		fail:   color.New(color.FgRed),
		info:   color.New(color.FgCyan),
	}
}

// execute runs one input line.
func (s *shell) execute(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch cmd {
	case "get":
		err = s.get(args)
	case "put":
		err = s.put(args)
	case "cd":
		if len(args) != 1 {
			err = fmt.Errorf("usage: cd NAME")
			break
		}
		err = s.client.ChangeDir(args[0])
		if err == nil {
			s.names = nil
			err = s.pwd()
		}
	case "pwd":
		err = s.pwd()
	case "dir", "ls":
		err = s.dir()
	case "port", "active":
		s.client.SetActiveMode(true)
		s.ok.Fprintln(s.out, "Active mode on")
	case "pasv", "passive":
		s.client.SetActiveMode(false)
		s.ok.Fprintln(s.out, "Passive mode on")
	case "mode":
		s.info.Fprintln(s.out, s.mode())
	case "help", "?":
		s.help()
	case "quit", "exit", "bye":
		s.quit = true
	default:
		err = fmt.Errorf("unknown command %q, type help", cmd)
	}

	if err != nil {
		s.fail.Fprintln(s.out, "Error:", err)
	}
}

func (s *shell) mode() string {
	if s.client.ActiveMode() {
		return "active"
	}
	return "passive"
}

func (s *shell) get(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: get NAME [LOCAL]")
	}
	local := args[0]
	if len(args) == 2 {
		local = args[1]
	}
	if err := s.client.RetrieveTo(args[0], local); err != nil {
		return err
	}
	s.ok.Fprintf(s.out, "Downloaded %s to %s (%s)\n", args[0], local, s.mode())
	return nil
}

func (s *shell) put(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: put LOCAL [NAME]")
	}
	name := filepath.Base(args[0])
	if len(args) == 2 {
		name = args[1]
	}
	if err := s.client.StoreFrom(name, args[0]); err != nil {
		return err
	}
	s.names = nil
	s.ok.Fprintf(s.out, "Uploaded %s as %s (%s)\n", args[0], name, s.mode())
	return nil
}

func (s *shell) pwd() error {
	dir, err := s.client.CurrentDir()
	if err != nil {
		return err
	}
	s.info.Fprintln(s.out, dir)
	return nil
}

func (s *shell) dir() error {
	names, err := s.client.NameList()
	if err != nil {
		return err
	}
	s.names = names
	if len(names) == 0 {
		s.info.Fprintln(s.out, "Directory is empty")
		return nil
	}

	table := tablewriter.NewWriter(s.out)
	table.Header("#", "Name")
	for i, name := range names {
		table.Append([]string{strconv.Itoa(i + 1), name})
	}
	return table.Render()
}

func (s *shell) help() {
	for _, c := range commands {
		fmt.Fprintf(s.out, "  %-6s %s\n", c.Text, c.Description)
	}
}

// complete suggests commands, then names from the last listing.
func (s *shell) complete(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	words := strings.Fields(text)
	if len(words) == 0 || (len(words) == 1 && !strings.HasSuffix(text, " ")) {
		return prompt.FilterHasPrefix(commands, d.GetWordBeforeCursor(), true)
	}

	switch strings.ToLower(words[0]) {
	case "get", "cd":
		suggestions := make([]prompt.Suggest, 0, len(s.names))
		for _, name := range s.names {
			suggestions = append(suggestions, prompt.Suggest{Text: name})
		}
		return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), false)
	}
	return nil
}
