// Command rpcftp is an interactive client for rpcftpd.
//
// Usage:
//
//	rpcftp [-active] [-timeout 30s] [-v] host:port
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/fatih/color"

	"github.com/gonzalop/rpcftp"
)

func main() {
	active := flag.Bool("active", false, "use active mode for transfers")
	timeout := flag.Duration("timeout", 30*time.Second, "connection timeout")
	verbose := flag.Bool("v", false, "log protocol calls to stderr")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: rpcftp [flags] host:port")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	opts := []rpcftp.Option{rpcftp.WithTimeout(*timeout)}
	if *active {
		opts = append(opts, rpcftp.WithActiveMode())
	}
	if *verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, rpcftp.WithLogger(logger))
	}

	client, err := rpcftp.Dial(flag.Arg(0), opts...)
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
	defer client.Close()

	color.Green("Bound to %s", flag.Arg(0))
	fmt.Println("Type 'help' for available commands")

	sh := newShell(client, color.Output)
	p := prompt.New(
		sh.execute,
		sh.complete,
		prompt.OptionTitle("rpcftp"),
		prompt.OptionLivePrefix(func() (string, bool) {
			return "rpcftp> ", true
		}),
		prompt.OptionPrefixTextColor(prompt.Green),
		prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
		prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
		prompt.OptionSuggestionBGColor(prompt.DarkGray),
		prompt.OptionSetExitCheckerOnInput(func(string, bool) bool {
			return sh.quit
		}),
	)
	p.Run()
}
