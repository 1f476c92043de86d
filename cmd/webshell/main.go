// webshell - command-line client for URL-templated web shells.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"

	"rshell/config"
	"rshell/util"
	"rshell/webshell"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin *os.File, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("webshell", flag.ContinueOnError)
	fs.SetOutput(stderr)
	timeout := fs.Duration("timeout", webshell.DefaultTimeout, "Per-request timeout")
	verbose := fs.CountP("verbose", "v", "Log each request to stderr; -vv adds response status")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: webshell [options] <host:port> <prefix> <suffix>\n\n"+
			"Sends each command as GET http://host:port/<prefix><command><suffix>\n"+
			"and prints the response body.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 3 {
		fs.Usage()
		return 2
	}

	host, port, err := config.ParseHostPort(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stdout, "Error: %s\n", capitalize(err.Error()))
		return 1
	}

	target := webshell.Target{Host: host, Port: port, Prefix: fs.Arg(1), Suffix: fs.Arg(2)}
	logger := util.NewLogger(*verbose)
	client := webshell.NewClient(target, *timeout, logger)

	var con webshell.Console
	if webshell.IsTerminal(stdin) {
		tc, restore, err := webshell.OpenTerminal(stdin, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "webshell: %v\n", err)
			return 1
		}
		defer restore() //nolint:errcheck
		con = tc
	} else {
		con = webshell.NewConsole(stdin, stdout)
	}

	if err := webshell.Run(ctx, target, client, con); err != nil {
		fmt.Fprintf(stderr, "webshell: %v\n", err)
		return 1
	}
	return 0
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
