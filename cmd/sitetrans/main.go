// Command sitetrans translates the HTML pages of a static site and keeps a
// ledger of what has been translated.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/fatih/color"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("sitetrans/cmd")

// Exit codes.
const (
	exitOK     = 0
	exitFatal  = 1
	exitConfig = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "%s %v\n", color.RedString("error:"), err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps configuration problems to 2 and everything else to 1.
// Per-page translation failures never reach here.
func exitCode(err error) int {
	if sitetrans.IsConfigError(err) {
		return exitConfig
	}
	return exitFatal
}
