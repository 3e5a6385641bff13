// File: cmd/stylebox/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/xkilldash9x/stylebox/cmd"
	"github.com/xkilldash9x/stylebox/internal/observability"
)

// Overridable in tests.
var (
	osExit           = os.Exit
	stderr io.Writer = os.Stderr
	execute          = cmd.Execute
)

func main() {
	defer handlePanic()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	osExit(exitCode(execute(ctx)))
}

// exitCode maps a command error onto the process status. An interrupt is
// a clean shutdown.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	default:
		return 1
	}
}

// handlePanic flushes logs and reports a crash with its stack before
// exiting with status 2.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()
	fmt.Fprintf(stderr, "panic: %v\n\n%s\n", r, debug.Stack())
	osExit(2)
}
