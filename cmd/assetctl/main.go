// Command assetctl validates and inspects resource manifests.
//
// Usage:
//
//	assetctl validate [options] MANIFEST
//	assetctl inspect [options] MANIFEST
//	assetctl purge-cache -cache PATH [NAMESPACE]
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const usage = `assetctl - validate and inspect resource manifests.

Usage:
  assetctl validate [options] MANIFEST
  assetctl inspect [options] MANIFEST
  assetctl purge-cache -cache PATH [NAMESPACE]

Run "assetctl COMMAND -h" for the options of a command.
`

// run dispatches to a subcommand. Results go to out, diagnostics and
// progress to errOut.
func run(out, errOut io.Writer, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(errOut, usage)
		return &ExitError{Code: 2}
	}

	switch args[0] {
	case "validate":
		return runValidate(out, errOut, args[1:])
	case "inspect":
		return runInspect(out, errOut, args[1:])
	case "purge-cache":
		return runPurge(out, errOut, args[1:])
	case "-h", "-help", "--help", "help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(errOut, usage)
		return &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", args[0])}
	}
}
