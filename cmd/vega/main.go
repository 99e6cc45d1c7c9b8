// Command vega tiles the windows on the main display and lets global
// shortcuts cycle the layout or promote the focused window.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/vega/internal/platform"
	"github.com/1broseidon/vega/internal/runtimepath"
)

// usageError marks errors caused by how vega was invoked. They are reported
// together with the usage text.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

var errMissingCommand = errors.New("missing command")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, newApp()))
}

// run executes one CLI invocation and returns the process exit code.
func run(args []string, stdout, stderr io.Writer, a *app) int {
	if args == nil {
		args = []string{}
	}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteC()
	if err == nil {
		return 0
	}

	var uerr usageError
	if errors.As(err, &uerr) {
		if cmd == nil {
			cmd = root
		}
		fmt.Fprintf(stderr, "vega: %v\n\n%s", err, cmd.UsageString())
		return 2
	}
	fmt.Fprintf(stderr, "vega: %v\n", err)
	return 1
}

func newApp() *app {
	return &app{
		openProvider: platform.Open,
		socketPath:   runtimepath.SocketPath,
	}
}
