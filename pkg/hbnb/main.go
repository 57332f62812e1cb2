package hbnb

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Main is the entry point of the hbnb command. It parses args, opens the
// configured storage and runs the command, or the console on stdin when no
// command is given.
func Main(ctx context.Context, args []string) error {
	return Run(ctx, args, os.Stdin, os.Stdout)
}

// Run is Main with explicit standard streams.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd, config, err := Parse(args)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	app, err := New(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer app.Close()

	if _, ok := cmd.(*ConsoleCommand); ok {
		return app.Console(ctx, stdin, stdout, isTerminal(stdin))
	}
	return app.Exec(ctx, stdout, cmd)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
