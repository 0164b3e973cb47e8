// Command bingebuddy syncs tracked TV shows from TMDB and alerts users about
// new air dates and upcoming episodes.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	_ "time/tzdata"
)

func main() {
	if err := execute(newCommandContext(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// execute runs one CLI invocation. The database and log file are closed
// whether or not the command succeeds.
func execute(ctx *commandContext, args []string, stdout, stderr io.Writer) (err error) {
	defer func() {
		err = errors.Join(err, ctx.close())
	}()

	cmd := newRootCommand(ctx)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}
