// Command chloe is the console front end for the Chloe chat bot and its
// document store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/chloe/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
