// Command churnetl runs the telecom churn ETL: transform the raw export into
// a staged CSV, load it into the destination table in batches and validate
// the result.
package main

import (
	"errors"
	"fmt"
	"os"

	"churnetl/internal/stage"
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute runs the CLI and maps the outcome to a process exit code. A
// missing stage input is a graceful stop and exits 0.
func execute(args []string) int {
	cmd := newRootCmd(os.Getenv, os.Stdout)
	cmd.SetArgs(args)
	err := cmd.Execute()
	switch {
	case err == nil, errors.Is(err, stage.ErrInputNotFound):
		return 0
	default:
		fmt.Fprintln(os.Stderr, "churnetl:", err)
		return 1
	}
}
