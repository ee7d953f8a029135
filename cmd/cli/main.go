// Package main is the entry point for the synergism-calc CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"synergism-calc/cmd/cli/cmd"
)

func main() {
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
