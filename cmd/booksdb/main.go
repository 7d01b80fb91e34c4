// Package main is the entry point for the booksdb server and client.
package main

import (
	"fmt"
	"os"

	"github.com/ASHISH26940/booksdb/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
