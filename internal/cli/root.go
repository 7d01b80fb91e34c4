// Package cli wires the booksdb command line.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Addr string // server base URL for client commands
}

// NewRootCommand creates the root command for the booksdb CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "booksdb",
		Short:         "In-memory book store with an HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Addr, "addr", "http://localhost:8080", "server base URL (client commands)")

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewUpdateTitleCommand(opts))

	return cmd
}
