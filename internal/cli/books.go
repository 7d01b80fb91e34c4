package cli

import (
	"fmt"
	"strconv"

	"github.com/ASHISH26940/booksdb/internal/client"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := client.New(opts.Addr, nil).List(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), books)
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(opts *RootOptions) *cobra.Command {
	var title, author string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := client.New(opts.Addr, nil).Add(cmd.Context(), title, author)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), b)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&author, "author", "", "book author")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("author")

	return cmd
}

// NewUpdateTitleCommand creates the update-title command.
func NewUpdateTitleCommand(opts *RootOptions) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "update-title <id>",
		Short: "Change the title of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			b, ok, err := client.New(opts.Addr, nil).UpdateTitle(cmd.Context(), id, title)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("book %d not found", id)
			}
			return writeJSON(cmd.OutOrStdout(), b)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.MarkFlagRequired("title")

	return cmd
}
