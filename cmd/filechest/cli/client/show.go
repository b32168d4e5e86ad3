package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwantia/filechest/internal/chest"
	"github.com/spf13/cobra"
)

func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Show the note and tags of a file",
		Long:  "Resolve a file by its inode and print everything stored for it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChest(cmd, func(ctx context.Context, c *chest.Chest) error {
				ref, err := c.Resolve(args[0])
				if err != nil {
					return err
				}

				annotation, err := c.Select(ctx, ref)
				if err != nil {
					return err
				}

				s := newStyles()
				out := cmd.OutOrStdout()

				fmt.Fprintf(out, "%s %s\n", s.label.Render("Path: "), ref.KnownPath)
				fmt.Fprintf(out, "%s %d\n", s.label.Render("Inode:"), ref.Identity)
				fmt.Fprintf(out, "%s %s\n", s.label.Render("Tags: "), s.tags(annotation.Tags))
				fmt.Fprintln(out, s.label.Render("Note:"))

				if !annotation.HasNote {
					fmt.Fprintf(out, "  %s\n", s.muted.Render(placeholder))
					return nil
				}
				for _, line := range strings.Split(annotation.Note, "\n") {
					fmt.Fprintf(out, "  %s\n", line)
				}
				return nil
			})
		},
	}

	return cmd
}
