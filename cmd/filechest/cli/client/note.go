package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mwantia/filechest/internal/chest"
	"github.com/mwantia/filechest/pkg/db/store"
	"github.com/spf13/cobra"
)

func NewNoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Read or write file notes",
		Long:  "Read or replace the free-form note attached to a file.",
	}

	cmd.AddCommand(newNoteGetCommand())
	cmd.AddCommand(newNoteSetCommand())

	return cmd
}

func newNoteGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Print the note of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChest(cmd, func(ctx context.Context, c *chest.Chest) error {
				ref, err := c.Resolve(args[0])
				if err != nil {
					return err
				}

				s, err := c.Store()
				if err != nil {
					return err
				}

				note, err := s.GetNote(ctx, ref)
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no note stored for '%s'", ref.KnownPath)
				}
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), note)
				return nil
			})
		},
	}

	return cmd
}

func newNoteSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <path> [text...]",
		Short: "Replace the note of a file",
		Long: `Replace the note of a file. The note is read from stdin when no text
is given or the text is '-'. An empty note is stored as empty, not removed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			if len(args) == 1 || text == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read note from stdin: %w", err)
				}
				text = strings.TrimRight(string(data), "\n")
			}

			return runChest(cmd, func(ctx context.Context, c *chest.Chest) error {
				ref, err := c.Resolve(args[0])
				if err != nil {
					return err
				}
				return c.SubmitNote(ctx, ref, text)
			})
		},
	}

	return cmd
}
