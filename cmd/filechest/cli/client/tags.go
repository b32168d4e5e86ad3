package client

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/mwantia/filechest/internal/chest"
	"github.com/spf13/cobra"
)

func NewTagsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tags",
		Aliases: []string{"tag"},
		Short:   "Manage file tags",
		Long:    "Read, replace and search the tags attached to files.",
	}

	cmd.AddCommand(newTagsGetCommand())
	cmd.AddCommand(newTagsSetCommand())
	cmd.AddCommand(newTagsAddCommand())
	cmd.AddCommand(newTagsListCommand())
	cmd.AddCommand(newTagsFindCommand())

	return cmd
}

func newTagsGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Print the tags of a file",
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

				for _, tag := range annotation.Tags {
					fmt.Fprintln(cmd.OutOrStdout(), tag)
				}
				return nil
			})
		},
	}

	return cmd
}

func newTagsSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <path> [tags...]",
		Short: "Replace the tags of a file",
		Long: `Replace the tags of a file with a comma separated list. Arguments are
joined before parsing, so 'set f a b' and 'set f a,b' are equal. Without tags
every tag is removed from the file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChest(cmd, func(ctx context.Context, c *chest.Chest) error {
				ref, err := c.Resolve(args[0])
				if err != nil {
					return err
				}
				return c.SubmitTags(ctx, ref, strings.Join(args[1:], ","))
			})
		},
	}

	return cmd
}

func newTagsAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <path> <tag>",
		Short: "Attach a single tag to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChest(cmd, func(ctx context.Context, c *chest.Chest) error {
				ref, err := c.Resolve(args[0])
				if err != nil {
					return err
				}
				return c.AddTag(ctx, ref, args[1])
			})
		},
	}

	return cmd
}

func newTagsListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every known tag with its file count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChest(cmd, func(ctx context.Context, c *chest.Chest) error {
				usage, err := c.Tags(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "FILES\tTAG")
				for _, u := range usage {
					fmt.Fprintf(w, "%d\t%s\n", u.Files, u.Name)
				}
				return w.Flush()
			})
		},
	}

	return cmd
}

func newTagsFindCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find <tag>",
		Short: "Print the last known path of every file carrying a tag",
		Long:  "Print the last known path of every file carrying a tag. Matching is exact and case-sensitive.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := chest.ParseQuery(chest.TagPrefix + args[0])
			if err != nil {
				return err
			}

			return runChest(cmd, func(ctx context.Context, c *chest.Chest) error {
				refs, err := c.Browse(ctx, query, true)
				if err != nil {
					return err
				}

				for _, ref := range refs {
					fmt.Fprintln(cmd.OutOrStdout(), ref.KnownPath)
				}
				return nil
			})
		},
	}

	return cmd
}
