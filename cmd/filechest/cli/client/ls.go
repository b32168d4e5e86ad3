package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/mwantia/filechest/internal/chest"
	"github.com/mwantia/filechest/pkg/fileref"
	"github.com/spf13/cobra"
)

func NewListCommand() *cobra.Command {
	var showHidden bool
	var longFormat bool
	var humanReadable bool

	cmd := &cobra.Command{
		Use:     "ls [directory | tag:<name>]",
		Aliases: []string{"list"},
		Short:   "List files together with their annotations",
		Long: `List the entries of a directory, or every file carrying a tag when the
argument starts with 'tag:'. Without an argument the working directory is listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) > 0 {
				input = args[0]
			}

			query, err := chest.ParseQuery(input)
			if err != nil {
				return err
			}

			return runChest(cmd, func(ctx context.Context, c *chest.Chest) error {
				if !cmd.Flags().Changed("all") {
					showHidden = c.Config().Listing.ShowHidden
				}

				refs, err := c.Browse(ctx, query, showHidden)
				if err != nil {
					return err
				}

				if !longFormat {
					for _, ref := range refs {
						fmt.Fprintln(cmd.OutOrStdout(), ref.KnownPath)
					}
					return nil
				}
				return printLong(ctx, cmd.OutOrStdout(), c, refs, humanReadable)
			})
		},
	}

	cmd.Flags().BoolVarP(&showHidden, "all", "a", false, "Include entries starting with '.'")
	cmd.Flags().BoolVarP(&longFormat, "long", "l", false, "Display long format")
	cmd.Flags().BoolVarP(&humanReadable, "human", "H", false, "Enable human-readable format")

	return cmd
}

func printLong(ctx context.Context, out io.Writer, c *chest.Chest, refs []fileref.FileRef, human bool) error {
	s := newStyles()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "INODE\tSIZE\tMODIFIED\tNOTE\tPATH\tTAGS")
	for _, ref := range refs {
		annotation, err := c.Select(ctx, ref)
		if err != nil {
			return err
		}

		size, modified := "-", "-"
		// Tag results may point at paths that no longer exist.
		if info, err := os.Lstat(ref.KnownPath); err == nil {
			size = strconv.FormatInt(info.Size(), 10)
			modified = info.ModTime().Format("2006-01-02 15:04")
			if human {
				size = humanize.Bytes(uint64(info.Size()))
				modified = humanize.Time(info.ModTime())
			}
		}

		note := "-"
		if annotation.HasNote {
			note = summarize(annotation.Note, 32)
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			ref.Identity, size, modified, note, ref.KnownPath, s.tags(annotation.Tags))
	}

	return w.Flush()
}
