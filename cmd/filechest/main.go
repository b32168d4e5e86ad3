package main

import (
	"fmt"
	"os"

	"github.com/mwantia/filechest/cmd/filechest/cli"
	"github.com/mwantia/filechest/cmd/filechest/cli/admin"
	"github.com/mwantia/filechest/cmd/filechest/cli/client"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := cli.NewRootCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	})

	root.AddCommand(cli.NewVersionCommand())

	root.AddCommand(client.NewListCommand())
	root.AddCommand(client.NewShowCommand())
	root.AddCommand(client.NewNoteCommand())
	root.AddCommand(client.NewTagsCommand())

	root.AddCommand(admin.NewConfigCommand())
	root.AddCommand(admin.NewDatabaseCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
