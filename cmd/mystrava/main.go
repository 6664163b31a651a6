package main

import (
	"fmt"
	"os"

	"github.com/mwantia/mystrava/cmd/mystrava/cli"
	"github.com/mwantia/mystrava/cmd/mystrava/cli/client"
	"github.com/mwantia/mystrava/cmd/mystrava/cli/server"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	info := cli.VersionInfo{
		Version: version,
		Commit:  commit,
	}
	root := cli.NewRootCommand(info)

	root.AddCommand(cli.NewVersionCommand(info))

	root.AddCommand(server.NewAgentCommand())
	root.AddCommand(server.NewConfigCommand())
	root.AddCommand(server.NewDatabaseCommand())

	root.AddCommand(client.NewActivitiesCommand())
	root.AddCommand(client.NewGearsCommand())
	root.AddCommand(client.NewSyncCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
