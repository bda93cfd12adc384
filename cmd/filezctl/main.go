// Command filezctl is a thin administrative CLI for Filez: it talks
// directly to Postgres to provision the bootstrap data a fresh deployment
// needs (the first-party and no-origin applications, a super-admin user)
// without going through the HTTP surface.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filez-project/filez/cmd/filezctl/commands"
)

func main() {
	root := &cobra.Command{
		Use:   "filezctl",
		Short: "Administrative CLI for the Filez content service",
	}
	root.PersistentFlags().String("database-dsn", "", "Postgres connection string (overrides FILEZ_DATABASE_DSN)")

	root.AddCommand(commands.NewBootstrapCommand())
	root.AddCommand(commands.NewUserCommand())
	root.AddCommand(commands.NewQuotaCommand())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
