package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filez-project/filez/pkg/dbgateway"
	"github.com/filez-project/filez/pkg/models"
)

// NewBootstrapCommand provisions the synthetic first-party and no-origin
// applications a fresh deployment requires before any request can resolve
// an Application for itself (§3, §4.8).
func NewBootstrapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the synthetic first-party and no-origin applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, _ := cmd.Flags().GetString("database-dsn")
			if dsn == "" {
				dsn = os.Getenv("FILEZ_DATABASE_DSN")
			}
			if dsn == "" {
				return fmt.Errorf("--database-dsn or FILEZ_DATABASE_DSN is required")
			}

			gw, err := dbgateway.Connect(cmd.Context(), dsn)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer gw.Close()

			if err := upsertApp(cmd.Context(), gw, models.FirstPartyAppName, true); err != nil {
				return err
			}
			if err := upsertApp(cmd.Context(), gw, models.NoOriginAppName, false); err != nil {
				return err
			}

			fmt.Println("bootstrap complete")
			return nil
		},
	}
}

func upsertApp(ctx context.Context, gw *dbgateway.Gateway, name string, trusted bool) error {
	_, err := gw.Pool().Exec(ctx,
		`INSERT INTO apps (id, name, trusted, origins) VALUES ($1, $2, $3, '{}')
		 ON CONFLICT (name) DO NOTHING`,
		models.NewID(), name, trusted)
	if err != nil {
		return fmt.Errorf("upserting application %q: %w", name, err)
	}
	return nil
}
