package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filez-project/filez/internal/bytesize"
	"github.com/filez-project/filez/pkg/dbgateway"
	"github.com/filez-project/filez/pkg/models"
)

// NewQuotaCommand groups storage-quota management subcommands.
func NewQuotaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Manage per-user storage quotas",
	}
	cmd.AddCommand(newQuotaSetCommand())
	return cmd
}

func newQuotaSetCommand() *cobra.Command {
	var userID, storageLocationID, limit string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or resize a user's quota on a storage location",
		Long: "Accepts human-readable sizes (1Gi, 500Mi, 100MB, or a plain byte count) " +
			"parsed by internal/bytesize.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, _ := cmd.Flags().GetString("database-dsn")
			if dsn == "" {
				dsn = os.Getenv("FILEZ_DATABASE_DSN")
			}
			if dsn == "" {
				return fmt.Errorf("--database-dsn or FILEZ_DATABASE_DSN is required")
			}

			size, err := bytesize.ParseByteSize(limit)
			if err != nil {
				return fmt.Errorf("invalid --limit: %w", err)
			}

			uid, err := models.ParseID(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			locID, err := models.ParseID(storageLocationID)
			if err != nil {
				return fmt.Errorf("invalid --storage-location: %w", err)
			}

			gw, err := dbgateway.Connect(cmd.Context(), dsn)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer gw.Close()

			_, err = gw.Pool().Exec(cmd.Context(),
				`INSERT INTO storage_quotas (id, user_id, storage_location_id, limit_bytes)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (user_id, storage_location_id)
				 DO UPDATE SET limit_bytes = EXCLUDED.limit_bytes`,
				models.NewID(), models.UserID(uid), models.StorageLocID(locID), size.Int64())
			if err != nil {
				return fmt.Errorf("upserting storage quota: %w", err)
			}

			fmt.Printf("quota set: user=%s storage_location=%s limit=%s (%d bytes)\n",
				userID, storageLocationID, limit, size.Int64())
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID")
	cmd.Flags().StringVar(&storageLocationID, "storage-location", "", "storage location ID")
	cmd.Flags().StringVar(&limit, "limit", "", "quota limit, e.g. 10Gi, 500MB")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("storage-location")
	cmd.MarkFlagRequired("limit")
	return cmd
}
