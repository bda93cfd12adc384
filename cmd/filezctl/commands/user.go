package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filez-project/filez/pkg/access"
	"github.com/filez-project/filez/pkg/dbgateway"
	"github.com/filez-project/filez/pkg/models"
)

// NewUserCommand groups user-management subcommands.
func NewUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage Filez users",
	}
	cmd.AddCommand(newUserCreateKeyAccessCommand())
	return cmd
}

func newUserCreateKeyAccessCommand() *cobra.Command {
	var email, name string
	var superAdmin bool

	cmd := &cobra.Command{
		Use:   "create-key-access",
		Short: "Create a KeyAccess user and print its bearer secret once",
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

			userType := models.UserTypeKeyAccess
			if superAdmin {
				userType = models.UserTypeSuperAdmin
			}

			userID := models.UserID(models.NewID())
			_, err = gw.Pool().Exec(cmd.Context(),
				`INSERT INTO users (id, email, name, type, created_time, modified_time)
				 VALUES ($1, $2, $3, $4, now(), now())`,
				userID, email, name, userType)
			if err != nil {
				return fmt.Errorf("creating user: %w", err)
			}

			secret, err := randomSecret()
			if err != nil {
				return fmt.Errorf("generating secret: %w", err)
			}

			_, err = gw.Pool().Exec(cmd.Context(),
				`INSERT INTO key_access (user_id, secret_hash) VALUES ($1, $2)`,
				userID, access.HashKeySecret(secret))
			if err != nil {
				return fmt.Errorf("storing key access secret: %w", err)
			}

			fmt.Printf("user id: %s\nbearer secret (shown once): %s\n", userID, secret)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&name, "name", "", "user display name")
	cmd.Flags().BoolVar(&superAdmin, "super-admin", false, "create as SuperAdmin instead of KeyAccess")
	return cmd
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
