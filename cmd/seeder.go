package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/user"
	"github.com/spf13/cobra"
)

var (
	seedAdminEmail    string
	seedAdminPassword string
	seedAdminName     string
	seedAdminRut      string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the company settings row and the first admin",
	Long: `Seed inserts the default company settings when none exist and, when --admin-email
is given, creates an admin account with its profile. Existing accounts are left alone.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		deps, err := initializeDependencies(cfg)
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		ctx := context.Background()
		defer deps.Close(ctx)

		settings, err := deps.Company.EnsureDefaults(ctx)
		if err != nil {
			log.Fatalf("failed to seed company settings: %v", err)
		}
		fmt.Println("Company settings ready:", settings.Name)

		if seedAdminEmail == "" {
			return
		}

		existing, err := deps.Identity.FindByEmail(ctx, seedAdminEmail)
		if err != nil {
			log.Fatalf("failed to look up admin account: %v", err)
		}
		if existing != nil {
			fmt.Println("admin account already exists:", existing.Email)
			return
		}

		id, err := deps.Users.Bootstrap(ctx, user.CreateAdminDTO{
			Email:    seedAdminEmail,
			Password: seedAdminPassword,
			FullName: seedAdminName,
			Rut:      seedAdminRut,
		})
		if err != nil {
			if appErr, ok := internal.IsAppError(err); ok {
				log.Fatalf("failed to create admin: %s", appErr.GetDetailedMessage())
			}
			log.Fatalf("failed to create admin: %v", err)
		}
		fmt.Println("Seeded admin user:", seedAdminEmail, id)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "", "email of the first admin")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "", "password of the first admin")
	seedCmd.Flags().StringVar(&seedAdminName, "admin-name", "Administrador", "full name of the first admin")
	seedCmd.Flags().StringVar(&seedAdminRut, "admin-rut", "", "national id of the first admin")
}
