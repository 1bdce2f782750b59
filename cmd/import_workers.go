package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/frahmantamala/docportal/internal"
	"github.com/spf13/cobra"
)

var importWorkersCmd = &cobra.Command{
	Use:   "import-workers [csv-file]",
	Short: "Create worker accounts from a CSV file",
	Long: `Runs the bulk worker import on a local CSV file (full name, email, phone, cost center)
on behalf of an existing admin and prints the per-row report as JSON.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runImportWorkers(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var importAsAdmin string

func runImportWorkers(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	config, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	deps, err := initializeDependencies(config)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer deps.Close(ctx)

	caller, err := resolveAdmin(ctx, deps, importAsAdmin)
	if err != nil {
		return err
	}

	deps.Logger.Info("starting worker import", "file", path, "admin", caller.Email)

	report, err := deps.Importer.ImportWorkers(ctx, caller, string(raw))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	deps.Logger.Info("worker import finished",
		"succeeded", report.Summary.Succeeded,
		"failed", report.Summary.Failed)
	return nil
}

// resolveAdmin builds the principal the same way the auth gate does: the
// role comes from the profile, never from the command line.
func resolveAdmin(ctx context.Context, deps *Dependencies, email string) (*internal.Principal, error) {
	if email == "" {
		return nil, fmt.Errorf("--as is required")
	}
	account, err := deps.Identity.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, internal.ErrAccountNotFound
	}
	role, err := deps.Users.ResolveRole(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if role != internal.RoleAdmin {
		return nil, internal.ErrAdminRequired
	}
	return &internal.Principal{UserID: account.ID, Email: account.Email, Role: role}, nil
}

func init() {
	importWorkersCmd.Flags().StringVar(&importAsAdmin, "as", "", "email of the admin running the import")

	rootCmd.AddCommand(importWorkersCmd)
}
