package main

import (
	"fmt"
	"os"

	"visa_crm_go/config"
	"visa_crm_go/db"
	"visa_crm_go/models"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crmctl",
	Short: "Administrative tasks for the visa CRM",
	Long: `crmctl runs maintenance tasks against the CRM database without the HTTP server.

Connection settings come from the same environment as the server (DB_PATH,
TURSO_DATABASE_URL, TURSO_AUTH_TOKEN). --db overrides the local path.

Examples:
  # Provision a firm and its first admin
  crmctl create-user --workspace "Acme Immigration" --name "Ana Ruiz" --email ana@acme.test

  # Import leads from a spreadsheet
  crmctl import-leads --workspace <id> --owner <user-id> leads.xlsx

  # Show the effective permission table
  crmctl permissions --workspace <id>`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return openDatabase()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		db.Close()
	},
}

var dbPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (defaults to DB_PATH)")

	rootCmd.AddCommand(newCreateUserCmd())
	rootCmd.AddCommand(newImportLeadsCmd())
	rootCmd.AddCommand(newPermissionsCmd())
}

func openDatabase() error {
	cfg := config.Load()
	if dbPath != "" {
		cfg.DBPath = dbPath
		cfg.TursoDatabaseURL = ""
	}

	if err := db.Initialize(db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: cfg.Environment,
	}); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return db.AutoMigrate(models.All()...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
