package main

import (
	"visa_crm_go/db"
	"visa_crm_go/services"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newPermissionsCmd() *cobra.Command {
	var workspaceID string

	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Print the effective permission table as YAML",
		Long:  "Prints the workspace's saved table, or the built-in defaults when --workspace is omitted or the workspace has none.",
		RunE: func(cmd *cobra.Command, args []string) error {
			table := services.DefaultPermissions()
			if workspaceID != "" {
				var err error
				if table, err = services.GetWorkspacePermissions(db.DB, workspaceID); err != nil {
					return err
				}
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(table)
		},
	}

	cmd.Flags().StringVar(&workspaceID, "workspace", "", "Workspace ID")
	return cmd
}
