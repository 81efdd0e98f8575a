package main

import (
	"fmt"
	"os"
	"path/filepath"

	"visa_crm_go/db"
	"visa_crm_go/services"

	"github.com/spf13/cobra"
)

func newImportLeadsCmd() *cobra.Command {
	var workspaceID, ownerID string

	cmd := &cobra.Command{
		Use:   "import-leads FILE",
		Short: "Import leads from a .csv or .xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := services.GetTeamMember(db.DB, workspaceID, ownerID)
			if err != nil {
				return fmt.Errorf("owner %s: %w", ownerID, err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			result, err := services.ImportLeads(db.DB, workspaceID, owner, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed: %d\n", result.TotalProcessed)
			fmt.Fprintf(out, "Imported:  %d\n", result.SuccessCount)
			fmt.Fprintf(out, "Skipped:   %d\n", result.SkippedCount)
			for _, msg := range result.Notes {
				fmt.Fprintf(out, "  - %s\n", msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&workspaceID, "workspace", "", "Workspace ID")
	cmd.Flags().StringVar(&ownerID, "owner", "", "User ID that will own the imported leads")
	_ = cmd.MarkFlagRequired("workspace")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
