package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"visa_crm_go/db"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/spf13/cobra"
)

func newCreateUserCmd() *cobra.Command {
	var (
		workspaceName string
		name          string
		email         string
		password      string
		plan          string
		superAdmin    bool
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a workspace with its first admin, or a super-admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(os.Stdin)
			out := cmd.OutOrStdout()

			if name == "" {
				name = prompt(out, reader, "Name")
			}
			if email == "" {
				email = prompt(out, reader, "Email")
			}
			if password == "" {
				password = os.Getenv("CRMCTL_PASSWORD")
			}
			if password == "" {
				password = prompt(out, reader, "Password")
			}

			if superAdmin {
				user, err := services.CreateSuperAdmin(db.DB, name, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "✓ Super-admin created")
				fmt.Fprintf(out, "  ID: %s\n  Email: %s\n", user.ID, user.Email)
				return nil
			}

			if workspaceName == "" {
				workspaceName = prompt(out, reader, "Workspace name")
			}
			if workspaceName == "" {
				return errors.New("--workspace is required unless --super-admin is set")
			}

			workspace, owner, err := services.CreateAccount(db.DB, services.NewAccountInput{
				WorkspaceName: workspaceName,
				OwnerName:     name,
				OwnerEmail:    email,
				Password:      password,
				Plan:          plan,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "✓ Account created")
			fmt.Fprintf(out, "  Workspace: %s (%s)\n", workspace.Name, workspace.ID)
			fmt.Fprintf(out, "  Admin: %s <%s> (%s)\n", owner.Name, owner.Email, owner.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceName, "workspace", "w", "", "Workspace (firm) name")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Full name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Password (or CRMCTL_PASSWORD, or prompt)")
	cmd.Flags().StringVar(&plan, "plan", models.PlanStarter, "Plan: Starter, Professional or Enterprise")
	cmd.Flags().BoolVar(&superAdmin, "super-admin", false, "Create a platform super-admin without a workspace")
	return cmd
}

func prompt(out io.Writer, reader *bufio.Reader, label string) string {
	fmt.Fprintf(out, "%s: ", label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
