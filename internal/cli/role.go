package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/dashlist/pkg/client"
)

func newRoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Inspect and manage roles",
	}

	cmd.AddCommand(newRoleGetCmd())
	cmd.AddCommand(newRoleCreateCmd())
	cmd.AddCommand(newRoleDeleteCmd())

	return cmd
}

func newRoleGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a role and its permissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			r, err := apiClient.Roles().GetByName(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get role: %w", err)
			}
			return printRole(r)
		},
	}
}

func newRoleCreateCmd() *cobra.Command {
	var perms []string

	cmd := &cobra.Command{
		Use:     "create <name>",
		Short:   "Create a role (admin only)",
		Example: `  dashlist role create auditor --perm can_read:Dashboard --perm can_write:Dashboard`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			pairs, err := parsePermissionViews(perms)
			if err != nil {
				return err
			}

			r, err := apiClient.Roles().Create(cmd.Context(), client.CreateRoleRequest{
				Name:           args[0],
				PermissionView: pairs,
			})
			if err != nil {
				return fmt.Errorf("failed to create role: %w", err)
			}
			return printRole(r)
		},
	}

	cmd.Flags().StringArrayVar(&perms, "perm", nil, "permission:view to grant, repeatable")
	_ = cmd.MarkFlagRequired("perm")
	return cmd
}

func newRoleDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a role no user holds (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			if !yes && !confirm(fmt.Sprintf("Delete role %s? [y/N]: ", args[0])) {
				fmt.Println("Aborted")
				return nil
			}
			if err := apiClient.Roles().Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete role: %w", err)
			}
			fmt.Printf("Deleted role %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

// parsePermissionViews turns permission:view flags into pairs
func parsePermissionViews(flags []string) ([][2]string, error) {
	pairs := make([][2]string, 0, len(flags))
	for _, f := range flags {
		perm, view, ok := strings.Cut(f, ":")
		perm, view = strings.TrimSpace(perm), strings.TrimSpace(view)
		if !ok || perm == "" || view == "" {
			return nil, fmt.Errorf("invalid permission %q, want permission:view", f)
		}
		pairs = append(pairs, [2]string{perm, view})
	}
	return pairs, nil
}

func printRole(r *client.Role) error {
	if getOutputFormat() != "table" {
		return printOutput(r)
	}

	fmt.Printf("Role: %s (id %d)\n\n", r.Name, r.ID)
	table := NewTable("PERMISSION", "VIEW")
	for _, pv := range r.Permissions {
		table.AddRow(pv.Permission, pv.View)
	}
	table.Render()
	return nil
}
