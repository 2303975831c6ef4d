// cmd/caabctl/cmd_registry.go
package main

import (
	"fmt"
	"strings"

	"caab-workers/internal/common/validation"
	"caab-workers/pkg/registry"

	"github.com/spf13/cobra"
)

const defaultRegistryPath = "configs/activity-registry.json"

func newRegistryCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the activity registry",
	}
	cmd.PersistentFlags().StringVar(&path, "path", defaultRegistryPath, "activity registry file")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered task types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			for _, tt := range reg.TaskTypes() {
				a, _ := reg.Find(tt)
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %-10s %s\n", a.TaskType, a.ImplementationStatus, a.DisplayName)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate [task-type variables.json]",
		Short: "Check the registry, or validate job variables against a task type's input schema",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or <task-type> <variables.json>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if problems := reg.Check(); len(problems) > 0 {
				return fmt.Errorf("registry has problems:\n  %s", strings.Join(problems, "\n  "))
			}
			v, err := validation.NewValidator(reg)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d activities ok\n", len(reg.Activities))
				return nil
			}

			data, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			res, err := v.ValidateInput(args[0], data)
			if err != nil {
				return err
			}
			if !res.Valid {
				return fmt.Errorf("invalid %s input: %s", args[0], res.Summary())
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "update <id> <field> <value>",
		Short: "Set one field of a registered activity",
		Long:  "Fields: status, version, displayName, description, category, timeout, retries.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if err := reg.Update(args[0], args[1], args[2]); err != nil {
				return err
			}
			if err := reg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s %s\n", args[0], args[1])
			return nil
		},
	})
	return cmd
}
