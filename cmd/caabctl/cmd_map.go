// cmd/caabctl/cmd_map.go
package main

import (
	"caab-workers/internal/mapping"
	"caab-workers/internal/mapping/adapters"
	"caab-workers/internal/mapping/source"

	"github.com/spf13/cobra"
)

func newMapCmd(c *cli) *cobra.Command {
	var system string
	cmd := &cobra.Command{
		Use:   "map <payload.json|->",
		Short: "Map an EBS or SOA case payload to the canonical application",
		Long: `Decodes an upstream case payload and prints the canonical application as JSON.
Recovered data-quality issues are logged to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			var s source.System
			if system != "" {
				if s, err = adapters.ParseSystem(system); err != nil {
					return err
				}
			} else {
				s = adapters.Detect(data)
			}

			schema, err := adapters.Decode(s, data)
			if err != nil {
				return err
			}
			app, issues, err := mapping.Transform(cmd.Context(), c.resolver, schema)
			if err != nil {
				return err
			}
			for _, is := range issues {
				c.log.Warn("mapping issue", map[string]interface{}{
					"kind":  string(is.Kind),
					"path":  is.Path,
					"value": is.Value,
					"note":  is.Note,
				})
			}
			return writeJSON(cmd, app)
		},
	}
	cmd.Flags().StringVar(&system, "source", "", "EBS or SOA; detected from the payload when empty")
	return cmd
}
