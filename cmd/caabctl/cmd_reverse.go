// cmd/caabctl/cmd_reverse.go
package main

import (
	"time"

	"caab-workers/internal/assessment"
	"caab-workers/internal/mapping"
	"caab-workers/internal/mapping/adapters"
	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"

	"github.com/spf13/cobra"
)

func newReverseCmd(c *cli) *cobra.Command {
	var (
		target     string
		meansFile  string
		meritsFile string
		user       source.User
	)
	cmd := &cobra.Command{
		Use:   "reverse <application.json|->",
		Short: "Encode a canonical application as an EBS or SOA submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			system, err := adapters.ParseSystem(target)
			if err != nil {
				return err
			}
			enc, err := adapters.EncoderFor(system)
			if err != nil {
				return err
			}

			var app models.Application
			if err := readJSON(cmd, args[0], &app); err != nil {
				return err
			}
			means, err := loadResult(cmd, meansFile, assessment.Means)
			if err != nil {
				return err
			}
			merits, err := loadResult(cmd, meritsFile, assessment.Merits)
			if err != nil {
				return err
			}

			sub, err := mapping.Reverse(app, mapping.ReverseOptions{
				Target: system,
				User:   user,
				Now:    time.Now().UTC(),
				Means:  means,
				Merits: merits,
			})
			if err != nil {
				return err
			}
			body, err := enc.Encode(sub)
			if err != nil {
				return err
			}
			c.log.Debug("submission encoded", map[string]interface{}{
				"target": string(system),
				"bytes":  len(body),
			})
			_, err = cmd.OutOrStdout().Write(append(body, '\n'))
			return err
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "EBS or SOA")
	_ = cmd.MarkFlagRequired("target")
	cmd.Flags().StringVar(&meansFile, "means", "", "means assessment graph")
	cmd.Flags().StringVar(&meritsFile, "merits", "", "merits assessment graph")
	cmd.Flags().StringVar(&user.LoginID, "user", "", "login id recorded as the submitter")
	cmd.Flags().StringVar(&user.UserType, "user-type", "", "")
	return cmd
}

func loadResult(cmd *cobra.Command, path string, rb assessment.Rulebase) (*source.AssessmentResult, error) {
	if path == "" {
		return nil, nil
	}
	var g models.AssessmentGraph
	if err := readJSON(cmd, path, &g); err != nil {
		return nil, err
	}
	return assessment.ToResult(&g, rb), nil
}
