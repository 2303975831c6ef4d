// cmd/caabctl/cmd_project.go
package main

import (
	"errors"
	"time"

	"caab-workers/internal/assessment"
	"caab-workers/internal/lookup"
	"caab-workers/internal/models"

	"github.com/spf13/cobra"
)

type projection struct {
	Assessment             *models.AssessmentGraph `json:"assessment"`
	Status                 string                  `json:"status"`
	ReassessmentRequired   bool                    `json:"reassessmentRequired"`
	ApplicationTypeChanged bool                    `json:"applicationTypeChanged"`
}

func newProjectCmd(c *cli) *cobra.Command {
	var (
		rulebase  string
		priorFile string
		client    assessment.Client
		user      assessment.User
	)
	cmd := &cobra.Command{
		Use:   "project <application.json|->",
		Short: "Project a canonical application into an assessment graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rb, err := assessment.RulebaseByName(rulebase)
			if err != nil {
				return err
			}
			var app models.Application
			if err := readJSON(cmd, args[0], &app); err != nil {
				return err
			}

			titles := map[string]string{}
			for _, o := range app.Opponents {
				if ind := o.Individual(); ind != nil && ind.Title != "" {
					v, err := c.resolver.Value(cmd.Context(), lookup.DomainContactTitle, ind.Title)
					switch {
					case errors.Is(err, lookup.ErrNotFound):
					case err != nil:
						return err
					default:
						titles[ind.Title] = v.Description
					}
				}
			}

			fresh, err := assessment.Project(app, rb, assessment.Context{
				Client: client,
				User:   user,
				Titles: titles,
				Now:    time.Now().UTC(),
			})
			if err != nil {
				return err
			}

			var prior *models.AssessmentGraph
			if priorFile != "" {
				prior = &models.AssessmentGraph{}
				if err := readJSON(cmd, priorFile, prior); err != nil {
					return err
				}
				if !assessment.ReferenceConsistent(prior, app.CaseReferenceNumber) {
					c.log.Warn("prior graph belongs to another case, ignoring it", map[string]interface{}{
						"caseReference": app.CaseReferenceNumber,
					})
					prior = nil
				}
			}

			merged := assessment.Merge(prior, fresh)
			out := projection{
				Status:                 assessment.Status(app, merged, rb),
				ReassessmentRequired:   assessment.ReassessmentRequired(app, merged, rb),
				ApplicationTypeChanged: assessment.ApplicationTypeChanged(app, merged),
			}
			out.Assessment = assessment.Prune(merged, app)
			out.Assessment.Status = out.Status
			return writeJSON(cmd, out)
		},
	}
	cmd.Flags().StringVar(&rulebase, "rulebase", assessment.Means.Name, "meansAssessment or meritsAssessment")
	cmd.Flags().StringVar(&priorFile, "prior", "", "previously saved graph to merge into")
	cmd.Flags().StringVar(&client.FirstName, "client-first-name", "", "")
	cmd.Flags().StringVar(&client.Surname, "client-surname", "", "")
	cmd.Flags().StringVar(&user.LoginID, "user", "", "login id of the requesting user")
	cmd.Flags().IntVar(&user.ProviderFirmID, "user-firm", 0, "provider firm id of the requesting user")
	cmd.Flags().StringVar(&user.UserType, "user-type", "EXTERNAL", "")
	return cmd
}
