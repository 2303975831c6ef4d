// internal/workers/assessment/build-assessment-graph/models.go
package buildassessmentgraph

import (
	"caab-workers/internal/assessment"
	"caab-workers/internal/models"
)

type Input struct {
	CaseReferenceNumber string            `json:"caseReferenceNumber"`
	Rulebase            string            `json:"rulebase"` // meansAssessment | meritsAssessment
	Client              assessment.Client `json:"client"`
	User                assessment.User   `json:"user"`
}

type Output struct {
	Assessment             *models.AssessmentGraph `json:"assessment"`
	Status                 string                  `json:"status"`
	ReassessmentRequired   bool                    `json:"reassessmentRequired"`
	ApplicationTypeChanged bool                    `json:"applicationTypeChanged"`
}
