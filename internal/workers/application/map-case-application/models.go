// internal/workers/application/map-case-application/models.go
package mapcaseapplication

import (
	"encoding/json"

	"caab-workers/internal/mapping"
	"caab-workers/internal/models"
)

type Input struct {
	SourceSystem string          `json:"sourceSystem,omitempty"` // EBS | SOA, detected when empty
	CasePayload  json.RawMessage `json:"casePayload"`
	RequestedBy  string          `json:"requestedBy,omitempty"`
}

type Output struct {
	CaseReferenceNumber string             `json:"caseReferenceNumber"`
	SourceSystem        string             `json:"sourceSystem"`
	Application         models.Application `json:"application"`
	IssueCount          int                `json:"issueCount"`
	Issues              []mapping.Issue    `json:"issues,omitempty"`
}
