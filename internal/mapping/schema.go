// Package mapping converts upstream case payloads into the canonical Application and back.
//
// A payload is first decoded by its schema package (ebs or soa) into a value that satisfies
// Schema. BuildContext resolves every code the mapper needs through a lookup.Resolver, so that
// ToApplication and Reverse are pure functions over already-resolved data.
package mapping

import (
	"caab-workers/internal/mapping/source"
)

// Schema exposes a decoded upstream payload. The shared parts are returned as-is; the drifted
// parts are converted to their neutral form by the implementation.
type Schema interface {
	System() source.System
	Core() *source.CaseCore
	// Details is nil when the payload has no application block.
	Details() *source.ApplicationCore
	Provider() source.ProviderDetails
	Parties() []source.OtherParty
	MeansAssessments() []source.AssessmentResult
	MeritsAssessments() []source.AssessmentResult
	History() source.RecordHistory
}

// Encoder writes a Submission in one schema's wire spelling.
type Encoder interface {
	System() source.System
	Encode(s *Submission) ([]byte, error)
}

// Submission is the neutral result of the reverse mapping. It satisfies Schema itself, which is
// what makes the forward mapping of a reversed application possible without any wire format.
type Submission struct {
	Target          source.System             `json:"targetSystem"`
	CaseCore        source.CaseCore           `json:"case"`
	ApplicationCore source.ApplicationCore    `json:"application"`
	ProviderDetails source.ProviderDetails    `json:"providerDetails"`
	OtherParties    []source.OtherParty       `json:"otherParties,omitempty"`
	Means           []source.AssessmentResult `json:"meansAssessments,omitempty"`
	Merits          []source.AssessmentResult `json:"meritsAssessments,omitempty"`
	RecordHistory   source.RecordHistory      `json:"recordHistory"`
}

func (s *Submission) System() source.System                        { return s.Target }
func (s *Submission) Core() *source.CaseCore                       { return &s.CaseCore }
func (s *Submission) Details() *source.ApplicationCore             { return &s.ApplicationCore }
func (s *Submission) Provider() source.ProviderDetails             { return s.ProviderDetails }
func (s *Submission) Parties() []source.OtherParty                 { return s.OtherParties }
func (s *Submission) MeansAssessments() []source.AssessmentResult  { return s.Means }
func (s *Submission) MeritsAssessments() []source.AssessmentResult { return s.Merits }
func (s *Submission) History() source.RecordHistory                { return s.RecordHistory }
