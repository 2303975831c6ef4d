// Package soa decodes and encodes case payloads in the SOA spelling.
//
// The SOA contract differs from EBS only in a handful of property names, some of them misspelt
// upstream (meansAssesments, courtOrderedMeansAssesment). They are kept as the wire has them.
package soa

import (
	"encoding/json"
	"fmt"
	"time"

	"caab-workers/internal/mapping"
	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"

	"github.com/shopspring/decimal"
)

// CaseDetail is the SOA case payload.
type CaseDetail struct {
	source.CaseCore
	ApplicationDetails *ApplicationDetails `json:"applicationDetails,omitempty"`
	RecordHistory      *RecordHistory      `json:"recordHistory,omitempty"`
}

type ApplicationDetails struct {
	source.ApplicationCore
	ProviderDetails   *ProviderDetails          `json:"providerDetails,omitempty"`
	OtherParties      []OtherParty              `json:"otherParties,omitempty"`
	MeansAssessments  []source.AssessmentResult `json:"meansAssesments,omitempty"`
	MeritsAssessments []source.AssessmentResult `json:"meritsAssesments,omitempty"`
}

type User struct {
	LoginID  string `json:"userLoginId,omitempty"`
	Username string `json:"userName,omitempty"`
	UserType string `json:"userType,omitempty"`
}

type ProviderDetails struct {
	ProviderCaseReferenceNumber string `json:"providerCaseReferenceNumber,omitempty"`
	ProviderFirmID              int    `json:"providerFirmId,omitempty"`
	ProviderOfficeID            int    `json:"providerOfficeId,omitempty"`
	ContactUserID               *User  `json:"contactUserId,omitempty"`
	SupervisorContactID         string `json:"supervisorContactId,omitempty"`
	FeeEarnerContactID          string `json:"feeEarnerContactId,omitempty"`
}

type Person struct {
	Name                        *source.Name           `json:"name,omitempty"`
	Address                     *source.Address        `json:"address,omitempty"`
	ContactDetails              *source.ContactDetails `json:"contactDetails,omitempty"`
	DateOfBirth                 *models.Date           `json:"dateOfBirth,omitempty"`
	NiNumber                    string                 `json:"niNumber,omitempty"`
	RelationToCase              string                 `json:"relationToCase,omitempty"`
	RelationToClient            string                 `json:"relationToClient,omitempty"`
	PartyLegalAidedInd          *bool                  `json:"partyLegalAidedInd,omitempty"`
	CourtOrderedMeansAssessment *bool                  `json:"courtOrderedMeansAssesment,omitempty"`
	OrganisationName            string                 `json:"organizationName,omitempty"`
	OrganisationAddress         string                 `json:"organizationAddress,omitempty"`
	AssessedIncome              *decimal.Decimal       `json:"assessedIncome,omitempty"`
	AssessedAssets              *decimal.Decimal       `json:"assessedAssets,omitempty"`
	PublicFundingAppliedInd     *bool                  `json:"publicFundingAppliedInd,omitempty"`
	CertificateNumber           string                 `json:"certificateNumber,omitempty"`
	OtherInformation            string                 `json:"otherInformation,omitempty"`
}

type Organisation struct {
	OrganisationName string                 `json:"organizationName,omitempty"`
	OrganisationType string                 `json:"organizationType,omitempty"`
	ContactName      string                 `json:"contactName,omitempty"`
	Address          *source.Address        `json:"address,omitempty"`
	ContactDetails   *source.ContactDetails `json:"contactDetails,omitempty"`
	RelationToCase   string                 `json:"relationToCase,omitempty"`
	RelationToClient string                 `json:"relationToClient,omitempty"`
	CurrentlyTrading *bool                  `json:"currentlyTrading,omitempty"`
	OtherInformation string                 `json:"otherInformation,omitempty"`
}

type OtherParty struct {
	OtherPartyID string        `json:"otherPartyId,omitempty"`
	Person       *Person       `json:"person,omitempty"`
	Organisation *Organisation `json:"organisation,omitempty"`
}

type RecordHistory struct {
	DateCreated     *time.Time `json:"dateCreated,omitempty"`
	DateLastUpdated *time.Time `json:"dateLastUpdated,omitempty"`
	CreatedBy       *User      `json:"createdBy,omitempty"`
	LastUpdatedBy   *User      `json:"lastUpdatedBy,omitempty"`
}

// Decode reads a SOA payload.
func Decode(data []byte) (*CaseDetail, error) {
	var c CaseDetail
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode SOA case: %w", err)
	}
	return &c, nil
}

func (c *CaseDetail) System() source.System { return source.SystemSOA }

func (c *CaseDetail) Core() *source.CaseCore { return &c.CaseCore }

func (c *CaseDetail) Details() *source.ApplicationCore {
	if c.ApplicationDetails == nil {
		return nil
	}
	return &c.ApplicationDetails.ApplicationCore
}

func (c *CaseDetail) Provider() source.ProviderDetails {
	if c.ApplicationDetails == nil || c.ApplicationDetails.ProviderDetails == nil {
		return source.ProviderDetails{}
	}
	pd := c.ApplicationDetails.ProviderDetails
	return source.ProviderDetails{
		ProviderCaseReferenceNumber: pd.ProviderCaseReferenceNumber,
		ProviderFirmID:              pd.ProviderFirmID,
		ProviderOfficeID:            pd.ProviderOfficeID,
		ContactUserID:               toUser(pd.ContactUserID),
		SupervisorContactID:         pd.SupervisorContactID,
		FeeEarnerContactID:          pd.FeeEarnerContactID,
	}
}

func (c *CaseDetail) Parties() []source.OtherParty {
	if c.ApplicationDetails == nil {
		return nil
	}
	out := make([]source.OtherParty, 0, len(c.ApplicationDetails.OtherParties))
	for _, p := range c.ApplicationDetails.OtherParties {
		op := source.OtherParty{OtherPartyID: p.OtherPartyID}
		if p.Person != nil {
			person := source.Person(*p.Person)
			op.Person = &person
		}
		if p.Organisation != nil {
			org := source.Organisation(*p.Organisation)
			op.Organisation = &org
		}
		out = append(out, op)
	}
	return out
}

func (c *CaseDetail) MeansAssessments() []source.AssessmentResult {
	if c.ApplicationDetails == nil {
		return nil
	}
	return c.ApplicationDetails.MeansAssessments
}

func (c *CaseDetail) MeritsAssessments() []source.AssessmentResult {
	if c.ApplicationDetails == nil {
		return nil
	}
	return c.ApplicationDetails.MeritsAssessments
}

func (c *CaseDetail) History() source.RecordHistory {
	if c.RecordHistory == nil {
		return source.RecordHistory{}
	}
	h := c.RecordHistory
	return source.RecordHistory{
		DateCreated:     h.DateCreated,
		DateLastUpdated: h.DateLastUpdated,
		CreatedBy:       toUser(h.CreatedBy),
		LastUpdatedBy:   toUser(h.LastUpdatedBy),
	}
}

func toUser(u *User) source.User {
	if u == nil {
		return source.User{}
	}
	return source.User(*u)
}

func fromUser(u source.User) *User {
	if u == (source.User{}) {
		return nil
	}
	out := User(u)
	return &out
}

// FromSubmission builds the SOA payload of a reverse-mapped application.
func FromSubmission(s *mapping.Submission) *CaseDetail {
	pd := s.ProviderDetails
	details := &ApplicationDetails{
		ApplicationCore:   s.ApplicationCore,
		MeansAssessments:  s.Means,
		MeritsAssessments: s.Merits,
		ProviderDetails: &ProviderDetails{
			ProviderCaseReferenceNumber: pd.ProviderCaseReferenceNumber,
			ProviderFirmID:              pd.ProviderFirmID,
			ProviderOfficeID:            pd.ProviderOfficeID,
			ContactUserID:               fromUser(pd.ContactUserID),
			SupervisorContactID:         pd.SupervisorContactID,
			FeeEarnerContactID:          pd.FeeEarnerContactID,
		},
	}
	for _, p := range s.OtherParties {
		op := OtherParty{OtherPartyID: p.OtherPartyID}
		if p.Person != nil {
			person := Person(*p.Person)
			op.Person = &person
		}
		if p.Organisation != nil {
			org := Organisation(*p.Organisation)
			op.Organisation = &org
		}
		details.OtherParties = append(details.OtherParties, op)
	}

	return &CaseDetail{
		CaseCore:           s.CaseCore,
		ApplicationDetails: details,
		RecordHistory: &RecordHistory{
			DateCreated:     s.RecordHistory.DateCreated,
			DateLastUpdated: s.RecordHistory.DateLastUpdated,
			CreatedBy:       fromUser(s.RecordHistory.CreatedBy),
			LastUpdatedBy:   fromUser(s.RecordHistory.LastUpdatedBy),
		},
	}
}

type Encoder struct{}

func (Encoder) System() source.System { return source.SystemSOA }

func (Encoder) Encode(s *mapping.Submission) ([]byte, error) {
	data, err := json.Marshal(FromSubmission(s))
	if err != nil {
		return nil, fmt.Errorf("encode SOA case: %w", err)
	}
	return data, nil
}
