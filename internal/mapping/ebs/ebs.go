// Package ebs decodes and encodes case payloads in the EBS spelling.
package ebs

import (
	"encoding/json"
	"fmt"
	"time"

	"caab-workers/internal/mapping"
	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"

	"github.com/shopspring/decimal"
)

// CaseDetail is the EBS case payload.
type CaseDetail struct {
	source.CaseCore
	ApplicationDetails *ApplicationDetails `json:"applicationDetails,omitempty"`
	RecordHistory      *RecordHistory      `json:"recordHistory,omitempty"`
}

type ApplicationDetails struct {
	source.ApplicationCore
	ProviderDetails   *ProviderDetails          `json:"providerDetails,omitempty"`
	OtherParties      []OtherParty              `json:"otherParties,omitempty"`
	MeansAssessments  []source.AssessmentResult `json:"meansAssessments,omitempty"`
	MeritsAssessments []source.AssessmentResult `json:"meritsAssessments,omitempty"`
}

type User struct {
	LoginID  string `json:"loginId,omitempty"`
	Username string `json:"username,omitempty"`
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
	CourtOrderedMeansAssessment *bool                  `json:"courtOrderedMeansAssessment,omitempty"`
	OrganisationName            string                 `json:"organisationName,omitempty"`
	OrganisationAddress         string                 `json:"organisationAddress,omitempty"`
	AssessedIncome              *decimal.Decimal       `json:"assessedIncome,omitempty"`
	AssessedAssets              *decimal.Decimal       `json:"assessedAssets,omitempty"`
	PublicFundingAppliedInd     *bool                  `json:"publicFundingAppliedInd,omitempty"`
	CertificateNumber           string                 `json:"certificateNumber,omitempty"`
	OtherInformation            string                 `json:"otherInformation,omitempty"`
}

type Organisation struct {
	OrganisationName string                 `json:"organisationName,omitempty"`
	OrganisationType string                 `json:"organisationType,omitempty"`
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

// Decode reads an EBS payload.
func Decode(data []byte) (*CaseDetail, error) {
	var c CaseDetail
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode EBS case: %w", err)
	}
	return &c, nil
}

func (c *CaseDetail) System() source.System { return source.SystemEBS }

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
	var out []source.OtherParty
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

// FromSubmission builds the EBS payload of a reverse-mapped application.
func FromSubmission(s *mapping.Submission) *CaseDetail {
	out := &CaseDetail{
		CaseCore: s.CaseCore,
		ApplicationDetails: &ApplicationDetails{
			ApplicationCore:   s.ApplicationCore,
			MeansAssessments:  s.Means,
			MeritsAssessments: s.Merits,
		},
		RecordHistory: &RecordHistory{
			DateCreated:     s.RecordHistory.DateCreated,
			DateLastUpdated: s.RecordHistory.DateLastUpdated,
			CreatedBy:       fromUser(s.RecordHistory.CreatedBy),
			LastUpdatedBy:   fromUser(s.RecordHistory.LastUpdatedBy),
		},
	}

	pd := s.ProviderDetails
	out.ApplicationDetails.ProviderDetails = &ProviderDetails{
		ProviderCaseReferenceNumber: pd.ProviderCaseReferenceNumber,
		ProviderFirmID:              pd.ProviderFirmID,
		ProviderOfficeID:            pd.ProviderOfficeID,
		ContactUserID:               fromUser(pd.ContactUserID),
		SupervisorContactID:         pd.SupervisorContactID,
		FeeEarnerContactID:          pd.FeeEarnerContactID,
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
		out.ApplicationDetails.OtherParties = append(out.ApplicationDetails.OtherParties, op)
	}
	return out
}

// Encoder writes submissions in the EBS spelling.
type Encoder struct{}

func (Encoder) System() source.System { return source.SystemEBS }

func (Encoder) Encode(s *mapping.Submission) ([]byte, error) {
	data, err := json.Marshal(FromSubmission(s))
	if err != nil {
		return nil, fmt.Errorf("encode EBS case: %w", err)
	}
	return data, nil
}
