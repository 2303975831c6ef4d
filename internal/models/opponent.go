// internal/models/opponent.go
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"caab-workers/internal/money"
)

// OpponentType is the discriminator for the Party variants.
type OpponentType string

const (
	OpponentIndividual   OpponentType = "Individual"
	OpponentOrganisation OpponentType = "Organisation"
)

// DefaultOpponentType is used when a source record populates both variants or neither.
const DefaultOpponentType = OpponentOrganisation

// Opponent is an other party on the case. Exactly one Party variant is populated.
type Opponent struct {
	ID                   *int           `json:"id,omitempty"`
	EbsID                string         `json:"ebsId,omitempty"`
	RelationshipToCase   string         `json:"relationshipToCase,omitempty"`
	RelationshipToClient string         `json:"relationshipToClient,omitempty"`
	Address              *Address       `json:"address,omitempty"`
	ContactDetails       ContactDetails `json:"contactDetails"`
	OtherInformation     string         `json:"otherInformation,omitempty"`
	LastSaved            *time.Time     `json:"lastSaved,omitempty"`
	Party                Party          `json:"-"`
}

type ContactDetails struct {
	TelephoneHome   string `json:"telephoneHome,omitempty"`
	TelephoneWork   string `json:"telephoneWork,omitempty"`
	TelephoneMobile string `json:"telephoneMobile,omitempty"`
	FaxNumber       string `json:"faxNumber,omitempty"`
	EmailAddress    string `json:"emailAddress,omitempty"`
}

// Party is the sealed variant of an opponent: *Individual or *Organisation.
type Party interface {
	OpponentType() OpponentType
	party()
}

type Individual struct {
	Title                       string       `json:"title,omitempty"`
	FirstName                   string       `json:"firstName,omitempty"`
	MiddleNames                 string       `json:"middleNames,omitempty"`
	Surname                     string       `json:"surname,omitempty"`
	DateOfBirth                 *Date        `json:"dateOfBirth,omitempty"`
	NationalInsuranceNumber     string       `json:"nationalInsuranceNumber,omitempty"`
	LegalAided                  bool         `json:"legalAided"`
	CourtOrderedMeansAssessment bool         `json:"courtOrderedMeansAssessment"`
	EmployerName                string       `json:"employerName,omitempty"`
	EmployerAddress             string       `json:"employerAddress,omitempty"`
	AssessedIncome              money.Amount `json:"assessedIncome"`
	AssessedAssets              money.Amount `json:"assessedAssets"`
	PublicFundingApplied        bool         `json:"publicFundingApplied"`
	CertificateNumber           string       `json:"certificateNumber,omitempty"`
}

type Organisation struct {
	OrganisationName string `json:"organisationName,omitempty"`
	OrganisationType string `json:"organisationType,omitempty"`
	ContactNameRole  string `json:"contactNameRole,omitempty"`
	CurrentlyTrading bool   `json:"currentlyTrading"`
}

func (*Individual) OpponentType() OpponentType   { return OpponentIndividual }
func (*Organisation) OpponentType() OpponentType { return OpponentOrganisation }
func (*Individual) party()                       {}
func (*Organisation) party()                     {}

// Type is the discriminator; an opponent without a party reports the default.
func (o Opponent) Type() OpponentType {
	if o.Party == nil {
		return DefaultOpponentType
	}
	return o.Party.OpponentType()
}

// Individual returns the individual variant or nil.
func (o Opponent) Individual() *Individual {
	p, _ := o.Party.(*Individual)
	return p
}

// Organisation returns the organisation variant or nil.
func (o Opponent) Organisation() *Organisation {
	p, _ := o.Party.(*Organisation)
	return p
}

type opponentJSON struct {
	Type OpponentType `json:"type"`
	opponentFields
	Individual   *Individual   `json:"individual,omitempty"`
	Organisation *Organisation `json:"organisation,omitempty"`
}

type opponentFields Opponent

func (o Opponent) MarshalJSON() ([]byte, error) {
	out := opponentJSON{Type: o.Type(), opponentFields: opponentFields(o)}
	switch p := o.Party.(type) {
	case *Individual:
		out.Individual = p
	case *Organisation:
		out.Organisation = p
	}
	return json.Marshal(out)
}

func (o *Opponent) UnmarshalJSON(data []byte) error {
	var in opponentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*o = Opponent(in.opponentFields)
	switch in.Type {
	case OpponentIndividual:
		if in.Individual == nil {
			in.Individual = &Individual{}
		}
		o.Party = in.Individual
	case OpponentOrganisation, "":
		if in.Organisation == nil {
			in.Organisation = &Organisation{}
		}
		o.Party = in.Organisation
	default:
		return fmt.Errorf("unknown opponent type %q", in.Type)
	}
	return nil
}
