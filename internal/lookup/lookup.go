// Package lookup resolves reference-data codes into display values and provider details.
package lookup

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotFound means the code is unknown to the reference data. Callers fall back to the raw code.
var ErrNotFound = errors.New("lookup: not found")

// Domain names a common-value list.
type Domain string

const (
	DomainApplicationType      Domain = "XXCCMS_APP_AMEND_TYPES"
	DomainCategoryOfLaw        Domain = "XXCCMS_CATEGORY_OF_LAW"
	DomainContactTitle         Domain = "CONTACT_TITLE"
	DomainLevelOfService       Domain = "XXCCMS_LEVEL_OF_SERVICE"
	DomainMatterType           Domain = "XXCCMS_MATTER_TYPE"
	DomainClientInvolvement    Domain = "XXCCMS_CLIENT_INVOLVE_TYPE"
	DomainScopeLimitation      Domain = "XXCCMS_SCOPE_LIMITATION"
	DomainProceedingStatus     Domain = "XXCCMS_PROCEEDING_DISP_STATUS"
	DomainProceedingType       Domain = "XXCCMS_PROCEEDING"
	DomainCourt                Domain = "XXCCMS_COURTS"
	DomainOutcomeResult        Domain = "XXCCMS_OUTCOME_RESULT"
	DomainStageEnd             Domain = "XXCCMS_STAGE_END"
	DomainAwardType            Domain = "XXCCMS_AWARD_TYPE"
	DomainRelationshipToClient Domain = "XXCCMS_REL_TO_CLIENT"
)

// Attribute keys carried on some domains.
const (
	AttrLarScope  = "larScope"  // DomainProceedingType
	AttrAwardType = "awardType" // DomainAwardType: COST, FINANCIAL, LAND, OTHER_ASSET
)

// Value is one entry of a common-value list.
type Value struct {
	Code        string            `json:"code"`
	Description string            `json:"description"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

type Contact struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Office struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	FeeEarners []Contact `json:"feeEarners"`
}

type Provider struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Offices []Office `json:"offices"`
}

// Office returns the provider office with the given id.
func (p Provider) Office(id int) (Office, bool) {
	for _, o := range p.Offices {
		if o.ID == id {
			return o, true
		}
	}
	return Office{}, false
}

// FeeEarner returns the office contact with the given id.
func (o Office) FeeEarner(id int) (Contact, bool) {
	for _, c := range o.FeeEarners {
		if c.ID == id {
			return c, true
		}
	}
	return Contact{}, false
}

type PriorAuthorityType struct {
	Code          string               `json:"code"`
	Description   string               `json:"description"`
	ValueRequired bool                 `json:"valueRequired"`
	Items         []PriorAuthorityItem `json:"items"`
}

// PriorAuthorityItem describes one question of a prior-authority type. LOV items name the
// common-value domain holding their answers in LovCode.
type PriorAuthorityItem struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	DataType    string `json:"dataType"`
	LovCode     string `json:"lovCode,omitempty"`
	Mandatory   bool   `json:"mandatory"`
}

const DataTypeLOV = "LOV"

// ScopeLimitationQuery selects the cost limitation for one scope limitation of a proceeding.
type ScopeLimitationQuery struct {
	CategoryOfLaw   string `json:"categoryOfLaw"`
	MatterType      string `json:"matterType"`
	ProceedingType  string `json:"proceedingType"`
	LevelOfService  string `json:"levelOfService"`
	ScopeLimitation string `json:"scopeLimitation"`
	Emergency       bool   `json:"emergency"`
}

// Resolver is the reference-data boundary of the mapping engine.
type Resolver interface {
	Value(ctx context.Context, domain Domain, code string) (Value, error)
	Provider(ctx context.Context, id int) (Provider, error)
	PriorAuthorityType(ctx context.Context, code string) (PriorAuthorityType, error)
	// CostLimitation returns the emergency limit when q.Emergency is set.
	CostLimitation(ctx context.Context, q ScopeLimitationQuery) (decimal.Decimal, error)
}
