// internal/models/application.go
package models

import (
	"strings"
	"time"

	"caab-workers/internal/money"
)

// Application amendment types that carry devolved powers.
const (
	AppTypeEmergencyDevolvedPowers   = "DP"
	AppTypeSubstantiveDevolvedPowers = "SUBDP"
	AppTypeEmergency                 = "EMER"
	AppTypeSubstantive               = "SUBSTANTIVE"
	AppTypeExceptionalCaseFunding    = "ECF"
)

// Application is the canonical case aggregate. It is the job-variable and persistence contract.
type Application struct {
	CaseReferenceNumber        string           `json:"caseReferenceNumber"`
	Certificate                *DisplayValue    `json:"certificate,omitempty"`
	ApplicationType            ApplicationType  `json:"applicationType"`
	DateCreated                *time.Time       `json:"dateCreated,omitempty"`
	ProviderDetails            ProviderDetails  `json:"providerDetails"`
	CorrespondenceAddress      *Address         `json:"correspondenceAddress,omitempty"`
	Client                     Client           `json:"client"`
	CategoryOfLaw              DisplayValue     `json:"categoryOfLaw"`
	Costs                      CostStructure    `json:"costs"`
	LarScopeFlag               bool             `json:"larScopeFlag"`
	Status                     DisplayValue     `json:"status"`
	Proceedings                []Proceeding     `json:"proceedings"`
	AmendmentProceedingsInEbs  []Proceeding     `json:"amendmentProceedingsInEbs,omitempty"`
	Opponents                  []Opponent       `json:"opponents"`
	PriorAuthorities           []PriorAuthority `json:"priorAuthorities,omitempty"`
	LinkedCases                []LinkedCase     `json:"linkedCases,omitempty"`
	CaseOutcome                *CaseOutcome     `json:"caseOutcome,omitempty"`
	Submitted                  bool             `json:"submitted"`
	Amendment                  bool             `json:"amendment"`
	MeritsReassessmentRequired bool             `json:"meritsReassessmentRequired"`
	LeadProceedingChanged      bool             `json:"leadProceedingChanged"`
	CostLimit                  CostLimit        `json:"costLimit"`
	AuditTrail                 *AuditTrail      `json:"auditTrail,omitempty"`
}

// DisplayValue pairs a code with its human-readable description.
type DisplayValue struct {
	ID           string `json:"id"`
	DisplayValue string `json:"displayValue"`
}

type IntDisplayValue struct {
	ID           int    `json:"id"`
	DisplayValue string `json:"displayValue"`
}

type ApplicationType struct {
	ID             string          `json:"id"`
	DisplayValue   string          `json:"displayValue"`
	DevolvedPowers *DevolvedPowers `json:"devolvedPowers,omitempty"`
}

type DevolvedPowers struct {
	Used         bool   `json:"used"`
	DateUsed     *Date  `json:"dateUsed,omitempty"`
	ContractFlag string `json:"contractFlag,omitempty"`
}

type ProviderDetails struct {
	Provider              IntDisplayValue `json:"provider"`
	Office                IntDisplayValue `json:"office"`
	ProviderContact       DisplayValue    `json:"providerContact"`
	Supervisor            DisplayValue    `json:"supervisor"`
	FeeEarner             DisplayValue    `json:"feeEarner"`
	ProviderCaseReference string          `json:"providerCaseReference,omitempty"`
}

type Client struct {
	Reference string `json:"reference"`
	FirstName string `json:"firstName,omitempty"`
	Surname   string `json:"surname,omitempty"`
}

type Address struct {
	AddressLine1      string `json:"addressLine1,omitempty"`
	AddressLine2      string `json:"addressLine2,omitempty"`
	City              string `json:"city,omitempty"`
	County            string `json:"county,omitempty"`
	Country           string `json:"country,omitempty"`
	HouseNameOrNumber string `json:"houseNameOrNumber,omitempty"`
	CareOf            string `json:"careOf,omitempty"`
	Postcode          string `json:"postcode,omitempty"`
	NoFixedAbode      bool   `json:"noFixedAbode"`
	PreferredAddress  string `json:"preferredAddress,omitempty"`
}

// CostStructure holds the case's cost limitation. RequestedCostLimitation is nil until derived.
type CostStructure struct {
	DefaultCostLimitation       money.Amount  `json:"defaultCostLimitation"`
	RequestedCostLimitation     *money.Amount `json:"requestedCostLimitation,omitempty"`
	GrantedCostLimitation       money.Amount  `json:"grantedCostLimitation"`
	CurrentProviderBilledAmount money.Amount  `json:"currentProviderBilledAmount"`
	CostEntries                 []CostEntry   `json:"costEntries,omitempty"`
}

type CostEntry struct {
	EbsID          string       `json:"ebsId,omitempty"`
	LscResourceID  string       `json:"lscResourceId,omitempty"`
	ResourceName   string       `json:"resourceName,omitempty"`
	RequestedCosts money.Amount `json:"requestedCosts"`
	AmountBilled   money.Amount `json:"amountBilled"`
	NewEntry       bool         `json:"newEntry"`
}

type CostLimit struct {
	Changed             bool          `json:"changed"`
	LimitAtTimeOfMerits *money.Amount `json:"limitAtTimeOfMerits,omitempty"`
}

type AuditTrail struct {
	Created     *time.Time `json:"created,omitempty"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	LastSaved   *time.Time `json:"lastSaved,omitempty"`
	LastSavedBy string     `json:"lastSavedBy,omitempty"`
}

type PriorAuthority struct {
	Status          string              `json:"status,omitempty"`
	Summary         string              `json:"summary,omitempty"`
	Type            DisplayValue        `json:"type"`
	Justification   string              `json:"justification,omitempty"`
	AmountRequested money.Amount        `json:"amountRequested"`
	ValueRequired   bool                `json:"valueRequired"`
	Items           []ReferenceDataItem `json:"items,omitempty"`
}

// ReferenceDataItem is one answered prior-authority question.
type ReferenceDataItem struct {
	Code      DisplayValue `json:"code"`
	Type      string       `json:"type,omitempty"`
	LovLookUp string       `json:"lovLookUp,omitempty"`
	Mandatory bool         `json:"mandatory"`
	Value     DisplayValue `json:"value"`
}

type LinkedCase struct {
	LscCaseReference      string `json:"lscCaseReference"`
	CategoryOfLaw         string `json:"categoryOfLaw,omitempty"`
	ProviderCaseReference string `json:"providerCaseReference,omitempty"`
	FeeEarner             string `json:"feeEarner,omitempty"`
	Status                string `json:"status,omitempty"`
	RelationToCase        string `json:"relationToCase,omitempty"`
}

type CaseOutcome struct {
	LegalCosts        money.Amount `json:"legalCosts"`
	OfficeCode        string       `json:"officeCode,omitempty"`
	UniqueFileNo      string       `json:"uniqueFileNo,omitempty"`
	OtherDetails      string       `json:"otherDetails,omitempty"`
	DischargeReason   string       `json:"dischargeReason,omitempty"`
	ClientContinueInd bool         `json:"clientContinueInd"`
	Awards            []Award      `json:"awards,omitempty"`
}

// DevolvedPowersApplicable reports whether an amendment type carries a devolved-powers date.
func DevolvedPowersApplicable(appTypeID string) bool {
	return strings.EqualFold(appTypeID, AppTypeEmergencyDevolvedPowers) ||
		strings.EqualFold(appTypeID, AppTypeSubstantiveDevolvedPowers)
}

// LeadProceeding returns the lead proceeding, if any.
func (a *Application) LeadProceeding() *Proceeding {
	for i := range a.Proceedings {
		if a.Proceedings[i].LeadProceedingInd {
			return &a.Proceedings[i]
		}
	}
	return nil
}
