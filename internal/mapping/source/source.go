// Package source holds the upstream case payload shapes that both integration surfaces share.
//
// The two schemas agree on most of the case. The parts they spell differently (provider user,
// other parties, assessments, record history) are declared here in a neutral form and decoded by
// the per-schema packages, which convert their literal wire types into these.
package source

import (
	"time"

	"caab-workers/internal/models"

	"github.com/shopspring/decimal"
)

// System names an upstream integration surface.
type System string

const (
	SystemEBS System = "EBS"
	SystemSOA System = "SOA"
)

// CaseCore is the top level of a case payload minus the drifted parts.
type CaseCore struct {
	CaseReferenceNumber string           `json:"caseReferenceNumber"`
	CertificateType     string           `json:"certificateType,omitempty"`
	CertificateDate     *models.Date     `json:"certificateDate,omitempty"`
	PreCertificateCosts *decimal.Decimal `json:"preCertificateCosts,omitempty"`
	LegalHelpCosts      *decimal.Decimal `json:"legalHelpCosts,omitempty"`
	UndertakingAmount   *decimal.Decimal `json:"undertakingAmount,omitempty"`
	CaseStatus          *CaseStatus      `json:"caseStatus,omitempty"`
	DischargeStatus     *DischargeStatus `json:"dischargeStatus,omitempty"`
	AvailableFunctions  []string         `json:"availableFunctions,omitempty"`
	LinkedCases         []LinkedCase     `json:"linkedCases,omitempty"`
	PriorAuthorities    []PriorAuthority `json:"priorAuthorities,omitempty"`
	Awards              []Award          `json:"awards,omitempty"`
}

type CaseStatus struct {
	ActualCaseStatus  string `json:"actualCaseStatus,omitempty"`
	DisplayCaseStatus string `json:"displayCaseStatus,omitempty"`
}

type DischargeStatus struct {
	Reason               string `json:"reason,omitempty"`
	OtherDetails         string `json:"otherDetails,omitempty"`
	ClientContinuePvtInd *bool  `json:"clientContinuePvtInd,omitempty"`
}

// ApplicationCore is the application detail block minus the drifted parts.
type ApplicationCore struct {
	Client                   *Client        `json:"client,omitempty"`
	PreferredAddress         string         `json:"preferredAddress,omitempty"`
	CorrespondenceAddress    *Address       `json:"correspondenceAddress,omitempty"`
	CategoryOfLaw            *CategoryOfLaw `json:"categoryOfLaw,omitempty"`
	ApplicationAmendmentType string         `json:"applicationAmendmentType,omitempty"`
	DevolvedPowersDate       *models.Date   `json:"devolvedPowersDate,omitempty"`
	LarDetails               *LarDetails    `json:"larDetails,omitempty"`
	Proceedings              []Proceeding   `json:"proceedings,omitempty"`
}

type Client struct {
	ClientReferenceNumber string `json:"clientReferenceNumber"`
	FirstName             string `json:"firstName,omitempty"`
	Surname               string `json:"surname,omitempty"`
}

type Address struct {
	AddressID    string `json:"addressId,omitempty"`
	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	AddressLine3 string `json:"addressLine3,omitempty"`
	AddressLine4 string `json:"addressLine4,omitempty"`
	CareOfName   string `json:"careOfName,omitempty"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
	County       string `json:"county,omitempty"`
	House        string `json:"house,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"`
}

type CategoryOfLaw struct {
	CategoryOfLawCode        string           `json:"categoryOfLawCode,omitempty"`
	CategoryOfLawDescription string           `json:"categoryOfLawDescription,omitempty"`
	GrantedAmount            *decimal.Decimal `json:"grantedAmount,omitempty"`
	RequestedAmount          *decimal.Decimal `json:"requestedAmount,omitempty"`
	TotalPaidToDate          *decimal.Decimal `json:"totalPaidToDate,omitempty"`
	CostLimitations          []CostLimitation `json:"costLimitations,omitempty"`
}

type CostLimitation struct {
	CostLimitID         string           `json:"costLimitId,omitempty"`
	BillingProviderID   string           `json:"billingProviderId,omitempty"`
	BillingProviderName string           `json:"billingProviderName,omitempty"`
	Amount              *decimal.Decimal `json:"amount,omitempty"`
	PaidToDate          *decimal.Decimal `json:"paidToDate,omitempty"`
}

type LarDetails struct {
	LarScopeFlag        *bool  `json:"larScopeFlag,omitempty"`
	LegalHelpUfn        string `json:"legalHelpUfn,omitempty"`
	LegalHelpOfficeCode string `json:"legalHelpOfficeCode,omitempty"`
}

type Proceeding struct {
	ProceedingCaseID        string             `json:"proceedingCaseId,omitempty"`
	Status                  string             `json:"status,omitempty"`
	LeadProceedingIndicator *bool              `json:"leadProceedingIndicator,omitempty"`
	ProceedingType          string             `json:"proceedingType,omitempty"`
	ProceedingDescription   string             `json:"proceedingDescription,omitempty"`
	MatterType              string             `json:"matterType,omitempty"`
	LevelOfService          string             `json:"levelOfService,omitempty"`
	ClientInvolvementType   string             `json:"clientInvolvementType,omitempty"`
	OrderType               string             `json:"orderType,omitempty"`
	ScopeLimitations        []ScopeLimitation  `json:"scopeLimitations,omitempty"`
	Outcome                 *ProceedingOutcome `json:"outcome,omitempty"`
}

type ScopeLimitation struct {
	ScopeLimitationID       string `json:"scopeLimitationId,omitempty"`
	ScopeLimitation         string `json:"scopeLimitation,omitempty"`
	ScopeLimitationWording  string `json:"scopeLimitationWording,omitempty"`
	DelegatedFunctionsApply *bool  `json:"delegatedFunctionsApply,omitempty"`
}

type ProceedingOutcome struct {
	AltAcceptanceReason    string       `json:"altAcceptanceReason,omitempty"`
	AltDisputeResolution   string       `json:"altDisputeResolution,omitempty"`
	CourtCode              string       `json:"courtCode,omitempty"`
	FinalWorkDate          *models.Date `json:"finalWorkDate,omitempty"`
	ResolutionMethod       string       `json:"resolutionMethod,omitempty"`
	Result                 string       `json:"result,omitempty"`
	AdditionalResultInfo   string       `json:"additionalResultInfo,omitempty"`
	StageEnd               string       `json:"stageEnd,omitempty"`
	WiderBenefits          string       `json:"widerBenefits,omitempty"`
	OutcomeCourtCaseNumber string       `json:"outcomeCourtCaseNumber,omitempty"`
}

type LinkedCase struct {
	CaseReferenceNumber     string `json:"caseReferenceNumber"`
	CategoryOfLawDesc       string `json:"categoryOfLawDesc,omitempty"`
	ProviderReferenceNumber string `json:"providerReferenceNumber,omitempty"`
	FeeEarnerName           string `json:"feeEarnerName,omitempty"`
	CaseStatus              string `json:"caseStatus,omitempty"`
	LinkType                string `json:"linkType,omitempty"`
}

type PriorAuthority struct {
	PriorAuthorityType string                    `json:"priorAuthorityType,omitempty"`
	Description        string                    `json:"description,omitempty"`
	ReasonForRequest   string                    `json:"reasonForRequest,omitempty"`
	RequestAmount      *decimal.Decimal          `json:"requestAmount,omitempty"`
	DecisionStatus     string                    `json:"decisionStatus,omitempty"`
	AssessedAmount     *decimal.Decimal          `json:"assessedAmount,omitempty"`
	Details            []PriorAuthorityAttribute `json:"details,omitempty"`
}

type PriorAuthorityAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Award carries one populated sub-record; AwardType is the upstream award code.
type Award struct {
	AwardID        string          `json:"awardId,omitempty"`
	AwardType      string          `json:"awardType,omitempty"`
	CostAward      *CostAward      `json:"costAward,omitempty"`
	FinancialAward *FinancialAward `json:"financialAward,omitempty"`
	LandAward      *LandAward      `json:"landAward,omitempty"`
	OtherAsset     *OtherAsset     `json:"otherAsset,omitempty"`
}

type ServiceAddress struct {
	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	AddressLine3 string `json:"addressLine3,omitempty"`
}

type CostAward struct {
	OrderDate                 *models.Date     `json:"orderDate,omitempty"`
	PreCertificateAwardLsc    *decimal.Decimal `json:"preCertificateAwardLsc,omitempty"`
	PreCertificateAwardOth    *decimal.Decimal `json:"preCertificateAwardOth,omitempty"`
	CertificateCostRateLsc    *decimal.Decimal `json:"certificateCostRateLsc,omitempty"`
	CertificateCostRateMarket *decimal.Decimal `json:"certificateCostRateMarket,omitempty"`
	OrderDateServed           *models.Date     `json:"orderDateServed,omitempty"`
	InterestAwardedStartDate  *models.Date     `json:"interestAwardedStartDate,omitempty"`
	ServiceAddress            *ServiceAddress  `json:"serviceAddress,omitempty"`
	Recovery                  *Recovery        `json:"recovery,omitempty"`
	LiableParties             []string         `json:"liableParties,omitempty"`
}

type FinancialAward struct {
	OrderDate             *models.Date     `json:"orderDate,omitempty"`
	Amount                *decimal.Decimal `json:"amount,omitempty"`
	OrderDateServed       *models.Date     `json:"orderDateServed,omitempty"`
	StatutoryChangeReason string           `json:"statutoryChangeReason,omitempty"`
	ServiceAddress        *ServiceAddress  `json:"serviceAddress,omitempty"`
	Recovery              *Recovery        `json:"recovery,omitempty"`
	LiableParties         []string         `json:"liableParties,omitempty"`
}

type Valuation struct {
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Criteria string           `json:"criteria,omitempty"`
	Date     *models.Date     `json:"date,omitempty"`
}

type TimeRelatedAward struct {
	Amount               *decimal.Decimal `json:"amount,omitempty"`
	AwardTriggeringEvent string           `json:"awardTriggeringEvent,omitempty"`
	AwardDate            *models.Date     `json:"awardDate,omitempty"`
	OtherDetails         string           `json:"otherDetails,omitempty"`
}

type LandAward struct {
	OrderDate              *models.Date      `json:"orderDate,omitempty"`
	Valuation              *Valuation        `json:"valuation,omitempty"`
	PropertyAddress        *ServiceAddress   `json:"propertyAddress,omitempty"`
	DisputedPercentage     *decimal.Decimal  `json:"disputedPercentage,omitempty"`
	AwardedPercentage      *decimal.Decimal  `json:"awardedPercentage,omitempty"`
	MortgageAmountDue      *decimal.Decimal  `json:"mortgageAmountDue,omitempty"`
	TitleNo                string            `json:"titleNo,omitempty"`
	RegistrationRef        string            `json:"registrationRef,omitempty"`
	StatChargeExemptReason string            `json:"statChargeExemptReason,omitempty"`
	TimeRelatedAward       *TimeRelatedAward `json:"timeRelatedAward,omitempty"`
	Recovery               *Recovery         `json:"recovery,omitempty"`
	LiableParties          []string          `json:"liableParties,omitempty"`
}

type OtherAsset struct {
	OrderDate              *models.Date      `json:"orderDate,omitempty"`
	Description            string            `json:"description,omitempty"`
	Valuation              *Valuation        `json:"valuation,omitempty"`
	StatChargeExemptReason string            `json:"statChargeExemptReason,omitempty"`
	TimeRelatedAward       *TimeRelatedAward `json:"timeRelatedAward,omitempty"`
	Recovery               *Recovery         `json:"recovery,omitempty"`
	LiableParties          []string          `json:"liableParties,omitempty"`
}

type RecoveryAmount struct {
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	PaidToLsc    *decimal.Decimal `json:"paidToLsc,omitempty"`
	DateReceived *models.Date     `json:"dateReceived,omitempty"`
}

type RecoveredAmount struct {
	Client    *RecoveryAmount `json:"client,omitempty"`
	Court     *RecoveryAmount `json:"court,omitempty"`
	Solicitor *RecoveryAmount `json:"solicitor,omitempty"`
}

type OfferedAmount struct {
	Amount            *decimal.Decimal `json:"amount,omitempty"`
	ConditionsOfOffer string           `json:"conditionsOfOffer,omitempty"`
}

type Recovery struct {
	AwardValue          *decimal.Decimal `json:"awardValue,omitempty"`
	RecoveredAmount     *RecoveredAmount `json:"recoveredAmount,omitempty"`
	OfferedAmount       *OfferedAmount   `json:"offeredAmount,omitempty"`
	OfferDetails        string           `json:"offerDetails,omitempty"`
	LeaveOfCourtReqdInd *bool            `json:"leaveOfCourtReqdInd,omitempty"`
}

// Neutral forms of the drifted parts. Field names match the per-schema wire types so those
// convert with a plain struct conversion.

type User struct {
	LoginID  string
	Username string
	UserType string
}

type ProviderDetails struct {
	ProviderCaseReferenceNumber string
	ProviderFirmID              int
	ProviderOfficeID            int
	ContactUserID               User
	SupervisorContactID         string
	FeeEarnerContactID          string
}

type Name struct {
	Title      string `json:"title,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	MiddleName string `json:"middleName,omitempty"`
	Surname    string `json:"surname,omitempty"`
}

type ContactDetails struct {
	TelephoneHome string `json:"telephoneHome,omitempty"`
	TelephoneWork string `json:"telephoneWork,omitempty"`
	MobileNumber  string `json:"mobileNumber,omitempty"`
	Fax           string `json:"fax,omitempty"`
	EmailAddress  string `json:"emailAddress,omitempty"`
}

type Person struct {
	Name                        *Name
	Address                     *Address
	ContactDetails              *ContactDetails
	DateOfBirth                 *models.Date
	NiNumber                    string
	RelationToCase              string
	RelationToClient            string
	PartyLegalAidedInd          *bool
	CourtOrderedMeansAssessment *bool
	OrganisationName            string
	OrganisationAddress         string
	AssessedIncome              *decimal.Decimal
	AssessedAssets              *decimal.Decimal
	PublicFundingAppliedInd     *bool
	CertificateNumber           string
	OtherInformation            string
}

type Organisation struct {
	OrganisationName string
	OrganisationType string
	ContactName      string
	Address          *Address
	ContactDetails   *ContactDetails
	RelationToCase   string
	RelationToClient string
	CurrentlyTrading *bool
	OtherInformation string
}

// OtherParty is an opponent as the upstream sends it; normally exactly one of Person and
// Organisation is set.
type OtherParty struct {
	OtherPartyID string
	Person       *Person
	Organisation *Organisation
}

type RecordHistory struct {
	DateCreated     *time.Time
	DateLastUpdated *time.Time
	CreatedBy       User
	LastUpdatedBy   User
}

// AssessmentResult is a rules-engine result as attached to a case.
type AssessmentResult struct {
	Date              *time.Time         `json:"date,omitempty"`
	AssessmentID      string             `json:"assessmentId,omitempty"`
	DefaultInd        *bool              `json:"defaultInd,omitempty"`
	Results           []Goal             `json:"results,omitempty"`
	AssessmentDetails []AssessmentScreen `json:"assessmentDetails,omitempty"`
}

type Goal struct {
	Attribute      string `json:"attribute"`
	AttributeValue string `json:"attributeValue"`
}

type AssessmentScreen struct {
	ScreenName string             `json:"screenName"`
	Entity     []AssessmentEntity `json:"entity,omitempty"`
}

type AssessmentEntity struct {
	SequenceNumber int                  `json:"sequenceNumber"`
	EntityName     string               `json:"entityName"`
	Instances      []AssessmentInstance `json:"instances,omitempty"`
}

type AssessmentInstance struct {
	InstanceLabel string                `json:"instanceLabel"`
	Attributes    []AssessmentAttribute `json:"attributes,omitempty"`
}

type AssessmentAttribute struct {
	Attribute      string `json:"attribute"`
	ResponseType   string `json:"responseType"`
	ResponseText   string `json:"responseText,omitempty"`
	ResponseValue  string `json:"responseValue"`
	UserDefinedInd bool   `json:"userDefinedInd"`
}
