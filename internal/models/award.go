// internal/models/award.go
package models

import (
	"encoding/json"
	"fmt"

	"caab-workers/internal/money"
)

// AwardType is the discriminator for the award variants.
type AwardType string

const (
	AwardTypeCost       AwardType = "COST"
	AwardTypeFinancial  AwardType = "FINANCIAL"
	AwardTypeLand       AwardType = "LAND"
	AwardTypeOtherAsset AwardType = "OTHER_ASSET"
)

// Fixed descriptions for the cost and financial variants.
const (
	AwardDescriptionCost      = "Cost"
	AwardDescriptionFinancial = "Financial"
)

// DefaultAwardType is used when neither the award-type lookup nor the payload decides.
const DefaultAwardType = AwardTypeFinancial

// Award is a court award recorded in the case outcome.
type Award struct {
	EbsID         string        `json:"ebsId,omitempty"`
	AwardCode     string        `json:"awardCode,omitempty"`
	Description   string        `json:"description,omitempty"`
	DateOfOrder   *Date         `json:"dateOfOrder,omitempty"`
	LiableParties []LiableParty `json:"liableParties,omitempty"`
	Recovery      *Recovery     `json:"recovery,omitempty"`
	Detail        AwardDetail   `json:"-"`
}

// AwardDetail is the sealed variant payload: *CostAward, *FinancialAward, *LandAward or
// *OtherAssetAward.
type AwardDetail interface {
	AwardType() AwardType
	awardDetail()
}

type AddressLines struct {
	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	AddressLine3 string `json:"addressLine3,omitempty"`
}

type CostAward struct {
	PreCertificateLscCost     money.Amount `json:"preCertificateLscCost"`
	PreCertificateOtherCost   money.Amount `json:"preCertificateOtherCost"`
	CertificateCostLsc        money.Amount `json:"certificateCostLsc"`
	CertificateCostRateMarket money.Amount `json:"certificateCostRateMarket"`
	TotalCertCostsAwarded     money.Amount `json:"totalCertCostsAwarded"`
	OrderServedDate           *Date        `json:"orderServedDate,omitempty"`
	InterestStartDate         *Date        `json:"interestStartDate,omitempty"`
	ServiceAddress            AddressLines `json:"serviceAddress"`
}

type FinancialAward struct {
	AwardAmount                 money.Amount `json:"awardAmount"`
	OrderServedDate             *Date        `json:"orderServedDate,omitempty"`
	StatutoryChargeExemptReason string       `json:"statutoryChargeExemptReason,omitempty"`
	ServiceAddress              AddressLines `json:"serviceAddress"`
}

type LandAward struct {
	ValuationAmount             money.Amount  `json:"valuationAmount"`
	MortgageAmountDue           money.Amount  `json:"mortgageAmountDue"`
	Equity                      money.Amount  `json:"equity"`
	DisputedPercentage          money.Amount  `json:"disputedPercentage"`
	AwardedPercentage           money.Amount  `json:"awardedPercentage"`
	ValuationCriteria           string        `json:"valuationCriteria,omitempty"`
	ValuationDate               *Date         `json:"valuationDate,omitempty"`
	TitleNumber                 string        `json:"titleNumber,omitempty"`
	RegistrationReference       string        `json:"registrationReference,omitempty"`
	PropertyAddress             AddressLines  `json:"propertyAddress"`
	StatutoryChargeExemptReason string        `json:"statutoryChargeExemptReason,omitempty"`
	TimeRecovery                *TimeRecovery `json:"timeRecovery,omitempty"`
	RecoveryOfAwardTimeRelated  bool          `json:"recoveryOfAwardTimeRelated"`
}

type OtherAssetAward struct {
	ValuationAmount             money.Amount  `json:"valuationAmount"`
	ValuationCriteria           string        `json:"valuationCriteria,omitempty"`
	ValuationDate               *Date         `json:"valuationDate,omitempty"`
	StatutoryChargeExemptReason string        `json:"statutoryChargeExemptReason,omitempty"`
	TimeRecovery                *TimeRecovery `json:"timeRecovery,omitempty"`
	RecoveryOfAwardTimeRelated  bool          `json:"recoveryOfAwardTimeRelated"`
}

func (*CostAward) AwardType() AwardType       { return AwardTypeCost }
func (*FinancialAward) AwardType() AwardType  { return AwardTypeFinancial }
func (*LandAward) AwardType() AwardType       { return AwardTypeLand }
func (*OtherAssetAward) AwardType() AwardType { return AwardTypeOtherAsset }
func (*CostAward) awardDetail()               {}
func (*FinancialAward) awardDetail()          {}
func (*LandAward) awardDetail()               {}
func (*OtherAssetAward) awardDetail()         {}

// RecoveryParty is what one payer has recovered.
type RecoveryParty struct {
	AmountPaidToLsc money.Amount `json:"amountPaidToLsc"`
	RecoveryAmount  money.Amount `json:"recoveryAmount"`
	RecoveryDate    *Date        `json:"recoveryDate,omitempty"`
}

type Recovery struct {
	AwardAmount             money.Amount  `json:"awardAmount"`
	Client                  RecoveryParty `json:"client"`
	Court                   RecoveryParty `json:"court"`
	Solicitor               RecoveryParty `json:"solicitor"`
	OfferedAmount           money.Amount  `json:"offeredAmount"`
	ConditionsOfOffer       string        `json:"conditionsOfOffer,omitempty"`
	OfferDetails            string        `json:"offerDetails,omitempty"`
	LeaveOfCourtRequiredInd bool          `json:"leaveOfCourtRequiredInd"`
	RecoveredAmount         money.Amount  `json:"recoveredAmount"`
	UnrecoveredAmount       money.Amount  `json:"unrecoveredAmount"`
	AwardType               AwardType     `json:"awardType,omitempty"`
	Description             string        `json:"description,omitempty"`
}

type TimeRecovery struct {
	AwardAmount                money.Amount `json:"awardAmount"`
	TriggeringEvent            string       `json:"triggeringEvent,omitempty"`
	EffectiveDate              *Date        `json:"effectiveDate,omitempty"`
	TimeRelatedRecoveryDetails string       `json:"timeRelatedRecoveryDetails,omitempty"`
	AwardType                  AwardType    `json:"awardType,omitempty"`
}

type LiableParty struct {
	OpponentID string    `json:"opponentId"`
	AwardType  AwardType `json:"awardType,omitempty"`
}

// AwardType is the discriminator; an award without detail reports the default.
func (a Award) AwardType() AwardType {
	if a.Detail == nil {
		return DefaultAwardType
	}
	return a.Detail.AwardType()
}

type awardFields Award

type awardJSON struct {
	AwardType AwardType `json:"awardType"`
	awardFields
	Cost       *CostAward       `json:"cost,omitempty"`
	Financial  *FinancialAward  `json:"financial,omitempty"`
	Land       *LandAward       `json:"land,omitempty"`
	OtherAsset *OtherAssetAward `json:"otherAsset,omitempty"`
}

func (a Award) MarshalJSON() ([]byte, error) {
	out := awardJSON{AwardType: a.AwardType(), awardFields: awardFields(a)}
	switch d := a.Detail.(type) {
	case *CostAward:
		out.Cost = d
	case *FinancialAward:
		out.Financial = d
	case *LandAward:
		out.Land = d
	case *OtherAssetAward:
		out.OtherAsset = d
	}
	return json.Marshal(out)
}

func (a *Award) UnmarshalJSON(data []byte) error {
	var in awardJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*a = Award(in.awardFields)
	switch in.AwardType {
	case AwardTypeCost:
		a.Detail = orNew(in.Cost)
	case AwardTypeFinancial, "":
		a.Detail = orNew(in.Financial)
	case AwardTypeLand:
		a.Detail = orNew(in.Land)
	case AwardTypeOtherAsset:
		a.Detail = orNew(in.OtherAsset)
	default:
		return fmt.Errorf("unknown award type %q", in.AwardType)
	}
	return nil
}

func orNew[T any](p *T) *T {
	if p == nil {
		return new(T)
	}
	return p
}
