// internal/mapping/award.go
package mapping

import (
	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"
	"caab-workers/internal/money"
)

// awardVariant decides the variant of one award: the award-type lookup first, then whichever
// sub-record the payload populated, then the default.
func awardVariant(path string, a source.Award, looked models.AwardType, is *issues) models.AwardType {
	if looked != "" {
		if !hasSubRecord(a, looked) {
			is.variant(path+".awardType", a.AwardType, "no "+string(looked)+" sub-record, mapping an empty "+string(looked)+" award")
		}
		return looked
	}
	switch {
	case a.CostAward != nil:
		return models.AwardTypeCost
	case a.FinancialAward != nil:
		return models.AwardTypeFinancial
	case a.LandAward != nil:
		return models.AwardTypeLand
	case a.OtherAsset != nil:
		return models.AwardTypeOtherAsset
	}
	is.variant(path+".awardType", a.AwardType, "no award sub-record, using "+string(models.DefaultAwardType))
	return models.DefaultAwardType
}

func hasSubRecord(a source.Award, t models.AwardType) bool {
	switch t {
	case models.AwardTypeCost:
		return a.CostAward != nil
	case models.AwardTypeLand:
		return a.LandAward != nil
	case models.AwardTypeOtherAsset:
		return a.OtherAsset != nil
	default:
		return a.FinancialAward != nil
	}
}

func toAward(path string, a source.Award, looked models.AwardType, is *issues) models.Award {
	out := models.Award{EbsID: a.AwardID, AwardCode: a.AwardType}

	switch awardVariant(path, a, looked, is) {
	case models.AwardTypeCost:
		ca := deref(a.CostAward)
		out.Description = models.AwardDescriptionCost
		out.DateOfOrder = ca.OrderDate
		out.LiableParties = toLiableParties(ca.LiableParties)
		out.Recovery = toRecovery(ca.Recovery)
		out.Detail = &models.CostAward{
			PreCertificateLscCost:     money.FromPtr(ca.PreCertificateAwardLsc),
			PreCertificateOtherCost:   money.FromPtr(ca.PreCertificateAwardOth),
			CertificateCostLsc:        money.FromPtr(ca.CertificateCostRateLsc),
			CertificateCostRateMarket: money.FromPtr(ca.CertificateCostRateMarket),
			OrderServedDate:           ca.OrderDateServed,
			InterestStartDate:         ca.InterestAwardedStartDate,
			ServiceAddress:            toAddressLines(ca.ServiceAddress),
		}

	case models.AwardTypeLand:
		la := deref(a.LandAward)
		valuation := deref(la.Valuation)
		out.DateOfOrder = la.OrderDate
		out.LiableParties = toLiableParties(la.LiableParties)
		out.Recovery = toRecovery(la.Recovery)
		out.Detail = &models.LandAward{
			ValuationAmount:             money.FromPtr(valuation.Amount),
			MortgageAmountDue:           money.FromPtr(la.MortgageAmountDue),
			DisputedPercentage:          money.FromPtr(la.DisputedPercentage),
			AwardedPercentage:           money.FromPtr(la.AwardedPercentage),
			ValuationCriteria:           valuation.Criteria,
			ValuationDate:               valuation.Date,
			TitleNumber:                 la.TitleNo,
			RegistrationReference:       la.RegistrationRef,
			PropertyAddress:             toAddressLines(la.PropertyAddress),
			StatutoryChargeExemptReason: la.StatChargeExemptReason,
			TimeRecovery:                toTimeRecovery(la.TimeRelatedAward),
		}

	case models.AwardTypeOtherAsset:
		oa := deref(a.OtherAsset)
		valuation := deref(oa.Valuation)
		out.Description = oa.Description
		out.DateOfOrder = oa.OrderDate
		out.LiableParties = toLiableParties(oa.LiableParties)
		out.Recovery = toRecovery(oa.Recovery)
		out.Detail = &models.OtherAssetAward{
			ValuationAmount:             money.FromPtr(valuation.Amount),
			ValuationCriteria:           valuation.Criteria,
			ValuationDate:               valuation.Date,
			StatutoryChargeExemptReason: oa.StatChargeExemptReason,
			TimeRecovery:                toTimeRecovery(oa.TimeRelatedAward),
		}

	default:
		fa := deref(a.FinancialAward)
		out.Description = models.AwardDescriptionFinancial
		out.DateOfOrder = fa.OrderDate
		out.LiableParties = toLiableParties(fa.LiableParties)
		out.Recovery = toRecovery(fa.Recovery)
		out.Detail = &models.FinancialAward{
			AwardAmount:                 money.FromPtr(fa.Amount),
			OrderServedDate:             fa.OrderDateServed,
			StatutoryChargeExemptReason: fa.StatutoryChangeReason,
			ServiceAddress:              toAddressLines(fa.ServiceAddress),
		}
	}
	return out
}

func toAddressLines(a *source.ServiceAddress) models.AddressLines {
	if a == nil {
		return models.AddressLines{}
	}
	return models.AddressLines{AddressLine1: a.AddressLine1, AddressLine2: a.AddressLine2, AddressLine3: a.AddressLine3}
}

func toLiableParties(ids []string) []models.LiableParty {
	var out []models.LiableParty
	for _, id := range ids {
		out = append(out, models.LiableParty{OpponentID: id})
	}
	return out
}

func toRecoveryParty(r *source.RecoveryAmount) models.RecoveryParty {
	if r == nil {
		return models.RecoveryParty{}
	}
	return models.RecoveryParty{
		AmountPaidToLsc: money.FromPtr(r.PaidToLsc),
		RecoveryAmount:  money.FromPtr(r.Amount),
		RecoveryDate:    r.DateReceived,
	}
}

func toRecovery(r *source.Recovery) *models.Recovery {
	if r == nil {
		return nil
	}
	recovered := deref(r.RecoveredAmount)
	offered := deref(r.OfferedAmount)
	return &models.Recovery{
		AwardAmount:             money.FromPtr(r.AwardValue),
		Client:                  toRecoveryParty(recovered.Client),
		Court:                   toRecoveryParty(recovered.Court),
		Solicitor:               toRecoveryParty(recovered.Solicitor),
		OfferedAmount:           money.FromPtr(offered.Amount),
		ConditionsOfOffer:       offered.ConditionsOfOffer,
		OfferDetails:            r.OfferDetails,
		LeaveOfCourtRequiredInd: deref(r.LeaveOfCourtReqdInd),
	}
}

func toTimeRecovery(t *source.TimeRelatedAward) *models.TimeRecovery {
	if t == nil {
		return nil
	}
	return &models.TimeRecovery{
		AwardAmount:                money.FromPtr(t.Amount),
		TriggeringEvent:            t.AwardTriggeringEvent,
		EffectiveDate:              t.AwardDate,
		TimeRelatedRecoveryDetails: t.OtherDetails,
	}
}
