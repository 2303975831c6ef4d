// Package derive computes the canonical fields that are functions of other fields.
//
// Every rule takes a value and returns a new one, never touching its input, and applying a rule
// twice gives the same result as applying it once. Apply runs all of them over an Application.
package derive

import (
	"caab-workers/internal/models"
	"caab-workers/internal/money"
)

// Apply returns app with every derived field computed. Records that a rule changes are copied,
// so app itself is left as it was.
func Apply(app models.Application) models.Application {
	app.Costs = RequestedCostDefault(DefaultCostLimitation(app.Costs, app.Proceedings))
	app.ApplicationType = DevolvedPowersDate(app.ApplicationType)

	if app.CaseOutcome != nil {
		outcome := *app.CaseOutcome
		if outcome.Awards != nil {
			awards := make([]models.Award, len(outcome.Awards))
			for i, a := range outcome.Awards {
				awards[i] = Award(a)
			}
			outcome.Awards = awards
		}
		app.CaseOutcome = &outcome
	}
	return app
}

// DefaultCostLimitation is the largest cost limitation of the case's proceedings. Without
// proceedings the structure is returned unchanged.
func DefaultCostLimitation(c models.CostStructure, proceedings []models.Proceeding) models.CostStructure {
	if len(proceedings) == 0 {
		return c
	}
	limit := money.Zero
	for _, p := range proceedings {
		limit = money.Max(limit, p.CostLimitation)
	}
	c.DefaultCostLimitation = limit
	return c
}

// RequestedCostDefault sets the requested cost limitation to the default when none was requested.
func RequestedCostDefault(c models.CostStructure) models.CostStructure {
	if c.RequestedCostLimitation == nil {
		requested := c.DefaultCostLimitation
		c.RequestedCostLimitation = &requested
	}
	return c
}

// DevolvedPowersDate keeps the date only for the devolved-powers application types.
func DevolvedPowersDate(t models.ApplicationType) models.ApplicationType {
	if t.DevolvedPowers == nil || t.DevolvedPowers.DateUsed == nil || models.DevolvedPowersApplicable(t.ID) {
		return t
	}
	dp := *t.DevolvedPowers
	dp.DateUsed = nil
	t.DevolvedPowers = &dp
	return t
}

// Award applies the variant rules and then propagates the award type to the recovery and the
// liable parties.
func Award(a models.Award) models.Award {
	switch d := a.Detail.(type) {
	case *models.CostAward:
		c := CostTotal(*d)
		a.Detail = &c
	case *models.LandAward:
		l := LandTimeRecovery(LandEquity(*d))
		a.Detail = &l
	case *models.OtherAssetAward:
		o := OtherAssetTimeRecovery(*d)
		a.Detail = &o
	}
	if a.Recovery != nil {
		r := RecoveryAwardType(RecoveryTotals(*a.Recovery), a)
		a.Recovery = &r
	}
	a.LiableParties = LiablePartyAwardType(a.LiableParties, a.AwardType())
	return a
}

// CostTotal: totalCertCostsAwarded = certificateCostLsc + certificateCostRateMarket.
func CostTotal(c models.CostAward) models.CostAward {
	c.TotalCertCostsAwarded = c.CertificateCostLsc.Add(c.CertificateCostRateMarket)
	return c
}

// LandEquity: equity = valuationAmount - mortgageAmountDue.
func LandEquity(l models.LandAward) models.LandAward {
	l.Equity = l.ValuationAmount.Sub(l.MortgageAmountDue)
	return l
}

// RecoveryTotals sums what the client, the court and the solicitor recovered and what remains.
func RecoveryTotals(r models.Recovery) models.Recovery {
	r.RecoveredAmount = r.Client.RecoveryAmount.Add(r.Court.RecoveryAmount).Add(r.Solicitor.RecoveryAmount)
	r.UnrecoveredAmount = r.AwardAmount.Sub(r.RecoveredAmount)
	return r
}

// RecoveryAwardType copies the award's type and description onto its recovery.
func RecoveryAwardType(r models.Recovery, a models.Award) models.Recovery {
	r.AwardType = a.AwardType()
	r.Description = a.Description
	return r
}

func LiablePartyAwardType(parties []models.LiableParty, t models.AwardType) []models.LiableParty {
	if parties == nil {
		return nil
	}
	out := make([]models.LiableParty, len(parties))
	for i, p := range parties {
		p.AwardType = t
		out[i] = p
	}
	return out
}

func LandTimeRecovery(l models.LandAward) models.LandAward {
	l.TimeRecovery, l.RecoveryOfAwardTimeRelated = timeRecovery(l.TimeRecovery, models.AwardTypeLand)
	return l
}

func OtherAssetTimeRecovery(o models.OtherAssetAward) models.OtherAssetAward {
	o.TimeRecovery, o.RecoveryOfAwardTimeRelated = timeRecovery(o.TimeRecovery, models.AwardTypeOtherAsset)
	return o
}

func timeRecovery(t *models.TimeRecovery, awardType models.AwardType) (*models.TimeRecovery, bool) {
	if t == nil {
		return nil, false
	}
	c := *t
	c.AwardType = awardType
	return &c, true
}
