// internal/mapping/forward.go
package mapping

import (
	"context"
	"fmt"

	"caab-workers/internal/derive"
	"caab-workers/internal/lookup"
	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"
	"caab-workers/internal/money"
)

// Transform runs the whole forward pipeline: resolve, map, derive.
func Transform(ctx context.Context, r lookup.Resolver, s Schema) (models.Application, []Issue, error) {
	c, err := BuildContext(ctx, r, s)
	if err != nil {
		return models.Application{}, nil, err
	}
	app, issues := ToApplication(c)
	return derive.Apply(app), issues, nil
}

// ToApplication maps a resolved context onto the canonical model. It never fails: the context
// has already been correlated and resolved. The returned issues include the context's own.
func ToApplication(c *Context) (models.Application, []Issue) {
	is := issues(append([]Issue(nil), c.Issues...))
	d := c.Details

	app := models.Application{
		CaseReferenceNumber:       c.Case.CaseReferenceNumber,
		ApplicationType:           toApplicationType(c),
		DateCreated:               c.History.DateCreated,
		ProviderDetails:           toProviderDetails(c),
		CorrespondenceAddress:     toCorrespondenceAddress(d),
		Client:                    toClient(d.Client),
		CategoryOfLaw:             toCategoryOfLaw(d.CategoryOfLaw),
		Costs:                     toCosts(c),
		LarScopeFlag:              d.LarDetails != nil && deref(d.LarDetails.LarScopeFlag),
		Status:                    toCaseStatus(c.Case.CaseStatus),
		Proceedings:               toProceedings(c.Proceedings),
		AmendmentProceedingsInEbs: toProceedings(c.AmendmentProceedings),
		Submitted:                 c.OnlyDraftProceedings,
		AuditTrail:                toAuditTrail(c.History),
	}
	if c.Certificate != nil {
		dv := c.Certificate.DisplayValue()
		app.Certificate = &dv
	}

	for i, p := range c.Parties {
		app.Opponents = append(app.Opponents, toOpponent(fmt.Sprintf("otherParties[%d]", i), p, &is))
	}
	for _, pa := range c.PriorAuthorities {
		app.PriorAuthorities = append(app.PriorAuthorities, toPriorAuthority(pa))
	}
	for _, lc := range c.Case.LinkedCases {
		app.LinkedCases = append(app.LinkedCases, toLinkedCase(lc))
	}
	app.CaseOutcome = toCaseOutcome(c, &is)

	return app, is
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func toApplicationType(c *Context) models.ApplicationType {
	return models.ApplicationType{
		ID:           c.ApplicationType.Code,
		DisplayValue: c.ApplicationType.Display,
		DevolvedPowers: &models.DevolvedPowers{
			Used:     models.DevolvedPowersApplicable(c.Details.ApplicationAmendmentType),
			DateUsed: c.Details.DevolvedPowersDate,
		},
	}
}

func toProviderDetails(c *Context) models.ProviderDetails {
	contact := c.ProviderDetails.ContactUserID
	return models.ProviderDetails{
		Provider:              c.Provider,
		Office:                c.Office,
		ProviderContact:       models.DisplayValue{ID: contact.LoginID, DisplayValue: contact.Username},
		Supervisor:            c.Supervisor,
		FeeEarner:             c.FeeEarner,
		ProviderCaseReference: c.ProviderDetails.ProviderCaseReferenceNumber,
	}
}

func toAddress(a *source.Address) *models.Address {
	if a == nil {
		return nil
	}
	return &models.Address{
		AddressLine1:      a.AddressLine1,
		AddressLine2:      a.AddressLine2,
		City:              a.City,
		County:            a.County,
		Country:           a.Country,
		HouseNameOrNumber: a.House,
		CareOf:            a.CareOfName,
		Postcode:          a.PostalCode,
	}
}

func toCorrespondenceAddress(d source.ApplicationCore) *models.Address {
	a := toAddress(d.CorrespondenceAddress)
	if a != nil {
		a.PreferredAddress = d.PreferredAddress
	}
	return a
}

func toClient(c *source.Client) models.Client {
	if c == nil {
		return models.Client{}
	}
	return models.Client{Reference: c.ClientReferenceNumber, FirstName: c.FirstName, Surname: c.Surname}
}

func toCategoryOfLaw(col *source.CategoryOfLaw) models.DisplayValue {
	if col == nil {
		return models.DisplayValue{}
	}
	return models.DisplayValue{ID: col.CategoryOfLawCode, DisplayValue: col.CategoryOfLawDescription}
}

func toCosts(c *Context) models.CostStructure {
	costs := models.CostStructure{CurrentProviderBilledAmount: c.CurrentProviderBilledAmount}
	col := c.Details.CategoryOfLaw
	if col == nil {
		return costs
	}
	costs.RequestedCostLimitation = money.OptFromPtr(col.RequestedAmount)
	costs.GrantedCostLimitation = money.FromPtr(col.GrantedAmount)
	for _, cl := range col.CostLimitations {
		costs.CostEntries = append(costs.CostEntries, models.CostEntry{
			EbsID:          cl.CostLimitID,
			LscResourceID:  cl.BillingProviderID,
			ResourceName:   cl.BillingProviderName,
			RequestedCosts: money.FromPtr(cl.Amount),
			AmountBilled:   money.FromPtr(cl.PaidToDate),
		})
	}
	return costs
}

func toCaseStatus(s *source.CaseStatus) models.DisplayValue {
	if s == nil {
		return models.DisplayValue{}
	}
	return models.DisplayValue{ID: s.ActualCaseStatus, DisplayValue: s.DisplayCaseStatus}
}

func toAuditTrail(h source.RecordHistory) *models.AuditTrail {
	if h.DateCreated == nil && h.DateLastUpdated == nil && h.CreatedBy.LoginID == "" && h.LastUpdatedBy.LoginID == "" {
		return nil
	}
	return &models.AuditTrail{
		Created:     h.DateCreated,
		CreatedBy:   h.CreatedBy.LoginID,
		LastSaved:   h.DateLastUpdated,
		LastSavedBy: h.LastUpdatedBy.LoginID,
	}
}

func toProceedings(pcs []ProceedingContext) []models.Proceeding {
	if len(pcs) == 0 {
		return nil
	}
	out := make([]models.Proceeding, 0, len(pcs))
	for _, pc := range pcs {
		out = append(out, toProceeding(pc))
	}
	return out
}

func toProceeding(pc ProceedingContext) models.Proceeding {
	p := pc.Source
	out := models.Proceeding{
		EbsID:             p.ProceedingCaseID,
		LeadProceedingInd: deref(p.LeadProceedingIndicator),
		ProceedingType:    pc.ProceedingType.DisplayValue(),
		MatterType:        pc.MatterType.DisplayValue(),
		LevelOfService:    pc.LevelOfService.DisplayValue(),
		ClientInvolvement: pc.ClientInvolvement.DisplayValue(),
		Status:            pc.Status.DisplayValue(),
		TypeOfOrder:       models.DisplayValue{ID: p.OrderType},
		Description:       p.ProceedingDescription,
		LarScope:          pc.LarScope,
		CostLimitation:    pc.CostLimitation,
	}
	for i, sl := range p.ScopeLimitations {
		out.ScopeLimitations = append(out.ScopeLimitations, models.ScopeLimitation{
			EbsID:                  sl.ScopeLimitationID,
			ScopeLimitation:        pc.ScopeLimitations[i].DisplayValue(),
			ScopeLimitationWording: sl.ScopeLimitationWording,
			DelegatedFuncApplyInd:  deref(sl.DelegatedFunctionsApply),
		})
	}
	if o := p.Outcome; o != nil {
		out.Outcome = &models.ProceedingOutcome{
			ProceedingCaseID:      p.ProceedingCaseID,
			Description:           p.ProceedingDescription,
			MatterType:            out.MatterType,
			ProceedingType:        out.ProceedingType,
			AdrInfo:               o.AltAcceptanceReason,
			AlternativeResolution: o.AltDisputeResolution,
			CourtCode:             o.CourtCode,
			CourtName:             pc.Court.Display,
			DateOfFinalWork:       o.FinalWorkDate,
			ResolutionMethod:      o.ResolutionMethod,
			Result:                pc.Result.DisplayValue(),
			ResultInfo:            o.AdditionalResultInfo,
			StageEnd:              pc.StageEnd.DisplayValue(),
			WiderBenefits:         o.WiderBenefits,
			OutcomeCourtCaseNo:    o.OutcomeCourtCaseNumber,
		}
	}
	return out
}

func toContactDetails(c *source.ContactDetails) models.ContactDetails {
	if c == nil {
		return models.ContactDetails{}
	}
	return models.ContactDetails{
		TelephoneHome:   c.TelephoneHome,
		TelephoneWork:   c.TelephoneWork,
		TelephoneMobile: c.MobileNumber,
		FaxNumber:       c.Fax,
		EmailAddress:    c.EmailAddress,
	}
}

// toOpponent selects the variant by which sub-record is present. Both or neither is ambiguous
// and maps to the default variant.
func toOpponent(path string, p source.OtherParty, is *issues) models.Opponent {
	o := models.Opponent{EbsID: p.OtherPartyID}

	if p.Person != nil && p.Organisation == nil {
		person := p.Person
		o.RelationshipToCase = person.RelationToCase
		o.RelationshipToClient = person.RelationToClient
		o.Address = toAddress(person.Address)
		o.ContactDetails = toContactDetails(person.ContactDetails)
		o.OtherInformation = person.OtherInformation

		name := deref(person.Name)
		o.Party = &models.Individual{
			Title:                       name.Title,
			FirstName:                   name.FirstName,
			MiddleNames:                 name.MiddleName,
			Surname:                     name.Surname,
			DateOfBirth:                 person.DateOfBirth,
			NationalInsuranceNumber:     person.NiNumber,
			LegalAided:                  deref(person.PartyLegalAidedInd),
			CourtOrderedMeansAssessment: deref(person.CourtOrderedMeansAssessment),
			EmployerName:                person.OrganisationName,
			EmployerAddress:             person.OrganisationAddress,
			AssessedIncome:              money.FromPtr(person.AssessedIncome),
			AssessedAssets:              money.FromPtr(person.AssessedAssets),
			PublicFundingApplied:        deref(person.PublicFundingAppliedInd),
			CertificateNumber:           person.CertificateNumber,
		}
		return o
	}

	switch {
	case p.Person != nil:
		is.variant(path, "person+organisation", "both variants populated, using "+string(models.DefaultOpponentType))
	case p.Organisation == nil:
		is.variant(path, "", "no variant populated, using "+string(models.DefaultOpponentType))
	}

	org := deref(p.Organisation)
	o.RelationshipToCase = org.RelationToCase
	o.RelationshipToClient = org.RelationToClient
	o.Address = toAddress(org.Address)
	o.ContactDetails = toContactDetails(org.ContactDetails)
	o.OtherInformation = org.OtherInformation
	o.Party = &models.Organisation{
		OrganisationName: org.OrganisationName,
		OrganisationType: org.OrganisationType,
		ContactNameRole:  org.ContactName,
		CurrentlyTrading: deref(org.CurrentlyTrading),
	}
	return o
}

func toPriorAuthority(pac PriorAuthorityContext) models.PriorAuthority {
	pa := pac.Source
	out := models.PriorAuthority{
		Status:          pa.DecisionStatus,
		Summary:         pa.Description,
		Type:            pac.Type.DisplayValue(),
		Justification:   pa.ReasonForRequest,
		AmountRequested: money.FromPtr(pa.RequestAmount),
		ValueRequired:   pac.ValueRequired,
	}
	for _, item := range pac.Items {
		out.Items = append(out.Items, models.ReferenceDataItem{
			Code:      models.DisplayValue{ID: item.Item.Code, DisplayValue: item.Item.Description},
			Type:      item.Item.DataType,
			LovLookUp: item.Item.LovCode,
			Mandatory: item.Item.Mandatory,
			Value:     item.Value.DisplayValue(),
		})
	}
	return out
}

func toLinkedCase(lc source.LinkedCase) models.LinkedCase {
	return models.LinkedCase{
		LscCaseReference:      lc.CaseReferenceNumber,
		CategoryOfLaw:         lc.CategoryOfLawDesc,
		ProviderCaseReference: lc.ProviderReferenceNumber,
		FeeEarner:             lc.FeeEarnerName,
		Status:                lc.CaseStatus,
		RelationToCase:        lc.LinkType,
	}
}

func toCaseOutcome(c *Context, is *issues) *models.CaseOutcome {
	lar := deref(c.Details.LarDetails)
	discharge := c.Case.DischargeStatus
	if c.Case.LegalHelpCosts == nil && discharge == nil && len(c.Case.Awards) == 0 &&
		lar.LegalHelpUfn == "" && lar.LegalHelpOfficeCode == "" {
		return nil
	}

	out := &models.CaseOutcome{
		LegalCosts:   money.FromPtr(c.Case.LegalHelpCosts),
		OfficeCode:   lar.LegalHelpOfficeCode,
		UniqueFileNo: lar.LegalHelpUfn,
	}
	if discharge != nil {
		out.OtherDetails = discharge.OtherDetails
		out.DischargeReason = discharge.Reason
		out.ClientContinueInd = deref(discharge.ClientContinuePvtInd)
	}
	for i, a := range c.Case.Awards {
		out.Awards = append(out.Awards, toAward(fmt.Sprintf("awards[%d]", i), a, c.AwardTypes[i], is))
	}
	return out
}
