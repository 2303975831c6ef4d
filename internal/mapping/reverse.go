// internal/mapping/reverse.go
package mapping

import (
	"time"

	"caab-workers/internal/correlate"
	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"
	"caab-workers/internal/money"

	"github.com/shopspring/decimal"
)

// ReverseOptions carries what the submission needs beyond the Application.
type ReverseOptions struct {
	Target source.System
	User   source.User
	Now    time.Time
	// Means and Merits are the folded assessment results, nil when not assessed.
	Means  *source.AssessmentResult
	Merits *source.AssessmentResult
}

// Reverse maps an Application back to the neutral upstream shape. Derived and upstream-owned
// fields (totals, equity, awards, case status, certificate, granted amounts) are not emitted.
func Reverse(app models.Application, opts ReverseOptions) (*Submission, error) {
	if err := correlate.CaseReference(app.CaseReferenceNumber); err != nil {
		return nil, err
	}

	proceedings, err := fromProceedings(app.Proceedings)
	if err != nil {
		return nil, err
	}

	s := &Submission{
		Target: opts.Target,
		CaseCore: source.CaseCore{
			CaseReferenceNumber: app.CaseReferenceNumber,
			LinkedCases:         fromLinkedCases(app.LinkedCases),
			PriorAuthorities:    fromPriorAuthorities(app.PriorAuthorities),
		},
		ApplicationCore: source.ApplicationCore{
			Client:                   fromClient(app.Client),
			CorrespondenceAddress:    fromAddress(app.CorrespondenceAddress),
			CategoryOfLaw:            fromCategoryOfLaw(app),
			ApplicationAmendmentType: app.ApplicationType.ID,
			DevolvedPowersDate:       fromDevolvedPowersDate(app.ApplicationType),
			LarDetails:               &source.LarDetails{LarScopeFlag: &app.LarScopeFlag},
			Proceedings:              proceedings,
		},
		ProviderDetails: fromProviderDetails(app.ProviderDetails),
		RecordHistory:   fromAuditTrail(app, opts),
	}
	if app.CorrespondenceAddress != nil {
		s.ApplicationCore.PreferredAddress = app.CorrespondenceAddress.PreferredAddress
	}
	for _, o := range app.Opponents {
		s.OtherParties = append(s.OtherParties, fromOpponent(o))
	}
	if opts.Means != nil {
		s.Means = []source.AssessmentResult{*opts.Means}
	}
	if opts.Merits != nil {
		s.Merits = []source.AssessmentResult{*opts.Merits}
	}
	return s, nil
}

func boolPtr(b bool) *bool { return &b }

func decimalPtr(a money.Amount) *decimal.Decimal { return a.Ptr() }

func fromClient(c models.Client) *source.Client {
	if c == (models.Client{}) {
		return nil
	}
	return &source.Client{ClientReferenceNumber: c.Reference, FirstName: c.FirstName, Surname: c.Surname}
}

func fromAddress(a *models.Address) *source.Address {
	if a == nil {
		return nil
	}
	return &source.Address{
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		CareOfName:   a.CareOf,
		City:         a.City,
		Country:      a.Country,
		County:       a.County,
		House:        a.HouseNameOrNumber,
		PostalCode:   a.Postcode,
	}
}

// fromCategoryOfLaw submits the requested amount, or the default when nothing was requested.
func fromCategoryOfLaw(app models.Application) *source.CategoryOfLaw {
	requested := app.Costs.DefaultCostLimitation
	if app.Costs.RequestedCostLimitation != nil {
		requested = *app.Costs.RequestedCostLimitation
	}
	return &source.CategoryOfLaw{
		CategoryOfLawCode:        app.CategoryOfLaw.ID,
		CategoryOfLawDescription: app.CategoryOfLaw.DisplayValue,
		RequestedAmount:          decimalPtr(requested),
	}
}

func fromDevolvedPowersDate(t models.ApplicationType) *models.Date {
	if t.DevolvedPowers == nil || !models.DevolvedPowersApplicable(t.ID) {
		return nil
	}
	return t.DevolvedPowers.DateUsed
}

func fromProviderDetails(pd models.ProviderDetails) source.ProviderDetails {
	return source.ProviderDetails{
		ProviderCaseReferenceNumber: pd.ProviderCaseReference,
		ProviderFirmID:              pd.Provider.ID,
		ProviderOfficeID:            pd.Office.ID,
		ContactUserID:               source.User{LoginID: pd.ProviderContact.ID, Username: pd.ProviderContact.DisplayValue},
		SupervisorContactID:         pd.Supervisor.ID,
		FeeEarnerContactID:          pd.FeeEarner.ID,
	}
}

// fromAuditTrail keeps the original creation and stamps the submitting user as last updater.
func fromAuditTrail(app models.Application, opts ReverseOptions) source.RecordHistory {
	now := opts.Now
	h := source.RecordHistory{
		DateCreated:     app.DateCreated,
		CreatedBy:       opts.User,
		DateLastUpdated: &now,
		LastUpdatedBy:   opts.User,
	}
	if at := app.AuditTrail; at != nil {
		if at.Created != nil {
			h.DateCreated = at.Created
		}
		if at.CreatedBy != "" {
			h.CreatedBy = source.User{LoginID: at.CreatedBy}
		}
	}
	return h
}

func fromProceedings(ps []models.Proceeding) ([]source.Proceeding, error) {
	var out []source.Proceeding
	for _, p := range ps {
		id, err := correlate.ProceedingID(p)
		if err != nil {
			return nil, err
		}
		sp := source.Proceeding{
			ProceedingCaseID:        id,
			Status:                  p.Status.ID,
			LeadProceedingIndicator: boolPtr(p.LeadProceedingInd),
			ProceedingType:          p.ProceedingType.ID,
			ProceedingDescription:   p.Description,
			MatterType:              p.MatterType.ID,
			LevelOfService:          p.LevelOfService.ID,
			ClientInvolvementType:   p.ClientInvolvement.ID,
			OrderType:               p.TypeOfOrder.ID,
		}
		for _, sl := range p.ScopeLimitations {
			sp.ScopeLimitations = append(sp.ScopeLimitations, source.ScopeLimitation{
				ScopeLimitationID:       sl.EbsID,
				ScopeLimitation:         sl.ScopeLimitation.ID,
				ScopeLimitationWording:  sl.ScopeLimitationWording,
				DelegatedFunctionsApply: boolPtr(sl.DelegatedFuncApplyInd),
			})
		}
		out = append(out, sp)
	}
	return out, nil
}

func fromContactDetails(c models.ContactDetails) *source.ContactDetails {
	if c == (models.ContactDetails{}) {
		return nil
	}
	return &source.ContactDetails{
		TelephoneHome: c.TelephoneHome,
		TelephoneWork: c.TelephoneWork,
		MobileNumber:  c.TelephoneMobile,
		Fax:           c.FaxNumber,
		EmailAddress:  c.EmailAddress,
	}
}

// fromOpponent emits exactly one sub-record, chosen by the opponent's variant.
func fromOpponent(o models.Opponent) source.OtherParty {
	out := source.OtherParty{OtherPartyID: correlate.OpponentID(o)}

	if ind := o.Individual(); ind != nil {
		out.Person = &source.Person{
			Name: &source.Name{
				Title:      ind.Title,
				FirstName:  ind.FirstName,
				MiddleName: ind.MiddleNames,
				Surname:    ind.Surname,
			},
			Address:                     fromAddress(o.Address),
			ContactDetails:              fromContactDetails(o.ContactDetails),
			DateOfBirth:                 ind.DateOfBirth,
			NiNumber:                    ind.NationalInsuranceNumber,
			RelationToCase:              o.RelationshipToCase,
			RelationToClient:            o.RelationshipToClient,
			PartyLegalAidedInd:          boolPtr(ind.LegalAided),
			CourtOrderedMeansAssessment: boolPtr(ind.CourtOrderedMeansAssessment),
			OrganisationName:            ind.EmployerName,
			OrganisationAddress:         ind.EmployerAddress,
			AssessedIncome:              decimalPtr(ind.AssessedIncome),
			AssessedAssets:              decimalPtr(ind.AssessedAssets),
			PublicFundingAppliedInd:     boolPtr(ind.PublicFundingApplied),
			CertificateNumber:           ind.CertificateNumber,
			OtherInformation:            o.OtherInformation,
		}
		return out
	}

	org := o.Organisation()
	if org == nil {
		org = &models.Organisation{}
	}
	out.Organisation = &source.Organisation{
		OrganisationName: org.OrganisationName,
		OrganisationType: org.OrganisationType,
		ContactName:      org.ContactNameRole,
		Address:          fromAddress(o.Address),
		ContactDetails:   fromContactDetails(o.ContactDetails),
		RelationToCase:   o.RelationshipToCase,
		RelationToClient: o.RelationshipToClient,
		CurrentlyTrading: boolPtr(org.CurrentlyTrading),
		OtherInformation: o.OtherInformation,
	}
	return out
}

func fromPriorAuthorities(pas []models.PriorAuthority) []source.PriorAuthority {
	var out []source.PriorAuthority
	for _, pa := range pas {
		sp := source.PriorAuthority{
			PriorAuthorityType: pa.Type.ID,
			Description:        pa.Summary,
			ReasonForRequest:   pa.Justification,
			RequestAmount:      decimalPtr(pa.AmountRequested),
			DecisionStatus:     pa.Status,
		}
		for _, item := range pa.Items {
			sp.Details = append(sp.Details, source.PriorAuthorityAttribute{Name: item.Code.ID, Value: item.Value.ID})
		}
		out = append(out, sp)
	}
	return out
}

func fromLinkedCases(lcs []models.LinkedCase) []source.LinkedCase {
	var out []source.LinkedCase
	for _, lc := range lcs {
		out = append(out, source.LinkedCase{CaseReferenceNumber: lc.LscCaseReference, LinkType: lc.RelationToCase})
	}
	return out
}

// ProceedingCaseIDs lists the correlated ids a submission will carry, for logging.
func ProceedingCaseIDs(s *Submission) []string {
	ids := make([]string, 0, len(s.ApplicationCore.Proceedings))
	for _, p := range s.ApplicationCore.Proceedings {
		ids = append(ids, p.ProceedingCaseID)
	}
	return ids
}
