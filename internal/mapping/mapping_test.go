package mapping

import (
	"context"
	"errors"
	"testing"
	"time"

	"caab-workers/internal/lookup"
	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func yes() *bool {
	b := true
	return &b
}

func testResolver() *lookup.Static {
	return lookup.NewStatic(lookup.Dataset{
		Values: map[lookup.Domain][]lookup.Value{
			lookup.DomainApplicationType: {
				{Code: "DP", Description: "Emergency - Devolved Powers"},
				{Code: "EMER", Description: "Emergency"},
			},
			lookup.DomainProceedingType: {{
				Code:        "PR1",
				Description: "Non-molestation order",
				Attributes:  map[string]string{lookup.AttrLarScope: "FAMILY"},
			}},
			lookup.DomainMatterType:        {{Code: "MT", Description: "Domestic abuse"}},
			lookup.DomainLevelOfService:    {{Code: "FR", Description: "Full Representation"}},
			lookup.DomainClientInvolvement: {{Code: "A", Description: "Applicant"}},
			lookup.DomainProceedingStatus:  {{Code: "DRAFT", Description: "Draft"}},
			lookup.DomainScopeLimitation: {
				{Code: "SL1", Description: "Hearing"},
				{Code: "SL2", Description: "Final hearing"},
			},
			lookup.DomainAwardType: {
				{Code: "COSTAWD", Description: "Costs", Attributes: map[string]string{lookup.AttrAwardType: "COST"}},
			},
			"XXCCMS_COUNSEL": {{Code: "QC", Description: "Queen's Counsel"}},
		},
		Providers: []lookup.Provider{{
			ID:   26517,
			Name: "Firm A",
			Offices: []lookup.Office{{
				ID:         145512,
				Name:       "Office 1",
				FeeEarners: []lookup.Contact{{ID: 2, Name: "Fee Earner"}, {ID: 3, Name: "Supervisor"}},
			}},
		}},
		PriorAuthorityTypes: []lookup.PriorAuthorityType{{
			Code:          "PA1",
			Description:   "Counsel",
			ValueRequired: true,
			Items: []lookup.PriorAuthorityItem{
				{Code: "COUNSEL", Description: "Counsel type", DataType: lookup.DataTypeLOV, LovCode: "XXCCMS_COUNSEL"},
			},
		}},
		ScopeLimitations: []lookup.ScopeLimitationCost{
			{
				ScopeLimitationQuery: lookup.ScopeLimitationQuery{
					CategoryOfLaw: "FAM", MatterType: "MT", ProceedingType: "PR1", LevelOfService: "FR", ScopeLimitation: "SL1",
				},
				CostLimitation:          decimal.RequireFromString("2500"),
				EmergencyCostLimitation: decimal.RequireFromString("1350"),
			},
			{
				ScopeLimitationQuery: lookup.ScopeLimitationQuery{
					CategoryOfLaw: "FAM", MatterType: "MT", ProceedingType: "PR1", LevelOfService: "FR", ScopeLimitation: "SL2",
				},
				CostLimitation:          decimal.RequireFromString("25000"),
				EmergencyCostLimitation: decimal.RequireFromString("2250"),
			},
		},
	})
}

func testPayload() *Submission {
	created := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 1, 12, 15, 30, 0, 0, time.UTC)
	dpDate := models.NewDate(2024, 1, 15)
	dob := models.NewDate(1980, 4, 2)

	return &Submission{
		Target: source.SystemEBS,
		CaseCore: source.CaseCore{
			CaseReferenceNumber: "300001234567",
			CertificateType:     "EMER",
			CaseStatus:          &source.CaseStatus{ActualCaseStatus: "APPL", DisplayCaseStatus: "Application"},
			LinkedCases:         []source.LinkedCase{{CaseReferenceNumber: "300009999999", LinkType: "LEGAL"}},
			PriorAuthorities: []source.PriorAuthority{{
				PriorAuthorityType: "PA1",
				Description:        "Counsel for final hearing",
				ReasonForRequest:   "Complex",
				RequestAmount:      dec("500"),
				DecisionStatus:     "APPROVED",
				Details:            []source.PriorAuthorityAttribute{{Name: "COUNSEL", Value: "QC"}},
			}},
		},
		ApplicationCore: source.ApplicationCore{
			Client:           &source.Client{ClientReferenceNumber: "CL1", FirstName: "Jane", Surname: "Doe"},
			PreferredAddress: "CASE",
			CorrespondenceAddress: &source.Address{
				AddressLine1: "1 High Street", City: "Leeds", PostalCode: "LS1 1AA", CareOfName: "J Smith",
			},
			CategoryOfLaw: &source.CategoryOfLaw{
				CategoryOfLawCode:        "FAM",
				CategoryOfLawDescription: "Family",
				GrantedAmount:            dec("5000"),
				TotalPaidToDate:          dec("1000"),
				CostLimitations: []source.CostLimitation{
					{CostLimitID: "CLIM1", BillingProviderID: "26517", Amount: dec("2000"), PaidToDate: dec("400")},
				},
			},
			ApplicationAmendmentType: "DP",
			DevolvedPowersDate:       &dpDate,
			LarDetails:               &source.LarDetails{LarScopeFlag: yes()},
			Proceedings: []source.Proceeding{{
				ProceedingCaseID:        "P_10",
				Status:                  "DRAFT",
				LeadProceedingIndicator: yes(),
				ProceedingType:          "PR1",
				ProceedingDescription:   "Non-molestation",
				MatterType:              "MT",
				LevelOfService:          "FR",
				ClientInvolvementType:   "A",
				OrderType:               "FINAL",
				ScopeLimitations: []source.ScopeLimitation{
					{ScopeLimitationID: "SLIM1", ScopeLimitation: "SL1", ScopeLimitationWording: "Limited to", DelegatedFunctionsApply: yes()},
					{ScopeLimitationID: "SLIM2", ScopeLimitation: "SL2", ScopeLimitationWording: "Final"},
				},
			}},
		},
		ProviderDetails: source.ProviderDetails{
			ProviderCaseReferenceNumber: "PCR1",
			ProviderFirmID:              26517,
			ProviderOfficeID:            145512,
			ContactUserID:               source.User{LoginID: "PROVIDER1", Username: "Provider User"},
			SupervisorContactID:         "3",
			FeeEarnerContactID:          "2",
		},
		OtherParties: []source.OtherParty{
			{
				OtherPartyID: "OP1",
				Person: &source.Person{
					Name:               &source.Name{Title: "MR", FirstName: "John", Surname: "O'Neil"},
					DateOfBirth:        &dob,
					RelationToCase:     "OPP",
					RelationToClient:   "EX_SPOUSE",
					PartyLegalAidedInd: yes(),
					AssessedIncome:     dec("12000"),
					ContactDetails:     &source.ContactDetails{MobileNumber: "07700900000"},
				},
			},
			{
				OtherPartyID: "OP2",
				Organisation: &source.Organisation{
					OrganisationName: "Acme Ltd",
					OrganisationType: "LTD",
					RelationToCase:   "OPP",
					CurrentlyTrading: yes(),
				},
			},
		},
		RecordHistory: source.RecordHistory{
			DateCreated:     &created,
			DateLastUpdated: &updated,
			CreatedBy:       source.User{LoginID: "CREATOR"},
			LastUpdatedBy:   source.User{LoginID: "EDITOR"},
		},
	}
}

func TestTransform(t *testing.T) {
	app, issues, err := Transform(context.Background(), testResolver(), testPayload())
	require.NoError(t, err)
	assert.Empty(t, issues)

	assert.Equal(t, "300001234567", app.CaseReferenceNumber)
	assert.Equal(t, "Emergency - Devolved Powers", app.ApplicationType.DisplayValue)
	require.NotNil(t, app.ApplicationType.DevolvedPowers)
	assert.True(t, app.ApplicationType.DevolvedPowers.Used)
	assert.NotNil(t, app.ApplicationType.DevolvedPowers.DateUsed)
	require.NotNil(t, app.Certificate)
	assert.Equal(t, "Emergency", app.Certificate.DisplayValue)

	assert.Equal(t, "Firm A", app.ProviderDetails.Provider.DisplayValue)
	assert.Equal(t, "Office 1", app.ProviderDetails.Office.DisplayValue)
	assert.Equal(t, "Supervisor", app.ProviderDetails.Supervisor.DisplayValue)
	assert.Equal(t, "Fee Earner", app.ProviderDetails.FeeEarner.DisplayValue)
	assert.Equal(t, models.DisplayValue{ID: "PROVIDER1", DisplayValue: "Provider User"}, app.ProviderDetails.ProviderContact)

	assert.Equal(t, "600.00", app.Costs.CurrentProviderBilledAmount.String())
	assert.Equal(t, "5000.00", app.Costs.GrantedCostLimitation.String())
	require.NotNil(t, app.Costs.RequestedCostLimitation)
	assert.Equal(t, "2250.00", app.Costs.DefaultCostLimitation.String())
	assert.Equal(t, "2250.00", app.Costs.RequestedCostLimitation.String())
	require.Len(t, app.Costs.CostEntries, 1)
	assert.Equal(t, "400.00", app.Costs.CostEntries[0].AmountBilled.String())

	require.Len(t, app.Proceedings, 1)
	p := app.Proceedings[0]
	assert.Equal(t, "P_10", p.EbsID)
	assert.Equal(t, "FAMILY", p.LarScope)
	assert.Equal(t, "Non-molestation order", p.ProceedingType.DisplayValue)
	// DP is an emergency type, so the larger emergency limit of the two scope limitations applies.
	assert.Equal(t, "2250.00", p.CostLimitation.String())
	assert.Equal(t, "Final hearing", p.ScopeLimitations[1].ScopeLimitation.DisplayValue)
	assert.True(t, app.Submitted)

	require.Len(t, app.Opponents, 2)
	assert.Equal(t, models.OpponentIndividual, app.Opponents[0].Type())
	assert.Equal(t, "12000.00", app.Opponents[0].Individual().AssessedIncome.String())
	assert.Equal(t, "0.00", app.Opponents[0].Individual().AssessedAssets.String())
	assert.Equal(t, "07700900000", app.Opponents[0].ContactDetails.TelephoneMobile)
	assert.Equal(t, models.OpponentOrganisation, app.Opponents[1].Type())
	assert.Equal(t, "Acme Ltd", app.Opponents[1].Organisation().OrganisationName)

	require.Len(t, app.PriorAuthorities, 1)
	pa := app.PriorAuthorities[0]
	assert.Equal(t, "Counsel", pa.Type.DisplayValue)
	assert.True(t, pa.ValueRequired)
	require.Len(t, pa.Items, 1)
	assert.Equal(t, "Queen's Counsel", pa.Items[0].Value.DisplayValue)
	assert.Equal(t, "Counsel type", pa.Items[0].Code.DisplayValue)

	require.NotNil(t, app.AuditTrail)
	assert.Equal(t, "CREATOR", app.AuditTrail.CreatedBy)
	assert.Equal(t, "EDITOR", app.AuditTrail.LastSavedBy)
	assert.Nil(t, app.CaseOutcome)
}

func TestTransform_UnresolvedLookupFallsBackToCode(t *testing.T) {
	payload := testPayload()
	payload.ApplicationCore.Proceedings[0].MatterType = "UNKNOWN"
	payload.ApplicationCore.ApplicationAmendmentType = "NOPE"

	app, issues, err := Transform(context.Background(), testResolver(), payload)
	require.NoError(t, err)

	assert.Equal(t, models.DisplayValue{ID: "UNKNOWN", DisplayValue: "UNKNOWN"}, app.Proceedings[0].MatterType)
	// Unknown amendment type falls back to the certificate.
	assert.Equal(t, "EMER", app.ApplicationType.ID)

	paths := make(map[string]IssueKind)
	for _, i := range issues {
		paths[i.Path] = i.Kind
	}
	assert.Equal(t, UnresolvedLookupReference, paths["proceedings[0].matterType"])
	assert.Equal(t, UnresolvedLookupReference, paths["applicationDetails.applicationAmendmentType"])
}

func TestTransform_DevolvedPowersDateDroppedForOtherTypes(t *testing.T) {
	payload := testPayload()
	payload.ApplicationCore.ApplicationAmendmentType = "EMER"

	app, _, err := Transform(context.Background(), testResolver(), payload)
	require.NoError(t, err)
	require.NotNil(t, app.ApplicationType.DevolvedPowers)
	assert.False(t, app.ApplicationType.DevolvedPowers.Used)
	assert.Nil(t, app.ApplicationType.DevolvedPowers.DateUsed)
}

func TestTransform_MissingCaseReference(t *testing.T) {
	payload := testPayload()
	payload.CaseCore.CaseReferenceNumber = " "

	_, _, err := Transform(context.Background(), testResolver(), payload)
	var missing *MissingCorrelationKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "case", missing.Entity)
}

type failingResolver struct {
	lookup.Resolver
	calls int
}

func (f *failingResolver) Value(context.Context, lookup.Domain, string) (lookup.Value, error) {
	f.calls++
	return lookup.Value{}, errors.New("connection refused")
}

func TestBuildContext_ResolverFailureIsSticky(t *testing.T) {
	r := &failingResolver{Resolver: testResolver()}

	_, err := BuildContext(context.Background(), r, testPayload())
	var lerr *LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, lookup.DomainApplicationType, lerr.Domain)
	assert.Equal(t, "EMER", lerr.Code)
	assert.Equal(t, 1, r.calls)
}

func TestBuildContext_AmendmentProceedingsSplit(t *testing.T) {
	payload := testPayload()
	submitted := payload.ApplicationCore.Proceedings[0]
	submitted.ProceedingCaseID = "5001"
	submitted.Status = "SUBMITTED"
	payload.ApplicationCore.Proceedings = append(payload.ApplicationCore.Proceedings, submitted)

	c, err := BuildContext(context.Background(), testResolver(), payload)
	require.NoError(t, err)
	assert.False(t, c.OnlyDraftProceedings)
	require.Len(t, c.Proceedings, 1)
	assert.Equal(t, "5001", c.Proceedings[0].Source.ProceedingCaseID)
	require.Len(t, c.AmendmentProceedings, 1)
	assert.Equal(t, "P_10", c.AmendmentProceedings[0].Source.ProceedingCaseID)
}

func TestBuildContext_MostRecentAssessment(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)
	payload := testPayload()
	payload.Means = []source.AssessmentResult{
		{AssessmentID: "undated"},
		{AssessmentID: "newer", Date: &newer},
		{AssessmentID: "older", Date: &older},
	}

	c, err := BuildContext(context.Background(), testResolver(), payload)
	require.NoError(t, err)
	require.NotNil(t, c.MeansAssessment)
	assert.Equal(t, "newer", c.MeansAssessment.AssessmentID)
	assert.Nil(t, c.MeritsAssessment)
}

func TestToOpponent_Variants(t *testing.T) {
	tests := []struct {
		name      string
		party     source.OtherParty
		want      models.OpponentType
		wantIssue bool
	}{
		{name: "person", party: source.OtherParty{Person: &source.Person{}}, want: models.OpponentIndividual},
		{name: "organisation", party: source.OtherParty{Organisation: &source.Organisation{}}, want: models.OpponentOrganisation},
		{
			name:      "both",
			party:     source.OtherParty{Person: &source.Person{}, Organisation: &source.Organisation{OrganisationName: "X"}},
			want:      models.OpponentOrganisation,
			wantIssue: true,
		},
		{name: "neither", party: source.OtherParty{}, want: models.OpponentOrganisation, wantIssue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var is issues
			o := toOpponent("otherParties[0]", tt.party, &is)
			assert.Equal(t, tt.want, o.Type())
			if tt.wantIssue {
				require.Len(t, is, 1)
				assert.Equal(t, UnsupportedDiscriminantVariant, is[0].Kind)
			} else {
				assert.Empty(t, is)
			}
		})
	}
}

func TestCaseOutcome_Awards(t *testing.T) {
	payload := testPayload()
	payload.CaseCore.LegalHelpCosts = dec("75.5")
	payload.CaseCore.Awards = []source.Award{
		{
			AwardID:   "A1",
			AwardType: "COSTAWD",
			CostAward: &source.CostAward{
				CertificateCostRateLsc:    dec("120.00"),
				CertificateCostRateMarket: dec("30.50"),
				LiableParties:             []string{"OP1"},
				Recovery: &source.Recovery{
					AwardValue: dec("100"),
					RecoveredAmount: &source.RecoveredAmount{
						Client: &source.RecoveryAmount{Amount: dec("10")},
						Court:  &source.RecoveryAmount{Amount: dec("5")},
					},
				},
			},
		},
		{
			AwardID:   "A2",
			AwardType: "ZZZ",
			LandAward: &source.LandAward{
				Valuation:         &source.Valuation{Amount: dec("200000.00")},
				MortgageAmountDue: dec("75000.00"),
			},
		},
		{AwardID: "A3"},
	}

	app, issues, err := Transform(context.Background(), testResolver(), payload)
	require.NoError(t, err)
	require.NotNil(t, app.CaseOutcome)
	assert.Equal(t, "75.50", app.CaseOutcome.LegalCosts.String())
	require.Len(t, app.CaseOutcome.Awards, 3)

	cost := app.CaseOutcome.Awards[0]
	require.IsType(t, &models.CostAward{}, cost.Detail)
	assert.Equal(t, models.AwardDescriptionCost, cost.Description)
	assert.Equal(t, "150.50", cost.Detail.(*models.CostAward).TotalCertCostsAwarded.String())
	assert.Equal(t, "0.00", cost.Detail.(*models.CostAward).PreCertificateLscCost.String())
	require.NotNil(t, cost.Recovery)
	assert.Equal(t, "15.00", cost.Recovery.RecoveredAmount.String())
	assert.Equal(t, "85.00", cost.Recovery.UnrecoveredAmount.String())
	assert.Equal(t, models.AwardTypeCost, cost.Recovery.AwardType)
	assert.Equal(t, models.AwardTypeCost, cost.LiableParties[0].AwardType)

	land := app.CaseOutcome.Awards[1]
	require.IsType(t, &models.LandAward{}, land.Detail)
	assert.Equal(t, "125000.00", land.Detail.(*models.LandAward).Equity.String())

	fallback := app.CaseOutcome.Awards[2]
	require.IsType(t, &models.FinancialAward{}, fallback.Detail)
	assert.Equal(t, "0.00", fallback.Detail.(*models.FinancialAward).AwardAmount.String())

	assert.Contains(t, issues, Issue{Kind: UnresolvedLookupReference, Path: "awards[1].awardType", Value: "ZZZ"})
	var variantIssues int
	for _, i := range issues {
		if i.Kind == UnsupportedDiscriminantVariant && i.Path == "awards[2].awardType" {
			variantIssues++
		}
	}
	assert.Equal(t, 1, variantIssues)
}

func TestCaseOutcome_AwardLookupWithoutMatchingSubRecord(t *testing.T) {
	payload := testPayload()
	payload.CaseCore.Awards = []source.Award{{
		AwardID:        "A1",
		AwardType:      "COSTAWD",
		FinancialAward: &source.FinancialAward{Amount: dec("500")},
	}}

	app, issues, err := Transform(context.Background(), testResolver(), payload)
	require.NoError(t, err)
	require.NotNil(t, app.CaseOutcome)
	require.Len(t, app.CaseOutcome.Awards, 1)
	assert.IsType(t, &models.CostAward{}, app.CaseOutcome.Awards[0].Detail)

	var found bool
	for _, i := range issues {
		if i.Kind == UnsupportedDiscriminantVariant && i.Path == "awards[0].awardType" {
			found = true
			assert.Equal(t, "COSTAWD", i.Value)
		}
	}
	assert.True(t, found, "a lookup variant without its sub-record must be reported")
}

// Fields the reverse mapping does not emit because the upstream system owns them.
var upstreamOwned = []cmp.Option{
	cmpopts.IgnoreFields(models.Application{}, "Certificate", "Status", "CaseOutcome", "AmendmentProceedingsInEbs"),
	cmpopts.IgnoreFields(models.CostStructure{}, "GrantedCostLimitation", "CurrentProviderBilledAmount", "CostEntries"),
	cmpopts.IgnoreFields(models.Proceeding{}, "Outcome"),
	cmpopts.IgnoreFields(models.LinkedCase{}, "CategoryOfLaw", "ProviderCaseReference", "FeeEarner", "Status"),
	cmpopts.EquateEmpty(),
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := testResolver()

	first, issues, err := Transform(ctx, r, testPayload())
	require.NoError(t, err)
	require.Empty(t, issues)

	sub, err := Reverse(first, ReverseOptions{
		Target: source.SystemSOA,
		User:   source.User{LoginID: first.AuditTrail.LastSavedBy},
		Now:    *first.AuditTrail.LastSaved,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"P_10"}, ProceedingCaseIDs(sub))

	second, issues, err := Transform(ctx, r, sub)
	require.NoError(t, err)
	assert.Empty(t, issues)

	if diff := cmp.Diff(first, second, upstreamOwned...); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestReverse(t *testing.T) {
	app, _, err := Transform(context.Background(), testResolver(), testPayload())
	require.NoError(t, err)
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	sub, err := Reverse(app, ReverseOptions{Target: source.SystemEBS, User: source.User{LoginID: "SUBMITTER"}, Now: now})
	require.NoError(t, err)

	assert.Equal(t, "DP", sub.ApplicationCore.ApplicationAmendmentType)
	assert.NotNil(t, sub.ApplicationCore.DevolvedPowersDate)
	assert.Equal(t, "2250.00", sub.ApplicationCore.CategoryOfLaw.RequestedAmount.StringFixed(2))
	assert.Equal(t, "SUBMITTER", sub.RecordHistory.LastUpdatedBy.LoginID)
	assert.Equal(t, now, *sub.RecordHistory.DateLastUpdated)
	assert.Equal(t, "CREATOR", sub.RecordHistory.CreatedBy.LoginID)

	require.Len(t, sub.OtherParties, 2)
	assert.NotNil(t, sub.OtherParties[0].Person)
	assert.Nil(t, sub.OtherParties[0].Organisation)
	assert.Nil(t, sub.OtherParties[1].Person)
	assert.NotNil(t, sub.OtherParties[1].Organisation)
}

func TestReverse_LocalIDs(t *testing.T) {
	app := models.Application{
		CaseReferenceNumber: "300001234567",
		ApplicationType:     models.ApplicationType{ID: "SUBSTANTIVE"},
		Proceedings:         []models.Proceeding{{ID: models.IntPtr(7)}},
		Opponents: []models.Opponent{
			{ID: models.IntPtr(3), Party: &models.Individual{Surname: "Doe"}},
			{Party: &models.Organisation{OrganisationName: "Acme Ltd"}},
		},
	}

	sub, err := Reverse(app, ReverseOptions{Target: source.SystemEBS})
	require.NoError(t, err)
	assert.Equal(t, "P_7", sub.ApplicationCore.Proceedings[0].ProceedingCaseID)
	assert.Equal(t, "OPPONENT_3", sub.OtherParties[0].OtherPartyID)
	assert.Equal(t, "OPPONENT_ORGANISATION__ACME_LTD", sub.OtherParties[1].OtherPartyID)
	assert.Nil(t, sub.ApplicationCore.DevolvedPowersDate)
}

func TestReverse_ProceedingWithoutKey(t *testing.T) {
	app := models.Application{
		CaseReferenceNumber: "300001234567",
		Proceedings:         []models.Proceeding{{ProceedingType: models.DisplayValue{ID: "PR1"}}},
	}
	_, err := Reverse(app, ReverseOptions{})
	var missing *MissingCorrelationKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "proceeding", missing.Entity)
}
