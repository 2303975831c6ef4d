// internal/assessment/project.go
package assessment

import (
	"strconv"
	"strings"
	"time"

	"caab-workers/internal/correlate"
	"caab-workers/internal/models"
	"caab-workers/internal/money"
)

const graphDateLayout = "02-01-2006"

// Fixed values of projected attributes.
const (
	NewOrExistingNew       = "NEW"
	NewOrExistingChanged   = "CHANGED"
	NewOrExistingUnchanged = "UNCHANGED"

	RequestedScopeMultiple = "MULTIPLE"

	OtherPartyPerson       = "PERSON"
	OtherPartyOrganisation = "ORGANISATION"

	poaOrBillNotApplicable = "N/A"
	unnamedParty           = "undefined"
)

// Client carries the client record fields the global entity needs. Optional flags stay nil when
// the client record does not answer them.
type Client struct {
	FirstName               string       `json:"firstName,omitempty"`
	Surname                 string       `json:"surname,omitempty"`
	SurnameAtBirth          string       `json:"surnameAtBirth,omitempty"`
	DateOfBirth             *models.Date `json:"dateOfBirth,omitempty"`
	NationalInsuranceNumber string       `json:"nationalInsuranceNumber,omitempty"`
	HomeOfficeNumber        string       `json:"homeOfficeNumber,omitempty"`
	MaritalStatus           string       `json:"maritalStatus,omitempty"`
	Vulnerable              *bool        `json:"vulnerable,omitempty"`
	HighProfile             *bool        `json:"highProfile,omitempty"`
	Country                 string       `json:"country,omitempty"`
	County                  string       `json:"county,omitempty"`
	Postcode                string       `json:"postcode,omitempty"`
}

// User is the provider user starting the assessment.
type User struct {
	LoginID        string `json:"loginId,omitempty"`
	ProviderFirmID int    `json:"providerFirmId,omitempty"`
	UserType       string `json:"userType,omitempty"`
}

// Context is everything besides the application that feeds a projection.
type Context struct {
	Client Client
	User   User
	// Titles maps contact title codes to their display text for opponent names.
	Titles map[string]string
	Now    time.Time
}

// Project builds a fresh graph for app. It fails only when a proceeding or the case cannot be
// correlated; the caller merges the result into any prior graph.
func Project(app models.Application, rb Rulebase, pc Context) (*models.AssessmentGraph, error) {
	if err := correlate.CaseReference(app.CaseReferenceNumber); err != nil {
		return nil, err
	}

	proceedings := models.EntityType{Name: models.EntityTypeProceeding, Entities: []models.Entity{}}
	proceedingIDs := make([]string, 0, len(app.Proceedings))
	for _, p := range app.Proceedings {
		id, err := correlate.ProceedingID(p)
		if err != nil {
			return nil, err
		}
		proceedingIDs = append(proceedingIDs, id)
		proceedings.Entities = append(proceedings.Entities, models.Entity{
			Name:         id,
			Prepopulated: true,
			Attributes:   proceedingAttributes(p, id),
		})
	}

	opponents := models.EntityType{Name: models.EntityTypeOpponent, Entities: []models.Entity{}}
	opponentIDs := make([]string, 0, len(app.Opponents))
	for _, o := range app.Opponents {
		id := correlate.OpponentID(o)
		opponentIDs = append(opponentIDs, id)
		opponents.Entities = append(opponents.Entities, models.Entity{
			Name:         id,
			Prepopulated: true,
			Attributes:   opponentAttributes(o, id, pc.Titles),
		})
	}

	global := models.EntityType{
		Name: models.EntityTypeGlobal,
		Entities: []models.Entity{{
			Name:       app.CaseReferenceNumber,
			Attributes: globalAttributes(app, pc),
			Relations: []models.Relation{
				{Name: RelationOpponent, Prepopulated: true, Targets: opponentIDs},
				{Name: RelationProceeding, Prepopulated: true, Targets: proceedingIDs},
			},
		}},
	}

	now := pc.Now
	return &models.AssessmentGraph{
		Name:                rb.Name,
		CaseReferenceNumber: app.CaseReferenceNumber,
		ProviderID:          strconv.Itoa(app.ProviderDetails.Provider.ID),
		Status:              models.AssessmentStatusNotStarted,
		Created:             &now,
		EntityTypes:         []models.EntityType{global, proceedings, opponents},
	}, nil
}

// Merge keeps every entity type the prior graph already holds and adds the fresh ones it lacks.
// Merging the same fresh graph twice gives the same result as merging it once.
func Merge(prior, fresh *models.AssessmentGraph) *models.AssessmentGraph {
	if prior == nil {
		return clone(fresh)
	}
	out := clone(prior)
	if fresh == nil {
		return out
	}
	for _, et := range fresh.EntityTypes {
		if out.EntityType(et.Name) == nil {
			out.EntityTypes = append(out.EntityTypes, cloneEntityType(et))
		}
	}
	return out
}

func globalAttributes(app models.Application, pc Context) []models.Attribute {
	appType := app.ApplicationType
	dp := appType.DevolvedPowers
	if dp == nil {
		dp = &models.DevolvedPowers{}
	}
	client := pc.Client

	return []models.Attribute{
		textAttr(AttrApplicationCaseRef, app.CaseReferenceNumber),
		textAttr(AttrAppAmendType, appAmendType(appType.ID)),
		textAttr(AttrCategoryOfLaw, app.CategoryOfLaw.ID),
		optBoolAttr(AttrClientVulnerable, client.Vulnerable),
		textAttr(AttrCostLimitChangedFlag, strconv.FormatBool(app.CostLimit.Changed)),
		textAttr(AttrCountry, client.Country),
		textAttr(AttrCounty, client.County),
		dateAttr(AttrDateAssessmentStarted, models.DatePtr(models.DateOf(pc.Now))),
		dateAttr(AttrDateOfBirth, client.DateOfBirth),
		currencyAttr(AttrDefaultCostLimitation, &app.Costs.DefaultCostLimitation),
		dateAttr(AttrDelegatedFunctionsDate, dp.DateUsed),
		textAttr(AttrDevolvedPowersContractFlag, dp.ContractFlag),
		boolAttr(AttrEcfFlag, strings.EqualFold(appType.ID, models.AppTypeExceptionalCaseFunding)),
		textAttr(AttrFirstName, client.FirstName),
		optBoolAttr(AttrHighProfile, client.HighProfile),
		textAttr(AttrHomeOfficeNo, client.HomeOfficeNumber),
		boolAttr(AttrLarScopeFlag, app.LarScopeFlag),
		boolAttr(AttrLeadProceedingChanged, app.LeadProceedingChanged),
		textAttr(AttrMaritalStatus, client.MaritalStatus),
		textAttr(AttrNewApplOrAmendment, newApplOrAmendment(app.Amendment)),
		textAttr(AttrNiNo, client.NationalInsuranceNumber),
		textAttr(AttrPoaOrBillFlag, poaOrBillNotApplicable),
		textAttr(AttrPostCode, client.Postcode),
		textAttr(AttrProviderCaseReference, app.ProviderDetails.ProviderCaseReference),
		boolAttr(AttrProviderHasContract, strings.HasPrefix(strings.ToLower(dp.ContractFlag), "yes")),
		currencyAttr(AttrReqCostLimitation, app.Costs.RequestedCostLimitation),
		textAttr(AttrSurname, client.Surname),
		textAttr(AttrSurnameAtBirth, client.SurnameAtBirth),
		numberAttr(AttrUserProviderFirmID, pc.User.ProviderFirmID),
		textAttr(AttrUserType, pc.User.UserType),
	}
}

func proceedingAttributes(p models.Proceeding, id string) []models.Attribute {
	return []models.Attribute{
		textAttr(AttrClientInvolvementType, p.ClientInvolvement.ID),
		boolAttr(AttrLeadProceeding, p.LeadProceedingInd),
		textAttr(AttrLevelOfService, p.LevelOfService.ID),
		textAttr(AttrMatterType, p.MatterType.ID),
		textAttr(AttrNewOrExisting, newOrExisting(p)),
		textAttr(AttrProceedingID, id),
		textAttr(AttrProceedingName, p.ProceedingType.ID),
		textAttr(AttrProceedingOrderType, p.TypeOfOrder.ID),
		textAttr(AttrRequestedScope, RequestedScope(p)),
		boolAttr(AttrScopeLimitIsDefault, scopeLimitIsDefault(p)),
	}
}

func opponentAttributes(o models.Opponent, id string, titles map[string]string) []models.Attribute {
	var dob *models.Date
	if ind := o.Individual(); ind != nil {
		dob = ind.DateOfBirth
	}
	return []models.Attribute{
		dateAttr(AttrOpponentDOB, dob),
		textAttr(AttrOtherPartyID, id),
		textAttr(AttrOtherPartyName, PartyName(o, titles)),
		textAttr(AttrOtherPartyType, otherPartyType(o)),
		textAttr(AttrRelationshipToCase, o.RelationshipToCase),
		textAttr(AttrRelationshipToClient, o.RelationshipToClient),
	}
}

// appAmendType reports exceptional case funding to the engine as a substantive application.
func appAmendType(id string) string {
	if strings.EqualFold(id, models.AppTypeExceptionalCaseFunding) {
		return models.AppTypeSubstantive
	}
	return id
}

func newApplOrAmendment(amendment bool) string {
	if amendment {
		return "AMENDMENT"
	}
	return "APPLICATION"
}

func newOrExisting(p models.Proceeding) string {
	switch {
	case p.EbsID == "":
		return NewOrExistingNew
	case p.Edited:
		return NewOrExistingChanged
	default:
		return NewOrExistingUnchanged
	}
}

// RequestedScope is empty without limitations, MULTIPLE for several, else the single code.
func RequestedScope(p models.Proceeding) string {
	switch len(p.ScopeLimitations) {
	case 0:
		return ""
	case 1:
		return p.ScopeLimitations[0].ScopeLimitation.ID
	default:
		return RequestedScopeMultiple
	}
}

func scopeLimitIsDefault(p models.Proceeding) bool {
	for _, sl := range p.ScopeLimitations {
		if sl.DefaultInd {
			return true
		}
	}
	return false
}

func otherPartyType(o models.Opponent) string {
	if o.Type() == models.OpponentIndividual {
		return OtherPartyPerson
	}
	return OtherPartyOrganisation
}

// PartyName is the organisation name, or the individual's title, first name and surname.
func PartyName(o models.Opponent, titles map[string]string) string {
	switch p := o.Party.(type) {
	case *models.Individual:
		var parts []string
		if p.Title != "" {
			title := p.Title
			if display, ok := titles[p.Title]; ok && display != "" {
				title = display
			}
			parts = append(parts, title)
		}
		if p.FirstName != "" {
			parts = append(parts, p.FirstName)
		}
		if p.Surname != "" {
			parts = append(parts, p.Surname)
		}
		if len(parts) == 0 {
			return unnamedParty
		}
		return strings.Join(parts, " ")
	case *models.Organisation:
		return p.OrganisationName
	default:
		return ""
	}
}

func newAttr(name string, value *string) models.Attribute {
	return models.Attribute{
		Name:         name,
		Type:         attributeTypes[name],
		Value:        value,
		Prepopulated: true,
		Asked:        true,
	}
}

func textAttr(name, v string) models.Attribute {
	if v == "" {
		return newAttr(name, nil)
	}
	return newAttr(name, &v)
}

func boolAttr(name string, v bool) models.Attribute {
	return newAttr(name, models.StringPtr(strconv.FormatBool(v)))
}

func optBoolAttr(name string, v *bool) models.Attribute {
	if v == nil {
		return newAttr(name, nil)
	}
	return boolAttr(name, *v)
}

func dateAttr(name string, d *models.Date) models.Attribute {
	if d == nil || d.IsZero() {
		return newAttr(name, nil)
	}
	return newAttr(name, models.StringPtr(d.Format(graphDateLayout)))
}

func currencyAttr(name string, a *money.Amount) models.Attribute {
	if a == nil {
		return newAttr(name, nil)
	}
	return newAttr(name, models.StringPtr(a.String()))
}

func numberAttr(name string, n int) models.Attribute {
	return newAttr(name, models.StringPtr(strconv.Itoa(n)))
}

func clone(g *models.AssessmentGraph) *models.AssessmentGraph {
	if g == nil {
		return nil
	}
	out := *g
	if g.Created != nil {
		created := *g.Created
		out.Created = &created
	}
	out.EntityTypes = make([]models.EntityType, 0, len(g.EntityTypes))
	for _, et := range g.EntityTypes {
		out.EntityTypes = append(out.EntityTypes, cloneEntityType(et))
	}
	return &out
}

func cloneEntityType(et models.EntityType) models.EntityType {
	out := models.EntityType{Name: et.Name, Entities: make([]models.Entity, 0, len(et.Entities))}
	for _, e := range et.Entities {
		c := e
		c.Attributes = append([]models.Attribute(nil), e.Attributes...)
		c.Relations = nil
		for _, r := range e.Relations {
			r.Targets = append([]string(nil), r.Targets...)
			c.Relations = append(c.Relations, r)
		}
		out.Entities = append(out.Entities, c)
	}
	return out
}
