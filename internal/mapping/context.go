// internal/mapping/context.go
package mapping

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"caab-workers/internal/correlate"
	"caab-workers/internal/lookup"
	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"
	"caab-workers/internal/money"

	"github.com/shopspring/decimal"
)

// Resolved is a code together with its looked-up description. Display falls back to the code.
type Resolved struct {
	Code       string
	Display    string
	Attributes map[string]string
}

func (r Resolved) DisplayValue() models.DisplayValue {
	return models.DisplayValue{ID: r.Code, DisplayValue: r.Display}
}

// Context is everything the canonical mapper needs, with every lookup already resolved.
type Context struct {
	System          source.System
	Case            source.CaseCore
	Details         source.ApplicationCore
	Parties         []source.OtherParty
	ProviderDetails source.ProviderDetails
	History         source.RecordHistory

	Certificate     *Resolved
	ApplicationType Resolved

	Provider   models.IntDisplayValue
	Office     models.IntDisplayValue
	Supervisor models.DisplayValue
	FeeEarner  models.DisplayValue

	CurrentProviderBilledAmount money.Amount

	OnlyDraftProceedings bool
	Proceedings          []ProceedingContext
	AmendmentProceedings []ProceedingContext
	PriorAuthorities     []PriorAuthorityContext
	// AwardTypes runs parallel to Case.Awards; empty when the award code is unknown.
	AwardTypes []models.AwardType

	MeansAssessment  *source.AssessmentResult
	MeritsAssessment *source.AssessmentResult

	Issues []Issue
}

type ProceedingContext struct {
	Source            source.Proceeding
	ProceedingType    Resolved
	LarScope          string
	MatterType        Resolved
	LevelOfService    Resolved
	ClientInvolvement Resolved
	Status            Resolved
	// ScopeLimitations runs parallel to Source.ScopeLimitations.
	ScopeLimitations []Resolved
	CostLimitation   money.Amount

	Court    Resolved
	Result   Resolved
	StageEnd Resolved
}

type PriorAuthorityContext struct {
	Source        source.PriorAuthority
	Type          Resolved
	ValueRequired bool
	Items         []PriorAuthorityItemContext
}

type PriorAuthorityItemContext struct {
	Item  lookup.PriorAuthorityItem
	Value Resolved
}

// BuildContext resolves the lookups of a decoded payload. Unknown codes fall back to the raw
// code and are recorded as issues; a failing resolver aborts with a *LookupError.
func BuildContext(ctx context.Context, r lookup.Resolver, s Schema) (*Context, error) {
	core := s.Core()
	if core == nil {
		return nil, &MissingCorrelationKeyError{Entity: "case", Detail: "payload has no case"}
	}
	if err := correlate.CaseReference(core.CaseReferenceNumber); err != nil {
		return nil, err
	}

	b := &builder{ctx: ctx, r: r}
	c := &Context{
		System:          s.System(),
		Case:            *core,
		Parties:         s.Parties(),
		ProviderDetails: s.Provider(),
		History:         s.History(),
	}
	if d := s.Details(); d != nil {
		c.Details = *d
	}

	if core.CertificateType != "" {
		cert := b.value("certificateType", lookup.DomainApplicationType, core.CertificateType)
		c.Certificate = &cert
	}
	c.ApplicationType = b.applicationType(c.Details.ApplicationAmendmentType, c.Certificate)

	b.provider(c)
	c.CurrentProviderBilledAmount = providerBilledAmount(c.Details.CategoryOfLaw)

	c.OnlyDraftProceedings = allDraft(c.Details.Proceedings)
	emergency := strings.EqualFold(c.Details.ApplicationAmendmentType, models.AppTypeEmergency) ||
		strings.EqualFold(c.Details.ApplicationAmendmentType, models.AppTypeEmergencyDevolvedPowers)
	for i, p := range c.Details.Proceedings {
		pc := b.proceeding(fmt.Sprintf("proceedings[%d]", i), p, c.Details.CategoryOfLaw, emergency)
		if c.OnlyDraftProceedings || !isDraft(p) {
			c.Proceedings = append(c.Proceedings, pc)
		} else {
			c.AmendmentProceedings = append(c.AmendmentProceedings, pc)
		}
	}

	for i, pa := range core.PriorAuthorities {
		c.PriorAuthorities = append(c.PriorAuthorities, b.priorAuthority(fmt.Sprintf("priorAuthorities[%d]", i), pa))
	}
	for i, a := range core.Awards {
		c.AwardTypes = append(c.AwardTypes, b.awardType(fmt.Sprintf("awards[%d].awardType", i), a.AwardType))
	}

	c.MeansAssessment = mostRecent(s.MeansAssessments())
	c.MeritsAssessment = mostRecent(s.MeritsAssessments())

	if b.err != nil {
		return nil, b.err
	}
	c.Issues = b.issues
	return c, nil
}

// builder carries the first resolver failure; once set, further lookups are skipped.
type builder struct {
	ctx    context.Context
	r      lookup.Resolver
	issues issues
	err    error
}

func (b *builder) fail(domain lookup.Domain, code string, err error) {
	if b.err == nil {
		b.err = &LookupError{Domain: domain, Code: code, Err: err}
	}
}

// resolve reports whether err is a miss; any other failure becomes sticky.
func (b *builder) resolve(path string, domain lookup.Domain, code string, err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, lookup.ErrNotFound) {
		b.issues.unresolved(path, code)
	} else {
		b.fail(domain, code, err)
	}
	return false
}

func (b *builder) value(path string, domain lookup.Domain, code string) Resolved {
	raw := Resolved{Code: code, Display: code}
	if code == "" || b.err != nil {
		return raw
	}
	v, err := b.r.Value(b.ctx, domain, code)
	if !b.resolve(path, domain, code, err) {
		return raw
	}
	return Resolved{Code: code, Display: v.Description, Attributes: v.Attributes}
}

func (b *builder) applicationType(amendType string, certificate *Resolved) Resolved {
	if amendType == "" {
		if certificate != nil {
			return *certificate
		}
		return Resolved{}
	}
	if b.err != nil {
		return Resolved{Code: amendType, Display: amendType}
	}
	v, err := b.r.Value(b.ctx, lookup.DomainApplicationType, amendType)
	switch {
	case err == nil:
		return Resolved{Code: amendType, Display: v.Description}
	case errors.Is(err, lookup.ErrNotFound) && certificate != nil:
		b.issues.unresolved("applicationDetails.applicationAmendmentType", amendType)
		return *certificate
	default:
		b.resolve("applicationDetails.applicationAmendmentType", lookup.DomainApplicationType, amendType, err)
		return Resolved{Code: amendType, Display: amendType}
	}
}

func (b *builder) provider(c *Context) {
	pd := c.ProviderDetails
	c.Provider = models.IntDisplayValue{ID: pd.ProviderFirmID, DisplayValue: strconv.Itoa(pd.ProviderFirmID)}
	c.Office = models.IntDisplayValue{ID: pd.ProviderOfficeID, DisplayValue: strconv.Itoa(pd.ProviderOfficeID)}
	c.Supervisor = models.DisplayValue{ID: pd.SupervisorContactID, DisplayValue: pd.SupervisorContactID}
	c.FeeEarner = models.DisplayValue{ID: pd.FeeEarnerContactID, DisplayValue: pd.FeeEarnerContactID}
	if pd.ProviderFirmID == 0 || b.err != nil {
		return
	}

	providerCode := strconv.Itoa(pd.ProviderFirmID)
	p, err := b.r.Provider(b.ctx, pd.ProviderFirmID)
	if !b.resolve("providerDetails.providerFirmId", "provider", providerCode, err) {
		return
	}
	c.Provider.DisplayValue = p.Name

	office, ok := p.Office(pd.ProviderOfficeID)
	if !ok {
		b.issues.unresolved("providerDetails.providerOfficeId", strconv.Itoa(pd.ProviderOfficeID))
		return
	}
	c.Office.DisplayValue = office.Name

	c.Supervisor = b.contact("providerDetails.supervisorContactId", office, pd.SupervisorContactID)
	c.FeeEarner = b.contact("providerDetails.feeEarnerContactId", office, pd.FeeEarnerContactID)
}

func (b *builder) contact(path string, office lookup.Office, id string) models.DisplayValue {
	dv := models.DisplayValue{ID: id, DisplayValue: id}
	if id == "" {
		return dv
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		b.issues.unresolved(path, id)
		return dv
	}
	contact, ok := office.FeeEarner(n)
	if !ok {
		b.issues.unresolved(path, id)
		return dv
	}
	dv.DisplayValue = contact.Name
	return dv
}

func (b *builder) proceeding(path string, p source.Proceeding, col *source.CategoryOfLaw, emergency bool) ProceedingContext {
	pc := ProceedingContext{
		Source:            p,
		ProceedingType:    b.value(path+".proceedingType", lookup.DomainProceedingType, p.ProceedingType),
		MatterType:        b.value(path+".matterType", lookup.DomainMatterType, p.MatterType),
		LevelOfService:    b.value(path+".levelOfService", lookup.DomainLevelOfService, p.LevelOfService),
		ClientInvolvement: b.value(path+".clientInvolvementType", lookup.DomainClientInvolvement, p.ClientInvolvementType),
		Status:            b.value(path+".status", lookup.DomainProceedingStatus, p.Status),
	}
	pc.LarScope = pc.ProceedingType.Attributes[lookup.AttrLarScope]

	for i, sl := range p.ScopeLimitations {
		pc.ScopeLimitations = append(pc.ScopeLimitations,
			b.value(fmt.Sprintf("%s.scopeLimitations[%d]", path, i), lookup.DomainScopeLimitation, sl.ScopeLimitation))
	}
	pc.CostLimitation = b.costLimitation(path, p, col, emergency)

	if o := p.Outcome; o != nil {
		pc.Court = b.value(path+".outcome.courtCode", lookup.DomainCourt, o.CourtCode)
		pc.Result = b.value(path+".outcome.result", lookup.DomainOutcomeResult, o.Result)
		pc.StageEnd = b.value(path+".outcome.stageEnd", lookup.DomainStageEnd, o.StageEnd)
	}
	return pc
}

// costLimitation is the largest limit over the proceeding's scope limitations.
func (b *builder) costLimitation(path string, p source.Proceeding, col *source.CategoryOfLaw, emergency bool) money.Amount {
	if col == nil || p.MatterType == "" || p.ProceedingType == "" || p.LevelOfService == "" ||
		len(p.ScopeLimitations) == 0 {
		return money.Zero
	}

	q := lookup.ScopeLimitationQuery{
		CategoryOfLaw:  col.CategoryOfLawCode,
		MatterType:     p.MatterType,
		ProceedingType: p.ProceedingType,
		LevelOfService: p.LevelOfService,
		Emergency:      emergency,
	}
	highest := money.Zero
	for i, sl := range p.ScopeLimitations {
		if b.err != nil {
			break
		}
		q.ScopeLimitation = sl.ScopeLimitation
		limit, err := b.r.CostLimitation(b.ctx, q)
		if !b.resolve(fmt.Sprintf("%s.scopeLimitations[%d].costLimitation", path, i),
			lookup.DomainScopeLimitation, sl.ScopeLimitation, err) {
			continue
		}
		highest = money.Max(highest, money.New(limit))
	}
	return highest
}

func (b *builder) priorAuthority(path string, pa source.PriorAuthority) PriorAuthorityContext {
	pac := PriorAuthorityContext{
		Source: pa,
		Type:   Resolved{Code: pa.PriorAuthorityType, Display: pa.PriorAuthorityType},
	}
	if pa.PriorAuthorityType == "" || b.err != nil {
		return pac
	}

	t, err := b.r.PriorAuthorityType(b.ctx, pa.PriorAuthorityType)
	if !b.resolve(path+".priorAuthorityType", "prior-authority-type", pa.PriorAuthorityType, err) {
		for _, d := range pa.Details {
			pac.Items = append(pac.Items, PriorAuthorityItemContext{
				Item:  lookup.PriorAuthorityItem{Code: d.Name, Description: d.Name},
				Value: Resolved{Code: d.Value, Display: d.Value},
			})
		}
		return pac
	}
	pac.Type.Display = t.Description
	pac.ValueRequired = t.ValueRequired

	for i, d := range pa.Details {
		item := lookup.PriorAuthorityItem{Code: d.Name, Description: d.Name}
		for _, candidate := range t.Items {
			if candidate.Code == d.Name {
				item = candidate
				break
			}
		}
		value := Resolved{Code: d.Value, Display: d.Value}
		if item.DataType == lookup.DataTypeLOV && item.LovCode != "" {
			value = b.value(fmt.Sprintf("%s.details[%d]", path, i), lookup.Domain(item.LovCode), d.Value)
		}
		pac.Items = append(pac.Items, PriorAuthorityItemContext{Item: item, Value: value})
	}
	return pac
}

func (b *builder) awardType(path, code string) models.AwardType {
	v := b.value(path, lookup.DomainAwardType, code)
	switch t := models.AwardType(v.Attributes[lookup.AttrAwardType]); t {
	case models.AwardTypeCost, models.AwardTypeFinancial, models.AwardTypeLand, models.AwardTypeOtherAsset:
		return t
	}
	return ""
}

// providerBilledAmount is what was billed outside the listed cost limitations.
func providerBilledAmount(col *source.CategoryOfLaw) money.Amount {
	if col == nil || col.TotalPaidToDate == nil || col.CostLimitations == nil {
		return money.Zero
	}
	billed := decimal.Zero
	for _, cl := range col.CostLimitations {
		if cl.PaidToDate != nil {
			billed = billed.Add(*cl.PaidToDate)
		}
	}
	return money.New(col.TotalPaidToDate.Sub(billed))
}

func isDraft(p source.Proceeding) bool {
	return strings.EqualFold(p.Status, models.ProceedingStatusDraft)
}

func allDraft(ps []source.Proceeding) bool {
	for _, p := range ps {
		if !isDraft(p) {
			return false
		}
	}
	return true
}

// mostRecent picks the latest dated result. Undated results sort first; ties keep the earlier.
func mostRecent(results []source.AssessmentResult) *source.AssessmentResult {
	var best *source.AssessmentResult
	for i := range results {
		r := &results[i]
		switch {
		case best == nil:
			best = r
		case r.Date == nil:
		case best.Date == nil || r.Date.After(*best.Date):
			best = r
		}
	}
	return best
}
