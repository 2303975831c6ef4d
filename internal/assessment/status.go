// internal/assessment/status.go
package assessment

import (
	"strings"
	"time"

	"caab-workers/internal/correlate"
	"caab-workers/internal/models"
)

// opponentEditGrace is how long after the graph was created an opponent edit still counts as
// part of the same assessment.
const opponentEditGrace = 10 * time.Second

// ReferenceConsistent reports whether every global entity belongs to caseRef. The first global
// entity carrying APPLICATION_CASE_REF must agree with both its own name and caseRef.
func ReferenceConsistent(g *models.AssessmentGraph, caseRef string) bool {
	globals := g.EntityType(models.EntityTypeGlobal)
	if globals == nil {
		return true
	}
	for _, e := range globals.Entities {
		if !strings.EqualFold(e.Name, caseRef) {
			return false
		}
	}
	for i := range globals.Entities {
		e := &globals.Entities[i]
		attr := e.Attribute(AttrApplicationCaseRef)
		if attr == nil {
			continue
		}
		return attr.Value != nil &&
			strings.EqualFold(*attr.Value, e.Name) &&
			strings.EqualFold(*attr.Value, caseRef)
	}
	return true
}

// Prune returns a copy of g without the proceeding and opponent entities the application no
// longer has, and without their relation targets on the global entity.
func Prune(g *models.AssessmentGraph, app models.Application) *models.AssessmentGraph {
	out := clone(g)
	if out == nil {
		return nil
	}

	keep := map[string]map[string]bool{
		models.EntityTypeProceeding: {},
		models.EntityTypeOpponent:   {},
	}
	for _, p := range app.Proceedings {
		if id, err := correlate.ProceedingID(p); err == nil {
			keep[models.EntityTypeProceeding][id] = true
		}
	}
	for _, o := range app.Opponents {
		keep[models.EntityTypeOpponent][correlate.OpponentID(o)] = true
	}
	relationType := map[string]string{
		RelationProceeding: models.EntityTypeProceeding,
		RelationOpponent:   models.EntityTypeOpponent,
	}

	for i := range out.EntityTypes {
		et := &out.EntityTypes[i]
		switch et.Name {
		case models.EntityTypeProceeding, models.EntityTypeOpponent:
			ids := keep[et.Name]
			kept := et.Entities[:0]
			for _, e := range et.Entities {
				if ids[e.Name] {
					kept = append(kept, e)
				}
			}
			et.Entities = kept
		case models.EntityTypeGlobal:
			for j := range et.Entities {
				for k := range et.Entities[j].Relations {
					r := &et.Entities[j].Relations[k]
					ids, ok := keep[relationType[r.Name]]
					if !ok {
						continue
					}
					targets := r.Targets[:0]
					for _, t := range r.Targets {
						if ids[t] {
							targets = append(targets, t)
						}
					}
					r.Targets = targets
				}
			}
		}
	}
	return out
}

// ProceedingKeyChanged reports whether any proceeding is missing from the graph or differs from
// its entity in matter type, proceeding type, client involvement or requested scope. An
// application without proceedings has nothing to compare and never reports a change.
func ProceedingKeyChanged(app models.Application, g *models.AssessmentGraph) bool {
	proceedings := g.EntityType(models.EntityTypeProceeding)
	for _, p := range app.Proceedings {
		id, err := correlate.ProceedingID(p)
		if err != nil {
			return true
		}
		e := proceedings.Entity(id)
		if e == nil {
			return true
		}
		if attrValue(e, AttrMatterType) != p.MatterType.ID ||
			attrValue(e, AttrProceedingName) != p.ProceedingType.ID ||
			attrValue(e, AttrClientInvolvementType) != p.ClientInvolvement.ID {
			return true
		}
		if e.Attribute(AttrRequestedScope) != nil && attrValue(e, AttrRequestedScope) != RequestedScope(p) {
			return true
		}
	}
	return false
}

// ReassessmentRequired reports whether a completed assessment no longer reflects the application.
// Amendments are never flagged here.
func ReassessmentRequired(app models.Application, g *models.AssessmentGraph, rb Rulebase) bool {
	if app.Amendment || g == nil {
		return false
	}
	if ProceedingKeyChanged(app, g) {
		return true
	}

	proceedings := g.EntityType(models.EntityTypeProceeding)
	if proceedings != nil && len(app.Proceedings) < len(proceedings.Entities) {
		return true
	}
	if app.MeritsReassessmentRequired {
		return true
	}

	if g.Created != nil {
		for _, o := range app.Opponents {
			if o.Type() == models.OpponentIndividual && o.LastSaved != nil &&
				o.LastSaved.Sub(*g.Created) > opponentEditGrace {
				return true
			}
		}
	}

	opponents := g.EntityType(models.EntityTypeOpponent)
	if opponents != nil && len(app.Opponents) < len(opponents.Entities) {
		return true
	}

	if strings.EqualFold(rb.Name, Merits.Name) {
		limit := app.CostLimit.LimitAtTimeOfMerits
		requested := app.Costs.RequestedCostLimitation
		if limit == nil || (requested != nil && limit.LessThan(*requested)) {
			return true
		}
	}
	return false
}

// Status is the status to record on g after the application was saved. A missing graph has not
// been started. A finished assessment of a new application becomes REQUIRED once it goes stale;
// amendments are REQUIRED or UNCHANGED.
func Status(app models.Application, g *models.AssessmentGraph, rb Rulebase) string {
	if g == nil {
		return models.AssessmentStatusNotStarted
	}
	status := g.Status
	if status == "" {
		status = models.AssessmentStatusNotStarted
	}

	if app.Amendment {
		if ReassessmentRequired(app, g, rb) {
			return models.AssessmentStatusRequired
		}
		return models.AssessmentStatusUnchanged
	}
	if (status == models.AssessmentStatusComplete || status == models.AssessmentStatusError) &&
		ReassessmentRequired(app, g, rb) {
		return models.AssessmentStatusRequired
	}
	return status
}

// ApplicationTypeChanged reports a mismatch between the application type or devolved-powers date
// and what the graph was built with. It returns true when they differ.
func ApplicationTypeChanged(app models.Application, g *models.AssessmentGraph) bool {
	globals := g.EntityType(models.EntityTypeGlobal)
	if globals == nil {
		return false
	}

	appType := app.ApplicationType.ID
	var dateUsed *models.Date
	if dp := app.ApplicationType.DevolvedPowers; dp != nil {
		dateUsed = dp.DateUsed
	}

	for i := range globals.Entities {
		e := &globals.Entities[i]

		if attr := e.Attribute(AttrAppAmendType); attr != nil && attr.Value != nil {
			graphType := *attr.Value
			if appType == "" || !strings.EqualFold(appType, graphType) {
				ecfAsSubstantive := strings.EqualFold(appType, models.AppTypeExceptionalCaseFunding) &&
					strings.EqualFold(graphType, models.AppTypeSubstantive)
				if !ecfAsSubstantive {
					return true
				}
			}
		}

		attr := e.Attribute(AttrDelegatedFunctionsDate)
		if attr == nil {
			if dateUsed != nil {
				return true
			}
			continue
		}
		if attr.Value == nil {
			continue
		}
		graphDate, err := time.Parse(graphDateLayout, *attr.Value)
		if err != nil || dateUsed == nil || !models.DateOf(graphDate).Equal(*dateUsed) {
			return true
		}
	}
	return false
}

func attrValue(e *models.Entity, name string) string {
	a := e.Attribute(name)
	if a == nil || a.Value == nil {
		return ""
	}
	return *a.Value
}
