// internal/assessment/result.go
package assessment

import (
	"strings"
	"time"

	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"

	"github.com/shopspring/decimal"
)

// SummaryScreen is the single screen a folded result carries.
const SummaryScreen = "SUMMARY"

const uncertainValue = "UNCERTAIN_VALUE_STRING"

// UserDefined reports whether the user answered attr, as opposed to the engine inferring it or
// the projection pre-populating it.
func UserDefined(attr models.Attribute) bool {
	return !strings.EqualFold(attr.InferencingType, "intermediate") &&
		!strings.HasPrefix(attr.Name, "SA_") &&
		!attr.Prepopulated
}

// ToResult folds g into the result shape attached to an upstream submission. Attributes without
// a value are dropped, and so are instances and entities left empty.
func ToResult(g *models.AssessmentGraph, rb Rulebase) *source.AssessmentResult {
	if g == nil {
		return nil
	}

	screen := source.AssessmentScreen{ScreenName: SummaryScreen}
	index := map[string]int{}
	var entities []source.AssessmentEntity

	for _, et := range g.EntityTypes {
		for _, e := range et.Entities {
			i, ok := index[et.Name]
			if !ok {
				i = len(entities)
				index[et.Name] = i
				entities = append(entities, source.AssessmentEntity{
					SequenceNumber: i + 1,
					EntityName:     et.Name,
				})
			}

			inst := source.AssessmentInstance{InstanceLabel: e.Name}
			for _, attr := range e.Attributes {
				if attr.Value == nil {
					continue
				}
				inst.Attributes = append(inst.Attributes, source.AssessmentAttribute{
					Attribute:      attr.Name,
					ResponseType:   attr.Type,
					ResponseValue:  *attr.Value,
					UserDefinedInd: UserDefined(attr),
				})
			}
			if len(inst.Attributes) > 0 {
				entities[i].Instances = append(entities[i].Instances, inst)
			}
		}
	}

	for _, ent := range entities {
		if len(ent.Instances) > 0 {
			screen.Entity = append(screen.Entity, ent)
		}
	}

	return &source.AssessmentResult{
		Results:           []source.Goal{{Attribute: rb.Goal, AttributeValue: "true"}},
		AssessmentDetails: []source.AssessmentScreen{screen},
	}
}

// DisplayValue formats an attribute for people. It returns nil for unanswered and uncertain
// values.
func DisplayValue(attr models.Attribute) *string {
	if attr.Value == nil || strings.EqualFold(*attr.Value, uncertainValue) {
		return nil
	}
	v := *attr.Value

	switch strings.ToLower(attr.Type) {
	case TypeDate:
		if t, err := time.Parse("2006-01-02", v); err == nil {
			v = t.Format("02/01/2006")
		}
	case TypeCurrency:
		if d, err := decimal.NewFromString(v); err == nil {
			v = "£" + d.StringFixed(2)
		}
	case TypeNumber:
		if d, err := decimal.NewFromString(v); err == nil {
			v = d.Round(2).String()
		}
	case TypeBoolean:
		if strings.EqualFold(v, "true") {
			v = "Yes"
		} else {
			v = "No"
		}
	}
	return &v
}
