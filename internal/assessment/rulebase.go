// Package assessment projects a canonical application into the entity graph the rules engine
// works on, and folds the engine's answers back into the upstream result shape.
package assessment

import (
	"fmt"
	"strings"
)

// Rulebase identifies one of the rules-engine rule sets.
type Rulebase struct {
	ID   int
	Name string
	Goal string
}

var (
	Means  = Rulebase{ID: 1, Name: "meansAssessment", Goal: "CLIENT_PROV_LA"}
	Merits = Rulebase{ID: 2, Name: "meritsAssessment", Goal: "ASSESS_COMPLETE"}
)

// PrepopName names the pre-population graph seeded into the engine.
func (r Rulebase) PrepopName() string {
	return r.Name + "_PREPOP"
}

// RulebaseByName accepts the rule-set name, its prepop name, or MEANS / MERITS.
func RulebaseByName(name string) (Rulebase, error) {
	n := strings.TrimSuffix(strings.TrimSpace(name), "_PREPOP")
	for _, rb := range []Rulebase{Means, Merits} {
		if strings.EqualFold(n, rb.Name) {
			return rb, nil
		}
	}
	switch strings.ToUpper(n) {
	case "MEANS":
		return Means, nil
	case "MERITS":
		return Merits, nil
	}
	return Rulebase{}, fmt.Errorf("unknown rulebase %q", name)
}

// Declared attribute types.
const (
	TypeText     = "text"
	TypeBoolean  = "boolean"
	TypeDate     = "date"
	TypeCurrency = "currency"
	TypeNumber   = "number"
)

// Attribute names. MARITIAL_STATUS is spelt as the engine expects it.
const (
	AttrApplicationCaseRef         = "APPLICATION_CASE_REF"
	AttrAppAmendType               = "APP_AMEND_TYPE"
	AttrCategoryOfLaw              = "CATEGORY_OF_LAW"
	AttrClientVulnerable           = "CLIENT_VULNERABLE"
	AttrCostLimitChangedFlag       = "COST_LIMIT_CHANGED_FLAG"
	AttrCountry                    = "COUNTRY"
	AttrCounty                     = "COUNTY"
	AttrDateAssessmentStarted      = "DATE_ASSESSMENT_STARTED"
	AttrDateOfBirth                = "DATE_OF_BIRTH"
	AttrDefaultCostLimitation      = "DEFAULT_COST_LIMITATION"
	AttrDelegatedFunctionsDate     = "DELEGATED_FUNCTIONS_DATE"
	AttrDevolvedPowersContractFlag = "DEVOLVED_POWERS_CONTRACT_FLAG"
	AttrEcfFlag                    = "ECF_FLAG"
	AttrFirstName                  = "FIRST_NAME"
	AttrHighProfile                = "HIGH_PROFILE"
	AttrHomeOfficeNo               = "HOME_OFFICE_NO"
	AttrLarScopeFlag               = "LAR_SCOPE_FLAG"
	AttrLeadProceedingChanged      = "LEAD_PROCEEDING_CHANGED"
	AttrMaritalStatus              = "MARITIAL_STATUS"
	AttrNewApplOrAmendment         = "NEW_APPL_OR_AMENDMENT"
	AttrNiNo                       = "NI_NO"
	AttrPoaOrBillFlag              = "POA_OR_BILL_FLAG"
	AttrPostCode                   = "POST_CODE"
	AttrProviderCaseReference      = "PROVIDER_CASE_REFERENCE"
	AttrProviderHasContract        = "PROVIDER_HAS_CONTRACT"
	AttrReqCostLimitation          = "REQ_COST_LIMITATION"
	AttrSurname                    = "SURNAME"
	AttrSurnameAtBirth             = "SURNAME_AT_BIRTH"
	AttrUserProviderFirmID         = "USER_PROVIDER_FIRM_ID"
	AttrUserType                   = "USER_TYPE"

	AttrClientInvolvementType = "CLIENT_INVOLVEMENT_TYPE"
	AttrLeadProceeding        = "LEAD_PROCEEDING"
	AttrLevelOfService        = "LEVEL_OF_SERVICE"
	AttrMatterType            = "MATTER_TYPE"
	AttrNewOrExisting         = "NEW_OR_EXISTING"
	AttrProceedingID          = "PROCEEDING_ID"
	AttrProceedingName        = "PROCEEDING_NAME"
	AttrProceedingOrderType   = "PROCEEDING_ORDER_TYPE"
	AttrRequestedScope        = "REQUESTED_SCOPE"
	AttrScopeLimitIsDefault   = "SCOPE_LIMIT_IS_DEFAULT"

	AttrOpponentDOB          = "OPPONENT_DOB"
	AttrOtherPartyID         = "OTHER_PARTY_ID"
	AttrOtherPartyName       = "OTHER_PARTY_NAME"
	AttrOtherPartyType       = "OTHER_PARTY_TYPE"
	AttrRelationshipToCase   = "RELATIONSHIP_TO_CASE"
	AttrRelationshipToClient = "RELATIONSHIP_TO_CLIENT"
)

// attributeTypes is the declared type of every projected attribute.
var attributeTypes = map[string]string{
	AttrApplicationCaseRef:         TypeText,
	AttrAppAmendType:               TypeText,
	AttrCategoryOfLaw:              TypeText,
	AttrClientVulnerable:           TypeBoolean,
	AttrCostLimitChangedFlag:       TypeText,
	AttrCountry:                    TypeText,
	AttrCounty:                     TypeText,
	AttrDateAssessmentStarted:      TypeDate,
	AttrDateOfBirth:                TypeDate,
	AttrDefaultCostLimitation:      TypeCurrency,
	AttrDelegatedFunctionsDate:     TypeDate,
	AttrDevolvedPowersContractFlag: TypeText,
	AttrEcfFlag:                    TypeBoolean,
	AttrFirstName:                  TypeText,
	AttrHighProfile:                TypeBoolean,
	AttrHomeOfficeNo:               TypeText,
	AttrLarScopeFlag:               TypeBoolean,
	AttrLeadProceedingChanged:      TypeBoolean,
	AttrMaritalStatus:              TypeText,
	AttrNewApplOrAmendment:         TypeText,
	AttrNiNo:                       TypeText,
	AttrPoaOrBillFlag:              TypeText,
	AttrPostCode:                   TypeText,
	AttrProviderCaseReference:      TypeText,
	AttrProviderHasContract:        TypeBoolean,
	AttrReqCostLimitation:          TypeCurrency,
	AttrSurname:                    TypeText,
	AttrSurnameAtBirth:             TypeText,
	AttrUserProviderFirmID:         TypeNumber,
	AttrUserType:                   TypeText,

	AttrClientInvolvementType: TypeText,
	AttrLeadProceeding:        TypeBoolean,
	AttrLevelOfService:        TypeText,
	AttrMatterType:            TypeText,
	AttrNewOrExisting:         TypeText,
	AttrProceedingID:          TypeText,
	AttrProceedingName:        TypeText,
	AttrProceedingOrderType:   TypeText,
	AttrRequestedScope:        TypeText,
	AttrScopeLimitIsDefault:   TypeBoolean,

	AttrOpponentDOB:          TypeDate,
	AttrOtherPartyID:         TypeText,
	AttrOtherPartyName:       TypeText,
	AttrOtherPartyType:       TypeText,
	AttrRelationshipToCase:   TypeText,
	AttrRelationshipToClient: TypeText,
}

// Relation names on the global entity.
const (
	RelationOpponent   = "opponent"
	RelationProceeding = "proceeding"
)
