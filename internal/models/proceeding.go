// internal/models/proceeding.go
package models

import "caab-workers/internal/money"

// Proceeding status codes.
const (
	ProceedingStatusDraft     = "DRAFT"
	ProceedingStatusSubmitted = "SUBMITTED"
)

// Proceeding is one proceeding on the case. EbsID is empty until the upstream system issues one.
type Proceeding struct {
	ID                *int               `json:"id,omitempty"`
	EbsID             string             `json:"ebsId,omitempty"`
	Edited            bool               `json:"edited"`
	LeadProceedingInd bool               `json:"leadProceedingInd"`
	ProceedingType    DisplayValue       `json:"proceedingType"`
	MatterType        DisplayValue       `json:"matterType"`
	LevelOfService    DisplayValue       `json:"levelOfService"`
	ClientInvolvement DisplayValue       `json:"clientInvolvement"`
	Status            DisplayValue       `json:"status"`
	TypeOfOrder       DisplayValue       `json:"typeOfOrder"`
	Description       string             `json:"description,omitempty"`
	LarScope          string             `json:"larScope,omitempty"`
	CostLimitation    money.Amount       `json:"costLimitation"`
	ScopeLimitations  []ScopeLimitation  `json:"scopeLimitations,omitempty"`
	Outcome           *ProceedingOutcome `json:"outcome,omitempty"`
}

type ScopeLimitation struct {
	ID                     *int         `json:"id,omitempty"`
	EbsID                  string       `json:"ebsId,omitempty"`
	ScopeLimitation        DisplayValue `json:"scopeLimitation"`
	ScopeLimitationWording string       `json:"scopeLimitationWording,omitempty"`
	DefaultInd             bool         `json:"defaultInd"`
	DelegatedFuncApplyInd  bool         `json:"delegatedFuncApplyInd"`
}

type ProceedingOutcome struct {
	ProceedingCaseID      string       `json:"proceedingCaseId,omitempty"`
	Description           string       `json:"description,omitempty"`
	MatterType            DisplayValue `json:"matterType"`
	ProceedingType        DisplayValue `json:"proceedingType"`
	AdrInfo               string       `json:"adrInfo,omitempty"`
	AlternativeResolution string       `json:"alternativeResolution,omitempty"`
	CourtCode             string       `json:"courtCode,omitempty"`
	CourtName             string       `json:"courtName,omitempty"`
	DateOfFinalWork       *Date        `json:"dateOfFinalWork,omitempty"`
	ResolutionMethod      string       `json:"resolutionMethod,omitempty"`
	Result                DisplayValue `json:"result"`
	ResultInfo            string       `json:"resultInfo,omitempty"`
	StageEnd              DisplayValue `json:"stageEnd"`
	WiderBenefits         string       `json:"widerBenefits,omitempty"`
	OutcomeCourtCaseNo    string       `json:"outcomeCourtCaseNo,omitempty"`
}

func IntPtr(i int) *int {
	return &i
}
