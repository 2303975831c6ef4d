// internal/models/assessment.go
package models

import "time"

// Entity type names issued to the rules engine.
const (
	EntityTypeGlobal     = "global"
	EntityTypeProceeding = "PROCEEDING"
	EntityTypeOpponent   = "OPPONENT"
)

// Assessment status values.
const (
	AssessmentStatusNotStarted = "NOT_STARTED"
	AssessmentStatusIncomplete = "INCOMPLETE"
	AssessmentStatusComplete   = "COMPLETE"
	AssessmentStatusRequired   = "REQUIRED"
	AssessmentStatusError      = "ERROR"
	AssessmentStatusUnchanged  = "UNCHANGED"
)

// AssessmentGraph is the entity/attribute graph exchanged with the rules engine.
type AssessmentGraph struct {
	Name                string       `json:"name"`
	CaseReferenceNumber string       `json:"caseReferenceNumber"`
	ProviderID          string       `json:"providerId,omitempty"`
	Status              string       `json:"status,omitempty"`
	Created             *time.Time   `json:"created,omitempty"`
	EntityTypes         []EntityType `json:"entityTypes"`
}

type EntityType struct {
	Name     string   `json:"name"`
	Entities []Entity `json:"entities"`
}

type Entity struct {
	Name         string      `json:"name"`
	Prepopulated bool        `json:"prepopulated"`
	Completed    bool        `json:"completed"`
	Attributes   []Attribute `json:"attributes"`
	Relations    []Relation  `json:"relations,omitempty"`
}

// Attribute values are always strings formatted by declared type; nil means unanswered.
type Attribute struct {
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Value           *string `json:"value"`
	Prepopulated    bool    `json:"prepopulated"`
	Asked           bool    `json:"asked"`
	InferencingType string  `json:"inferencingType,omitempty"`
}

// Relation lists the entity names a global entity points at.
type Relation struct {
	Name         string   `json:"name"`
	Prepopulated bool     `json:"prepopulated"`
	Targets      []string `json:"targets"`
}

// EntityType returns the named entity type or nil.
func (g *AssessmentGraph) EntityType(name string) *EntityType {
	if g == nil {
		return nil
	}
	for i := range g.EntityTypes {
		if g.EntityTypes[i].Name == name {
			return &g.EntityTypes[i]
		}
	}
	return nil
}

// Entity returns the named entity or nil.
func (t *EntityType) Entity(name string) *Entity {
	if t == nil {
		return nil
	}
	for i := range t.Entities {
		if t.Entities[i].Name == name {
			return &t.Entities[i]
		}
	}
	return nil
}

// Attribute returns the named attribute or nil.
func (e *Entity) Attribute(name string) *Attribute {
	if e == nil {
		return nil
	}
	for i := range e.Attributes {
		if e.Attributes[i].Name == name {
			return &e.Attributes[i]
		}
	}
	return nil
}

// StringPtr is a convenience for attribute values.
func StringPtr(s string) *string {
	return &s
}
