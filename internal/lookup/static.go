// internal/lookup/static.go
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// ScopeLimitationCost is one row of the static cost-limitation table.
type ScopeLimitationCost struct {
	ScopeLimitationQuery
	CostLimitation          decimal.Decimal `json:"costLimitation"`
	EmergencyCostLimitation decimal.Decimal `json:"emergencyCostLimitation"`
}

// Dataset is the on-disk form of a static resolver.
type Dataset struct {
	Values              map[Domain][]Value    `json:"values"`
	Providers           []Provider            `json:"providers"`
	PriorAuthorityTypes []PriorAuthorityType  `json:"priorAuthorityTypes"`
	ScopeLimitations    []ScopeLimitationCost `json:"scopeLimitations"`
}

// Static serves reference data held in memory. It is safe for concurrent use because it is
// never written after construction.
type Static struct {
	values    map[Domain]map[string]Value
	providers map[int]Provider
	paTypes   map[string]PriorAuthorityType
	costs     []ScopeLimitationCost
}

func NewStatic(ds Dataset) *Static {
	s := &Static{
		values:    make(map[Domain]map[string]Value, len(ds.Values)),
		providers: make(map[int]Provider, len(ds.Providers)),
		paTypes:   make(map[string]PriorAuthorityType, len(ds.PriorAuthorityTypes)),
		costs:     ds.ScopeLimitations,
	}
	for domain, values := range ds.Values {
		byCode := make(map[string]Value, len(values))
		for _, v := range values {
			byCode[v.Code] = v
		}
		s.values[domain] = byCode
	}
	for _, p := range ds.Providers {
		s.providers[p.ID] = p
	}
	for _, t := range ds.PriorAuthorityTypes {
		s.paTypes[t.Code] = t
	}
	return s
}

// LoadStatic reads a Dataset from a JSON file.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lookup file %s: %w", path, err)
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse lookup file %s: %w", path, err)
	}
	return NewStatic(ds), nil
}

func (s *Static) Value(_ context.Context, domain Domain, code string) (Value, error) {
	if v, ok := s.values[domain][code]; ok {
		return v, nil
	}
	return Value{}, ErrNotFound
}

func (s *Static) Provider(_ context.Context, id int) (Provider, error) {
	if p, ok := s.providers[id]; ok {
		return p, nil
	}
	return Provider{}, ErrNotFound
}

func (s *Static) PriorAuthorityType(_ context.Context, code string) (PriorAuthorityType, error) {
	if t, ok := s.paTypes[code]; ok {
		return t, nil
	}
	return PriorAuthorityType{}, ErrNotFound
}

func (s *Static) CostLimitation(_ context.Context, q ScopeLimitationQuery) (decimal.Decimal, error) {
	for _, row := range s.costs {
		key := row.ScopeLimitationQuery
		if key.CategoryOfLaw != q.CategoryOfLaw || key.MatterType != q.MatterType ||
			key.ProceedingType != q.ProceedingType || key.LevelOfService != q.LevelOfService ||
			key.ScopeLimitation != q.ScopeLimitation {
			continue
		}
		if q.Emergency {
			return row.EmergencyCostLimitation, nil
		}
		return row.CostLimitation, nil
	}
	return decimal.Zero, ErrNotFound
}
