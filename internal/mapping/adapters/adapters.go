// internal/mapping/adapters/adapters.go
package adapters

import (
	"fmt"
	"strings"

	"caab-workers/internal/mapping"
	"caab-workers/internal/mapping/ebs"
	"caab-workers/internal/mapping/soa"
	"caab-workers/internal/mapping/source"

	"github.com/tidwall/gjson"
)

// UnknownSystemError is returned for a source system that has no adapter.
type UnknownSystemError struct {
	System string
}

func (e *UnknownSystemError) Error() string {
	return fmt.Sprintf("unknown source system %q", e.System)
}

// SOA-only property paths. Any hit means the payload is in the SOA spelling.
var soaMarkers = []string{
	"applicationDetails.meansAssesments",
	"applicationDetails.meritsAssesments",
	"applicationDetails.providerDetails.contactUserId.userLoginId",
	"recordHistory.createdBy.userLoginId",
	"recordHistory.lastUpdatedBy.userLoginId",
	"applicationDetails.otherParties.#.organisation.organizationName",
	"applicationDetails.otherParties.#.person.organizationName",
}

// Detect sniffs the schema of a raw payload. EBS is assumed unless an SOA-only key is present.
func Detect(data []byte) source.System {
	for _, path := range soaMarkers {
		r := gjson.GetBytes(data, path)
		if r.IsArray() {
			for _, v := range r.Array() {
				if v.Exists() {
					return source.SystemSOA
				}
			}
			continue
		}
		if r.Exists() {
			return source.SystemSOA
		}
	}
	return source.SystemEBS
}

// ParseSystem normalises a source system name. Empty means unknown.
func ParseSystem(s string) (source.System, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(source.SystemEBS):
		return source.SystemEBS, nil
	case string(source.SystemSOA):
		return source.SystemSOA, nil
	default:
		return "", &UnknownSystemError{System: s}
	}
}

// Decode reads a payload with the adapter for system. An empty system is detected from the payload.
func Decode(system source.System, data []byte) (mapping.Schema, error) {
	if system == "" {
		system = Detect(data)
	}
	switch system {
	case source.SystemEBS:
		c, err := ebs.Decode(data)
		if err != nil {
			return nil, err
		}
		return c, nil
	case source.SystemSOA:
		c, err := soa.Decode(data)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, &UnknownSystemError{System: string(system)}
	}
}

func EncoderFor(system source.System) (mapping.Encoder, error) {
	switch system {
	case source.SystemEBS:
		return ebs.Encoder{}, nil
	case source.SystemSOA:
		return soa.Encoder{}, nil
	default:
		return nil, &UnknownSystemError{System: string(system)}
	}
}
