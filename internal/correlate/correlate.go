// Package correlate derives the stable ids that link proceedings and opponents across the
// canonical model, the upstream payloads and the assessment graph.
package correlate

import (
	"fmt"
	"strconv"
	"strings"

	"caab-workers/internal/models"
)

// Prefixes for locally issued ids. Upstream ids are numeric so the namespaces never overlap.
const (
	ProceedingPrefix = "P_"
	OpponentPrefix   = "OPPONENT_"
)

// MissingKeyError reports an entity that cannot be correlated.
type MissingKeyError struct {
	Entity string
	Detail string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing correlation key for %s: %s", e.Entity, e.Detail)
}

// CaseReference checks the root key of every mapping.
func CaseReference(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return &MissingKeyError{Entity: "case", Detail: "caseReferenceNumber is empty"}
	}
	return nil
}

// ProceedingID is the upstream id, else the local id with the proceeding prefix.
func ProceedingID(p models.Proceeding) (string, error) {
	if p.EbsID != "" {
		return p.EbsID, nil
	}
	if p.ID != nil {
		return ProceedingPrefix + strconv.Itoa(*p.ID), nil
	}
	return "", &MissingKeyError{
		Entity: "proceeding",
		Detail: fmt.Sprintf("proceeding %q has neither ebsId nor id", p.ProceedingType.ID),
	}
}

// ProceedingIDs correlates every proceeding, failing on the first one without a key.
func ProceedingIDs(ps []models.Proceeding) ([]string, error) {
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		id, err := ProceedingID(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// slotSeparator joins the composite slots. encodeSlot never emits two underscores in a row
// nor one at either end, so the slots of a composite id can always be told apart.
const slotSeparator = "__"

// OpponentID never fails. Without an upstream or local id it falls back to a composite of the
// variant, the party name and, for individuals, the date of birth. Individuals always carry every
// slot, empty or not, so a name never shifts into a neighbouring slot.
func OpponentID(o models.Opponent) string {
	if o.EbsID != "" {
		return o.EbsID
	}
	if o.ID != nil {
		return OpponentPrefix + strconv.Itoa(*o.ID)
	}

	slots := []string{string(o.Type())}
	switch p := o.Party.(type) {
	case *models.Individual:
		dob := ""
		if p.DateOfBirth != nil {
			dob = p.DateOfBirth.Compact()
		}
		slots = append(slots, p.Title, p.FirstName, p.MiddleNames, p.Surname, dob)
	case *models.Organisation:
		slots = append(slots, p.OrganisationName)
	}
	for i, s := range slots {
		slots[i] = encodeSlot(s)
	}
	return OpponentPrefix + strings.Join(slots, slotSeparator)
}

// encodeSlot upper-cases s and keeps letters and digits. Whitespace runs become a single
// underscore and any other byte is written as '-' and two hex digits.
func encodeSlot(s string) string {
	fields := strings.Fields(strings.ToUpper(s))
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('_')
		}
		for j := 0; j < len(f); j++ {
			c := f[j]
			if ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
				b.WriteByte(c)
				continue
			}
			fmt.Fprintf(&b, "-%02X", c)
		}
	}
	return b.String()
}
