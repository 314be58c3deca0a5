package model

import "strings"

// Affiliation is a bitmask of the record kinds a user↔organisation link
// authorizes.
type Affiliation uint8

const (
	AffiliationNone Affiliation = 0
	// AffiliationEmployment covers staff/faculty style records.
	AffiliationEmployment Affiliation = 1
	// AffiliationEducation covers student/alumni style records.
	AffiliationEducation Affiliation = 2
)

func (a Affiliation) String() string {
	switch a {
	case AffiliationEmployment:
		return "Employment"
	case AffiliationEducation:
		return "Education"
	case AffiliationEmployment | AffiliationEducation:
		return "Employment, Education"
	default:
		return ""
	}
}

// Has reports whether the bitmask contains the given kind.
func (a Affiliation) Has(kind Affiliation) bool {
	return a&kind != 0
}

var (
	empCodes = map[string]bool{"faculty": true, "staff": true, "emp": true}
	eduCodes = map[string]bool{"student": true, "edu": true, "alum": true}

	// ValidAffiliationTypes are the recognised free-text affiliation type
	// values on uploaded records.
	ValidAffiliationTypes = []string{"student", "edu", "alum", "staff", "faculty", "emp"}
)

// ParseAffiliationType maps a record's free-text affiliation type to its
// kind. The second return value is false for unrecognised types.
func ParseAffiliationType(affiliationType string) (Affiliation, bool) {
	at := strings.ToLower(strings.TrimSpace(affiliationType))
	switch {
	case empCodes[at]:
		return AffiliationEmployment, true
	case eduCodes[at]:
		return AffiliationEducation, true
	}
	return AffiliationNone, false
}

// AffiliationsFromTypes unions the kinds for a set of submitted affiliation
// type values.
func AffiliationsFromTypes(types []string) Affiliation {
	var a Affiliation
	for _, t := range types {
		if kind, ok := ParseAffiliationType(t); ok {
			a |= kind
		}
	}
	return a
}
