package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAffiliationType(t *testing.T) {
	for _, code := range []string{"faculty", "staff", "emp", " Staff "} {
		kind, ok := ParseAffiliationType(code)
		assert.True(t, ok, code)
		assert.Equal(t, AffiliationEmployment, kind, code)
	}
	for _, code := range []string{"student", "edu", "alum", "EDU"} {
		kind, ok := ParseAffiliationType(code)
		assert.True(t, ok, code)
		assert.Equal(t, AffiliationEducation, kind, code)
	}
	_, ok := ParseAffiliationType("visitor")
	assert.False(t, ok)
}

func TestAffiliationsFromTypes(t *testing.T) {
	assert.Equal(t, AffiliationEmployment|AffiliationEducation,
		AffiliationsFromTypes([]string{"staff", "student", "bogus"}))
	assert.Equal(t, AffiliationEmployment, AffiliationsFromTypes([]string{"faculty", "emp"}))
	assert.Equal(t, AffiliationNone, AffiliationsFromTypes(nil))
}

func TestAffiliationString(t *testing.T) {
	assert.Equal(t, "Employment", AffiliationEmployment.String())
	assert.Equal(t, "Employment, Education", (AffiliationEmployment | AffiliationEducation).String())
	assert.Equal(t, "", AffiliationNone.String())
}
