package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/registry"
)

func acceptTitle(title string) func(registry.Candidate) bool {
	return func(cand registry.Candidate) bool {
		return cand.Title == title
	}
}

func TestMatcherFirstMatchWins(t *testing.T) {
	m := NewMatcher()
	candidates := []registry.Candidate{
		{PutCode: 1, Title: "A", Type: "journal-article"},
		{PutCode: 2, Title: "A", Type: "journal-article"},
	}

	code, ok := m.Match(candidates, emptyActivity, acceptTitle("A"))
	assert.True(t, ok)
	assert.Equal(t, int64(1), code)

	// the first entry is taken now, the second identical one backs the
	// second row
	code, ok = m.Match(candidates, emptyActivity, acceptTitle("A"))
	assert.True(t, ok)
	assert.Equal(t, int64(2), code)

	_, ok = m.Match(candidates, emptyActivity, acceptTitle("A"))
	assert.False(t, ok)
}

func TestMatcherReserveSeedsTakenSet(t *testing.T) {
	m := NewMatcher()
	assigned := int64(1)
	m.Reserve(&assigned, nil)

	candidates := []registry.Candidate{
		{PutCode: 1, Title: "A"},
		{PutCode: 2, Title: "A"},
	}
	code, ok := m.Match(candidates, emptyActivity, acceptTitle("A"))
	assert.True(t, ok)
	assert.Equal(t, int64(2), code)
}

func TestMatcherAdoptsEmptyCandidate(t *testing.T) {
	m := NewMatcher()
	candidates := []registry.Candidate{
		{PutCode: 7},
	}
	code, ok := m.Match(candidates, emptyActivity, func(registry.Candidate) bool { return false })
	assert.True(t, ok)
	assert.Equal(t, int64(7), code)
}

// An employment summary always names its organization, so an entry carrying
// nothing but the org name is still a placeholder to be adopted.
func TestMatcherAdoptsAffiliationPlaceholderWithOrgName(t *testing.T) {
	m := NewMatcher()
	rec := &model.AffiliationRecord{
		Department: "Research Office",
		Role:       "Advisor",
		StartDate:  &model.PartialDate{Year: 2019},
	}
	candidates := []registry.Candidate{
		{PutCode: 42, OrgName: "Royal Society Te Aparangi"},
	}

	code, ok := m.Match(candidates, emptyAffiliation, affiliationAccept(rec))
	assert.True(t, ok)
	assert.Equal(t, int64(42), code)

	// the same entry is not a placeholder under funding semantics, where the
	// org name is an identity field
	_, ok = NewMatcher().Match(candidates, emptyActivity, func(registry.Candidate) bool { return false })
	assert.False(t, ok)
}

func TestMatcherNoMatch(t *testing.T) {
	m := NewMatcher()
	candidates := []registry.Candidate{
		{PutCode: 1, Title: "B"},
	}
	_, ok := m.Match(candidates, emptyActivity, acceptTitle("A"))
	assert.False(t, ok)
}
