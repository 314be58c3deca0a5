package sync

import (
	"github.com/synchub/synchub/internal/hub/registry"
)

// Matcher assigns remote put-codes to local rows within one batch pass.
// Every remote entry may back at most one local row per run, so the taken
// set spans the whole pass and is seeded with the codes rows already hold.
type Matcher struct {
	taken map[int64]bool
}

func NewMatcher() *Matcher {
	return &Matcher{taken: make(map[int64]bool)}
}

// Reserve marks already-assigned put-codes as taken. Nil codes are ignored.
func (m *Matcher) Reserve(codes ...*int64) {
	for _, code := range codes {
		if code != nil {
			m.taken[*code] = true
		}
	}
}

// Match walks the candidates in profile order and claims the first untaken
// one that the kind's empty predicate marks as a placeholder or that the
// kind's accept predicate matches. Returns the claimed put-code, or false
// when nothing matched.
func (m *Matcher) Match(candidates []registry.Candidate, empty, accept func(registry.Candidate) bool) (int64, bool) {
	for _, cand := range candidates {
		if m.taken[cand.PutCode] {
			continue
		}
		if !empty(cand) && !accept(cand) {
			continue
		}
		m.taken[cand.PutCode] = true
		return cand.PutCode, true
	}
	return 0, false
}

// emptyAffiliation marks employment/education placeholders. An affiliation
// summary always names its organization, so only dates, department and role
// decide emptiness.
func emptyAffiliation(cand registry.Candidate) bool {
	return cand.Department == "" && cand.Role == "" &&
		cand.StartDate == nil && cand.EndDate == nil
}

// emptyActivity marks funding and work placeholders, where the identity
// fields include the title, type and organization name.
func emptyActivity(cand registry.Candidate) bool {
	return cand.Title == "" && cand.Type == "" && cand.OrgName == "" &&
		cand.StartDate == nil && cand.EndDate == nil
}
