package registry

import (
	"github.com/bytedance/sonic"

	"github.com/synchub/synchub/internal/hub/model"
)

// Profile is a parsed registry profile snapshot. It keeps the raw document
// and exposes the activity summaries the synchronizers match against.
type Profile struct {
	raw map[string]interface{}
}

// ParseProfile decodes a raw profile document.
func ParseProfile(data []byte) (*Profile, error) {
	var raw map[string]interface{}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &Profile{raw: raw}, nil
}

// Candidate is one remote activity summary flattened to the fields the
// matcher compares. Fields not applicable to the kind stay zero.
type Candidate struct {
	PutCode    int64
	Department string
	Role       string
	OrgName    string
	Title      string
	Type       string
	StartDate  *model.PartialDate
	EndDate    *model.PartialDate
}

// AffiliationCandidates returns the employment or education summaries this
// organisation created, identified by the source client id path.
func (p *Profile) AffiliationCandidates(kind model.Affiliation, clientID string) []Candidate {
	section, summaryKey := "employments", "employment-summary"
	if kind == model.AffiliationEducation {
		section, summaryKey = "educations", "education-summary"
	}
	var out []Candidate
	for _, entry := range listAt(p.raw, "activities-summary", section, summaryKey) {
		summary, ok := entry.(map[string]interface{})
		if !ok || sourceClientPath(summary) != clientID {
			continue
		}
		out = append(out, Candidate{
			PutCode:    putCode(summary),
			Department: str(summary, "department-name"),
			Role:       str(summary, "role-title"),
			OrgName:    str(mapAt(summary, "organization"), "name"),
			StartDate:  model.PartialDateFromMap(mapAt(summary, "start-date")),
			EndDate:    model.PartialDateFromMap(mapAt(summary, "end-date")),
		})
	}
	return out
}

// WorkCandidates returns the work summaries this organisation created.
func (p *Profile) WorkCandidates(clientID string) []Candidate {
	return p.groupedCandidates("works", "work-summary", clientID)
}

// FundingCandidates returns the funding summaries this organisation created.
func (p *Profile) FundingCandidates(clientID string) []Candidate {
	return p.groupedCandidates("fundings", "funding-summary", clientID)
}

func (p *Profile) groupedCandidates(section, summaryKey, clientID string) []Candidate {
	var out []Candidate
	for _, g := range listAt(p.raw, "activities-summary", section, "group") {
		group, ok := g.(map[string]interface{})
		if !ok {
			continue
		}
		for _, entry := range listAt(group, summaryKey) {
			summary, ok := entry.(map[string]interface{})
			if !ok || sourceClientPath(summary) != clientID {
				continue
			}
			out = append(out, Candidate{
				PutCode: putCode(summary),
				Title:   str(mapAt(summary, "title", "title"), "value"),
				Type:    str(summary, "type"),
				OrgName: str(mapAt(summary, "organization"), "name"),
			})
		}
	}
	return out
}

func sourceClientPath(summary map[string]interface{}) string {
	return str(mapAt(summary, "source", "source-client-id"), "path")
}

func putCode(summary map[string]interface{}) int64 {
	switch v := summary["put-code"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}

func mapAt(m map[string]interface{}, keys ...string) map[string]interface{} {
	for _, key := range keys {
		next, ok := m[key].(map[string]interface{})
		if !ok {
			return nil
		}
		m = next
	}
	return m
}

func listAt(m map[string]interface{}, keys ...string) []interface{} {
	last := len(keys) - 1
	m = mapAt(m, keys[:last]...)
	if m == nil {
		return nil
	}
	list, _ := m[keys[last]].([]interface{})
	return list
}

func str(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
