package sync

import (
	"context"
	"strings"
	"time"

	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/registry"
	"github.com/synchub/synchub/internal/hub/repo"
	"github.com/synchub/synchub/pkg/log"
	"github.com/synchub/synchub/pkg/metrics"
)

// SyncAffiliations pushes the researcher's unprocessed employment and
// education rows. When the profile cannot be read the stored token is gone
// or dead, so every row is re-invited instead.
func (s *Syncer) SyncAffiliations(ctx context.Context, org *model.Organisation, user *model.User, rows []repo.PendingRow) error {
	rows = dedupeRows(rows)
	client, err := s.clients(org, user)
	if err != nil {
		return err
	}
	profile := client.FetchProfile(ctx)
	if profile == nil {
		if s.reinvite == nil {
			return nil
		}
		return s.reinvite(ctx, org, user, rows)
	}

	kinds := []model.Affiliation{model.AffiliationEmployment, model.AffiliationEducation}
	matchers := make(map[model.Affiliation]*Matcher, len(kinds))
	candidates := make(map[model.Affiliation][]registry.Candidate, len(kinds))
	for _, kind := range kinds {
		matchers[kind] = NewMatcher()
		candidates[kind] = profile.AffiliationCandidates(kind, org.ClientID)
	}

	records := make([]*model.AffiliationRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := s.repos.Affiliation.Get(row.RecordID)
		if err != nil {
			log.Errorf("loading affiliation record %d: %v", row.RecordID, err)
			continue
		}
		records = append(records, rec)
		for _, kind := range kinds {
			matchers[kind].Reserve(rec.PutCode)
		}
	}

	for _, rec := range records {
		kind, supported := model.ParseAffiliationType(rec.AffiliationType)
		if !supported {
			rec.AddStatusLine(unsupportedTypeStatus(rec.AffiliationType))
			s.stampAffiliation(rec)
			metrics.RecordsProcessed.WithLabelValues("affiliation", "unsupported").Inc()
			continue
		}
		if rec.PutCode == nil {
			if code, ok := matchers[kind].Match(candidates[kind], emptyAffiliation, affiliationAccept(rec)); ok {
				rec.PutCode = &code
			}
		}
		result, err := client.CreateOrUpdateAffiliation(ctx, rec, kind)
		if err != nil {
			if registry.IsNotFound(err) && rec.PutCode != nil {
				// the remote entry is gone, recreate on the next run
				rec.PutCode = nil
			}
			rec.AddStatusLine(exceptionStatus(err))
			metrics.RecordsProcessed.WithLabelValues("affiliation", "error").Inc()
		} else {
			rec.PutCode = &result.PutCode
			rec.AddStatusLine(createdStatus(kind.String(), result.Created))
			s.adoptResearcherID(user, result.ResearcherID)
			metrics.RecordsProcessed.WithLabelValues("affiliation", outcome(result.Created)).Inc()
		}
		s.stampAffiliation(rec)
	}
	return nil
}

func (s *Syncer) stampAffiliation(rec *model.AffiliationRecord) {
	now := time.Now().UTC()
	rec.ProcessedAt = &now
	if err := s.repos.Affiliation.Save(rec); err != nil {
		log.Errorf("saving affiliation record %d: %v", rec.ID, err)
	}
}

func affiliationAccept(rec *model.AffiliationRecord) func(registry.Candidate) bool {
	return func(cand registry.Candidate) bool {
		return cand.StartDate.Equal(rec.StartDate) &&
			strings.EqualFold(strings.TrimSpace(cand.Department), strings.TrimSpace(rec.Department)) &&
			strings.EqualFold(strings.TrimSpace(cand.Role), strings.TrimSpace(rec.Role))
	}
}

func outcome(created bool) string {
	if created {
		return "created"
	}
	return "updated"
}
