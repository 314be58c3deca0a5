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

// SyncWorks pushes the researcher's unprocessed work invitee rows. An
// unreadable profile leaves the rows untouched for the next pass.
func (s *Syncer) SyncWorks(ctx context.Context, org *model.Organisation, user *model.User, rows []repo.PendingRow) error {
	rows = dedupeRows(rows)
	client, err := s.clients(org, user)
	if err != nil {
		return err
	}
	profile := client.FetchProfile(ctx)
	if profile == nil {
		log.Infow("profile unavailable, leaving work rows for the next pass",
			"user", user.Email, "org", org.Name)
		return nil
	}
	candidates := profile.WorkCandidates(org.ClientID)
	matcher := NewMatcher()

	type pending struct {
		rec     *model.WorkRecord
		invitee *model.WorkInvitee
	}
	var batch []pending
	for _, row := range rows {
		invitee, err := s.repos.Work.GetInvitee(row.InviteeID)
		if err != nil {
			log.Errorf("loading work invitee %d: %v", row.InviteeID, err)
			continue
		}
		rec, err := s.repos.Work.GetRecord(row.RecordID)
		if err != nil {
			log.Errorf("loading work record %d: %v", row.RecordID, err)
			continue
		}
		matcher.Reserve(invitee.PutCode)
		batch = append(batch, pending{rec: rec, invitee: invitee})
	}

	for _, p := range batch {
		contribs, err := s.repos.Work.Contributors(p.rec.ID)
		if err != nil {
			log.Errorf("loading work contributors of %d: %v", p.rec.ID, err)
			continue
		}
		extIDs, err := s.repos.Work.ExternalIDs(p.rec.ID)
		if err != nil {
			log.Errorf("loading work external ids of %d: %v", p.rec.ID, err)
			continue
		}
		if p.invitee.PutCode == nil {
			if code, ok := matcher.Match(candidates, emptyActivity, workAccept(p.rec)); ok {
				p.invitee.PutCode = &code
			}
		}
		result, err := client.CreateOrUpdateWork(ctx, p.rec, p.invitee, contribs, extIDs)
		if err != nil {
			if registry.IsNotFound(err) && p.invitee.PutCode != nil {
				p.invitee.PutCode = nil
			}
			p.invitee.AddStatusLine(exceptionStatus(err))
			p.rec.AddStatusLine(recordErrorStatus(err))
			metrics.RecordsProcessed.WithLabelValues("work", "error").Inc()
		} else {
			p.invitee.PutCode = &result.PutCode
			p.invitee.AddStatusLine(createdStatus("Work", result.Created))
			s.adoptResearcherID(user, result.ResearcherID)
			metrics.RecordsProcessed.WithLabelValues("work", outcome(result.Created)).Inc()
		}
		now := time.Now().UTC()
		p.invitee.ProcessedAt = &now
		if err := s.repos.Work.SaveInvitee(p.invitee); err != nil {
			log.Errorf("saving work invitee %d: %v", p.invitee.ID, err)
		}
		if err := s.repos.Work.SaveRecord(p.rec); err != nil {
			log.Errorf("saving work record %d: %v", p.rec.ID, err)
		}
	}
	return nil
}

func workAccept(rec *model.WorkRecord) func(registry.Candidate) bool {
	return func(cand registry.Candidate) bool {
		return strings.EqualFold(strings.TrimSpace(cand.Title), strings.TrimSpace(rec.Title)) &&
			strings.EqualFold(cand.Type, rec.Type)
	}
}
