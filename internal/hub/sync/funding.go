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

// SyncFundings pushes the researcher's unprocessed funding invitee rows.
// An unreadable profile leaves the rows untouched for the next pass.
func (s *Syncer) SyncFundings(ctx context.Context, org *model.Organisation, user *model.User, rows []repo.PendingRow) error {
	rows = dedupeRows(rows)
	client, err := s.clients(org, user)
	if err != nil {
		return err
	}
	profile := client.FetchProfile(ctx)
	if profile == nil {
		log.Infow("profile unavailable, leaving funding rows for the next pass",
			"user", user.Email, "org", org.Name)
		return nil
	}
	candidates := profile.FundingCandidates(org.ClientID)
	matcher := NewMatcher()

	type pending struct {
		rec     *model.FundingRecord
		invitee *model.FundingInvitee
	}
	var batch []pending
	for _, row := range rows {
		invitee, err := s.repos.Funding.GetInvitee(row.InviteeID)
		if err != nil {
			log.Errorf("loading funding invitee %d: %v", row.InviteeID, err)
			continue
		}
		rec, err := s.repos.Funding.GetRecord(row.RecordID)
		if err != nil {
			log.Errorf("loading funding record %d: %v", row.RecordID, err)
			continue
		}
		matcher.Reserve(invitee.PutCode)
		batch = append(batch, pending{rec: rec, invitee: invitee})
	}

	for _, p := range batch {
		contribs, err := s.repos.Funding.Contributors(p.rec.ID)
		if err != nil {
			log.Errorf("loading funding contributors of %d: %v", p.rec.ID, err)
			continue
		}
		extIDs, err := s.repos.Funding.ExternalIDs(p.rec.ID)
		if err != nil {
			log.Errorf("loading funding external ids of %d: %v", p.rec.ID, err)
			continue
		}
		if p.invitee.PutCode == nil {
			if code, ok := matcher.Match(candidates, emptyActivity, fundingAccept(p.rec, org)); ok {
				p.invitee.PutCode = &code
			}
		}
		result, err := client.CreateOrUpdateFunding(ctx, p.rec, p.invitee, contribs, extIDs)
		if err != nil {
			if registry.IsNotFound(err) && p.invitee.PutCode != nil {
				p.invitee.PutCode = nil
			}
			p.invitee.AddStatusLine(exceptionStatus(err))
			p.rec.AddStatusLine(recordErrorStatus(err))
			metrics.RecordsProcessed.WithLabelValues("funding", "error").Inc()
		} else {
			p.invitee.PutCode = &result.PutCode
			p.invitee.AddStatusLine(createdStatus("Funding", result.Created))
			s.adoptResearcherID(user, result.ResearcherID)
			metrics.RecordsProcessed.WithLabelValues("funding", outcome(result.Created)).Inc()
		}
		now := time.Now().UTC()
		p.invitee.ProcessedAt = &now
		if err := s.repos.Funding.SaveInvitee(p.invitee); err != nil {
			log.Errorf("saving funding invitee %d: %v", p.invitee.ID, err)
		}
		if err := s.repos.Funding.SaveRecord(p.rec); err != nil {
			log.Errorf("saving funding record %d: %v", p.rec.ID, err)
		}
	}
	return nil
}

func fundingAccept(rec *model.FundingRecord, org *model.Organisation) func(registry.Candidate) bool {
	orgName := fallbackName(rec.OrgName, org.Name)
	return func(cand registry.Candidate) bool {
		return strings.EqualFold(strings.TrimSpace(cand.Title), strings.TrimSpace(rec.Title)) &&
			strings.EqualFold(cand.Type, rec.Type) &&
			strings.EqualFold(strings.TrimSpace(cand.OrgName), strings.TrimSpace(orgName))
	}
}

func fallbackName(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
