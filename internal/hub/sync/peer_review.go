package sync

import (
	"context"
	"time"

	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/registry"
	"github.com/synchub/synchub/internal/hub/repo"
	"github.com/synchub/synchub/pkg/log"
	"github.com/synchub/synchub/pkg/metrics"
)

// SyncPeerReviews pushes the researcher's unprocessed peer-review invitee
// rows. Peer reviews are keyed remotely by their review group, so there is
// no candidate matching: a row either holds a put-code or creates anew.
func (s *Syncer) SyncPeerReviews(ctx context.Context, org *model.Organisation, user *model.User, rows []repo.PendingRow) error {
	rows = dedupeRows(rows)
	client, err := s.clients(org, user)
	if err != nil {
		return err
	}
	profile := client.FetchProfile(ctx)
	if profile == nil {
		log.Infow("profile unavailable, leaving peer-review rows for the next pass",
			"user", user.Email, "org", org.Name)
		return nil
	}

	for _, row := range rows {
		invitee, err := s.repos.PeerReview.GetInvitee(row.InviteeID)
		if err != nil {
			log.Errorf("loading peer-review invitee %d: %v", row.InviteeID, err)
			continue
		}
		rec, err := s.repos.PeerReview.GetRecord(row.RecordID)
		if err != nil {
			log.Errorf("loading peer-review record %d: %v", row.RecordID, err)
			continue
		}
		extIDs, err := s.repos.PeerReview.ExternalIDs(rec.ID)
		if err != nil {
			log.Errorf("loading peer-review external ids of %d: %v", rec.ID, err)
			continue
		}
		result, err := client.CreateOrUpdatePeerReview(ctx, rec, invitee, extIDs)
		if err != nil {
			if registry.IsNotFound(err) && invitee.PutCode != nil {
				invitee.PutCode = nil
			}
			invitee.AddStatusLine(exceptionStatus(err))
			rec.AddStatusLine(recordErrorStatus(err))
			metrics.RecordsProcessed.WithLabelValues("peer-review", "error").Inc()
		} else {
			invitee.PutCode = &result.PutCode
			invitee.AddStatusLine(createdStatus("Peer review", result.Created))
			s.adoptResearcherID(user, result.ResearcherID)
			metrics.RecordsProcessed.WithLabelValues("peer-review", outcome(result.Created)).Inc()
		}
		now := time.Now().UTC()
		invitee.ProcessedAt = &now
		if err := s.repos.PeerReview.SaveInvitee(invitee); err != nil {
			log.Errorf("saving peer-review invitee %d: %v", invitee.ID, err)
		}
		if err := s.repos.PeerReview.SaveRecord(rec); err != nil {
			log.Errorf("saving peer-review record %d: %v", rec.ID, err)
		}
	}
	return nil
}
