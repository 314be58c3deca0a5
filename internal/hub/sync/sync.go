package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/registry"
	"github.com/synchub/synchub/internal/hub/repo"
	"github.com/synchub/synchub/pkg/log"
)

// ClientFactory builds a registry client for one researcher of one
// organisation. Tests substitute a fake.
type ClientFactory func(org *model.Organisation, user *model.User) (registry.IClient, error)

// ReinviteFunc resends a consent invitation when a researcher's profile can
// no longer be read with the stored token.
type ReinviteFunc func(ctx context.Context, org *model.Organisation, user *model.User, rows []repo.PendingRow) error

// Syncer pushes unprocessed record rows of one researcher into the remote
// registry, one kind at a time.
type Syncer struct {
	repos    *repo.Repos
	clients  ClientFactory
	reinvite ReinviteFunc
}

func NewSyncer(repos *repo.Repos, clients ClientFactory, reinvite ReinviteFunc) *Syncer {
	return &Syncer{repos: repos, clients: clients, reinvite: reinvite}
}

// dedupeRows drops duplicate (record, invitee) rows the consent join may
// produce when a user matches by both email and researcher id.
func dedupeRows(rows []repo.PendingRow) []repo.PendingRow {
	seen := make(map[uint64]bool, len(rows))
	out := rows[:0]
	for _, row := range rows {
		if seen[row.InviteeID] {
			continue
		}
		seen[row.InviteeID] = true
		out = append(out, row)
	}
	return out
}

// errMessage extracts the registry's own message from an API error, falling
// back to the plain error text.
func errMessage(err error) string {
	var apiErr *registry.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return err.Error()
}

func exceptionStatus(err error) string {
	return fmt.Sprintf("Exception occured processing the record: %s.", errMessage(err))
}

func recordErrorStatus(err error) string {
	return fmt.Sprintf("Error processing record. Fix and reset to enable this record to be processed: %s.", errMessage(err))
}

func createdStatus(kind string, created bool) string {
	if created {
		return kind + " record was created."
	}
	return kind + " record was updated."
}

func unsupportedTypeStatus(affiliationType string) string {
	return fmt.Sprintf("Affiliation type %q is not supported. Valid values are: %s.",
		affiliationType, strings.Join(model.ValidAffiliationTypes, ", "))
}

// adoptResearcherID stores the researcher id the registry reported for a
// newly created entry when the local user does not have one yet.
func (s *Syncer) adoptResearcherID(user *model.User, researcherID string) {
	if researcherID == "" || user.ResearcherID == researcherID {
		return
	}
	if user.ResearcherID != "" {
		return
	}
	user.ResearcherID = researcherID
	if err := s.repos.User.Save(user); err != nil {
		log.Errorf("saving researcher id for %s: %v", user.Email, err)
	}
}
