package scheduler

import (
	"context"

	"github.com/synchub/synchub/internal/hub/invite"
	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/repo"
	"github.com/synchub/synchub/internal/pkg/mailer"
)

// Conf holds batch scheduler tuning.
type Conf struct {
	// MaxRows caps how many pending rows one pass picks up.
	MaxRows int `toml:"max_rows" json:"maxRows"`
	// RecordInterval and TaskInterval are cron expressions for the record
	// passes and the task expiry pass.
	RecordInterval string `toml:"record_interval" json:"recordInterval"`
	TaskInterval   string `toml:"task_interval" json:"taskInterval"`
}

const defaultMaxRows = 20

// ISyncer is the synchronizer surface one pass dispatches to.
type ISyncer interface {
	SyncAffiliations(ctx context.Context, org *model.Organisation, user *model.User, rows []repo.PendingRow) error
	SyncFundings(ctx context.Context, org *model.Organisation, user *model.User, rows []repo.PendingRow) error
	SyncWorks(ctx context.Context, org *model.Organisation, user *model.User, rows []repo.PendingRow) error
	SyncPeerReviews(ctx context.Context, org *model.Organisation, user *model.User, rows []repo.PendingRow) error
}

// IInviter issues consent invitations for rows without a usable token.
type IInviter interface {
	Invite(ctx context.Context, inviter *model.User, org *model.Organisation, inv invite.Invitation) error
}

// ILocker is the advisory lock keeping concurrent invocations of the same
// pass apart.
type ILocker interface {
	TryAcquire(ctx context.Context, name string) (bool, error)
	Release(ctx context.Context, name string)
}

// Scheduler drives the periodic batch passes: routing pending rows to the
// synchronizers or the invitation issuer, rolling records up into tasks,
// and expiring stale tasks.
type Scheduler struct {
	repos   *repo.Repos
	syncer  ISyncer
	inviter IInviter
	locker  ILocker
	sender  mailer.ISender
	baseURL string
	maxRows int
}

func New(repos *repo.Repos, syncer ISyncer, inviter IInviter, locker ILocker,
	sender mailer.ISender, baseURL string, maxRows int) *Scheduler {
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}
	return &Scheduler{
		repos:   repos,
		syncer:  syncer,
		inviter: inviter,
		locker:  locker,
		sender:  sender,
		baseURL: baseURL,
		maxRows: maxRows,
	}
}
