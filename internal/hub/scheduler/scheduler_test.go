package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synchub/synchub/internal/hub/invite"
	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/repo"
)

type fakeLocker struct {
	held map[string]bool
}

func (f *fakeLocker) TryAcquire(ctx context.Context, name string) (bool, error) {
	if f.held[name] {
		return false, nil
	}
	return true, nil
}

func (f *fakeLocker) Release(ctx context.Context, name string) {}

type fakeSyncer struct {
	affiliationRows []repo.PendingRow
	users           []string
}

func (f *fakeSyncer) SyncAffiliations(ctx context.Context, org *model.Organisation, user *model.User, rows []repo.PendingRow) error {
	f.affiliationRows = append(f.affiliationRows, rows...)
	f.users = append(f.users, user.Email)
	return nil
}

func (f *fakeSyncer) SyncFundings(ctx context.Context, org *model.Organisation, user *model.User, rows []repo.PendingRow) error {
	return nil
}

func (f *fakeSyncer) SyncWorks(ctx context.Context, org *model.Organisation, user *model.User, rows []repo.PendingRow) error {
	return nil
}

func (f *fakeSyncer) SyncPeerReviews(ctx context.Context, org *model.Organisation, user *model.User, rows []repo.PendingRow) error {
	return nil
}

type fakeInviter struct {
	invitations []invite.Invitation
	fail        bool
}

func (f *fakeInviter) Invite(ctx context.Context, inviter *model.User, org *model.Organisation, inv invite.Invitation) error {
	f.invitations = append(f.invitations, inv)
	if f.fail {
		return assert.AnError
	}
	return nil
}

type fakeSender struct {
	templates  []string
	recipients []string
	vars       []map[string]interface{}
}

func (f *fakeSender) Send(templateName, recipient, replyTo, subject string, vars map[string]interface{}) error {
	f.templates = append(f.templates, templateName)
	f.recipients = append(f.recipients, recipient)
	f.vars = append(f.vars, vars)
	return nil
}

type fakeAffiliationRepo struct {
	pending     []repo.PendingRow
	fetched     int
	failedMarks []string
	unprocessed bool
	errorCount  int64
	rowCount    int64
	researchers int64
}

func (f *fakeAffiliationRepo) Unprocessed(maxRows int) ([]repo.PendingRow, error) {
	f.fetched++
	return f.pending, nil
}

func (f *fakeAffiliationRepo) Get(id uint64) (*model.AffiliationRecord, error) { return nil, nil }

func (f *fakeAffiliationRepo) Save(record *model.AffiliationRecord) error { return nil }

func (f *fakeAffiliationRepo) AppendStatusByEmail(email, line string) error { return nil }

func (f *fakeAffiliationRepo) MarkInviteFailed(taskID uint64, email, status string) error {
	f.failedMarks = append(f.failedMarks, status)
	return nil
}

func (f *fakeAffiliationRepo) HasUnprocessed(taskID uint64) (bool, error) {
	return f.unprocessed, nil
}

func (f *fakeAffiliationRepo) ErrorCount(taskID uint64) (int64, error) { return f.errorCount, nil }

func (f *fakeAffiliationRepo) RowCount(taskID uint64) (int64, error) { return f.rowCount, nil }

func (f *fakeAffiliationRepo) DistinctResearcherCount(taskID uint64) (int64, error) {
	return f.researchers, nil
}

type fakeTaskRepo struct {
	tasks          map[uint64]*model.Task
	deletedExpired bool
}

func (f *fakeTaskRepo) Get(id uint64) (*model.Task, error) { return f.tasks[id], nil }

func (f *fakeTaskRepo) Save(task *model.Task) error {
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeTaskRepo) DeleteExpired(now time.Time) error {
	f.deletedExpired = true
	return nil
}

func (f *fakeTaskRepo) ListWithoutExpiry(limit int) ([]model.Task, error) {
	var out []model.Task
	for _, task := range f.tasks {
		if task.ExpiresAt == nil {
			out = append(out, *task)
		}
	}
	return out, nil
}

type fakeOrgRepo struct{}

func (f *fakeOrgRepo) Get(id uint64) (*model.Organisation, error) {
	return &model.Organisation{BaseModel: model.BaseModel{ID: id}, Name: "Example University"}, nil
}

type fakeUserRepo struct{}

func (f *fakeUserRepo) Get(id uint64) (*model.User, error) {
	return &model.User{BaseModel: model.BaseModel{ID: id}, Email: "admin@example.edu", Name: "Admin"}, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*model.User, error) { return nil, nil }

func (f *fakeUserRepo) GetOrCreateByEmail(email string) (*model.User, bool, error) {
	return nil, false, nil
}

func (f *fakeUserRepo) Save(user *model.User) error { return nil }

func (f *fakeUserRepo) GetUserOrg(userID, orgID uint64) (*model.UserOrg, error) { return nil, nil }

func (f *fakeUserRepo) GetOrCreateUserOrg(userID, orgID uint64) (*model.UserOrg, bool, error) {
	return nil, false, nil
}

func (f *fakeUserRepo) SaveUserOrg(userOrg *model.UserOrg) error { return nil }

func (f *fakeUserRepo) CreateInvitation(invitation *model.UserInvitation) error { return nil }

type testEnv struct {
	sched   *Scheduler
	affs    *fakeAffiliationRepo
	tasks   *fakeTaskRepo
	syncer  *fakeSyncer
	inviter *fakeInviter
	locker  *fakeLocker
	sender  *fakeSender
}

func newTestEnv() *testEnv {
	env := &testEnv{
		affs:    &fakeAffiliationRepo{},
		tasks:   &fakeTaskRepo{tasks: map[uint64]*model.Task{}},
		syncer:  &fakeSyncer{},
		inviter: &fakeInviter{},
		locker:  &fakeLocker{held: map[string]bool{}},
		sender:  &fakeSender{},
	}
	repos := &repo.Repos{
		User:        &fakeUserRepo{},
		Org:         &fakeOrgRepo{},
		Task:        env.tasks,
		Affiliation: env.affs,
	}
	env.sched = New(repos, env.syncer, env.inviter, env.locker, env.sender, "https://hub.example.edu", 20)
	return env
}

func TestRunPassRoutesInviteAndSync(t *testing.T) {
	env := newTestEnv()
	env.affs.unprocessed = true
	env.affs.pending = []repo.PendingRow{
		// consented researcher goes to the synchronizer
		{TaskID: 1, OrgID: 1, RecordID: 10, InviteeID: 10, UserID: 2,
			ResearcherID: "0000-0001-2345-678X", HasToken: true, Email: "jane@example.edu"},
		// unknown researcher gets an invitation, types unioned per email
		{TaskID: 1, OrgID: 1, RecordID: 11, InviteeID: 11,
			Email: "Bob@example.edu", FirstName: "Bob", AffiliationType: "staff"},
		{TaskID: 1, OrgID: 1, RecordID: 12, InviteeID: 12,
			Email: "Bob@example.edu", FirstName: "Bob", AffiliationType: "student"},
	}

	require.NoError(t, env.sched.ProcessAffiliationRecords(context.Background()))

	require.Len(t, env.syncer.affiliationRows, 1)
	assert.Equal(t, uint64(10), env.syncer.affiliationRows[0].RecordID)

	require.Len(t, env.inviter.invitations, 1)
	inv := env.inviter.invitations[0]
	assert.Equal(t, "bob@example.edu", inv.Email)
	assert.ElementsMatch(t, []string{"staff", "student"}, inv.AffiliationTypes)
}

func TestRunPassSkipsWhenLockHeld(t *testing.T) {
	env := newTestEnv()
	env.locker.held["affiliation-records"] = true

	require.NoError(t, env.sched.ProcessAffiliationRecords(context.Background()))
	assert.Zero(t, env.affs.fetched)
}

func TestFailedInvitationMarksAffiliationRows(t *testing.T) {
	env := newTestEnv()
	env.affs.unprocessed = true
	env.inviter.fail = true
	env.affs.pending = []repo.PendingRow{
		{TaskID: 1, OrgID: 1, RecordID: 11, InviteeID: 11, Email: "bob@example.edu"},
	}

	require.NoError(t, env.sched.ProcessAffiliationRecords(context.Background()))

	require.Len(t, env.affs.failedMarks, 1)
	assert.Contains(t, env.affs.failedMarks[0], "Failed to send an invitation:")
}

func TestTaskRollUpCompletesAndNotifies(t *testing.T) {
	env := newTestEnv()
	env.affs.unprocessed = false
	env.affs.rowCount = 3
	env.affs.errorCount = 1
	env.affs.researchers = 2
	env.tasks.tasks[1] = &model.Task{
		BaseModel: model.BaseModel{ID: 1},
		TaskID:    "t-1",
		Filename:  "upload.csv",
		CreatedBy: 5,
		TaskType:  model.TaskTypeAffiliation,
	}
	env.affs.pending = []repo.PendingRow{
		{TaskID: 1, OrgID: 1, RecordID: 10, InviteeID: 10, UserID: 2,
			ResearcherID: "0000-0001-2345-678X", HasToken: true, Email: "jane@example.edu"},
	}

	require.NoError(t, env.sched.ProcessAffiliationRecords(context.Background()))

	require.NotNil(t, env.tasks.tasks[1].CompletedAt)
	require.Len(t, env.sender.templates, 1)
	assert.Equal(t, "task_completed", env.sender.templates[0])
	assert.Equal(t, "admin@example.edu", env.sender.recipients[0])
	assert.Equal(t, int64(2), env.sender.vars[0]["ResearcherCount"])
}

func TestTaskRollUpWaitsForUnprocessedRows(t *testing.T) {
	env := newTestEnv()
	env.affs.unprocessed = true
	env.tasks.tasks[1] = &model.Task{BaseModel: model.BaseModel{ID: 1}, TaskType: model.TaskTypeAffiliation}
	env.affs.pending = []repo.PendingRow{
		{TaskID: 1, OrgID: 1, RecordID: 10, InviteeID: 10, UserID: 2,
			ResearcherID: "0000-0001-2345-678X", HasToken: true, Email: "jane@example.edu"},
	}

	require.NoError(t, env.sched.ProcessAffiliationRecords(context.Background()))

	assert.Nil(t, env.tasks.tasks[1].CompletedAt)
	assert.Empty(t, env.sender.templates)
}

func TestTaskExpiry(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// untouched task: four weeks from upload
	task := &model.Task{BaseModel: model.BaseModel{CreatedAt: created, UpdatedAt: created}}
	assert.Equal(t, created.Add(4*7*24*time.Hour), TaskExpiry(task))

	// a late change extends the lifetime to two weeks past it
	task.UpdatedAt = created.Add(3 * 7 * 24 * time.Hour)
	assert.Equal(t, task.UpdatedAt.Add(2*7*24*time.Hour), TaskExpiry(task))
}

func TestProcessTasksWarnsInFinalWeek(t *testing.T) {
	env := newTestEnv()
	now := time.Now().UTC()

	// six days until expiry: gets a date and a warning
	closeTask := &model.Task{
		BaseModel: model.BaseModel{
			ID:        1,
			CreatedAt: now.Add(-4*7*24*time.Hour + 6*24*time.Hour),
			UpdatedAt: now.Add(-4*7*24*time.Hour + 6*24*time.Hour),
		},
		CreatedBy: 5,
		TaskType:  model.TaskTypeAffiliation,
	}
	// a fresh task stays untouched
	freshTask := &model.Task{
		BaseModel: model.BaseModel{ID: 2, CreatedAt: now, UpdatedAt: now},
		CreatedBy: 5,
		TaskType:  model.TaskTypeAffiliation,
	}
	env.tasks.tasks[1] = closeTask
	env.tasks.tasks[2] = freshTask

	require.NoError(t, env.sched.ProcessTasks(context.Background()))

	assert.True(t, env.tasks.deletedExpired)
	require.NotNil(t, env.tasks.tasks[1].ExpiresAt)
	assert.Nil(t, env.tasks.tasks[2].ExpiresAt)
	require.Len(t, env.sender.templates, 1)
	assert.Equal(t, "task_expiration", env.sender.templates[0])
}
