package invite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/repo"
	"github.com/synchub/synchub/internal/pkg/mailer"
)

type fakeUserRepo struct {
	users       map[string]*model.User
	userOrgs    map[uint64]*model.UserOrg
	invitations []*model.UserInvitation
	nextID      uint64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    map[string]*model.User{},
		userOrgs: map[uint64]*model.UserOrg{},
	}
}

func (f *fakeUserRepo) Get(id uint64) (*model.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return &model.User{}, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*model.User, error) {
	return f.users[email], nil
}

func (f *fakeUserRepo) GetOrCreateByEmail(email string) (*model.User, bool, error) {
	if user, ok := f.users[email]; ok {
		return user, false, nil
	}
	f.nextID++
	user := &model.User{BaseModel: model.BaseModel{ID: f.nextID}, Email: email}
	f.users[email] = user
	return user, true, nil
}

func (f *fakeUserRepo) Save(user *model.User) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetUserOrg(userID, orgID uint64) (*model.UserOrg, error) {
	return f.userOrgs[userID], nil
}

func (f *fakeUserRepo) GetOrCreateUserOrg(userID, orgID uint64) (*model.UserOrg, bool, error) {
	if userOrg, ok := f.userOrgs[userID]; ok {
		return userOrg, false, nil
	}
	userOrg := &model.UserOrg{UserID: userID, OrgID: orgID}
	f.userOrgs[userID] = userOrg
	return userOrg, true, nil
}

func (f *fakeUserRepo) SaveUserOrg(userOrg *model.UserOrg) error {
	f.userOrgs[userOrg.UserID] = userOrg
	return nil
}

func (f *fakeUserRepo) CreateInvitation(invitation *model.UserInvitation) error {
	f.invitations = append(f.invitations, invitation)
	return nil
}

type fakeAffiliationRepo struct {
	statusLines map[string][]string
}

func (f *fakeAffiliationRepo) Unprocessed(maxRows int) ([]repo.PendingRow, error) { return nil, nil }

func (f *fakeAffiliationRepo) Get(id uint64) (*model.AffiliationRecord, error) { return nil, nil }

func (f *fakeAffiliationRepo) Save(record *model.AffiliationRecord) error { return nil }

func (f *fakeAffiliationRepo) AppendStatusByEmail(email, line string) error {
	f.statusLines[email] = append(f.statusLines[email], line)
	return nil
}

func (f *fakeAffiliationRepo) MarkInviteFailed(taskID uint64, email, status string) error {
	return nil
}

func (f *fakeAffiliationRepo) HasUnprocessed(taskID uint64) (bool, error) { return false, nil }

func (f *fakeAffiliationRepo) ErrorCount(taskID uint64) (int64, error) { return 0, nil }

func (f *fakeAffiliationRepo) RowCount(taskID uint64) (int64, error) { return 0, nil }

func (f *fakeAffiliationRepo) DistinctResearcherCount(taskID uint64) (int64, error) { return 0, nil }

type fakeSender struct {
	templates []string
	vars      []map[string]interface{}
	fail      bool
}

func (f *fakeSender) Send(templateName, recipient, replyTo, subject string, vars map[string]interface{}) error {
	if f.fail {
		return assert.AnError
	}
	f.templates = append(f.templates, templateName)
	f.vars = append(f.vars, vars)
	return nil
}

type fakeShortener struct{}

func (f *fakeShortener) Shorten(longURL string) (string, error) {
	return "https://hub.example.edu/u/abc123", nil
}

func testIssuer() (*Issuer, *fakeUserRepo, *fakeAffiliationRepo, *fakeSender) {
	users := newFakeUserRepo()
	affs := &fakeAffiliationRepo{statusLines: map[string][]string{}}
	sender := &fakeSender{}
	repos := &repo.Repos{User: users, Affiliation: affs}
	issuer := NewIssuer(repos, sender, &fakeShortener{}, "test-secret", "https://hub.example.edu")
	return issuer, users, affs, sender
}

var testOrg = &model.Organisation{
	BaseModel: model.BaseModel{ID: 1},
	Name:      "Example University",
	Country:   "NZ",
}

func TestConfirmationTokenRoundTrip(t *testing.T) {
	issuer, _, _, _ := testIssuer()

	token, err := issuer.confirmationToken("jane@example.edu", "Example University")
	require.NoError(t, err)

	email, orgName, err := issuer.VerifyConfirmationToken(token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.edu", email)
	assert.Equal(t, "Example University", orgName)

	other := NewIssuer(&repo.Repos{}, nil, nil, "other-secret", "")
	_, _, err = other.VerifyConfirmationToken(token)
	assert.Error(t, err)
}

func TestInviteCreatesUserAndSendsEmail(t *testing.T) {
	issuer, users, affs, sender := testIssuer()
	inviter := &model.User{BaseModel: model.BaseModel{ID: 9}, Email: "admin@example.edu"}

	inv := Invitation{
		TaskID:           1,
		Kind:             model.TaskTypeAffiliation,
		Email:            "Jane.Doe@Example.edu",
		FirstName:        "Jane",
		LastName:         "Doe",
		AffiliationTypes: []string{"staff", "student"},
	}
	require.NoError(t, issuer.Invite(context.Background(), inviter, testOrg, inv))

	user := users.users["jane.doe@example.edu"]
	require.NotNil(t, user, "email must be lowercased")
	assert.True(t, user.Roles.Has(model.RoleResearcher))
	assert.Equal(t, "Jane Doe", user.Name)

	userOrg := users.userOrgs[user.ID]
	require.NotNil(t, userOrg)
	assert.Equal(t, model.AffiliationEmployment|model.AffiliationEducation, userOrg.Affiliations)

	require.Len(t, users.invitations, 1)
	audit := users.invitations[0]
	assert.Equal(t, "jane.doe@example.edu", audit.Email)
	assert.Equal(t, uint64(9), audit.InviterID)
	assert.NotEmpty(t, audit.Token)
	require.NotNil(t, audit.SentAt)

	lines := affs.statusLines["jane.doe@example.edu"]
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "The invitation sent at")

	require.Len(t, sender.templates, 1)
	assert.Equal(t, mailer.TemplateInvitation, sender.templates[0])
	assert.Equal(t, "https://hub.example.edu/u/abc123", sender.vars[0]["InviteURL"])
	assert.Equal(t, "Employment, Education", sender.vars[0]["Kind"])
	assert.Equal(t, false, sender.vars[0]["Resent"])
}

func TestReinviteMarksResent(t *testing.T) {
	issuer, users, affs, sender := testIssuer()
	user := &model.User{BaseModel: model.BaseModel{ID: 3}, Email: "jane@example.edu", FirstName: "Jane"}
	users.users[user.Email] = user

	rows := []repo.PendingRow{
		{TaskID: 1, TaskCreatedBy: 9, AffiliationType: "staff"},
	}
	require.NoError(t, issuer.Reinvite(context.Background(), testOrg, user, rows))

	require.Len(t, sender.vars, 1)
	assert.Equal(t, true, sender.vars[0]["Resent"])

	lines := affs.statusLines["jane@example.edu"]
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "The invitation resent at")
}

func TestInviteReturnsSendError(t *testing.T) {
	issuer, users, _, sender := testIssuer()
	sender.fail = true

	inv := Invitation{Kind: model.TaskTypeWork, Email: "bob@example.edu"}
	err := issuer.Invite(context.Background(), &model.User{}, testOrg, inv)
	require.Error(t, err)
	assert.Empty(t, users.invitations, "no audit row for a failed delivery")
}
