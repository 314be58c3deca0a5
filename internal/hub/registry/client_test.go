package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synchub/synchub/internal/hub/model"
)

type fakeTokenRepo struct {
	deleted bool
}

func (f *fakeTokenRepo) FindActivityToken(userID, orgID uint64) (*model.AccessToken, error) {
	return &model.AccessToken{AccessToken: "token"}, nil
}

func (f *fakeTokenRepo) DeleteActivityTokens(userID, orgID uint64) error {
	f.deleted = true
	return nil
}

func (f *fakeTokenRepo) FindWebhookToken(orgID uint64) (*model.AccessToken, error) {
	return nil, nil
}

func (f *fakeTokenRepo) ReplaceWebhookToken(token *model.AccessToken) error { return nil }

func (f *fakeTokenRepo) Create(token *model.AccessToken) error { return nil }

func testClient(t *testing.T, handler http.Handler) (*Client, *fakeTokenRepo) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := Config{APIBaseURL: server.URL, SiteURL: "https://registry.example"}
	org := &model.Organisation{
		BaseModel: model.BaseModel{ID: 1},
		Name:      "Example University",
		ClientID:  "APP-1",
		Country:   "NZ",
	}
	user := &model.User{
		BaseModel:    model.BaseModel{ID: 2},
		Email:        "jane@example.edu",
		ResearcherID: "0000-0001-2345-678X",
	}
	tokens := &fakeTokenRepo{}
	return NewClientWithToken(cfg, org, user, "token", tokens, nil), tokens
}

func TestCreateParsesLocationHeader(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/0000-0001-2345-678X/work", r.URL.Path)
		require.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		w.Header().Set("Location", "https://api.registry.example/v2.0/0000-0001-2345-678X/work/12345")
		w.WriteHeader(http.StatusCreated)
	}))

	rec := &model.WorkRecord{Title: "A Study", Type: "journal-article"}
	invitee := &model.WorkInvitee{}
	result, err := client.CreateOrUpdateWork(context.Background(), rec, invitee, nil, nil)
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, int64(12345), result.PutCode)
	assert.Equal(t, "0000-0001-2345-678X", result.ResearcherID)
}

func TestUpdateKeepsPutCode(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/0000-0001-2345-678X/funding/99", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	code := int64(99)
	rec := &model.FundingRecord{Title: "Grant", Type: "grant"}
	invitee := &model.FundingInvitee{PutCode: &code}
	result, err := client.CreateOrUpdateFunding(context.Background(), rec, invitee, nil, nil)
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, int64(99), result.PutCode)
}

func TestUpdateNotFoundReturnsAPIError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"user-message": "The resource was not found."}`))
	}))

	code := int64(404404)
	rec := &model.AffiliationRecord{AffiliationType: "staff", PutCode: &code}
	_, err := client.CreateOrUpdateAffiliation(context.Background(), rec, model.AffiliationEmployment)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "The resource was not found.", apiErr.Message())
}

func TestFetchProfileUnauthorizedDeletesTokens(t *testing.T) {
	client, tokens := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	profile := client.FetchProfile(context.Background())
	assert.Nil(t, profile)
	assert.True(t, tokens.deleted)
}

const profileBody = `{
	"activities-summary": {
		"employments": {
			"employment-summary": [
				{
					"put-code": 123,
					"department-name": "Mathematics",
					"role-title": "Lecturer",
					"start-date": {"year": {"value": "2003"}, "month": null, "day": null},
					"organization": {"name": "Example University"},
					"source": {"source-client-id": {"path": "APP-1"}}
				},
				{
					"put-code": 456,
					"department-name": "History",
					"source": {"source-client-id": {"path": "APP-OTHER"}}
				}
			]
		},
		"works": {
			"group": [
				{
					"work-summary": [
						{
							"put-code": 9,
							"title": {"title": {"value": "A Study"}},
							"type": "journal-article",
							"source": {"source-client-id": {"path": "APP-1"}}
						}
					]
				}
			]
		}
	}
}`

func TestFetchProfileCandidates(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/0000-0001-2345-678X", r.URL.Path)
		_, _ = w.Write([]byte(profileBody))
	}))

	profile := client.FetchProfile(context.Background())
	require.NotNil(t, profile)

	// only this org's entries qualify
	emps := profile.AffiliationCandidates(model.AffiliationEmployment, "APP-1")
	require.Len(t, emps, 1)
	assert.Equal(t, int64(123), emps[0].PutCode)
	assert.Equal(t, "Mathematics", emps[0].Department)
	assert.Equal(t, "Lecturer", emps[0].Role)
	assert.Equal(t, model.NewPartialDate(2003, 0, 0), emps[0].StartDate)
	assert.Nil(t, emps[0].EndDate)

	assert.Empty(t, profile.AffiliationCandidates(model.AffiliationEducation, "APP-1"))

	works := profile.WorkCandidates("APP-1")
	require.Len(t, works, 1)
	assert.Equal(t, int64(9), works[0].PutCode)
	assert.Equal(t, "A Study", works[0].Title)
	assert.Equal(t, "journal-article", works[0].Type)
}

func TestAffiliationPutCode(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(profileBody))
	}))

	assert.Equal(t, int64(123), client.AffiliationPutCode(context.Background(), model.AffiliationEmployment))
	assert.Equal(t, int64(0), client.AffiliationPutCode(context.Background(), model.AffiliationEducation))
}

func TestParseLocation(t *testing.T) {
	researcherID, code := parseLocation("https://api.registry.example/v2.0/0000-0002-0000-0001/employment/31415")
	assert.Equal(t, "0000-0002-0000-0001", researcherID)
	assert.Equal(t, int64(31415), code)

	researcherID, code = parseLocation("")
	assert.Equal(t, "", researcherID)
	assert.Equal(t, int64(0), code)
}
