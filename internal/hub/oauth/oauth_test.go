package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/registry"
)

type fakeTokenRepo struct {
	webhook  *model.AccessToken
	replaced int
}

func (f *fakeTokenRepo) FindActivityToken(userID, orgID uint64) (*model.AccessToken, error) {
	return nil, nil
}

func (f *fakeTokenRepo) DeleteActivityTokens(userID, orgID uint64) error { return nil }

func (f *fakeTokenRepo) FindWebhookToken(orgID uint64) (*model.AccessToken, error) {
	return f.webhook, nil
}

func (f *fakeTokenRepo) ReplaceWebhookToken(token *model.AccessToken) error {
	f.webhook = token
	f.replaced++
	return nil
}

func (f *fakeTokenRepo) Create(token *model.AccessToken) error { return nil }

func testOrg() *model.Organisation {
	return &model.Organisation{
		BaseModel:    model.BaseModel{ID: 1},
		Name:         "Example University",
		ClientID:     "APP-1",
		ClientSecret: "secret",
	}
}

func TestWebhookTokenGrantAndReuse(t *testing.T) {
	grants := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		grants++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"wh-token","token_type":"bearer","expires_in":631138518}`))
	}))
	defer server.Close()

	tokens := &fakeTokenRepo{}
	manager := NewWebhookManager(registry.Config{TokenURL: server.URL}, tokens)

	token, err := manager.WebhookToken(context.Background(), testOrg())
	require.NoError(t, err)
	assert.Equal(t, "wh-token", token)
	assert.Equal(t, 1, grants)
	require.NotNil(t, tokens.webhook)
	assert.Equal(t, model.ScopeWebhook, tokens.webhook.Scope)

	// the stored token is reused without a second grant
	token, err = manager.WebhookToken(context.Background(), testOrg())
	require.NoError(t, err)
	assert.Equal(t, "wh-token", token)
	assert.Equal(t, 1, grants)
	assert.Equal(t, 1, tokens.replaced)
}

func TestRegisterWebhook(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	tokens := &fakeTokenRepo{webhook: &model.AccessToken{AccessToken: "wh-token"}}
	manager := NewWebhookManager(registry.Config{APIBaseURL: server.URL}, tokens)
	user := &model.User{Email: "jane@example.edu", ResearcherID: "0000-0001-2345-6789"}

	err := manager.RegisterWebhook(context.Background(), testOrg(), user,
		"https://hub.example.edu/webhook/0000-0001-2345-6789")
	require.NoError(t, err)
	assert.Contains(t, gotPath, "/0000-0001-2345-6789/webhook/")
	assert.Contains(t, gotPath, "https%3A%2F%2Fhub.example.edu")
	assert.Equal(t, "Bearer wh-token", gotAuth)
}

func TestRegisterWebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	tokens := &fakeTokenRepo{webhook: &model.AccessToken{AccessToken: "wh-token"}}
	manager := NewWebhookManager(registry.Config{APIBaseURL: server.URL}, tokens)

	err := manager.RegisterWebhook(context.Background(), testOrg(),
		&model.User{ResearcherID: "0000-0001-2345-6789"}, "https://hub.example.edu/cb")
	var apiErr *registry.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)

	err = manager.RegisterWebhook(context.Background(), testOrg(), &model.User{Email: "x@y"}, "cb")
	assert.Error(t, err, "no researcher id")
}
