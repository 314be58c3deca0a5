package oauth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/registry"
	"github.com/synchub/synchub/internal/hub/repo"
	"github.com/synchub/synchub/pkg/log"
)

// WebhookManager obtains organisation-level client-credentials tokens and
// registers profile-change webhooks with the registry.
type WebhookManager struct {
	cfg    registry.Config
	tokens repo.ITokenRepository
}

func NewWebhookManager(cfg registry.Config, tokens repo.ITokenRepository) *WebhookManager {
	return &WebhookManager{cfg: cfg, tokens: tokens}
}

// WebhookToken returns a webhook-scope token for the organisation, running
// the client-credentials grant when none is stored. A freshly granted token
// replaces any superseded one, so at most one is live per organisation.
func (m *WebhookManager) WebhookToken(ctx context.Context, org *model.Organisation) (string, error) {
	stored, err := m.tokens.FindWebhookToken(org.ID)
	if err != nil {
		return "", err
	}
	if stored != nil {
		return stored.AccessToken, nil
	}
	grant := &clientcredentials.Config{
		ClientID:     org.ClientID,
		ClientSecret: org.ClientSecret,
		TokenURL:     m.cfg.TokenURL,
		Scopes:       []string{model.ScopeWebhook},
	}
	token, err := grant.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("requesting webhook token for %s: %w", org.Name, err)
	}
	record := &model.AccessToken{
		OrgID:       org.ID,
		Scope:       model.ScopeWebhook,
		AccessToken: token.AccessToken,
	}
	if err := m.tokens.ReplaceWebhookToken(record); err != nil {
		return "", err
	}
	log.Infow("obtained webhook token", "org", org.Name)
	return token.AccessToken, nil
}

// RegisterWebhook subscribes the callback URL for profile-change events of
// one researcher.
func (m *WebhookManager) RegisterWebhook(ctx context.Context, org *model.Organisation, user *model.User, callbackURL string) error {
	if user.ResearcherID == "" {
		return fmt.Errorf("user %s has no researcher id", user.Email)
	}
	token, err := m.WebhookToken(ctx, org)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/%s/webhook/%s",
		strings.TrimRight(m.cfg.APIBaseURL, "/"), user.ResearcherID, url.QueryEscape(callbackURL))
	resp, err := resty.New().R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		Put(endpoint)
	if err != nil {
		return fmt.Errorf("registering webhook for %s: %w", user.ResearcherID, err)
	}
	if resp.StatusCode() >= 300 {
		return &registry.APIError{
			StatusCode: resp.StatusCode(),
			Method:     "PUT",
			URL:        endpoint,
			Body:       string(resp.Body()),
		}
	}
	return nil
}
