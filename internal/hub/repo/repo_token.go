package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/synchub/synchub/internal/hub/model"
)

type ITokenRepository interface {
	// FindActivityToken returns the stored token for (user, org) whose scope
	// contains the activities-update scope, or nil when none exists. The
	// match is by scope substring, not by expiry.
	FindActivityToken(userID, orgID uint64) (*model.AccessToken, error)
	// DeleteActivityTokens removes the now-invalid activity tokens for
	// (user, org), forcing a re-invitation.
	DeleteActivityTokens(userID, orgID uint64) error
	// FindWebhookToken returns the org's client-credentials webhook token.
	FindWebhookToken(orgID uint64) (*model.AccessToken, error)
	// ReplaceWebhookToken deletes any superseded webhook-scope tokens of the
	// org and stores the fresh one.
	ReplaceWebhookToken(token *model.AccessToken) error
	Create(token *model.AccessToken) error
}

type TokenRepo struct {
	db *gorm.DB
}

func NewTokenRepo(db *gorm.DB) ITokenRepository {
	return &TokenRepo{db: db}
}

func (r *TokenRepo) FindActivityToken(userID, orgID uint64) (*model.AccessToken, error) {
	var token model.AccessToken
	err := r.db.
		Where("user_id = ? AND org_id = ? AND scope LIKE ?", userID, orgID, "%"+model.ScopeActivitiesUpdate+"%").
		First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *TokenRepo) DeleteActivityTokens(userID, orgID uint64) error {
	return r.db.
		Where("user_id = ? AND org_id = ? AND scope LIKE ?", userID, orgID, "%"+model.ScopeActivitiesUpdate+"%").
		Delete(&model.AccessToken{}).Error
}

func (r *TokenRepo) FindWebhookToken(orgID uint64) (*model.AccessToken, error) {
	var token model.AccessToken
	err := r.db.Where("org_id = ? AND scope = ?", orgID, model.ScopeWebhook).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *TokenRepo) ReplaceWebhookToken(token *model.AccessToken) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ? AND scope = ?", token.OrgID, model.ScopeWebhook).
			Delete(&model.AccessToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
}

func (r *TokenRepo) Create(token *model.AccessToken) error {
	return r.db.Create(token).Error
}
