package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/synchub/synchub/internal/hub/model"
)

type IShortURLRepository interface {
	// FindByURL returns the existing short id for the long URL, or nil.
	FindByURL(url string) (*model.ShortURL, error)
	Create(shortURL *model.ShortURL) error
}

type ShortURLRepo struct {
	db *gorm.DB
}

func NewShortURLRepo(db *gorm.DB) IShortURLRepository {
	return &ShortURLRepo{db: db}
}

func (r *ShortURLRepo) FindByURL(url string) (*model.ShortURL, error) {
	var shortURL model.ShortURL
	err := r.db.Where("url = ?", url).First(&shortURL).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shortURL, nil
}

func (r *ShortURLRepo) Create(shortURL *model.ShortURL) error {
	return r.db.Create(shortURL).Error
}
