package repo

import (
	"gorm.io/gorm"

	"github.com/synchub/synchub/internal/hub/model"
)

type IAPICallRepository interface {
	Create(call *model.APICallLog) error
	Update(call *model.APICallLog) error
}

type APICallRepo struct {
	db *gorm.DB
}

func NewAPICallRepo(db *gorm.DB) IAPICallRepository {
	return &APICallRepo{db: db}
}

func (r *APICallRepo) Create(call *model.APICallLog) error {
	return r.db.Create(call).Error
}

func (r *APICallRepo) Update(call *model.APICallLog) error {
	return r.db.Save(call).Error
}
