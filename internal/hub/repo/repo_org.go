package repo

import (
	"gorm.io/gorm"

	"github.com/synchub/synchub/internal/hub/model"
)

type IOrgRepository interface {
	Get(id uint64) (*model.Organisation, error)
}

type OrgRepo struct {
	db *gorm.DB
}

func NewOrgRepo(db *gorm.DB) IOrgRepository {
	return &OrgRepo{db: db}
}

func (r *OrgRepo) Get(id uint64) (*model.Organisation, error) {
	var org model.Organisation
	if err := r.db.First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
