package repo

import (
	"time"

	"gorm.io/gorm"

	"github.com/synchub/synchub/internal/hub/model"
)

type ITaskRepository interface {
	Get(id uint64) (*model.Task, error)
	Save(task *model.Task) error
	// DeleteExpired hard-deletes every task past its expiry date.
	DeleteExpired(now time.Time) error
	// ListWithoutExpiry returns up to limit tasks that have no expiry date
	// assigned yet.
	ListWithoutExpiry(limit int) ([]model.Task, error)
}

type TaskRepo struct {
	db *gorm.DB
}

func NewTaskRepo(db *gorm.DB) ITaskRepository {
	return &TaskRepo{db: db}
}

func (r *TaskRepo) Get(id uint64) (*model.Task, error) {
	var task model.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepo) Save(task *model.Task) error {
	return r.db.Save(task).Error
}

func (r *TaskRepo) DeleteExpired(now time.Time) error {
	return r.db.Where("expires_at IS NOT NULL AND expires_at < ?", now).Delete(&model.Task{}).Error
}

func (r *TaskRepo) ListWithoutExpiry(limit int) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.Where("expires_at IS NULL").Limit(limit).Find(&tasks).Error
	return tasks, err
}
