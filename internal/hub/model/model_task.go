package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/synchub/synchub/pkg/id"
)

// TaskType identifies the single record kind a batch upload carries.
type TaskType int

const (
	TaskTypeAffiliation TaskType = iota
	TaskTypeFunding
	TaskTypeWork
	TaskTypePeerReview
)

func (t TaskType) String() string {
	switch t {
	case TaskTypeAffiliation:
		return "affiliation"
	case TaskTypeFunding:
		return "funding"
	case TaskTypeWork:
		return "work"
	case TaskTypePeerReview:
		return "peer-review"
	default:
		return "unknown"
	}
}

// Task is one batch upload owning many records of exactly one kind.
type Task struct {
	BaseModel
	TaskID      string     `gorm:"column:task_id" json:"taskId"`
	OrgID       uint64     `gorm:"column:org_id" json:"orgId"`
	CreatedBy   uint64     `gorm:"column:created_by" json:"createdBy"`
	Filename    string     `gorm:"column:filename" json:"filename"`
	TaskType    TaskType   `gorm:"column:task_type" json:"taskType"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt"`
	ExpiresAt   *time.Time `gorm:"column:expires_at" json:"expiresAt"`
}

func (Task) TableName() string {
	return "t_task"
}

// BeforeCreate assigns the public task identifier.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.TaskID == "" {
		t.TaskID = id.GetUUID()
	}
	return nil
}
