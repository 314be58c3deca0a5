package repo

import (
	"gorm.io/gorm"

	"github.com/synchub/synchub/internal/hub/model"
)

type IWorkRepository interface {
	Unprocessed(maxRows int) ([]PendingRow, error)
	GetRecord(id uint64) (*model.WorkRecord, error)
	GetInvitee(id uint64) (*model.WorkInvitee, error)
	Contributors(recordID uint64) ([]model.WorkContributor, error)
	ExternalIDs(recordID uint64) ([]model.WorkExternalID, error)
	SaveRecord(record *model.WorkRecord) error
	SaveInvitee(invitee *model.WorkInvitee) error
	AppendInviteeStatusByEmail(email, line string) error
	HasUnprocessedInvitees(recordID uint64) (bool, error)
	HasUnprocessed(taskID uint64) (bool, error)
	ErrorCount(taskID uint64) (int64, error)
	RowCount(taskID uint64) (int64, error)
}

type WorkRepo struct {
	db *gorm.DB
}

func NewWorkRepo(db *gorm.DB) IWorkRepository {
	return &WorkRepo{db: db}
}

func (r *WorkRepo) Unprocessed(maxRows int) ([]PendingRow, error) {
	var rows []PendingRow
	err := r.db.
		Table("t_work_record wr").
		Select(`t.id AS task_id, t.created_by AS task_created_by, t.org_id AS org_id,
			wr.id AS record_id, wi.id AS invitee_id,
			IFNULL(u.id, 0) AS user_id, IFNULL(u.researcher_id, '') AS researcher_id,
			tok.id IS NOT NULL AS has_token,
			wi.email AS email, wi.first_name AS first_name, wi.last_name AS last_name,
			'' AS affiliation_type`).
		Joins("JOIN t_task t ON t.id = wr.task_id").
		Joins("JOIN t_work_invitee wi ON wi.work_record_id = wr.id").
		Joins("LEFT JOIN t_user u ON u.email = wi.email OR (u.researcher_id <> '' AND u.researcher_id = wi.researcher_id)").
		Joins("LEFT JOIN t_access_token tok ON tok.user_id = u.id AND tok.org_id = t.org_id AND tok.scope LIKE ?",
			"%"+model.ScopeActivitiesUpdate+"%").
		Where("wr.processed_at IS NULL AND wi.processed_at IS NULL AND wr.is_active = ?", true).
		Where("tok.id IS NOT NULL OR wi.status IS NULL OR wi.status = '' OR wi.status NOT LIKE '%sent%'").
		Limit(maxRows).
		Scan(&rows).Error
	return rows, err
}

func (r *WorkRepo) GetRecord(id uint64) (*model.WorkRecord, error) {
	var record model.WorkRecord
	if err := r.db.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *WorkRepo) GetInvitee(id uint64) (*model.WorkInvitee, error) {
	var invitee model.WorkInvitee
	if err := r.db.First(&invitee, id).Error; err != nil {
		return nil, err
	}
	return &invitee, nil
}

func (r *WorkRepo) Contributors(recordID uint64) ([]model.WorkContributor, error) {
	var contributors []model.WorkContributor
	err := r.db.Where("work_record_id = ?", recordID).
		Order("contributor_sequence").
		Find(&contributors).Error
	return contributors, err
}

func (r *WorkRepo) ExternalIDs(recordID uint64) ([]model.WorkExternalID, error) {
	var ids []model.WorkExternalID
	err := r.db.Where("work_record_id = ?", recordID).Find(&ids).Error
	return ids, err
}

func (r *WorkRepo) SaveRecord(record *model.WorkRecord) error {
	return r.db.Save(record).Error
}

func (r *WorkRepo) SaveInvitee(invitee *model.WorkInvitee) error {
	return r.db.Save(invitee).Error
}

func (r *WorkRepo) AppendInviteeStatusByEmail(email, line string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.WorkInvitee{}).
			Where("email = ? AND status IS NOT NULL AND status <> ''", email).
			Update("status", gorm.Expr("CONCAT(status, ?, ?)", "\n", line)).Error; err != nil {
			return err
		}
		return tx.Model(&model.WorkInvitee{}).
			Where("email = ? AND (status IS NULL OR status = '')", email).
			Update("status", line).Error
	})
}

func (r *WorkRepo) HasUnprocessedInvitees(recordID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&model.WorkInvitee{}).
		Where("work_record_id = ? AND processed_at IS NULL", recordID).
		Count(&count).Error
	return count > 0, err
}

func (r *WorkRepo) HasUnprocessed(taskID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&model.WorkRecord{}).
		Where("task_id = ? AND processed_at IS NULL", taskID).
		Count(&count).Error
	return count > 0, err
}

func (r *WorkRepo) ErrorCount(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&model.WorkRecord{}).
		Where("task_id = ? AND status LIKE ?", taskID, "%error%").
		Count(&count).Error
	return count, err
}

func (r *WorkRepo) RowCount(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&model.WorkRecord{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	return count, err
}
