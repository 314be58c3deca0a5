package repo

import (
	"gorm.io/gorm"

	"github.com/synchub/synchub/internal/hub/model"
)

type IFundingRepository interface {
	Unprocessed(maxRows int) ([]PendingRow, error)
	GetRecord(id uint64) (*model.FundingRecord, error)
	GetInvitee(id uint64) (*model.FundingInvitee, error)
	Contributors(recordID uint64) ([]model.FundingContributor, error)
	ExternalIDs(recordID uint64) ([]model.FundingExternalID, error)
	SaveRecord(record *model.FundingRecord) error
	SaveInvitee(invitee *model.FundingInvitee) error
	// AppendInviteeStatusByEmail appends the line to every funding invitee
	// with the given email, two-step partitioned by an empty-status check.
	AppendInviteeStatusByEmail(email, line string) error
	HasUnprocessedInvitees(recordID uint64) (bool, error)
	HasUnprocessed(taskID uint64) (bool, error)
	ErrorCount(taskID uint64) (int64, error)
	RowCount(taskID uint64) (int64, error)
}

type FundingRepo struct {
	db *gorm.DB
}

func NewFundingRepo(db *gorm.DB) IFundingRepository {
	return &FundingRepo{db: db}
}

func (r *FundingRepo) Unprocessed(maxRows int) ([]PendingRow, error) {
	var rows []PendingRow
	err := r.db.
		Table("t_funding_record fr").
		Select(`t.id AS task_id, t.created_by AS task_created_by, t.org_id AS org_id,
			fr.id AS record_id, fi.id AS invitee_id,
			IFNULL(u.id, 0) AS user_id, IFNULL(u.researcher_id, '') AS researcher_id,
			tok.id IS NOT NULL AS has_token,
			fi.email AS email, fi.first_name AS first_name, fi.last_name AS last_name,
			'' AS affiliation_type`).
		Joins("JOIN t_task t ON t.id = fr.task_id").
		Joins("JOIN t_funding_invitee fi ON fi.funding_record_id = fr.id").
		Joins("LEFT JOIN t_user u ON u.email = fi.email OR (u.researcher_id <> '' AND u.researcher_id = fi.researcher_id)").
		Joins("LEFT JOIN t_access_token tok ON tok.user_id = u.id AND tok.org_id = t.org_id AND tok.scope LIKE ?",
			"%"+model.ScopeActivitiesUpdate+"%").
		Where("fr.processed_at IS NULL AND fi.processed_at IS NULL AND fr.is_active = ?", true).
		Where("tok.id IS NOT NULL OR fi.status IS NULL OR fi.status = '' OR fi.status NOT LIKE '%sent%'").
		Limit(maxRows).
		Scan(&rows).Error
	return rows, err
}

func (r *FundingRepo) GetRecord(id uint64) (*model.FundingRecord, error) {
	var record model.FundingRecord
	if err := r.db.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *FundingRepo) GetInvitee(id uint64) (*model.FundingInvitee, error) {
	var invitee model.FundingInvitee
	if err := r.db.First(&invitee, id).Error; err != nil {
		return nil, err
	}
	return &invitee, nil
}

func (r *FundingRepo) Contributors(recordID uint64) ([]model.FundingContributor, error) {
	var contributors []model.FundingContributor
	err := r.db.Where("funding_record_id = ?", recordID).Order("id").Find(&contributors).Error
	return contributors, err
}

func (r *FundingRepo) ExternalIDs(recordID uint64) ([]model.FundingExternalID, error) {
	var ids []model.FundingExternalID
	err := r.db.Where("funding_record_id = ?", recordID).Find(&ids).Error
	return ids, err
}

func (r *FundingRepo) SaveRecord(record *model.FundingRecord) error {
	return r.db.Save(record).Error
}

func (r *FundingRepo) SaveInvitee(invitee *model.FundingInvitee) error {
	return r.db.Save(invitee).Error
}

func (r *FundingRepo) AppendInviteeStatusByEmail(email, line string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.FundingInvitee{}).
			Where("email = ? AND status IS NOT NULL AND status <> ''", email).
			Update("status", gorm.Expr("CONCAT(status, ?, ?)", "\n", line)).Error; err != nil {
			return err
		}
		return tx.Model(&model.FundingInvitee{}).
			Where("email = ? AND (status IS NULL OR status = '')", email).
			Update("status", line).Error
	})
}

func (r *FundingRepo) HasUnprocessedInvitees(recordID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&model.FundingInvitee{}).
		Where("funding_record_id = ? AND processed_at IS NULL", recordID).
		Count(&count).Error
	return count > 0, err
}

func (r *FundingRepo) HasUnprocessed(taskID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&model.FundingRecord{}).
		Where("task_id = ? AND processed_at IS NULL", taskID).
		Count(&count).Error
	return count > 0, err
}

func (r *FundingRepo) ErrorCount(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&model.FundingRecord{}).
		Where("task_id = ? AND status LIKE ?", taskID, "%error%").
		Count(&count).Error
	return count, err
}

func (r *FundingRepo) RowCount(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&model.FundingRecord{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	return count, err
}
