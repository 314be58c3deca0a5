package repo

import (
	"time"

	"gorm.io/gorm"

	"github.com/synchub/synchub/internal/hub/model"
)

type IAffiliationRepository interface {
	// Unprocessed selects up to maxRows unprocessed active affiliation rows
	// joined with their task, matched user and consent-token context,
	// skipping rows already mid-invitation.
	Unprocessed(maxRows int) ([]PendingRow, error)
	Get(id uint64) (*model.AffiliationRecord, error)
	Save(record *model.AffiliationRecord) error
	// AppendStatusByEmail appends the line to the status of every
	// affiliation record with the given email, across all tasks. The update
	// runs in two steps partitioned by an empty-status check so a concurrent
	// append is never lost.
	AppendStatusByEmail(email, line string) error
	// MarkInviteFailed stamps every unprocessed record of the task with the
	// given email as processed with the failure status.
	MarkInviteFailed(taskID uint64, email, status string) error
	HasUnprocessed(taskID uint64) (bool, error)
	ErrorCount(taskID uint64) (int64, error)
	RowCount(taskID uint64) (int64, error)
	DistinctResearcherCount(taskID uint64) (int64, error)
}

type AffiliationRepo struct {
	db *gorm.DB
}

func NewAffiliationRepo(db *gorm.DB) IAffiliationRepository {
	return &AffiliationRepo{db: db}
}

func (r *AffiliationRepo) Unprocessed(maxRows int) ([]PendingRow, error) {
	var rows []PendingRow
	err := r.db.
		Table("t_affiliation_record ar").
		Select(`t.id AS task_id, t.created_by AS task_created_by, t.org_id AS org_id,
			ar.id AS record_id, ar.id AS invitee_id,
			IFNULL(u.id, 0) AS user_id, IFNULL(u.researcher_id, '') AS researcher_id,
			tok.id IS NOT NULL AS has_token,
			ar.email AS email, ar.first_name AS first_name, ar.last_name AS last_name,
			ar.affiliation_type AS affiliation_type`).
		Joins("JOIN t_task t ON t.id = ar.task_id").
		Joins("LEFT JOIN t_user u ON u.email = ar.email OR (u.researcher_id <> '' AND u.researcher_id = ar.researcher_id)").
		Joins("LEFT JOIN t_user_invitation ui ON ui.email = ar.email AND ui.task_id = t.id").
		Joins("LEFT JOIN t_access_token tok ON tok.user_id = u.id AND tok.org_id = t.org_id AND tok.scope LIKE ?",
			"%"+model.ScopeActivitiesUpdate+"%").
		Where("ar.processed_at IS NULL AND ar.is_active = ?", true).
		Where(`(u.id IS NOT NULL AND u.researcher_id <> '' AND tok.id IS NOT NULL)
			OR ((u.id IS NULL OR u.researcher_id = '' OR tok.id IS NULL)
				AND ui.id IS NULL
				AND (ar.status IS NULL OR ar.status = '' OR ar.status NOT LIKE '%sent%'))`).
		Limit(maxRows).
		Scan(&rows).Error
	return rows, err
}

func (r *AffiliationRepo) Get(id uint64) (*model.AffiliationRecord, error) {
	var record model.AffiliationRecord
	if err := r.db.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *AffiliationRepo) Save(record *model.AffiliationRecord) error {
	return r.db.Save(record).Error
}

func (r *AffiliationRepo) AppendStatusByEmail(email, line string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.AffiliationRecord{}).
			Where("email = ? AND status IS NOT NULL AND status <> ''", email).
			Update("status", gorm.Expr("CONCAT(status, ?, ?)", "\n", line)).Error; err != nil {
			return err
		}
		return tx.Model(&model.AffiliationRecord{}).
			Where("email = ? AND (status IS NULL OR status = '')", email).
			Update("status", line).Error
	})
}

func (r *AffiliationRepo) MarkInviteFailed(taskID uint64, email, status string) error {
	return r.db.Model(&model.AffiliationRecord{}).
		Where("task_id = ? AND email = ? AND processed_at IS NULL", taskID, email).
		Updates(map[string]interface{}{"processed_at": time.Now().UTC(), "status": status}).Error
}

func (r *AffiliationRepo) HasUnprocessed(taskID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&model.AffiliationRecord{}).
		Where("task_id = ? AND processed_at IS NULL", taskID).
		Count(&count).Error
	return count > 0, err
}

func (r *AffiliationRepo) ErrorCount(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&model.AffiliationRecord{}).
		Where("task_id = ? AND status LIKE ?", taskID, "%error%").
		Count(&count).Error
	return count, err
}

func (r *AffiliationRepo) RowCount(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&model.AffiliationRecord{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	return count, err
}

func (r *AffiliationRepo) DistinctResearcherCount(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&model.AffiliationRecord{}).
		Where("task_id = ?", taskID).
		Distinct("researcher_id").
		Count(&count).Error
	return count, err
}
