package repo

import (
	"gorm.io/gorm"

	"github.com/synchub/synchub/internal/hub/model"
)

type IPeerReviewRepository interface {
	Unprocessed(maxRows int) ([]PendingRow, error)
	GetRecord(id uint64) (*model.PeerReviewRecord, error)
	GetInvitee(id uint64) (*model.PeerReviewInvitee, error)
	ExternalIDs(recordID uint64) ([]model.PeerReviewExternalID, error)
	SaveRecord(record *model.PeerReviewRecord) error
	SaveInvitee(invitee *model.PeerReviewInvitee) error
	AppendInviteeStatusByEmail(email, line string) error
	HasUnprocessedInvitees(recordID uint64) (bool, error)
	HasUnprocessed(taskID uint64) (bool, error)
	ErrorCount(taskID uint64) (int64, error)
	RowCount(taskID uint64) (int64, error)
}

type PeerReviewRepo struct {
	db *gorm.DB
}

func NewPeerReviewRepo(db *gorm.DB) IPeerReviewRepository {
	return &PeerReviewRepo{db: db}
}

func (r *PeerReviewRepo) Unprocessed(maxRows int) ([]PendingRow, error) {
	var rows []PendingRow
	err := r.db.
		Table("t_peer_review_record pr").
		Select(`t.id AS task_id, t.created_by AS task_created_by, t.org_id AS org_id,
			pr.id AS record_id, pi.id AS invitee_id,
			IFNULL(u.id, 0) AS user_id, IFNULL(u.researcher_id, '') AS researcher_id,
			tok.id IS NOT NULL AS has_token,
			pi.email AS email, pi.first_name AS first_name, pi.last_name AS last_name,
			'' AS affiliation_type`).
		Joins("JOIN t_task t ON t.id = pr.task_id").
		Joins("JOIN t_peer_review_invitee pi ON pi.peer_review_record_id = pr.id").
		Joins("LEFT JOIN t_user u ON u.email = pi.email OR (u.researcher_id <> '' AND u.researcher_id = pi.researcher_id)").
		Joins("LEFT JOIN t_access_token tok ON tok.user_id = u.id AND tok.org_id = t.org_id AND tok.scope LIKE ?",
			"%"+model.ScopeActivitiesUpdate+"%").
		Where("pr.processed_at IS NULL AND pi.processed_at IS NULL AND pr.is_active = ?", true).
		Where("tok.id IS NOT NULL OR pi.status IS NULL OR pi.status = '' OR pi.status NOT LIKE '%sent%'").
		Limit(maxRows).
		Scan(&rows).Error
	return rows, err
}

func (r *PeerReviewRepo) GetRecord(id uint64) (*model.PeerReviewRecord, error) {
	var record model.PeerReviewRecord
	if err := r.db.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *PeerReviewRepo) GetInvitee(id uint64) (*model.PeerReviewInvitee, error) {
	var invitee model.PeerReviewInvitee
	if err := r.db.First(&invitee, id).Error; err != nil {
		return nil, err
	}
	return &invitee, nil
}

func (r *PeerReviewRepo) ExternalIDs(recordID uint64) ([]model.PeerReviewExternalID, error) {
	var ids []model.PeerReviewExternalID
	err := r.db.Where("peer_review_record_id = ?", recordID).Find(&ids).Error
	return ids, err
}

func (r *PeerReviewRepo) SaveRecord(record *model.PeerReviewRecord) error {
	return r.db.Save(record).Error
}

func (r *PeerReviewRepo) SaveInvitee(invitee *model.PeerReviewInvitee) error {
	return r.db.Save(invitee).Error
}

func (r *PeerReviewRepo) AppendInviteeStatusByEmail(email, line string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.PeerReviewInvitee{}).
			Where("email = ? AND status IS NOT NULL AND status <> ''", email).
			Update("status", gorm.Expr("CONCAT(status, ?, ?)", "\n", line)).Error; err != nil {
			return err
		}
		return tx.Model(&model.PeerReviewInvitee{}).
			Where("email = ? AND (status IS NULL OR status = '')", email).
			Update("status", line).Error
	})
}

func (r *PeerReviewRepo) HasUnprocessedInvitees(recordID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&model.PeerReviewInvitee{}).
		Where("peer_review_record_id = ? AND processed_at IS NULL", recordID).
		Count(&count).Error
	return count > 0, err
}

func (r *PeerReviewRepo) HasUnprocessed(taskID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&model.PeerReviewRecord{}).
		Where("task_id = ? AND processed_at IS NULL", taskID).
		Count(&count).Error
	return count > 0, err
}

func (r *PeerReviewRepo) ErrorCount(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&model.PeerReviewRecord{}).
		Where("task_id = ? AND status LIKE ?", taskID, "%error%").
		Count(&count).Error
	return count, err
}

func (r *PeerReviewRepo) RowCount(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&model.PeerReviewRecord{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	return count, err
}
