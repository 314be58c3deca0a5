package repo

import "gorm.io/gorm"

// PendingRow is one unprocessed, active record row joined with its invitee,
// task and consent context. It is what the batch scheduler groups and routes.
// For affiliation records, which are their own invitee, InviteeID equals
// RecordID.
type PendingRow struct {
	TaskID          uint64 `gorm:"column:task_id"`
	TaskCreatedBy   uint64 `gorm:"column:task_created_by"`
	OrgID           uint64 `gorm:"column:org_id"`
	RecordID        uint64 `gorm:"column:record_id"`
	InviteeID       uint64 `gorm:"column:invitee_id"`
	UserID          uint64 `gorm:"column:user_id"`
	ResearcherID    string `gorm:"column:researcher_id"`
	HasToken        bool   `gorm:"column:has_token"`
	Email           string `gorm:"column:email"`
	FirstName       string `gorm:"column:first_name"`
	LastName        string `gorm:"column:last_name"`
	AffiliationType string `gorm:"column:affiliation_type"`
}

// Repos bundles every repository over one database handle.
type Repos struct {
	User        IUserRepository
	Org         IOrgRepository
	Task        ITaskRepository
	Token       ITokenRepository
	Affiliation IAffiliationRepository
	Funding     IFundingRepository
	Work        IWorkRepository
	PeerReview  IPeerReviewRepository
	ShortURL    IShortURLRepository
	APICall     IAPICallRepository
}

func NewRepos(db *gorm.DB) *Repos {
	return &Repos{
		User:        NewUserRepo(db),
		Org:         NewOrgRepo(db),
		Task:        NewTaskRepo(db),
		Token:       NewTokenRepo(db),
		Affiliation: NewAffiliationRepo(db),
		Funding:     NewFundingRepo(db),
		Work:        NewWorkRepo(db),
		PeerReview:  NewPeerReviewRepo(db),
		ShortURL:    NewShortURLRepo(db),
		APICall:     NewAPICallRepo(db),
	}
}
