package model

import "time"

// User is the local representation of a researcher. The email is the unique
// matching key; the researcher identifier stays empty until consent is
// granted through the registry's OAuth flow.
type User struct {
	BaseModel
	Name         string `gorm:"column:name" json:"name"`
	FirstName    string `gorm:"column:first_name" json:"firstName"`
	LastName     string `gorm:"column:last_name" json:"lastName"`
	Email        string `gorm:"column:email;uniqueIndex" json:"email"`
	ResearcherID string `gorm:"column:researcher_id" json:"researcherId"`
	Roles        Role   `gorm:"column:roles;default:0" json:"roles"`
	OrgID        uint64 `gorm:"column:org_id" json:"orgId"`
	Confirmed    bool   `gorm:"column:confirmed" json:"confirmed"`
	CreatedBy    uint64 `gorm:"column:created_by" json:"createdBy"`
	UpdatedBy    uint64 `gorm:"column:updated_by" json:"updatedBy"`
}

func (User) TableName() string {
	return "t_user"
}

// UserOrg links a user to an organisation. Affiliations is the bitmask of
// record kinds this link authorizes; merging is always a union so a wider
// earlier grant is never clobbered.
type UserOrg struct {
	BaseModel
	UserID       uint64      `gorm:"column:user_id;uniqueIndex:idx_user_org" json:"userId"`
	OrgID        uint64      `gorm:"column:org_id;uniqueIndex:idx_user_org" json:"orgId"`
	IsAdmin      bool        `gorm:"column:is_admin;default:false" json:"isAdmin"`
	Affiliations Affiliation `gorm:"column:affiliations;default:0" json:"affiliations"`
	CreatedBy    uint64      `gorm:"column:created_by" json:"createdBy"`
	UpdatedBy    uint64      `gorm:"column:updated_by" json:"updatedBy"`
}

func (UserOrg) TableName() string {
	return "t_user_org"
}

// UserInvitation is the audit row created for every consent-request email,
// capturing the submitted researcher metadata for later pre-fill.
type UserInvitation struct {
	BaseModel
	TaskID               uint64       `gorm:"column:task_id" json:"taskId"`
	InviteeID            uint64       `gorm:"column:invitee_id" json:"inviteeId"`
	InviterID            uint64       `gorm:"column:inviter_id" json:"inviterId"`
	OrgID                uint64       `gorm:"column:org_id" json:"orgId"`
	Email                string       `gorm:"column:email" json:"email"`
	FirstName            string       `gorm:"column:first_name" json:"firstName"`
	LastName             string       `gorm:"column:last_name" json:"lastName"`
	ResearcherID         string       `gorm:"column:researcher_id" json:"researcherId"`
	Department           string       `gorm:"column:department" json:"department"`
	Organisation         string       `gorm:"column:organisation" json:"organisation"`
	City                 string       `gorm:"column:city" json:"city"`
	State                string       `gorm:"column:state" json:"state"`
	Country              string       `gorm:"column:country" json:"country"`
	CourseOrRole         string       `gorm:"column:course_or_role" json:"courseOrRole"`
	StartDate            *PartialDate `gorm:"column:start_date;type:varchar(10)" json:"startDate"`
	EndDate              *PartialDate `gorm:"column:end_date;type:varchar(10)" json:"endDate"`
	Affiliations         Affiliation  `gorm:"column:affiliations;default:0" json:"affiliations"`
	DisambiguatedID      string       `gorm:"column:disambiguated_id" json:"disambiguatedId"`
	DisambiguationSource string       `gorm:"column:disambiguation_source" json:"disambiguationSource"`
	Token                string       `gorm:"column:token" json:"token"`
	SentAt               *time.Time   `gorm:"column:sent_at" json:"sentAt"`
}

func (UserInvitation) TableName() string {
	return "t_user_invitation"
}
