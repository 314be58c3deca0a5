package model

import "time"

// Scopes a researcher may grant to an organisation.
const (
	ScopeReadLimited      = "/read-limited"
	ScopeActivitiesUpdate = "/activities/update"
	ScopeWebhook          = "/webhook"
)

// AccessToken is a consent grant: the OAuth token a researcher issued to an
// organisation for a scope.
type AccessToken struct {
	BaseModel
	UserID       uint64    `gorm:"column:user_id" json:"userId"`
	OrgID        uint64    `gorm:"column:org_id" json:"orgId"`
	Scope        string    `gorm:"column:scope" json:"scope"`
	AccessToken  string    `gorm:"column:access_token" json:"-"`
	RefreshToken string    `gorm:"column:refresh_token" json:"-"`
	IssueTime    time.Time `gorm:"column:issue_time;autoCreateTime" json:"issueTime"`
	ExpiresIn    int       `gorm:"column:expires_in;default:0" json:"expiresIn"`
}

func (AccessToken) TableName() string {
	return "t_access_token"
}
