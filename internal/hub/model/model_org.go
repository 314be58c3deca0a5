package model

// Organisation is a member organisation submitting records on behalf of its
// researchers.
type Organisation struct {
	BaseModel
	Name                 string `gorm:"column:name" json:"name"`
	Email                string `gorm:"column:email" json:"email"`
	ClientID             string `gorm:"column:client_id" json:"clientId"`     // registry API client id, tags records this org created
	ClientSecret         string `gorm:"column:client_secret" json:"-"`        // registry API client secret
	City                 string `gorm:"column:city" json:"city"`
	State                string `gorm:"column:state" json:"state"`
	Country              string `gorm:"column:country" json:"country"`
	DisambiguatedID      string `gorm:"column:disambiguated_id" json:"disambiguatedId"`
	DisambiguationSource string `gorm:"column:disambiguation_source" json:"disambiguationSource"`
	Confirmed            bool   `gorm:"column:confirmed" json:"confirmed"`
}

func (Organisation) TableName() string {
	return "t_organisation"
}
