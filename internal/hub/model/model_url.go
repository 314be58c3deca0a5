package model

// ShortURL maps a short id to the long callback URL embedded in consent
// emails.
type ShortURL struct {
	BaseModel
	ShortID string `gorm:"column:short_id;uniqueIndex" json:"shortId"`
	URL     string `gorm:"column:url;type:text" json:"url"`
}

func (ShortURL) TableName() string {
	return "t_short_url"
}
