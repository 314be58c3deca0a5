package model

import "time"

// AffiliationRecord is one uploaded employment/education entry. Unlike the
// other kinds it is its own invitee: consent state and the put-code live on
// the record row itself.
type AffiliationRecord struct {
	BaseModel
	TaskID               uint64       `gorm:"column:task_id;index" json:"taskId"`
	IsActive             bool         `gorm:"column:is_active;default:false" json:"isActive"`
	Status               string       `gorm:"column:status;type:text" json:"status"`
	ProcessedAt          *time.Time   `gorm:"column:processed_at" json:"processedAt"`
	FirstName            string       `gorm:"column:first_name" json:"firstName"`
	LastName             string       `gorm:"column:last_name" json:"lastName"`
	Email                string       `gorm:"column:email;index" json:"email"`
	ResearcherID         string       `gorm:"column:researcher_id" json:"researcherId"`
	AffiliationType      string       `gorm:"column:affiliation_type" json:"affiliationType"`
	Organisation         string       `gorm:"column:organisation" json:"organisation"`
	Department           string       `gorm:"column:department" json:"department"`
	Role                 string       `gorm:"column:role" json:"role"`
	City                 string       `gorm:"column:city" json:"city"`
	State                string       `gorm:"column:state" json:"state"`
	Country              string       `gorm:"column:country" json:"country"`
	DisambiguatedID      string       `gorm:"column:disambiguated_id" json:"disambiguatedId"`
	DisambiguationSource string       `gorm:"column:disambiguation_source" json:"disambiguationSource"`
	StartDate            *PartialDate `gorm:"column:start_date;type:varchar(10)" json:"startDate"`
	EndDate              *PartialDate `gorm:"column:end_date;type:varchar(10)" json:"endDate"`
	PutCode              *int64       `gorm:"column:put_code" json:"putCode"`
}

func (AffiliationRecord) TableName() string {
	return "t_affiliation_record"
}

func (r *AffiliationRecord) AddStatusLine(line string) {
	r.Status = appendStatusLine(r.Status, line)
}
