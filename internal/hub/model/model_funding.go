package model

import "time"

// FundingRecord is one uploaded funding entry of a task.
type FundingRecord struct {
	BaseModel
	TaskID                      uint64       `gorm:"column:task_id;index" json:"taskId"`
	IsActive                    bool         `gorm:"column:is_active;default:false" json:"isActive"`
	Status                      string       `gorm:"column:status;type:text" json:"status"`
	ProcessedAt                 *time.Time   `gorm:"column:processed_at" json:"processedAt"`
	Title                       string       `gorm:"column:title" json:"title"`
	TranslatedTitle             string       `gorm:"column:translated_title" json:"translatedTitle"`
	TranslatedTitleLanguageCode string       `gorm:"column:translated_title_language_code" json:"translatedTitleLanguageCode"`
	Type                        string       `gorm:"column:type" json:"type"`
	OrganizationDefinedType     string       `gorm:"column:organization_defined_type" json:"organizationDefinedType"`
	ShortDescription            string       `gorm:"column:short_description;type:text" json:"shortDescription"`
	Amount                      string       `gorm:"column:amount" json:"amount"`
	Currency                    string       `gorm:"column:currency" json:"currency"`
	OrgName                     string       `gorm:"column:org_name" json:"orgName"`
	City                        string       `gorm:"column:city" json:"city"`
	Region                      string       `gorm:"column:region" json:"region"`
	Country                     string       `gorm:"column:country" json:"country"`
	DisambiguatedID             string       `gorm:"column:disambiguated_id" json:"disambiguatedId"`
	DisambiguationSource        string       `gorm:"column:disambiguation_source" json:"disambiguationSource"`
	StartDate                   *PartialDate `gorm:"column:start_date;type:varchar(10)" json:"startDate"`
	EndDate                     *PartialDate `gorm:"column:end_date;type:varchar(10)" json:"endDate"`
}

func (FundingRecord) TableName() string {
	return "t_funding_record"
}

func (r *FundingRecord) AddStatusLine(line string) {
	r.Status = appendStatusLine(r.Status, line)
}

// FundingInvitee tracks consent and sync state for one researcher of a
// funding record.
type FundingInvitee struct {
	BaseModel
	FundingRecordID uint64     `gorm:"column:funding_record_id;index" json:"fundingRecordId"`
	FirstName       string     `gorm:"column:first_name" json:"firstName"`
	LastName        string     `gorm:"column:last_name" json:"lastName"`
	Email           string     `gorm:"column:email;index" json:"email"`
	ResearcherID    string     `gorm:"column:researcher_id" json:"researcherId"`
	PutCode         *int64     `gorm:"column:put_code" json:"putCode"`
	Visibility      string     `gorm:"column:visibility" json:"visibility"`
	Status          string     `gorm:"column:status;type:text" json:"status"`
	ProcessedAt     *time.Time `gorm:"column:processed_at" json:"processedAt"`
}

func (FundingInvitee) TableName() string {
	return "t_funding_invitee"
}

func (i *FundingInvitee) AddStatusLine(line string) {
	i.Status = appendStatusLine(i.Status, line)
}

// FundingContributor is a contributor row of a funding record, submitted in
// stored order.
type FundingContributor struct {
	BaseModel
	FundingRecordID uint64 `gorm:"column:funding_record_id;index" json:"fundingRecordId"`
	ResearcherID    string `gorm:"column:researcher_id" json:"researcherId"`
	Name            string `gorm:"column:name" json:"name"`
	Email           string `gorm:"column:email" json:"email"`
	Role            string `gorm:"column:role" json:"role"`
}

func (FundingContributor) TableName() string {
	return "t_funding_contributor"
}

// FundingExternalID is an external identifier (grant number etc.) of a
// funding record.
type FundingExternalID struct {
	BaseModel
	FundingRecordID uint64 `gorm:"column:funding_record_id;index" json:"fundingRecordId"`
	Type            string `gorm:"column:type" json:"type"`
	Value           string `gorm:"column:value" json:"value"`
	URL             string `gorm:"column:url" json:"url"`
	Relationship    string `gorm:"column:relationship" json:"relationship"`
}

func (FundingExternalID) TableName() string {
	return "t_funding_external_id"
}
