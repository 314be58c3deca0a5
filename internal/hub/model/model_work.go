package model

import "time"

// WorkRecord is one uploaded research output entry of a task.
type WorkRecord struct {
	BaseModel
	TaskID                      uint64       `gorm:"column:task_id;index" json:"taskId"`
	IsActive                    bool         `gorm:"column:is_active;default:false" json:"isActive"`
	Status                      string       `gorm:"column:status;type:text" json:"status"`
	ProcessedAt                 *time.Time   `gorm:"column:processed_at" json:"processedAt"`
	Title                       string       `gorm:"column:title" json:"title"`
	Subtitle                    string       `gorm:"column:subtitle" json:"subtitle"`
	TranslatedTitle             string       `gorm:"column:translated_title" json:"translatedTitle"`
	TranslatedTitleLanguageCode string       `gorm:"column:translated_title_language_code" json:"translatedTitleLanguageCode"`
	JournalTitle                string       `gorm:"column:journal_title" json:"journalTitle"`
	ShortDescription            string       `gorm:"column:short_description;type:text" json:"shortDescription"`
	CitationType                string       `gorm:"column:citation_type" json:"citationType"`
	CitationValue               string       `gorm:"column:citation_value;type:text" json:"citationValue"`
	Type                        string       `gorm:"column:type" json:"type"`
	PublicationDate             *PartialDate `gorm:"column:publication_date;type:varchar(10)" json:"publicationDate"`
	PublicationMediaType        string       `gorm:"column:publication_media_type" json:"publicationMediaType"`
	URL                         string       `gorm:"column:url" json:"url"`
	LanguageCode                string       `gorm:"column:language_code" json:"languageCode"`
	Country                     string       `gorm:"column:country" json:"country"`
}

func (WorkRecord) TableName() string {
	return "t_work_record"
}

func (r *WorkRecord) AddStatusLine(line string) {
	r.Status = appendStatusLine(r.Status, line)
}

// WorkInvitee tracks consent and sync state for one researcher of a work
// record.
type WorkInvitee struct {
	BaseModel
	WorkRecordID uint64     `gorm:"column:work_record_id;index" json:"workRecordId"`
	FirstName    string     `gorm:"column:first_name" json:"firstName"`
	LastName     string     `gorm:"column:last_name" json:"lastName"`
	Email        string     `gorm:"column:email;index" json:"email"`
	ResearcherID string     `gorm:"column:researcher_id" json:"researcherId"`
	PutCode      *int64     `gorm:"column:put_code" json:"putCode"`
	Visibility   string     `gorm:"column:visibility" json:"visibility"`
	Status       string     `gorm:"column:status;type:text" json:"status"`
	ProcessedAt  *time.Time `gorm:"column:processed_at" json:"processedAt"`
}

func (WorkInvitee) TableName() string {
	return "t_work_invitee"
}

func (i *WorkInvitee) AddStatusLine(line string) {
	i.Status = appendStatusLine(i.Status, line)
}

// WorkContributor is a contributor row of a work record, ordered by its
// contributor sequence.
type WorkContributor struct {
	BaseModel
	WorkRecordID        uint64 `gorm:"column:work_record_id;index" json:"workRecordId"`
	ResearcherID        string `gorm:"column:researcher_id" json:"researcherId"`
	Name                string `gorm:"column:name" json:"name"`
	Email               string `gorm:"column:email" json:"email"`
	Role                string `gorm:"column:role" json:"role"`
	ContributorSequence string `gorm:"column:contributor_sequence" json:"contributorSequence"`
}

func (WorkContributor) TableName() string {
	return "t_work_contributor"
}

// WorkExternalID is an external identifier (DOI etc.) of a work record.
type WorkExternalID struct {
	BaseModel
	WorkRecordID uint64 `gorm:"column:work_record_id;index" json:"workRecordId"`
	Type         string `gorm:"column:type" json:"type"`
	Value        string `gorm:"column:value" json:"value"`
	URL          string `gorm:"column:url" json:"url"`
	Relationship string `gorm:"column:relationship" json:"relationship"`
}

func (WorkExternalID) TableName() string {
	return "t_work_external_id"
}
