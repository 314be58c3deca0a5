package model

import "time"

// PeerReviewRecord is one uploaded peer-review entry of a task.
type PeerReviewRecord struct {
	BaseModel
	TaskID                           uint64       `gorm:"column:task_id;index" json:"taskId"`
	IsActive                         bool         `gorm:"column:is_active;default:false" json:"isActive"`
	Status                           string       `gorm:"column:status;type:text" json:"status"`
	ProcessedAt                      *time.Time   `gorm:"column:processed_at" json:"processedAt"`
	ReviewerRole                     string       `gorm:"column:reviewer_role" json:"reviewerRole"`
	ReviewURL                        string       `gorm:"column:review_url" json:"reviewUrl"`
	ReviewType                       string       `gorm:"column:review_type" json:"reviewType"`
	ReviewCompletionDate             *PartialDate `gorm:"column:review_completion_date;type:varchar(10)" json:"reviewCompletionDate"`
	ReviewGroupID                    string       `gorm:"column:review_group_id" json:"reviewGroupId"`
	SubjectExternalIDType            string       `gorm:"column:subject_external_id_type" json:"subjectExternalIdType"`
	SubjectExternalIDValue           string       `gorm:"column:subject_external_id_value" json:"subjectExternalIdValue"`
	SubjectExternalIDURL             string       `gorm:"column:subject_external_id_url" json:"subjectExternalIdUrl"`
	SubjectExternalIDRelationship    string       `gorm:"column:subject_external_id_relationship" json:"subjectExternalIdRelationship"`
	SubjectContainerName             string       `gorm:"column:subject_container_name" json:"subjectContainerName"`
	SubjectType                      string       `gorm:"column:subject_type" json:"subjectType"`
	SubjectNameTitle                 string       `gorm:"column:subject_name_title" json:"subjectNameTitle"`
	SubjectNameSubtitle              string       `gorm:"column:subject_name_subtitle" json:"subjectNameSubtitle"`
	SubjectNameTranslatedTitle       string       `gorm:"column:subject_name_translated_title" json:"subjectNameTranslatedTitle"`
	SubjectNameTranslatedTitleLang   string       `gorm:"column:subject_name_translated_title_lang" json:"subjectNameTranslatedTitleLang"`
	SubjectURL                       string       `gorm:"column:subject_url" json:"subjectUrl"`
	ConveningOrgName                 string       `gorm:"column:convening_org_name" json:"conveningOrgName"`
	ConveningOrgCity                 string       `gorm:"column:convening_org_city" json:"conveningOrgCity"`
	ConveningOrgRegion               string       `gorm:"column:convening_org_region" json:"conveningOrgRegion"`
	ConveningOrgCountry              string       `gorm:"column:convening_org_country" json:"conveningOrgCountry"`
	ConveningOrgDisambiguatedID      string       `gorm:"column:convening_org_disambiguated_id" json:"conveningOrgDisambiguatedId"`
	ConveningOrgDisambiguationSource string       `gorm:"column:convening_org_disambiguation_source" json:"conveningOrgDisambiguationSource"`
}

func (PeerReviewRecord) TableName() string {
	return "t_peer_review_record"
}

func (r *PeerReviewRecord) AddStatusLine(line string) {
	r.Status = appendStatusLine(r.Status, line)
}

// PeerReviewInvitee tracks consent and sync state for one researcher of a
// peer-review record.
type PeerReviewInvitee struct {
	BaseModel
	PeerReviewRecordID uint64     `gorm:"column:peer_review_record_id;index" json:"peerReviewRecordId"`
	FirstName          string     `gorm:"column:first_name" json:"firstName"`
	LastName           string     `gorm:"column:last_name" json:"lastName"`
	Email              string     `gorm:"column:email;index" json:"email"`
	ResearcherID       string     `gorm:"column:researcher_id" json:"researcherId"`
	PutCode            *int64     `gorm:"column:put_code" json:"putCode"`
	Visibility         string     `gorm:"column:visibility" json:"visibility"`
	Status             string     `gorm:"column:status;type:text" json:"status"`
	ProcessedAt        *time.Time `gorm:"column:processed_at" json:"processedAt"`
}

func (PeerReviewInvitee) TableName() string {
	return "t_peer_review_invitee"
}

func (i *PeerReviewInvitee) AddStatusLine(line string) {
	i.Status = appendStatusLine(i.Status, line)
}

// PeerReviewExternalID is an external identifier of a peer-review record.
type PeerReviewExternalID struct {
	BaseModel
	PeerReviewRecordID uint64 `gorm:"column:peer_review_record_id;index" json:"peerReviewRecordId"`
	Type               string `gorm:"column:type" json:"type"`
	Value              string `gorm:"column:value" json:"value"`
	URL                string `gorm:"column:url" json:"url"`
	Relationship       string `gorm:"column:relationship" json:"relationship"`
}

func (PeerReviewExternalID) TableName() string {
	return "t_peer_review_external_id"
}
