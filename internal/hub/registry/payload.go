package registry

import (
	"fmt"
	"strings"

	"github.com/synchub/synchub/internal/hub/model"
)

// Wire structs for the registry's member API. Field names follow the
// registry's hyphenated JSON schema.

type titleValue struct {
	Value string `json:"value"`
}

type translatedTitle struct {
	Value        string `json:"value"`
	LanguageCode string `json:"language-code,omitempty"`
}

type sourceClientID struct {
	URI  string `json:"uri"`
	Path string `json:"path"`
	Host string `json:"host"`
}

type source struct {
	SourceOrcid    interface{}     `json:"source-orcid"`
	SourceClientID *sourceClientID `json:"source-client-id"`
	SourceName     *titleValue     `json:"source-name,omitempty"`
}

type organizationAddress struct {
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
}

type disambiguatedOrganization struct {
	Identifier string `json:"disambiguated-organization-identifier"`
	Source     string `json:"disambiguation-source"`
}

type organization struct {
	Name          string                     `json:"name"`
	Address       *organizationAddress       `json:"address,omitempty"`
	Disambiguated *disambiguatedOrganization `json:"disambiguated-organization,omitempty"`
}

type externalID struct {
	Type         string      `json:"external-id-type"`
	Value        string      `json:"external-id-value"`
	URL          *titleValue `json:"external-id-url,omitempty"`
	Relationship string      `json:"external-id-relationship"`
}

type externalIDs struct {
	ExternalID []externalID `json:"external-id"`
}

type contributorOrcid struct {
	URI  string `json:"uri"`
	Path string `json:"path"`
	Host string `json:"host"`
}

type contributorAttributes struct {
	Sequence string `json:"contributor-sequence,omitempty"`
	Role     string `json:"contributor-role,omitempty"`
}

type contributor struct {
	Orcid      *contributorOrcid      `json:"contributor-orcid,omitempty"`
	CreditName *titleValue            `json:"credit-name,omitempty"`
	Email      *titleValue            `json:"contributor-email,omitempty"`
	Attributes *contributorAttributes `json:"contributor-attributes,omitempty"`
}

type contributors struct {
	Contributor []contributor `json:"contributor"`
}

type citation struct {
	Type  string `json:"citation-type"`
	Value string `json:"citation-value"`
}

type amount struct {
	Value        string `json:"value"`
	CurrencyCode string `json:"currency-code"`
}

type fundingTitle struct {
	Title      titleValue       `json:"title"`
	Translated *translatedTitle `json:"translated-title,omitempty"`
}

type workTitle struct {
	Title      titleValue       `json:"title"`
	Subtitle   *titleValue      `json:"subtitle,omitempty"`
	Translated *translatedTitle `json:"translated-title,omitempty"`
}

type affiliationPayload struct {
	PutCode        *int64                 `json:"put-code,omitempty"`
	Source         *source                `json:"source,omitempty"`
	DepartmentName string                 `json:"department-name,omitempty"`
	RoleTitle      string                 `json:"role-title,omitempty"`
	StartDate      map[string]interface{} `json:"start-date,omitempty"`
	EndDate        map[string]interface{} `json:"end-date,omitempty"`
	Organization   *organization          `json:"organization"`
}

type fundingPayload struct {
	PutCode          *int64                 `json:"put-code,omitempty"`
	Source           *source                `json:"source,omitempty"`
	Title            *fundingTitle          `json:"title"`
	Type             string                 `json:"type"`
	OrgDefinedType   *titleValue            `json:"organization-defined-type,omitempty"`
	ShortDescription string                 `json:"short-description,omitempty"`
	Amount           *amount                `json:"amount,omitempty"`
	StartDate        map[string]interface{} `json:"start-date,omitempty"`
	EndDate          map[string]interface{} `json:"end-date,omitempty"`
	Organization     *organization          `json:"organization"`
	ExternalIDs      *externalIDs           `json:"external-ids,omitempty"`
	Contributors     *contributors          `json:"contributors,omitempty"`
	Visibility       string                 `json:"visibility,omitempty"`
}

type workPayload struct {
	PutCode          *int64                 `json:"put-code,omitempty"`
	Source           *source                `json:"source,omitempty"`
	Title            *workTitle             `json:"title"`
	JournalTitle     *titleValue            `json:"journal-title,omitempty"`
	ShortDescription string                 `json:"short-description,omitempty"`
	Citation         *citation              `json:"citation,omitempty"`
	Type             string                 `json:"type"`
	PublicationDate  map[string]interface{} `json:"publication-date,omitempty"`
	URL              *titleValue            `json:"url,omitempty"`
	LanguageCode     string                 `json:"language-code,omitempty"`
	Country          *titleValue            `json:"country,omitempty"`
	ExternalIDs      *externalIDs           `json:"external-ids,omitempty"`
	Contributors     *contributors          `json:"contributors,omitempty"`
	Visibility       string                 `json:"visibility,omitempty"`
}

type peerReviewPayload struct {
	PutCode              *int64                 `json:"put-code,omitempty"`
	Source               *source                `json:"source,omitempty"`
	ReviewerRole         string                 `json:"reviewer-role,omitempty"`
	ReviewURL            *titleValue            `json:"review-url,omitempty"`
	ReviewType           string                 `json:"review-type,omitempty"`
	ReviewCompletionDate map[string]interface{} `json:"review-completion-date,omitempty"`
	ReviewGroupID        string                 `json:"review-group-id"`
	SubjectExternalID    *externalID            `json:"subject-external-identifier,omitempty"`
	SubjectContainerName *titleValue            `json:"subject-container-name,omitempty"`
	SubjectType          string                 `json:"subject-type,omitempty"`
	SubjectName          *workTitle             `json:"subject-name,omitempty"`
	SubjectURL           *titleValue            `json:"subject-url,omitempty"`
	ConveningOrganization *organization         `json:"convening-organization"`
	ReviewIdentifiers    *externalIDs           `json:"review-identifiers,omitempty"`
	Visibility           string                 `json:"visibility,omitempty"`
}

func optTitle(v string) *titleValue {
	if v == "" {
		return nil
	}
	return &titleValue{Value: v}
}

func optTranslated(value, lang string) *translatedTitle {
	if value == "" {
		return nil
	}
	return &translatedTitle{Value: value, LanguageCode: lang}
}

// newSource tags the payload with the submitting organisation's API client
// so its entries can be told apart from other sources on the profile.
func newSource(cfg Config, org *model.Organisation) *source {
	host := strings.TrimPrefix(strings.TrimPrefix(cfg.SiteURL, "https://"), "http://")
	return &source{
		SourceClientID: &sourceClientID{
			URI:  fmt.Sprintf("%s/client/%s", cfg.SiteURL, org.ClientID),
			Path: org.ClientID,
			Host: host,
		},
		SourceName: &titleValue{Value: org.Name},
	}
}

func newOrganization(name, city, region, country, disambiguatedID, disambiguationSource string) *organization {
	o := &organization{Name: name}
	if city != "" || region != "" || country != "" {
		o.Address = &organizationAddress{City: city, Region: region, Country: country}
	}
	if disambiguatedID != "" {
		o.Disambiguated = &disambiguatedOrganization{
			Identifier: disambiguatedID,
			Source:     disambiguationSource,
		}
	}
	return o
}

func newExternalID(idType, value, url, relationship, defaultType string) externalID {
	if idType == "" {
		idType = defaultType
	}
	if relationship == "" {
		relationship = "SELF"
	}
	return externalID{
		Type:         idType,
		Value:        value,
		URL:          optTitle(url),
		Relationship: strings.ToUpper(relationship),
	}
}

func fundingExternalIDs(ids []model.FundingExternalID) *externalIDs {
	if len(ids) == 0 {
		return nil
	}
	out := &externalIDs{}
	for _, id := range ids {
		out.ExternalID = append(out.ExternalID, newExternalID(id.Type, id.Value, id.URL, id.Relationship, "grant_number"))
	}
	return out
}

func workExternalIDs(ids []model.WorkExternalID) *externalIDs {
	if len(ids) == 0 {
		return nil
	}
	out := &externalIDs{}
	for _, id := range ids {
		out.ExternalID = append(out.ExternalID, newExternalID(id.Type, id.Value, id.URL, id.Relationship, ""))
	}
	return out
}

func peerReviewExternalIDs(ids []model.PeerReviewExternalID) *externalIDs {
	if len(ids) == 0 {
		return nil
	}
	out := &externalIDs{}
	for _, id := range ids {
		out.ExternalID = append(out.ExternalID, newExternalID(id.Type, id.Value, id.URL, id.Relationship, ""))
	}
	return out
}

func (c *Client) newContributor(researcherID, name, email, role, sequence string) contributor {
	out := contributor{
		CreditName: optTitle(name),
		Email:      optTitle(email),
	}
	if researcherID != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(c.cfg.SiteURL, "https://"), "http://")
		out.Orcid = &contributorOrcid{
			URI:  fmt.Sprintf("%s/%s", c.cfg.SiteURL, researcherID),
			Path: researcherID,
			Host: host,
		}
	}
	if role != "" || sequence != "" {
		out.Attributes = &contributorAttributes{
			Sequence: strings.ToUpper(sequence),
			Role:     strings.ToUpper(role),
		}
	}
	return out
}
