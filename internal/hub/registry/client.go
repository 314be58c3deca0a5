package registry

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/repo"
	"github.com/synchub/synchub/pkg/log"
)

// Result of a create-or-update submission.
type Result struct {
	PutCode      int64
	ResearcherID string
	Created      bool
}

// IClient is the per-researcher registry API surface the synchronizers
// consume.
type IClient interface {
	FetchProfile(ctx context.Context) *Profile
	AffiliationPutCode(ctx context.Context, kind model.Affiliation) int64
	CreateOrUpdateAffiliation(ctx context.Context, rec *model.AffiliationRecord, kind model.Affiliation) (Result, error)
	CreateOrUpdateFunding(ctx context.Context, rec *model.FundingRecord, invitee *model.FundingInvitee,
		contribs []model.FundingContributor, extIDs []model.FundingExternalID) (Result, error)
	CreateOrUpdateWork(ctx context.Context, rec *model.WorkRecord, invitee *model.WorkInvitee,
		contribs []model.WorkContributor, extIDs []model.WorkExternalID) (Result, error)
	CreateOrUpdatePeerReview(ctx context.Context, rec *model.PeerReviewRecord, invitee *model.PeerReviewInvitee,
		extIDs []model.PeerReviewExternalID) (Result, error)
}

// Client talks to the registry member API on behalf of one researcher and
// one organisation, authenticated with the researcher's stored token.
type Client struct {
	cfg    Config
	org    *model.Organisation
	user   *model.User
	tokens repo.ITokenRepository
	http   *resty.Client
}

// NewClient resolves the researcher's activity token from the store and
// builds a client. Returns an error when no usable token exists.
func NewClient(cfg Config, org *model.Organisation, user *model.User,
	tokens repo.ITokenRepository, calls repo.IAPICallRepository) (*Client, error) {
	token, err := tokens.FindActivityToken(user.ID, org.ID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("no activity token for %q in %q", user.Email, org.Name)
	}
	return NewClientWithToken(cfg, org, user, token.AccessToken, tokens, calls), nil
}

// NewClientWithToken builds a client around an already-resolved token.
func NewClientWithToken(cfg Config, org *model.Organisation, user *model.User,
	accessToken string, tokens repo.ITokenRepository, calls repo.IAPICallRepository) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIBaseURL, "/")).
		SetAuthToken(accessToken).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	attachCallLogging(httpClient, user.ID, calls)
	return &Client{cfg: cfg, org: org, user: user, tokens: tokens, http: httpClient}
}

// FetchProfile returns the researcher's profile snapshot, or nil when it
// cannot be read. A 401 deletes the stored activity tokens so the next pass
// re-invites the researcher instead of retrying a dead token.
func (c *Client) FetchProfile(ctx context.Context) *Profile {
	resp, err := c.http.R().SetContext(ctx).Get("/" + c.user.ResearcherID)
	if err != nil {
		log.Errorf("fetching profile %s: %v", c.user.ResearcherID, err)
		return nil
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		log.Infow("registry rejected the stored token, deleting it",
			"user", c.user.Email, "org", c.org.Name)
		if err := c.tokens.DeleteActivityTokens(c.user.ID, c.org.ID); err != nil {
			log.Errorf("deleting rejected tokens for %s: %v", c.user.Email, err)
		}
		return nil
	}
	if resp.StatusCode() != http.StatusOK {
		log.Errorf("fetching profile %s: registry returned %d", c.user.ResearcherID, resp.StatusCode())
		return nil
	}
	profile, err := ParseProfile(resp.Body())
	if err != nil {
		log.Errorf("parsing profile %s: %v", c.user.ResearcherID, err)
		return nil
	}
	return profile
}

// AffiliationPutCode returns the put-code of an existing employment or
// education entry this organisation created, or 0 when there is none.
func (c *Client) AffiliationPutCode(ctx context.Context, kind model.Affiliation) int64 {
	profile := c.FetchProfile(ctx)
	if profile == nil {
		return 0
	}
	for _, cand := range profile.AffiliationCandidates(kind, c.org.ClientID) {
		return cand.PutCode
	}
	return 0
}

func (c *Client) CreateOrUpdateAffiliation(ctx context.Context, rec *model.AffiliationRecord,
	kind model.Affiliation) (Result, error) {
	payload := &affiliationPayload{
		PutCode:        rec.PutCode,
		Source:         newSource(c.cfg, c.org),
		DepartmentName: rec.Department,
		RoleTitle:      rec.Role,
		StartDate:      rec.StartDate.AsRegistryMap(),
		EndDate:        rec.EndDate.AsRegistryMap(),
		Organization: newOrganization(
			fallback(rec.Organisation, c.org.Name),
			fallback(rec.City, c.org.City),
			fallback(rec.State, c.org.State),
			fallback(rec.Country, c.org.Country),
			fallback(rec.DisambiguatedID, c.org.DisambiguatedID),
			fallback(rec.DisambiguationSource, c.org.DisambiguationSource),
		),
	}
	path := "employment"
	if kind == model.AffiliationEducation {
		path = "education"
	}
	return c.submit(ctx, path, rec.PutCode, payload)
}

func (c *Client) CreateOrUpdateFunding(ctx context.Context, rec *model.FundingRecord,
	invitee *model.FundingInvitee, contribs []model.FundingContributor,
	extIDs []model.FundingExternalID) (Result, error) {
	payload := &fundingPayload{
		PutCode: invitee.PutCode,
		Source:  newSource(c.cfg, c.org),
		Title: &fundingTitle{
			Title:      titleValue{Value: rec.Title},
			Translated: optTranslated(rec.TranslatedTitle, rec.TranslatedTitleLanguageCode),
		},
		Type:             rec.Type,
		OrgDefinedType:   optTitle(rec.OrganizationDefinedType),
		ShortDescription: rec.ShortDescription,
		StartDate:        rec.StartDate.AsRegistryMap(),
		EndDate:          rec.EndDate.AsRegistryMap(),
		Organization: newOrganization(
			fallback(rec.OrgName, c.org.Name),
			fallback(rec.City, c.org.City),
			fallback(rec.Region, c.org.State),
			fallback(rec.Country, c.org.Country),
			fallback(rec.DisambiguatedID, c.org.DisambiguatedID),
			fallback(rec.DisambiguationSource, c.org.DisambiguationSource),
		),
		ExternalIDs: fundingExternalIDs(extIDs),
		Visibility:  invitee.Visibility,
	}
	if rec.Amount != "" {
		payload.Amount = &amount{Value: rec.Amount, CurrencyCode: rec.Currency}
	}
	if len(contribs) > 0 {
		payload.Contributors = &contributors{}
		for _, contrib := range contribs {
			payload.Contributors.Contributor = append(payload.Contributors.Contributor,
				c.newContributor(contrib.ResearcherID, contrib.Name, contrib.Email, contrib.Role, ""))
		}
	}
	return c.submit(ctx, "funding", invitee.PutCode, payload)
}

func (c *Client) CreateOrUpdateWork(ctx context.Context, rec *model.WorkRecord,
	invitee *model.WorkInvitee, contribs []model.WorkContributor,
	extIDs []model.WorkExternalID) (Result, error) {
	payload := &workPayload{
		PutCode: invitee.PutCode,
		Source:  newSource(c.cfg, c.org),
		Title: &workTitle{
			Title:      titleValue{Value: rec.Title},
			Subtitle:   optTitle(rec.Subtitle),
			Translated: optTranslated(rec.TranslatedTitle, rec.TranslatedTitleLanguageCode),
		},
		JournalTitle:     optTitle(rec.JournalTitle),
		ShortDescription: rec.ShortDescription,
		Type:             rec.Type,
		PublicationDate:  rec.PublicationDate.AsRegistryMap(),
		URL:              optTitle(rec.URL),
		LanguageCode:     rec.LanguageCode,
		Country:          optTitle(rec.Country),
		ExternalIDs:      workExternalIDs(extIDs),
		Visibility:       invitee.Visibility,
	}
	if rec.CitationType != "" {
		payload.Citation = &citation{Type: rec.CitationType, Value: rec.CitationValue}
	}
	if payload.PublicationDate != nil && rec.PublicationMediaType != "" {
		payload.PublicationDate["media-type"] = rec.PublicationMediaType
	}
	if len(contribs) > 0 {
		payload.Contributors = &contributors{}
		for _, contrib := range contribs {
			payload.Contributors.Contributor = append(payload.Contributors.Contributor,
				c.newContributor(contrib.ResearcherID, contrib.Name, contrib.Email, contrib.Role, contrib.ContributorSequence))
		}
	}
	return c.submit(ctx, "work", invitee.PutCode, payload)
}

func (c *Client) CreateOrUpdatePeerReview(ctx context.Context, rec *model.PeerReviewRecord,
	invitee *model.PeerReviewInvitee, extIDs []model.PeerReviewExternalID) (Result, error) {
	payload := &peerReviewPayload{
		PutCode:              invitee.PutCode,
		Source:               newSource(c.cfg, c.org),
		ReviewerRole:         rec.ReviewerRole,
		ReviewURL:            optTitle(rec.ReviewURL),
		ReviewType:           rec.ReviewType,
		ReviewCompletionDate: rec.ReviewCompletionDate.AsRegistryMap(),
		ReviewGroupID:        rec.ReviewGroupID,
		SubjectContainerName: optTitle(rec.SubjectContainerName),
		SubjectType:          rec.SubjectType,
		SubjectURL:           optTitle(rec.SubjectURL),
		ConveningOrganization: newOrganization(
			fallback(rec.ConveningOrgName, c.org.Name),
			fallback(rec.ConveningOrgCity, c.org.City),
			fallback(rec.ConveningOrgRegion, c.org.State),
			fallback(rec.ConveningOrgCountry, c.org.Country),
			fallback(rec.ConveningOrgDisambiguatedID, c.org.DisambiguatedID),
			fallback(rec.ConveningOrgDisambiguationSource, c.org.DisambiguationSource),
		),
		ReviewIdentifiers: peerReviewExternalIDs(extIDs),
		Visibility:        invitee.Visibility,
	}
	if rec.SubjectExternalIDValue != "" {
		subject := newExternalID(rec.SubjectExternalIDType, rec.SubjectExternalIDValue,
			rec.SubjectExternalIDURL, rec.SubjectExternalIDRelationship, "")
		payload.SubjectExternalID = &subject
	}
	if rec.SubjectNameTitle != "" {
		payload.SubjectName = &workTitle{
			Title:      titleValue{Value: rec.SubjectNameTitle},
			Subtitle:   optTitle(rec.SubjectNameSubtitle),
			Translated: optTranslated(rec.SubjectNameTranslatedTitle, rec.SubjectNameTranslatedTitleLang),
		}
	}
	return c.submit(ctx, "peer-review", invitee.PutCode, payload)
}

// submit posts a new entry or puts an update, depending on whether a
// put-code is already assigned. A 201 carries the assigned put-code in the
// Location header; a 200 is an idempotent update.
func (c *Client) submit(ctx context.Context, kindPath string, putCode *int64, body interface{}) (Result, error) {
	req := c.http.R().
		SetContext(context.WithValue(ctx, putCodeKey{}, putCode)).
		SetBody(body)
	var resp *resty.Response
	var err error
	if putCode == nil {
		resp, err = req.Post(fmt.Sprintf("/%s/%s", c.user.ResearcherID, kindPath))
	} else {
		resp, err = req.Put(fmt.Sprintf("/%s/%s/%d", c.user.ResearcherID, kindPath, *putCode))
	}
	if err != nil {
		return Result{}, fmt.Errorf("registry request: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusCreated:
		res := Result{Created: true}
		res.ResearcherID, res.PutCode = parseLocation(resp.Header().Get("Location"))
		return res, nil
	case http.StatusOK:
		res := Result{ResearcherID: c.user.ResearcherID}
		if putCode != nil {
			res.PutCode = *putCode
		}
		return res, nil
	default:
		return Result{}, &APIError{
			StatusCode: resp.StatusCode(),
			Method:     resp.Request.Method,
			URL:        resp.Request.URL,
			Body:       string(resp.Body()),
		}
	}
}

// parseLocation extracts the researcher id and put-code from a Location
// header of the form …/{researcher-id}/{kind}/{put-code}.
func parseLocation(location string) (string, int64) {
	parts := strings.Split(location, "/")
	if len(parts) < 3 {
		return "", 0
	}
	code, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return "", 0
	}
	return parts[len(parts)-3], code
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
