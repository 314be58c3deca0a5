package invite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/repo"
	"github.com/synchub/synchub/internal/pkg/mailer"
	"github.com/synchub/synchub/pkg/log"
	"github.com/synchub/synchub/pkg/metrics"
)

// TokenValidity is how long a consent confirmation link stays usable.
const TokenValidity = 15 * 24 * time.Hour

// IShortener shortens a long callback URL to an absolute short link.
type IShortener interface {
	Shorten(longURL string) (string, error)
}

// Invitation is one consent request: who to invite and for which task rows.
type Invitation struct {
	TaskID           uint64
	Kind             model.TaskType
	Email            string
	FirstName        string
	LastName         string
	AffiliationTypes []string
}

// Issuer sends consent invitations and records the bookkeeping around them:
// the local user, the org link, the audit row and the record status lines.
type Issuer struct {
	repos     *repo.Repos
	sender    mailer.ISender
	shortener IShortener
	secret    []byte
	baseURL   string
}

func NewIssuer(repos *repo.Repos, sender mailer.ISender, shortener IShortener, secret, baseURL string) *Issuer {
	return &Issuer{
		repos:     repos,
		sender:    sender,
		shortener: shortener,
		secret:    []byte(secret),
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Invite sends the initial consent invitation for one researcher of a task.
// Errors are logged and returned: a failed invitation is fatal for that
// researcher's group in the current pass.
func (i *Issuer) Invite(ctx context.Context, inviter *model.User, org *model.Organisation, inv Invitation) error {
	return i.send(ctx, inviter, org, inv, false)
}

// Reinvite resends the invitation for rows whose researcher profile can no
// longer be read with the stored token.
func (i *Issuer) Reinvite(ctx context.Context, org *model.Organisation, user *model.User, rows []repo.PendingRow) error {
	inv := Invitation{
		Kind:      model.TaskTypeAffiliation,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	for _, row := range rows {
		inv.TaskID = row.TaskID
		inv.AffiliationTypes = append(inv.AffiliationTypes, row.AffiliationType)
	}
	inviter, err := i.repos.User.Get(rows[0].TaskCreatedBy)
	if err != nil {
		inviter = &model.User{}
	}
	return i.send(ctx, inviter, org, inv, true)
}

func (i *Issuer) send(_ context.Context, inviter *model.User, org *model.Organisation, inv Invitation, resent bool) error {
	email := strings.ToLower(strings.TrimSpace(inv.Email))
	user, _, err := i.repos.User.GetOrCreateByEmail(email)
	if err != nil {
		log.Errorf("resolving invitee %s: %v", email, err)
		return err
	}
	if user.FirstName == "" {
		user.FirstName = inv.FirstName
	}
	if user.LastName == "" {
		user.LastName = inv.LastName
	}
	if user.Name == "" {
		user.Name = strings.TrimSpace(inv.FirstName + " " + inv.LastName)
	}
	if user.OrgID == 0 {
		user.OrgID = org.ID
	}
	user.Roles |= model.RoleResearcher
	if err := i.repos.User.Save(user); err != nil {
		log.Errorf("saving invitee %s: %v", email, err)
		return err
	}

	token, err := i.confirmationToken(email, org.Name)
	if err != nil {
		log.Errorf("signing confirmation token for %s: %v", email, err)
		return err
	}
	inviteURL, err := i.shortener.Shorten(i.baseURL + "/invitation/" + token)
	if err != nil {
		log.Errorf("shortening invitation link for %s: %v", email, err)
		return err
	}

	affiliations := model.AffiliationsFromTypes(inv.AffiliationTypes)
	name := user.Name
	if name == "" {
		name = email
	}
	vars := map[string]interface{}{
		"Name":      name,
		"OrgName":   org.Name,
		"Kind":      kindLabel(inv.Kind, affiliations),
		"InviteURL": inviteURL,
		"Resent":    resent,
	}
	subject := fmt.Sprintf("Permission requested by %s", org.Name)
	if err := i.sender.Send(mailer.TemplateInvitation, email, inviter.Email, subject, vars); err != nil {
		log.Errorf("sending invitation to %s: %v", email, err)
		return err
	}
	metrics.InvitationsSent.WithLabelValues(inv.Kind.String()).Inc()

	userOrg, _, err := i.repos.User.GetOrCreateUserOrg(user.ID, org.ID)
	if err != nil {
		return err
	}
	userOrg.Affiliations |= affiliations
	if err := i.repos.User.SaveUserOrg(userOrg); err != nil {
		return err
	}

	now := time.Now().UTC()
	audit := &model.UserInvitation{
		TaskID:               inv.TaskID,
		InviteeID:            user.ID,
		InviterID:            inviter.ID,
		OrgID:                org.ID,
		Email:                email,
		FirstName:            inv.FirstName,
		LastName:             inv.LastName,
		Organisation:         org.Name,
		City:                 org.City,
		State:                org.State,
		Country:              org.Country,
		DisambiguatedID:      org.DisambiguatedID,
		DisambiguationSource: org.DisambiguationSource,
		Affiliations:         affiliations,
		Token:                token,
		SentAt:               &now,
	}
	if err := i.repos.User.CreateInvitation(audit); err != nil {
		return err
	}

	if err := i.appendSentStatus(inv.Kind, email, now, resent); err != nil {
		log.Errorf("stamping invitation status for %s: %v", email, err)
		return err
	}
	log.Infow("invitation sent", "email", email, "org", org.Name, "kind", inv.Kind.String(), "resent", resent)
	return nil
}

func (i *Issuer) appendSentStatus(kind model.TaskType, email string, sentAt time.Time, resent bool) error {
	verb := "sent"
	if resent {
		verb = "resent"
	}
	line := fmt.Sprintf("The invitation %s at %s", verb, sentAt.Format("2006-01-02T15:04:05"))
	switch kind {
	case model.TaskTypeAffiliation:
		return i.repos.Affiliation.AppendStatusByEmail(email, line)
	case model.TaskTypeFunding:
		return i.repos.Funding.AppendInviteeStatusByEmail(email, line)
	case model.TaskTypeWork:
		return i.repos.Work.AppendInviteeStatusByEmail(email, line)
	case model.TaskTypePeerReview:
		return i.repos.PeerReview.AppendInviteeStatusByEmail(email, line)
	}
	return nil
}

// confirmationToken signs a short-lived JWT binding the invitee's email to
// the inviting organisation.
func (i *Issuer) confirmationToken(email, orgName string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"email": email,
		"org":   orgName,
		"iat":   now.Unix(),
		"exp":   now.Add(TokenValidity).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// VerifyConfirmationToken parses a confirmation token back into the email
// and organisation name it was issued for.
func (i *Issuer) VerifyConfirmationToken(token string) (email, orgName string, err error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return "", "", err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", "", fmt.Errorf("invalid confirmation token")
	}
	email, _ = claims["email"].(string)
	orgName, _ = claims["org"].(string)
	return email, orgName, nil
}

func kindLabel(kind model.TaskType, affiliations model.Affiliation) string {
	if kind == model.TaskTypeAffiliation {
		if label := affiliations.String(); label != "" {
			return label
		}
		return "affiliation"
	}
	switch kind {
	case model.TaskTypeFunding:
		return "funding"
	case model.TaskTypeWork:
		return "research output"
	case model.TaskTypePeerReview:
		return "peer review"
	default:
		return kind.String()
	}
}
