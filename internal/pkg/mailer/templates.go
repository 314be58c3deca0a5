package mailer

import "html/template"

// Template names used by the invitation issuer and the batch scheduler.
const (
	TemplateInvitation     = "invitation"
	TemplateTaskCompleted  = "task_completed"
	TemplateTaskExpiration = "task_expiration"
)

const invitationBody = `<html>
<body>
<p>Dear {{.Name}},</p>
{{if .Resent}}
<p>This is a reminder: {{.OrgName}} is still waiting for your permission to
update your {{.Kind}} information in your research profile.</p>
{{else}}
<p>{{.OrgName}} would like your permission to add {{.Kind}} information to
your research profile on your behalf.</p>
{{end}}
<p>Please follow this link to give (or decline) your permission:</p>
<p><a href="{{.InviteURL}}">{{.InviteURL}}</a></p>
<p>The link is valid for 15 days.</p>
<p>Kind regards,<br>{{.OrgName}}</p>
</body>
</html>`

const taskCompletedBody = `<html>
<body>
<p>Dear {{.Name}},</p>
<p>The batch task <b>{{.Filename}}</b> ({{.Kind}}) has been processed.</p>
{{if .ErrorCount}}
<p>{{.ErrorCount}} of {{.RowCount}} records finished with an error status.
Fix and reset them to have them processed again.</p>
{{else}}
<p>All {{.RowCount}} records were processed without errors.</p>
{{end}}
{{if .ResearcherCount}}
<p>The task updated the profiles of {{.ResearcherCount}} researchers.</p>
{{end}}
<p>You can review and export the results here:</p>
<p><a href="{{.ExportURL}}">{{.ExportURL}}</a></p>
</body>
</html>`

const taskExpirationBody = `<html>
<body>
<p>Dear {{.Name}},</p>
<p>The batch task <b>{{.Filename}}</b> ({{.Kind}}) will be deleted after
{{.ExpiresAt}}.</p>
{{if .ErrorCount}}
<p>It still has {{.ErrorCount}} records with an error status.</p>
{{end}}
<p>If you need to keep the data, export the task before it expires:</p>
<p><a href="{{.ExportURL}}">{{.ExportURL}}</a></p>
</body>
</html>`

func parseTemplates() (*template.Template, error) {
	root := template.New("mail")
	for name, body := range map[string]string{
		TemplateInvitation:     invitationBody,
		TemplateTaskCompleted:  taskCompletedBody,
		TemplateTaskExpiration: taskExpirationBody,
	} {
		if _, err := root.New(name).Parse(body); err != nil {
			return nil, err
		}
	}
	return root, nil
}
