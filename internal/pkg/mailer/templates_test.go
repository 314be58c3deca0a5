package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesRender(t *testing.T) {
	templates, err := parseTemplates()
	require.NoError(t, err)

	var out strings.Builder
	err = templates.ExecuteTemplate(&out, TemplateInvitation, map[string]interface{}{
		"Name":      "Jane Doe",
		"OrgName":   "Example University",
		"Kind":      "Employment",
		"InviteURL": "https://hub.example.edu/u/abc123",
		"Resent":    false,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Jane Doe")
	assert.Contains(t, out.String(), "https://hub.example.edu/u/abc123")
	assert.NotContains(t, out.String(), "reminder")

	out.Reset()
	err = templates.ExecuteTemplate(&out, TemplateInvitation, map[string]interface{}{
		"Name": "Jane Doe", "OrgName": "Example University",
		"Kind": "Employment", "InviteURL": "x", "Resent": true,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "reminder")

	out.Reset()
	err = templates.ExecuteTemplate(&out, TemplateTaskCompleted, map[string]interface{}{
		"Name": "Admin", "Filename": "upload.csv", "Kind": "funding",
		"ErrorCount": int64(2), "RowCount": int64(10), "ExportURL": "https://hub.example.edu/tasks/1/export",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "upload.csv")
	assert.Contains(t, out.String(), "finished with an error status")
	assert.NotContains(t, out.String(), "profiles of")

	// affiliation completions carry the distinct researcher count
	out.Reset()
	err = templates.ExecuteTemplate(&out, TemplateTaskCompleted, map[string]interface{}{
		"Name": "Admin", "Filename": "upload.csv", "Kind": "affiliation",
		"ErrorCount": int64(0), "RowCount": int64(10), "ResearcherCount": int64(4),
		"ExportURL": "https://hub.example.edu/tasks/1/export",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "profiles of 4 researchers")

	out.Reset()
	err = templates.ExecuteTemplate(&out, TemplateTaskExpiration, map[string]interface{}{
		"Name": "Admin", "Filename": "upload.csv", "Kind": "work",
		"ErrorCount": int64(0), "ExpiresAt": "2026-09-30", "ExportURL": "x",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "2026-09-30")
}
