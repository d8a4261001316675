package mail

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
)

// Message kinds.
const (
	KindWelcome       = "welcome"
	KindResetPassword = "reset_password"
	KindInvitation    = "invitation"
)

// SubjectResetPassword is fixed; clients filter on it.
const SubjectResetPassword = "Reset Password"

var templates = template.Must(template.New("mail").Parse(`
{{define "welcome"}}Hi {{.Name}},

Your site "{{.Title}}" is ready. Sign in to the admin area at:

{{.Link}}

The email address you registered with is {{.To}}.
{{end}}

{{define "reset_password"}}Hi,

Someone (hopefully you) asked to reset the password for {{.To}}.
Follow the link below within {{.Validity}} to choose a new one:

{{.Link}}

If you did not ask for this you can ignore this email.
{{end}}

{{define "invitation"}}Hi,

{{if .Inviter}}{{.Inviter}} has invited you{{else}}You have been invited{{end}} to join "{{.Title}}" as {{.Role}}.
Accept the invitation at:

{{.Link}}

The invitation expires in {{.Validity}}.
{{end}}
`))

type templateData struct {
	To       string
	Name     string
	Title    string
	Link     string
	Validity string
	Inviter  string
	Role     string
}

// Composer renders messages for a site.
type Composer struct {
	SiteURL string
	Title   func() string
}

func (c Composer) title() string {
	if c.Title == nil {
		return ""
	}
	return c.Title()
}

func (c Composer) link(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return strings.TrimSuffix(c.SiteURL, "/") + "/" + strings.Join(escaped, "/") + "/"
}

func (c Composer) Welcome(to, name string) (domain.Message, error) {
	title := c.title()
	return render(KindWelcome, to, "Welcome to "+title, templateData{
		To:    to,
		Name:  name,
		Title: title,
		Link:  c.link("signin"),
	})
}

// ResetPassword links to /reset/{token}/.
func (c Composer) ResetPassword(to, token, validity string) (domain.Message, error) {
	return render(KindResetPassword, to, SubjectResetPassword, templateData{
		To:       to,
		Link:     c.link("reset", token),
		Validity: validity,
	})
}

// Invitation links to /signup/{token}/.
func (c Composer) Invitation(to, token, inviter string, role domain.Role, validity string) (domain.Message, error) {
	title := c.title()
	subject := "You have been invited to join " + title
	if inviter != "" {
		subject = inviter + " has invited you to join " + title
	}
	return render(KindInvitation, to, subject, templateData{
		To:       to,
		Title:    title,
		Link:     c.link("signup", token),
		Validity: validity,
		Inviter:  inviter,
		Role:     string(role),
	})
}

func render(kind, to, subject string, data templateData) (domain.Message, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, kind, data); err != nil {
		return domain.Message{}, fmt.Errorf("mail: render %s: %w", kind, err)
	}
	return domain.Message{
		Kind:    kind,
		To:      to,
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimLeft(buf.String(), "\n"),
	}, nil
}
