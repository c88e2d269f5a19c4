package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const DefaultAppName = "Goalkeeper Finder"

var subjects = map[domain.CodeType]string{
	domain.CodeTypeEmailConfirmation: "Confirm Your Email Address",
	domain.CodeTypePasswordReset:     "Reset Your Password",
}

// TemplateData is what the email templates can reference.
type TemplateData struct {
	AppName   string
	Subject   string
	Link      string
	ExpiresIn string
}

// Templates renders the code emails embedded in the binary.
type Templates struct {
	AppName string
	html    *template.Template
}

func LoadTemplates(appName string) (*Templates, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	if appName == "" {
		appName = DefaultAppName
	}
	return &Templates{AppName: appName, html: t}, nil
}

// Render builds the message for codeType. The caller fills in To.
func (t *Templates) Render(codeType domain.CodeType, link string, ttl time.Duration) (Message, error) {
	subject, ok := subjects[codeType]
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", domain.ErrUnknownCodeType, codeType)
	}

	data := TemplateData{
		AppName:   t.AppName,
		Subject:   subject,
		Link:      link,
		ExpiresIn: humanDuration(ttl),
	}

	var buf bytes.Buffer
	if err := t.html.ExecuteTemplate(&buf, codeType.String()+".html", data); err != nil {
		return Message{}, fmt.Errorf("render %s email: %w", codeType, err)
	}

	return Message{
		Subject: subject,
		HTML:    buf.String(),
		Text:    plainText(codeType, data),
	}, nil
}

func plainText(codeType domain.CodeType, d TemplateData) string {
	var b strings.Builder
	switch codeType {
	case domain.CodeTypeEmailConfirmation:
		fmt.Fprintf(&b, "Confirm your %s email address:\n\n%s\n\n", d.AppName, d.Link)
	case domain.CodeTypePasswordReset:
		fmt.Fprintf(&b, "Reset your %s password:\n\n%s\n\n", d.AppName, d.Link)
	}
	fmt.Fprintf(&b, "This link expires in %s.\n", d.ExpiresIn)
	return b.String()
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a few minutes"
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return plural(int(d.Round(time.Minute)/time.Minute), "minute")
	default:
		return plural(int(d.Round(time.Second)/time.Second), "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
