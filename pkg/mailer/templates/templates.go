package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

// AccountEmail is the data rendered into account notification emails.
type AccountEmail struct {
	Type     string
	AppName  string
	Fullname string
	Username string
	Email    string
	LoginURL string
}

var subjects = map[string]string{
	"welcome":          "Welcome to %s",
	"password_changed": "Your %s password was changed",
}

var (
	htmlSet = htmpl.Must(htmpl.New("").ParseFS(FS, "*.html.tmpl"))
	textSet = texttpl.Must(texttpl.New("").ParseFS(FS, "*.txt.tmpl"))
)

// FromMap builds AccountEmail from the loosely typed job data.
func FromMap(jobType string, data map[string]any) AccountEmail {
	get := func(k string) string {
		if v, ok := data[k]; ok && v != nil {
			return strings.TrimSpace(fmt.Sprintf("%v", v))
		}
		return ""
	}
	return AccountEmail{
		Type:     jobType,
		AppName:  get("app_name"),
		Fullname: get("fullname"),
		Username: get("username"),
		Email:    get("email"),
		LoginURL: get("login_url"),
	}
}

// Render returns subject, text and html bodies for d.Type.
func Render(d AccountEmail) (string, string, string, error) {
	format, ok := subjects[d.Type]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", d.Type)
	}
	var text, html bytes.Buffer
	if err := textSet.ExecuteTemplate(&text, "account.txt.tmpl", d); err != nil {
		return "", "", "", err
	}
	if err := htmlSet.ExecuteTemplate(&html, "account.html.tmpl", d); err != nil {
		return "", "", "", err
	}
	return fmt.Sprintf(format, d.AppName), text.String(), html.String(), nil
}
