package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
)

//go:embed templates/*.html
var templateFS embed.FS

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/document_email.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type documentView struct {
	Branding
	WorkerName    string
	DocumentTitle string
	DocumentURL   string
	FileName      string
	PrimaryColor  template.CSS
	ButtonColor   template.CSS
}

// Render returns the subject and HTML body. Colors that are not plain hex values
// fall back to the defaults since they are interpolated into CSS.
func (r *Renderer) Render(email DocumentEmail, b Branding) (string, string, error) {
	if email.CompanyName != "" {
		b.CompanyName = email.CompanyName
	}
	view := documentView{
		Branding:      b,
		WorkerName:    email.WorkerName,
		DocumentTitle: email.DocumentTitle,
		DocumentURL:   email.DocumentURL,
		FileName:      email.FileName,
		PrimaryColor:  template.CSS(safeColor(b.PrimaryColor, "#3B82F6")),
		ButtonColor:   template.CSS(safeColor(b.ButtonColor, "#3B82F6")),
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "document_email.html", view); err != nil {
		return "", "", fmt.Errorf("failed to render document email: %w", err)
	}
	return "Nuevo documento: " + email.DocumentTitle, buf.String(), nil
}

func safeColor(c, fallback string) string {
	if hexColor.MatchString(c) {
		return c
	}
	return fallback
}
