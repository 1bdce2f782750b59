// Package notification renders and delivers document emails.
package notification

import (
	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/company"
	"github.com/frahmantamala/docportal/internal/core/common/validation"
)

// DocumentEmail tells a worker that a document is waiting for them.
type DocumentEmail struct {
	To            string `json:"to"`
	WorkerName    string `json:"workerName"`
	DocumentTitle string `json:"documentTitle"`
	DocumentURL   string `json:"documentUrl"`
	FileName      string `json:"fileName"`
	CompanyName   string `json:"companyName,omitempty"`
}

func (e DocumentEmail) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("to", e.To).Required().Email()
	v.Field("workerName", e.WorkerName).Required()
	v.Field("documentTitle", e.DocumentTitle).Required()
	v.Field("documentUrl", e.DocumentURL).Required()
	return v.Validate()
}

// Branding is the part of the company settings that shows up in emails.
type Branding struct {
	CompanyName  string
	PrimaryColor string
	ButtonColor  string
	LogoURL      string
}

func BrandingFrom(s *company.Settings) Branding {
	if s == nil {
		s = company.Defaults()
	}
	b := Branding{
		CompanyName:  s.DisplayName(),
		PrimaryColor: s.PrimaryColor,
		ButtonColor:  s.ButtonColor,
	}
	if b.PrimaryColor == "" {
		b.PrimaryColor = company.DefaultPrimaryColor
	}
	if b.ButtonColor == "" {
		b.ButtonColor = company.DefaultButtonColor
	}
	if s.LogoURL != nil {
		b.LogoURL = *s.LogoURL
	}
	return b
}

type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Receipt identifies a delivered message.
type Receipt struct {
	ID string `json:"id"`
}
