package company

import (
	"time"

	companyDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/company"
)

const (
	DefaultName                    = "Sistema Documental"
	DefaultPrimaryColor            = "#3B82F6"
	DefaultBackgroundGradientStart = "#F8FAFC"
	DefaultBackgroundGradientEnd   = "#E2E8F0"
	DefaultButtonColor             = "#3B82F6"
)

// Settings is the tenant branding. There is a single row; it is never deleted.
type Settings struct {
	ID                      string    `json:"id"`
	Name                    string    `json:"name"`
	LogoURL                 *string   `json:"logo_url"`
	PrimaryColor            string    `json:"primary_color"`
	BackgroundGradientStart string    `json:"background_gradient_start"`
	BackgroundGradientEnd   string    `json:"background_gradient_end"`
	ButtonColor             string    `json:"button_color"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// Defaults is what every reader sees before an admin saves anything.
func Defaults() *Settings {
	return &Settings{
		Name:                    DefaultName,
		PrimaryColor:            DefaultPrimaryColor,
		BackgroundGradientStart: DefaultBackgroundGradientStart,
		BackgroundGradientEnd:   DefaultBackgroundGradientEnd,
		ButtonColor:             DefaultButtonColor,
	}
}

func (s *Settings) DisplayName() string {
	if s == nil || s.Name == "" {
		return DefaultName
	}
	return s.Name
}

func ToDataModel(s *Settings) *companyDatamodel.Settings {
	return &companyDatamodel.Settings{
		ID:                      s.ID,
		Name:                    s.Name,
		LogoURL:                 s.LogoURL,
		PrimaryColor:            s.PrimaryColor,
		BackgroundGradientStart: s.BackgroundGradientStart,
		BackgroundGradientEnd:   s.BackgroundGradientEnd,
		ButtonColor:             s.ButtonColor,
		UpdatedAt:               s.UpdatedAt,
	}
}

func FromDataModel(row *companyDatamodel.Settings) *Settings {
	return &Settings{
		ID:                      row.ID,
		Name:                    row.Name,
		LogoURL:                 row.LogoURL,
		PrimaryColor:            row.PrimaryColor,
		BackgroundGradientStart: row.BackgroundGradientStart,
		BackgroundGradientEnd:   row.BackgroundGradientEnd,
		ButtonColor:             row.ButtonColor,
		UpdatedAt:               row.UpdatedAt,
	}
}
