package user

import (
	"time"

	"github.com/frahmantamala/docportal/internal"
	profileDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/profile"
)

// Profile is the portal-side record of a person. Its ID is the identity account ID.
type Profile struct {
	ID             string        `json:"id"`
	Role           internal.Role `json:"role"`
	FullName       string        `json:"full_name"`
	Rut            string        `json:"rut"`
	Phone          *string       `json:"phone"`
	Email          string        `json:"email"`
	CostCenterID   *string       `json:"cost_center_id"`
	CostCenterName *string       `json:"cost_center_name,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (p *Profile) IsWorker() bool {
	return p.Role == internal.RoleWorker
}

func (p *Profile) ToDataModel() *profileDatamodel.UserProfile {
	return &profileDatamodel.UserProfile{
		ID:           p.ID,
		Role:         string(p.Role),
		FullName:     p.FullName,
		Rut:          p.Rut,
		Phone:        p.Phone,
		Email:        p.Email,
		CostCenterID: p.CostCenterID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func FromDataModel(row *profileDatamodel.UserProfile) *Profile {
	return &Profile{
		ID:           row.ID,
		Role:         internal.Role(row.Role),
		FullName:     row.FullName,
		Rut:          row.Rut,
		Phone:        row.Phone,
		Email:        row.Email,
		CostCenterID: row.CostCenterID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// ProfileRow is a profile joined with its cost center name for listings.
type ProfileRow struct {
	profileDatamodel.UserProfile `gorm:"embedded"`
	CostCenterName               *string `gorm:"column:cost_center_name"`
}

func FromProfileRow(row *ProfileRow) *Profile {
	p := FromDataModel(&row.UserProfile)
	p.CostCenterName = row.CostCenterName
	return p
}

// nullable maps empty strings to NULL.
func nullable(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
