package company

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Settings struct {
	ID                      string    `gorm:"type:char(36);primaryKey"`
	Name                    string    `gorm:"column:name;not null"`
	LogoURL                 *string   `gorm:"column:logo_url"`
	PrimaryColor            string    `gorm:"column:primary_color;not null"`
	BackgroundGradientStart string    `gorm:"column:background_gradient_start;not null"`
	BackgroundGradientEnd   string    `gorm:"column:background_gradient_end;not null"`
	ButtonColor             string    `gorm:"column:button_color;not null"`
	CreatedAt               time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Settings) TableName() string {
	return "company_settings"
}

func (s *Settings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
