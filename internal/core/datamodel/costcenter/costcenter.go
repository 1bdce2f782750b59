package costcenter

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CostCenter struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Code        string    `gorm:"column:code;uniqueIndex;not null"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CostCenter) TableName() string {
	return "cost_centers"
}

func (c *CostCenter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
