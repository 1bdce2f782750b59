package profile

import "time"

// UserProfile shares its primary key with the identity account it describes.
type UserProfile struct {
	ID           string    `gorm:"type:char(36);primaryKey"`
	Role         string    `gorm:"column:role;not null;index"`
	FullName     string    `gorm:"column:full_name;not null"`
	Rut          string    `gorm:"column:rut;not null;default:''"`
	Phone        *string   `gorm:"column:phone"`
	Email        string    `gorm:"column:email;not null"`
	CostCenterID *string   `gorm:"column:cost_center_id;type:char(36);index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
