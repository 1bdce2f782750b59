package document

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	ID           string    `gorm:"type:char(36);primaryKey"`
	Title        string    `gorm:"column:title;not null"`
	Description  *string   `gorm:"column:description"`
	Category     *string   `gorm:"column:category"`
	FileName     string    `gorm:"column:file_name;not null"`
	FileURL      string    `gorm:"column:file_url;not null"`
	FileSize     int64     `gorm:"column:file_size;not null"`
	FileType     string    `gorm:"column:file_type;not null"`
	UserID       *string   `gorm:"column:user_id;type:char(36);index"`
	CostCenterID *string   `gorm:"column:cost_center_id;type:char(36);index"`
	UploadedBy   *string   `gorm:"column:uploaded_by;type:char(36)"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

type AccessLog struct {
	ID         string    `gorm:"type:char(36);primaryKey"`
	DocumentID string    `gorm:"column:document_id;type:char(36);not null;index"`
	UserID     string    `gorm:"column:user_id;type:char(36);not null"`
	AccessedAt time.Time `gorm:"column:accessed_at;not null"`
}

func (AccessLog) TableName() string {
	return "document_access_log"
}

func (a *AccessLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AccessedAt.IsZero() {
		a.AccessedAt = time.Now()
	}
	return nil
}
