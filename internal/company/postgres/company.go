package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/docportal/internal/company"
	companyDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/company"
	"gorm.io/gorm"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) company.RepositoryAPI {
	return &SettingsRepository{db: db}
}

// Get returns the oldest row; the table is expected to hold exactly one.
func (r *SettingsRepository) Get(ctx context.Context) (*companyDatamodel.Settings, error) {
	var row companyDatamodel.Settings
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *SettingsRepository) Create(ctx context.Context, row *companyDatamodel.Settings) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *SettingsRepository) Save(ctx context.Context, row *companyDatamodel.Settings) error {
	return r.db.WithContext(ctx).Save(row).Error
}
