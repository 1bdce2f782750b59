package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/docportal/internal/costcenter"
	costcenterDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/costcenter"
	"gorm.io/gorm"
)

type CostCenterRepository struct {
	db *gorm.DB
}

func NewCostCenterRepository(db *gorm.DB) costcenter.RepositoryAPI {
	return &CostCenterRepository{db: db}
}

func (r *CostCenterRepository) GetAll(ctx context.Context) ([]*costcenterDatamodel.CostCenter, error) {
	var rows []*costcenterDatamodel.CostCenter
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CostCenterRepository) GetByID(ctx context.Context, id string) (*costcenterDatamodel.CostCenter, error) {
	var row costcenterDatamodel.CostCenter
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *CostCenterRepository) Create(ctx context.Context, row *costcenterDatamodel.CostCenter) error {
	return translate(r.db.WithContext(ctx).Create(row).Error)
}

func (r *CostCenterRepository) Update(ctx context.Context, row *costcenterDatamodel.CostCenter) error {
	return translate(r.db.WithContext(ctx).
		Model(row).
		Select("name", "description", "updated_at").
		Updates(row).Error)
}

func (r *CostCenterRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&costcenterDatamodel.CostCenter{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// CountReferences counts profiles and documents pointing at the cost center.
func (r *CostCenterRepository) CountReferences(ctx context.Context, id string) (int64, error) {
	var profiles, documents int64
	db := r.db.WithContext(ctx)
	if err := db.Table("user_profiles").Where("cost_center_id = ?", id).Count(&profiles).Error; err != nil {
		return 0, err
	}
	if err := db.Table("documents").Where("cost_center_id = ?", id).Count(&documents).Error; err != nil {
		return 0, err
	}
	return profiles + documents, nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate key"):
		return costcenter.ErrDuplicateCode
	case errors.Is(err, gorm.ErrForeignKeyViolated), strings.Contains(msg, "foreign key"):
		return costcenter.ErrReferenced
	}
	return err
}
