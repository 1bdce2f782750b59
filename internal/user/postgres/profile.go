package postgres

import (
	"context"
	"errors"
	"strings"

	profileDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/profile"
	"github.com/frahmantamala/docportal/internal/user"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) user.RepositoryAPI {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*profileDatamodel.UserProfile, error) {
	var row profileDatamodel.UserProfile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *ProfileRepository) ListByRole(ctx context.Context, role string) ([]*user.ProfileRow, error) {
	var rows []*user.ProfileRow
	err := r.db.WithContext(ctx).
		Table("user_profiles").
		Select("user_profiles.*, cost_centers.name AS cost_center_name").
		Joins("LEFT JOIN cost_centers ON cost_centers.id = user_profiles.cost_center_id").
		Where("user_profiles.role = ?", role).
		Order("user_profiles.full_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ProfileRepository) Create(ctx context.Context, row *profileDatamodel.UserProfile) error {
	return translate(r.db.WithContext(ctx).Create(row).Error)
}

func (r *ProfileRepository) Update(ctx context.Context, id, role string, fields map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&profileDatamodel.UserProfile{}).
		Where("id = ? AND role = ?", id, role).
		Updates(fields)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id, role string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, role).
		Delete(&profileDatamodel.UserProfile{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(strings.ToLower(err.Error()), "foreign key") {
		return user.ErrUnknownCostCenter
	}
	return err
}
