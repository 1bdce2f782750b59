package postgres

import (
	"context"
	"errors"
	"strings"

	documentDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/document"
	"github.com/frahmantamala/docportal/internal/document"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) document.RepositoryAPI {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, row *documentDatamodel.Document) error {
	err := r.db.WithContext(ctx).Create(row).Error
	if err != nil && (errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(strings.ToLower(err.Error()), "foreign key")) {
		return document.ErrUnknownCostCenter
	}
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*documentDatamodel.Document, error) {
	var row documentDatamodel.Document
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&documentDatamodel.Document{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]*documentDatamodel.Document, error) {
	var rows []*documentDatamodel.Document
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListShared adds cost center and global documents to the worker's own.
func (r *DocumentRepository) ListShared(ctx context.Context, userID string, costCenterID *string) ([]*documentDatamodel.Document, error) {
	cond := "user_id = ? OR (user_id IS NULL AND cost_center_id IS NULL)"
	args := []interface{}{userID}
	if costCenterID != nil {
		cond += " OR (user_id IS NULL AND cost_center_id = ?)"
		args = append(args, *costCenterID)
	}
	q := r.db.WithContext(ctx).Where(cond, args...)

	var rows []*documentDatamodel.Document
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DocumentRepository) ListAll(ctx context.Context) ([]*document.AdminRow, error) {
	var rows []*document.AdminRow
	err := r.db.WithContext(ctx).
		Table("documents").
		Select("documents.*, user_profiles.full_name AS worker_name, cost_centers.name AS cost_center_name").
		Joins("LEFT JOIN user_profiles ON user_profiles.id = documents.user_id").
		Joins("LEFT JOIN cost_centers ON cost_centers.id = documents.cost_center_id").
		Order("documents.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DocumentRepository) RecordAccess(ctx context.Context, row *documentDatamodel.AccessLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}
