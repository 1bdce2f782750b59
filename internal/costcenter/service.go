package costcenter

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/auth"
	costcenterDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/costcenter"
)

var (
	ErrDuplicateCode = errors.New("duplicate cost center code")
	ErrReferenced    = errors.New("cost center referenced")
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*costcenterDatamodel.CostCenter, error)
	GetByID(ctx context.Context, id string) (*costcenterDatamodel.CostCenter, error)
	Create(ctx context.Context, row *costcenterDatamodel.CostCenter) error
	Update(ctx context.Context, row *costcenterDatamodel.CostCenter) error
	Delete(ctx context.Context, id string) (bool, error)
	CountReferences(ctx context.Context, id string) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*CostCenter, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list cost centers", "error", err)
		return nil, internal.NewDependencyError("failed to list cost centers", internal.ErrCodeDatabaseFailed, err)
	}
	out := make([]*CostCenter, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*CostCenter, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewDependencyError("failed to load cost center", internal.ErrCodeDatabaseFailed, err)
	}
	if row == nil {
		return nil, internal.ErrCostCenterNotFound
	}
	return FromDataModel(row), nil
}

// ResolveByName matches case-insensitively on the exact name.
func (s *Service) ResolveByName(ctx context.Context, name string) (*CostCenter, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return FindByName(all, name), nil
}

// FindByName returns the first cost center whose name equals name ignoring case
// and surrounding spaces, or nil.
func FindByName(all []*CostCenter, name string) *CostCenter {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	for _, cc := range all {
		if strings.EqualFold(strings.TrimSpace(cc.Name), name) {
			return cc
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, caller *internal.Principal, dto CreateCostCenterDTO) (*CostCenter, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &costcenterDatamodel.CostCenter{
		Name:        dto.Name,
		Code:        DeriveCode(dto.Name),
		Description: dto.Description,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			return nil, internal.ErrCostCenterCodeTaken
		}
		s.logger.Error("failed to create cost center", "name", dto.Name, "error", err)
		return nil, internal.NewDependencyError("failed to create cost center", internal.ErrCodeDatabaseFailed, err)
	}

	s.logger.Info("cost center created", "id", row.ID, "code", row.Code)
	return FromDataModel(row), nil
}

// Update changes name and description; the code stays as derived at creation.
func (s *Service) Update(ctx context.Context, caller *internal.Principal, id string, dto UpdateCostCenterDTO) (*CostCenter, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewDependencyError("failed to load cost center", internal.ErrCodeDatabaseFailed, err)
	}
	if row == nil {
		return nil, internal.ErrCostCenterNotFound
	}

	row.Name = dto.Name
	row.Description = dto.Description
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewDependencyError("failed to update cost center", internal.ErrCodeDatabaseFailed, err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, caller *internal.Principal, id string) error {
	if err := auth.RequireAdmin(caller); err != nil {
		return err
	}

	refs, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return internal.NewDependencyError("failed to check cost center usage", internal.ErrCodeDatabaseFailed, err)
	}
	if refs > 0 {
		return internal.ErrCostCenterInUse
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrReferenced) {
			return internal.ErrCostCenterInUse
		}
		return internal.NewDependencyError("failed to delete cost center", internal.ErrCodeDatabaseFailed, err)
	}
	if !deleted {
		return internal.ErrCostCenterNotFound
	}

	s.logger.Info("cost center deleted", "id", id, "deleted_by", caller.UserID)
	return nil
}
