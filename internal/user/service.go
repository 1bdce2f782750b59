package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/auth"
	"github.com/frahmantamala/docportal/internal/core/events"
	profileDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/profile"
	"github.com/frahmantamala/docportal/internal/identity"
)

// ErrUnknownCostCenter is returned by repositories when a profile references a missing cost center.
var ErrUnknownCostCenter = errors.New("unknown cost center")

type RepositoryAPI interface {
	GetByID(ctx context.Context, id string) (*profileDatamodel.UserProfile, error)
	ListByRole(ctx context.Context, role string) ([]*ProfileRow, error)
	Create(ctx context.Context, row *profileDatamodel.UserProfile) error
	Update(ctx context.Context, id, role string, fields map[string]interface{}) (bool, error)
	Delete(ctx context.Context, id, role string) (bool, error)
}

// IdentityProvider owns login-capable accounts.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password string, confirmed bool) (string, error)
	UpdateUser(ctx context.Context, id string, upd identity.AccountUpdate) error
	DeleteUser(ctx context.Context, id string) error
	MinPasswordLength() int
}

// Service manages profiles. Every mutation takes the caller's principal and
// re-checks the admin role itself.
type Service struct {
	repo      RepositoryAPI
	identity  IdentityProvider
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, idp IdentityProvider, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		repo:      repo,
		identity:  idp,
		publisher: publisher,
		logger:    logger,
	}
}

// ResolveRole reads the role from the profile table; it backs auth.Gate.
func (s *Service) ResolveRole(ctx context.Context, userID string) (internal.Role, error) {
	row, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", internal.NewDependencyError("failed to load profile", internal.ErrCodeDatabaseFailed, err)
	}
	if row == nil {
		return "", internal.ErrProfileNotFound
	}
	return internal.Role(row.Role), nil
}

func (s *Service) GetProfile(ctx context.Context, id string) (*Profile, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewDependencyError("failed to load profile", internal.ErrCodeDatabaseFailed, err)
	}
	if row == nil {
		return nil, internal.ErrProfileNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) ListWorkers(ctx context.Context, caller *internal.Principal) ([]*Profile, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.listByRole(ctx, internal.RoleWorker)
}

func (s *Service) ListAdmins(ctx context.Context, caller *internal.Principal) ([]*Profile, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.listByRole(ctx, internal.RoleAdmin)
}

func (s *Service) listByRole(ctx context.Context, role internal.Role) ([]*Profile, error) {
	rows, err := s.repo.ListByRole(ctx, string(role))
	if err != nil {
		return nil, internal.NewDependencyError("failed to list profiles", internal.ErrCodeDatabaseFailed, err)
	}
	out := make([]*Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromProfileRow(row))
	}
	return out, nil
}

// CreateWorker creates the account and then the worker profile. A profile
// failure deletes the account again.
func (s *Service) CreateWorker(ctx context.Context, caller *internal.Principal, dto CreateWorkerDTO) (string, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return "", err
	}
	if err := dto.Validate(s.identity.MinPasswordLength()); err != nil {
		return "", err
	}

	id, err := s.createAccountWithProfile(ctx, dto.Email, dto.Password, &profileDatamodel.UserProfile{
		Role:         string(internal.RoleWorker),
		FullName:     dto.FullName,
		Rut:          dto.Rut,
		Phone:        nullable(dto.Phone),
		CostCenterID: nullable(dto.CostCenterID),
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("worker created", "worker_id", id, "created_by", caller.UserID)
	_ = s.publisher.Publish(ctx, events.NewWorkerCreatedEvent(id, identity.NormalizeEmail(dto.Email), caller.UserID))
	return id, nil
}

func (s *Service) CreateAdmin(ctx context.Context, caller *internal.Principal, dto CreateAdminDTO) (string, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return "", err
	}
	if err := dto.Validate(s.identity.MinPasswordLength()); err != nil {
		return "", err
	}

	id, err := s.createAccountWithProfile(ctx, dto.Email, dto.Password, &profileDatamodel.UserProfile{
		Role:     string(internal.RoleAdmin),
		FullName: dto.FullName,
		Rut:      dto.Rut,
		Phone:    nullable(dto.Phone),
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("admin created", "admin_id", id, "created_by", caller.UserID)
	return id, nil
}

// Bootstrap creates the first admin without a caller. Only the seed command uses it.
func (s *Service) Bootstrap(ctx context.Context, dto CreateAdminDTO) (string, error) {
	if err := dto.Validate(s.identity.MinPasswordLength()); err != nil {
		return "", err
	}
	return s.createAccountWithProfile(ctx, dto.Email, dto.Password, &profileDatamodel.UserProfile{
		Role:     string(internal.RoleAdmin),
		FullName: dto.FullName,
		Rut:      dto.Rut,
		Phone:    nullable(dto.Phone),
	})
}

func (s *Service) createAccountWithProfile(ctx context.Context, email, password string, row *profileDatamodel.UserProfile) (string, error) {
	id, err := s.identity.CreateUser(ctx, email, password, true)
	if err != nil {
		return "", err
	}

	row.ID = id
	row.Email = identity.NormalizeEmail(email)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("profile insert failed, removing account", "user_id", id, "error", err)
		// the insert may have failed because ctx expired; the account must go regardless
		if derr := s.identity.DeleteUser(context.WithoutCancel(ctx), id); derr != nil {
			s.logger.Error("compensating account delete failed", "user_id", id, "error", derr)
		}
		if errors.Is(err, ErrUnknownCostCenter) {
			return "", internal.NewValidationFieldError("cost_center_id", "cost center does not exist", internal.ErrCodeValidationFailed)
		}
		return "", internal.NewDependencyError("failed to create profile", internal.ErrCodeDatabaseFailed, err)
	}
	return id, nil
}

// UpdateWorker changes the account first; an account failure leaves the profile untouched.
func (s *Service) UpdateWorker(ctx context.Context, caller *internal.Principal, dto UpdateWorkerDTO) error {
	if err := auth.RequireAdmin(caller); err != nil {
		return err
	}
	if err := dto.Validate(); err != nil {
		return err
	}

	current, err := s.repo.GetByID(ctx, dto.WorkerID)
	if err != nil {
		return internal.NewDependencyError("failed to load profile", internal.ErrCodeDatabaseFailed, err)
	}
	if current == nil || current.Role != string(internal.RoleWorker) {
		return internal.ErrWorkerNotFound
	}

	if dto.hasAccountChanges(s.identity.MinPasswordLength()) {
		upd := identity.AccountUpdate{Password: dto.Password}
		if dto.Email != nil && *dto.Email != "" {
			upd.Email = dto.Email
		}
		if err := s.identity.UpdateUser(ctx, dto.WorkerID, upd); err != nil {
			return err
		}
	}

	fields := map[string]interface{}{}
	if dto.FullName != nil {
		fields["full_name"] = *dto.FullName
	}
	if dto.Rut != nil {
		fields["rut"] = *dto.Rut
	}
	if dto.Phone != nil {
		fields["phone"] = nullable(dto.Phone)
	}
	if dto.Email != nil && *dto.Email != "" {
		fields["email"] = identity.NormalizeEmail(*dto.Email)
	}
	if dto.CostCenterID != nil {
		fields["cost_center_id"] = nullable(dto.CostCenterID)
	}
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()

	updated, err := s.repo.Update(ctx, dto.WorkerID, string(internal.RoleWorker), fields)
	if err != nil {
		if errors.Is(err, ErrUnknownCostCenter) {
			return internal.NewValidationFieldError("cost_center_id", "cost center does not exist", internal.ErrCodeValidationFailed)
		}
		return internal.NewDependencyError("failed to update profile", internal.ErrCodeDatabaseFailed, err)
	}
	if !updated {
		return internal.ErrWorkerNotFound
	}

	s.logger.Info("worker updated", "worker_id", dto.WorkerID, "updated_by", caller.UserID)
	return nil
}

func (s *Service) DeleteWorker(ctx context.Context, caller *internal.Principal, dto DeleteWorkerDTO) error {
	if err := auth.RequireAdmin(caller); err != nil {
		return err
	}
	if err := dto.Validate(); err != nil {
		return err
	}
	return s.deleteAccountAndProfile(ctx, caller, dto.WorkerID, internal.RoleWorker, internal.ErrWorkerNotFound)
}

func (s *Service) DeleteAdmin(ctx context.Context, caller *internal.Principal, dto DeleteAdminDTO) error {
	if err := auth.RequireAdmin(caller); err != nil {
		return err
	}
	if err := dto.Validate(); err != nil {
		return err
	}
	if dto.UserID == caller.UserID {
		return internal.NewValidationError("an administrator cannot delete their own account", internal.ErrCodeSelfDeletion)
	}
	return s.deleteAccountAndProfile(ctx, caller, dto.UserID, internal.RoleAdmin, internal.ErrAdminNotFound)
}

// deleteAccountAndProfile removes the account before the profile. If the second
// step fails the profile is left without a login and a retry finishes the job.
func (s *Service) deleteAccountAndProfile(ctx context.Context, caller *internal.Principal, id string, role internal.Role, notFound *internal.AppError) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.NewDependencyError("failed to load profile", internal.ErrCodeDatabaseFailed, err)
	}
	if current == nil || current.Role != string(role) {
		return notFound
	}

	if err := s.identity.DeleteUser(ctx, id); err != nil {
		if !errors.Is(err, internal.ErrAccountNotFound) {
			return err
		}
		s.logger.Warn("account already removed", "user_id", id)
	}

	if _, err := s.repo.Delete(ctx, id, string(role)); err != nil {
		s.logger.Error("profile delete failed after account removal", "user_id", id, "error", err)
		return internal.NewDependencyError("failed to delete profile", internal.ErrCodeDatabaseFailed, err)
	}

	s.logger.Info("user deleted", "user_id", id, "role", role, "deleted_by", caller.UserID)
	_ = s.publisher.Publish(ctx, events.NewWorkerDeletedEvent(id, string(role), caller.UserID))
	return nil
}
