package company

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/auth"
	companyDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/company"
	"github.com/frahmantamala/docportal/internal/core/events"
	"github.com/frahmantamala/docportal/internal/storage"
)

const logoMaxSide = 512

type RepositoryAPI interface {
	Get(ctx context.Context) (*companyDatamodel.Settings, error)
	Create(ctx context.Context, row *companyDatamodel.Settings) error
	Save(ctx context.Context, row *companyDatamodel.Settings) error
}

type Service struct {
	repo      RepositoryAPI
	cache     Cache
	logos     storage.BlobStore
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, cache Cache, logos storage.BlobStore, publisher events.Publisher, logger *slog.Logger) *Service {
	if cache == nil {
		cache = NoCache{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		repo:      repo,
		cache:     cache,
		logos:     logos,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Get loads the settings, falling back to the defaults when no row exists.
// Cache failures are logged and the database is read instead.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn("company settings cache read failed", "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	row, err := s.repo.Get(ctx)
	if err != nil {
		return nil, internal.NewDependencyError("failed to load company settings", internal.ErrCodeDatabaseFailed, err)
	}
	settings := Defaults()
	if row != nil {
		settings = FromDataModel(row)
	}

	if err := s.cache.Set(ctx, settings); err != nil {
		s.logger.Warn("company settings cache write failed", "error", err)
	}
	return settings, nil
}

func (s *Service) Update(ctx context.Context, caller *internal.Principal, dto UpdateSettingsDTO) (*Settings, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.loadOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	row.Name = dto.Name
	row.PrimaryColor = strings.ToUpper(dto.PrimaryColor)
	row.BackgroundGradientStart = strings.ToUpper(dto.BackgroundGradientStart)
	row.BackgroundGradientEnd = strings.ToUpper(dto.BackgroundGradientEnd)
	row.ButtonColor = strings.ToUpper(dto.ButtonColor)
	if err := s.repo.Save(ctx, row); err != nil {
		return nil, internal.NewDependencyError("failed to save company settings", internal.ErrCodeDatabaseFailed, err)
	}

	s.afterWrite(ctx, row.ID, caller.UserID)
	return FromDataModel(row), nil
}

// UploadLogo scales the image to fit 512x512, stores it as PNG and points
// the settings at it. The previous logo is removed first.
func (s *Service) UploadLogo(ctx context.Context, caller *internal.Principal, r io.Reader, contentType string) (*Settings, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, internal.NewValidationError("logo must be an image", internal.ErrCodeInvalidFile)
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, internal.NewValidationError("logo could not be decoded as an image", internal.ErrCodeInvalidFile).WithCause(err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Fit(img, logoMaxSide, logoMaxSide, imaging.Lanczos), imaging.PNG); err != nil {
		return nil, internal.NewInternalError("failed to encode logo", err)
	}

	row, err := s.loadOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	if row.LogoURL != nil {
		if old, ok := s.logos.PathFromURL(*row.LogoURL); ok {
			if err := s.logos.Remove(ctx, old); err != nil {
				s.logger.Warn("failed to remove previous logo", "path", old, "error", err)
			}
		}
	}

	objectPath := fmt.Sprintf("%s/%s-%d.png", row.ID, row.ID, s.now().UnixMilli())
	if _, err := s.logos.Upload(ctx, objectPath, &buf); err != nil {
		return nil, internal.NewDependencyError("failed to store logo", internal.ErrCodeStorageFailed, err)
	}

	logoURL := s.logos.PublicURL(objectPath)
	row.LogoURL = &logoURL
	if err := s.repo.Save(ctx, row); err != nil {
		if rerr := s.logos.Remove(ctx, objectPath); rerr != nil {
			s.logger.Error("failed to remove orphaned logo", "path", objectPath, "error", rerr)
		}
		return nil, internal.NewDependencyError("failed to save company settings", internal.ErrCodeDatabaseFailed, err)
	}

	s.afterWrite(ctx, row.ID, caller.UserID)
	return FromDataModel(row), nil
}

// EnsureDefaults inserts the default row when none exists. Used by the seed command.
func (s *Service) EnsureDefaults(ctx context.Context) (*Settings, error) {
	row, err := s.loadOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) loadOrCreate(ctx context.Context) (*companyDatamodel.Settings, error) {
	row, err := s.repo.Get(ctx)
	if err != nil {
		return nil, internal.NewDependencyError("failed to load company settings", internal.ErrCodeDatabaseFailed, err)
	}
	if row != nil {
		return row, nil
	}

	row = ToDataModel(Defaults())
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewDependencyError("failed to create company settings", internal.ErrCodeDatabaseFailed, err)
	}
	return row, nil
}

func (s *Service) afterWrite(ctx context.Context, companyID, userID string) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("company settings cache invalidation failed", "error", err)
	}
	s.logger.Info("company settings updated", "company_id", companyID, "updated_by", userID)
	_ = s.publisher.Publish(ctx, events.NewCompanyUpdatedEvent(companyID, userID))
}
