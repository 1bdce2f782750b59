// Package dashboard reports the admin overview counters.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/auth"
	"github.com/jmoiron/sqlx"
)

const (
	recentLimit     = 10
	defaultUploader = "Sistema"
)

type Stats struct {
	CostCenters        int64            `json:"cost_centers"`
	Workers            int64            `json:"workers"`
	Documents          int64            `json:"documents"`
	DocumentsWithFiles int64            `json:"documents_with_files"`
	RecentDocuments    []RecentDocument `json:"recent_documents"`
}

type RecentDocument struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	FileName      string    `db:"file_name" json:"file_name"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UploaderEmail string    `db:"uploader_email" json:"uploaded_by"`
}

type RepositoryAPI interface {
	Counts(ctx context.Context) (*Stats, error)
	Recent(ctx context.Context, limit int) ([]RecentDocument, error)
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Counts(ctx context.Context) (*Stats, error) {
	var s Stats
	queries := []struct {
		dst   *int64
		query string
		args  []interface{}
	}{
		{&s.CostCenters, "SELECT COUNT(*) FROM cost_centers", nil},
		{&s.Workers, "SELECT COUNT(*) FROM user_profiles WHERE role = ?", []interface{}{string(internal.RoleWorker)}},
		{&s.Documents, "SELECT COUNT(*) FROM documents", nil},
		{&s.DocumentsWithFiles, "SELECT COUNT(*) FROM documents WHERE file_url IS NOT NULL AND file_url <> ''", nil},
	}
	for _, q := range queries {
		if err := r.db.GetContext(ctx, q.dst, r.db.Rebind(q.query), q.args...); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func (r *Repository) Recent(ctx context.Context, limit int) ([]RecentDocument, error) {
	query := r.db.Rebind(`
		SELECT d.id, d.title, d.file_name, d.created_at, COALESCE(p.email, '') AS uploader_email
		FROM documents d
		LEFT JOIN user_profiles p ON p.id = d.uploaded_by
		ORDER BY d.created_at DESC
		LIMIT ?`)
	rows := make([]RecentDocument, 0, limit)
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context, caller *internal.Principal) (*Stats, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}

	stats, err := s.repo.Counts(ctx)
	if err != nil {
		s.logger.Error("dashboard counts failed", "error", err)
		return nil, internal.NewDependencyError("failed to load dashboard", internal.ErrCodeDatabaseFailed, err)
	}

	recent, err := s.repo.Recent(ctx, recentLimit)
	if err != nil {
		s.logger.Error("dashboard recent documents failed", "error", err)
		return nil, internal.NewDependencyError("failed to load dashboard", internal.ErrCodeDatabaseFailed, err)
	}
	for i := range recent {
		if recent[i].UploaderEmail == "" {
			recent[i].UploaderEmail = defaultUploader
		}
	}
	stats.RecentDocuments = recent
	return stats, nil
}
