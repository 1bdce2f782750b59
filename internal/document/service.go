package document

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/auth"
	documentDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/document"
	"github.com/frahmantamala/docportal/internal/core/events"
	"github.com/frahmantamala/docportal/internal/notification"
	"github.com/frahmantamala/docportal/internal/storage"
	"github.com/frahmantamala/docportal/internal/user"
)

var ErrUnknownCostCenter = errors.New("cost center does not exist")

// PublicOwner namespaces blobs of documents that are not scoped to one worker.
const PublicOwner = "public"

type RepositoryAPI interface {
	Create(ctx context.Context, row *documentDatamodel.Document) error
	GetByID(ctx context.Context, id string) (*documentDatamodel.Document, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*documentDatamodel.Document, error)
	ListShared(ctx context.Context, userID string, costCenterID *string) ([]*documentDatamodel.Document, error)
	ListAll(ctx context.Context) ([]*AdminRow, error)
	RecordAccess(ctx context.Context, row *documentDatamodel.AccessLog) error
}

type WorkerDirectory interface {
	GetProfile(ctx context.Context, id string) (*user.Profile, error)
}

type Notifier interface {
	Enqueue(job notification.Job) error
}

type Options struct {
	// IncludeSharedScopes adds cost center and global documents to worker listings.
	IncludeSharedScopes bool
}

type Service struct {
	repo      RepositoryAPI
	blobs     storage.BlobStore
	workers   WorkerDirectory
	notifier  Notifier
	publisher events.Publisher
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, blobs storage.BlobStore, workers WorkerDirectory, notifier Notifier, publisher events.Publisher, opts Options, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		repo:      repo,
		blobs:     blobs,
		workers:   workers,
		notifier:  notifier,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// ListVisible returns the documents a worker may see, newest first. By default
// that is only rows with user_id = workerID. The filter is applied afterwards.
func (s *Service) ListVisible(ctx context.Context, workerID string, filter Filter) ([]*Document, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.scopedRows(ctx, workerID)
	if err != nil {
		return nil, err
	}

	docs := make([]*Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, FromDataModel(row))
	}
	return filter.Apply(docs), nil
}

// ListForWorker is ListVisible plus the months available before filtering.
func (s *Service) ListForWorker(ctx context.Context, caller *internal.Principal, filter Filter) (*WorkerListing, error) {
	if caller == nil {
		return nil, internal.ErrMissingToken
	}
	all, err := s.ListVisible(ctx, caller.UserID, Filter{})
	if err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return &WorkerListing{
		Documents: filter.Apply(all),
		Months:    AvailableMonths(all),
	}, nil
}

func (s *Service) scopedRows(ctx context.Context, workerID string) ([]*documentDatamodel.Document, error) {
	if !s.opts.IncludeSharedScopes {
		s.logger.Debug("listing worker documents", "worker_id", workerID, "scope", "own")
		rows, err := s.repo.ListByUser(ctx, workerID)
		if err != nil {
			return nil, internal.NewDependencyError("failed to list documents", internal.ErrCodeDatabaseFailed, err)
		}
		return rows, nil
	}

	costCenterID, err := s.workerCostCenter(ctx, workerID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("listing worker documents", "worker_id", workerID, "scope", "shared")
	rows, err := s.repo.ListShared(ctx, workerID, costCenterID)
	if err != nil {
		return nil, internal.NewDependencyError("failed to list documents", internal.ErrCodeDatabaseFailed, err)
	}
	return rows, nil
}

func (s *Service) workerCostCenter(ctx context.Context, workerID string) (*string, error) {
	profile, err := s.workers.GetProfile(ctx, workerID)
	if err != nil {
		if internal.IsType(err, internal.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile.CostCenterID, nil
}

// Open returns the document and its bytes when the worker may see it, and
// records the access. Anything outside the worker's scope is NotFound.
func (s *Service) Open(ctx context.Context, caller *internal.Principal, id string) (*Document, io.ReadCloser, error) {
	if caller == nil {
		return nil, nil, internal.ErrMissingToken
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, internal.NewDependencyError("failed to load document", internal.ErrCodeDatabaseFailed, err)
	}
	if row == nil {
		return nil, nil, internal.ErrDocumentNotFound
	}
	doc := FromDataModel(row)

	if !caller.IsAdmin() {
		var costCenterID *string
		if s.opts.IncludeSharedScopes {
			if costCenterID, err = s.workerCostCenter(ctx, caller.UserID); err != nil {
				return nil, nil, err
			}
		}
		if !doc.VisibleTo(caller.UserID, costCenterID, s.opts.IncludeSharedScopes) {
			return nil, nil, internal.ErrDocumentNotFound
		}
	}

	objectPath, ok := s.blobs.PathFromURL(doc.FileURL)
	if !ok {
		return nil, nil, internal.NewDependencyError("document file is not in the blob store", internal.ErrCodeStorageFailed, nil)
	}
	body, err := s.blobs.Download(ctx, objectPath)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, nil, internal.ErrDocumentNotFound.WithCause(err)
		}
		return nil, nil, internal.NewDependencyError("failed to read document file", internal.ErrCodeStorageFailed, err)
	}

	if err := s.repo.RecordAccess(ctx, &documentDatamodel.AccessLog{
		DocumentID: doc.ID,
		UserID:     caller.UserID,
		AccessedAt: s.now(),
	}); err != nil {
		s.logger.Error("failed to record document access", "document_id", doc.ID, "user_id", caller.UserID, "error", err)
	}
	_ = s.publisher.Publish(ctx, events.NewDocumentDownloadedEvent(doc.ID, caller.UserID))

	return doc, body, nil
}

// Upload stores one file and its row. user_id scopes the blob path to the
// worker; everything else goes under "public".
func (s *Service) Upload(ctx context.Context, caller *internal.Principal, in UploadInput) (*UploadResult, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	owner := PublicOwner
	var worker *user.Profile
	if in.UserID != nil {
		p, err := s.workers.GetProfile(ctx, *in.UserID)
		if err != nil && !internal.IsType(err, internal.ErrorTypeNotFound) {
			return nil, err
		}
		if err != nil || !p.IsWorker() {
			return nil, internal.NewValidationFieldError("user_id", "worker does not exist", internal.ErrCodeWorkerNotFound)
		}
		worker = p
		owner = p.ID
	}

	objectPath := storage.ObjectPath(owner, in.FileName, s.now())
	size, err := s.blobs.Upload(ctx, objectPath, in.File)
	if err != nil {
		s.logger.Error("document upload failed", "path", objectPath, "error", err)
		return nil, internal.NewDependencyError("failed to store document", internal.ErrCodeStorageFailed, err)
	}
	if in.Size > 0 {
		size = in.Size
	}

	doc := &Document{
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		FileName:     storage.SafeFileName(in.FileName),
		FileURL:      s.blobs.PublicURL(objectPath),
		FileSize:     size,
		FileType:     in.ContentType,
		UserID:       in.UserID,
		CostCenterID: in.CostCenterID,
		UploadedBy:   &caller.UserID,
	}
	if err := s.Insert(ctx, doc); err != nil {
		if rerr := s.blobs.Remove(context.WithoutCancel(ctx), objectPath); rerr != nil {
			s.logger.Error("failed to remove blob after insert failure", "path", objectPath, "error", rerr)
		}
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.NewDocumentCreatedEvent(doc.ID, doc.Title, string(doc.VisibilityMode()), caller.UserID))

	result := &UploadResult{Document: doc}
	if in.Notify {
		result.Notification = s.queueNotification(worker, doc)
	}
	return result, nil
}

func (s *Service) queueNotification(worker *user.Profile, doc *Document) string {
	switch {
	case worker == nil:
		return "skipped: document is not assigned to a worker"
	case worker.Email == "":
		return "skipped: no email configured"
	case s.notifier == nil:
		return "skipped: notifications disabled"
	}

	err := s.notifier.Enqueue(notification.Job{Email: notification.DocumentEmail{
		To:            worker.Email,
		WorkerName:    worker.FullName,
		DocumentTitle: doc.Title,
		DocumentURL:   doc.FileURL,
		FileName:      doc.FileName,
	}})
	if err != nil {
		s.logger.Warn("document email not queued", "document_id", doc.ID, "error", err)
		return "not queued: " + err.Error()
	}
	return "queued for " + worker.Email
}

// Insert writes a document row. Bulk import calls it between its own upload and rollback steps.
func (s *Service) Insert(ctx context.Context, doc *Document) error {
	row := ToDataModel(doc)
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, ErrUnknownCostCenter) {
			return internal.NewValidationFieldError("cost_center_id", "cost center does not exist", internal.ErrCodeCostCenterNotFound)
		}
		s.logger.Error("document insert failed", "title", doc.Title, "error", err)
		return internal.NewDependencyError("failed to save document", internal.ErrCodeDatabaseFailed, err)
	}
	doc.ID = row.ID
	doc.CreatedAt = row.CreatedAt
	return nil
}

// Remove deletes a document row without touching its blob.
func (s *Service) Remove(ctx context.Context, id string) error {
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewDependencyError("failed to delete document", internal.ErrCodeDatabaseFailed, err)
	}
	return nil
}

func (s *Service) ListAll(ctx context.Context, caller *internal.Principal) ([]*AdminDocument, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, internal.NewDependencyError("failed to list documents", internal.ErrCodeDatabaseFailed, err)
	}
	out := make([]*AdminDocument, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromAdminRow(row))
	}
	return out, nil
}

// Delete removes the row first; the blob removal afterwards is best effort.
func (s *Service) Delete(ctx context.Context, caller *internal.Principal, id string) error {
	if err := auth.RequireAdmin(caller); err != nil {
		return err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.NewDependencyError("failed to load document", internal.ErrCodeDatabaseFailed, err)
	}
	if row == nil {
		return internal.ErrDocumentNotFound
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewDependencyError("failed to delete document", internal.ErrCodeDatabaseFailed, err)
	}

	if objectPath, ok := s.blobs.PathFromURL(row.FileURL); ok {
		if err := s.blobs.Remove(context.WithoutCancel(ctx), objectPath); err != nil {
			s.logger.Warn("document blob not removed", "document_id", id, "path", objectPath, "error", err)
		}
	}

	s.logger.Info("document deleted", "document_id", id, "deleted_by", caller.UserID)
	_ = s.publisher.Publish(ctx, events.NewDocumentDeletedEvent(id, caller.UserID))
	return nil
}
