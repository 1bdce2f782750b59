package importer

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/core/events"
	"github.com/frahmantamala/docportal/internal/costcenter"
	"github.com/frahmantamala/docportal/internal/document"
	"github.com/frahmantamala/docportal/internal/notification"
	"github.com/frahmantamala/docportal/internal/storage"
	"github.com/frahmantamala/docportal/internal/user"
)

type DocumentStore interface {
	Insert(ctx context.Context, doc *document.Document) error
	Remove(ctx context.Context, id string) error
}

type WorkerDirectory interface {
	ListWorkers(ctx context.Context, caller *internal.Principal) ([]*user.Profile, error)
	CreateWorker(ctx context.Context, caller *internal.Principal, dto user.CreateWorkerDTO) (string, error)
}

type CostCenterDirectory interface {
	List(ctx context.Context) ([]*costcenter.CostCenter, error)
}

// Mailer sends synchronously so each file reports its own email outcome.
type Mailer interface {
	SendDocumentEmail(ctx context.Context, email notification.DocumentEmail) (notification.Receipt, error)
}

type Config struct {
	ItemTimeout time.Duration
}

type Importer struct {
	blobs       storage.BlobStore
	documents   DocumentStore
	workers     WorkerDirectory
	costCenters CostCenterDirectory
	mailer      Mailer
	publisher   events.Publisher
	cfg         Config
	logger      *slog.Logger
	now         func() time.Time
}

func New(blobs storage.BlobStore, documents DocumentStore, workers WorkerDirectory, costCenters CostCenterDirectory, mailer Mailer, publisher events.Publisher, cfg Config, logger *slog.Logger) *Importer {
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = 30 * time.Second
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Importer{
		blobs:       blobs,
		documents:   documents,
		workers:     workers,
		costCenters: costCenters,
		mailer:      mailer,
		publisher:   publisher,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// File is one uploaded file of a document batch.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type Summary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func (s *Summary) add(ok bool) {
	if ok {
		s.Succeeded++
	} else {
		s.Failed++
	}
}

func errorMessage(err error) string {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr.GetDetailedMessage()
	}
	return err.Error()
}
