package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/auth"
	"github.com/frahmantamala/docportal/internal/core/common/validation"
	"github.com/frahmantamala/docportal/internal/core/events"
	"github.com/frahmantamala/docportal/internal/document"
	"github.com/frahmantamala/docportal/internal/matcher"
	"github.com/frahmantamala/docportal/internal/notification"
	"github.com/frahmantamala/docportal/internal/storage"
	"github.com/frahmantamala/docportal/internal/user"
)

const msgNoWorker = "no associable worker"

// DocumentMeta is shared by every file of a batch.
type DocumentMeta struct {
	Title       string
	Description *string
	Category    *string
}

func (m *DocumentMeta) Validate() *internal.AppError {
	m.Title = strings.TrimSpace(m.Title)
	if m.Description != nil && strings.TrimSpace(*m.Description) == "" {
		m.Description = nil
	}
	if m.Category != nil && *m.Category == "" {
		m.Category = nil
	}

	v := validation.NewValidator()
	v.Field("title", m.Title).Required().MaxLength(255)
	v.Field("category", m.Category).OneOf(internal.ErrCodeInvalidCategory, document.Categories...)
	return v.Validate()
}

type FileResult struct {
	FileName   string `json:"file_name"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DocumentID string `json:"document_id,omitempty"`
	WorkerID   string `json:"worker_id,omitempty"`
}

type DocumentReport struct {
	Results  []FileResult `json:"results"`
	Excluded []string     `json:"excluded"`
	Summary  Summary      `json:"summary"`
}

// ImportDocuments matches every PDF to a worker and stores it as a document
// scoped to that worker. Files are processed one after another and a failed
// file never affects the others.
func (im *Importer) ImportDocuments(ctx context.Context, caller *internal.Principal, files []File, meta DocumentMeta, notify bool) (*DocumentReport, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	workers, err := im.workers.ListWorkers(ctx, caller)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*user.Profile, len(workers))
	candidates := make([]matcher.Candidate, 0, len(workers))
	for _, w := range workers {
		byID[w.ID] = w
		candidates = append(candidates, matcher.Candidate{ID: w.ID, FullName: w.FullName, Email: w.Email})
	}

	report := &DocumentReport{Results: make([]FileResult, 0, len(files)), Excluded: make([]string, 0)}
	for _, f := range files {
		if !document.IsPDF(f.Name, f.ContentType) {
			report.Excluded = append(report.Excluded, f.Name)
			continue
		}

		var res FileResult
		if c, ok := matcher.Match(f.Name, candidates); ok {
			res = im.importFile(ctx, caller, f, meta, byID[c.ID], notify)
		} else {
			res = FileResult{FileName: f.Name, Message: msgNoWorker}
		}
		report.Results = append(report.Results, res)
		report.Summary.add(res.Success)
	}

	im.logger.Info("document import finished",
		"admin_id", caller.UserID,
		"succeeded", report.Summary.Succeeded,
		"failed", report.Summary.Failed,
		"excluded", len(report.Excluded),
	)
	return report, nil
}

func (im *Importer) importFile(ctx context.Context, caller *internal.Principal, f File, meta DocumentMeta, worker *user.Profile, notify bool) FileResult {
	res := FileResult{FileName: f.Name, WorkerID: worker.ID}

	ctx, cancel := internal.WithTimeout(ctx, im.cfg.ItemTimeout)
	defer cancel()

	objectPath := storage.ObjectPath(worker.ID, f.Name, im.now())
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	doc := &document.Document{
		Title:       meta.Title,
		Description: meta.Description,
		Category:    meta.Category,
		FileName:    storage.SafeFileName(f.Name),
		FileURL:     im.blobs.PublicURL(objectPath),
		FileSize:    f.Size,
		FileType:    contentType,
		UserID:      &worker.ID,
		UploadedBy:  &caller.UserID,
	}

	pipeline := NewPipeline(im.logger,
		Step{
			Name: "upload",
			Run: func(ctx context.Context) error {
				body, err := f.Open()
				if err != nil {
					return err
				}
				defer body.Close()
				n, err := im.blobs.Upload(ctx, objectPath, body)
				if err != nil {
					return err
				}
				if doc.FileSize == 0 {
					doc.FileSize = n
				}
				return nil
			},
			Rollback: func(ctx context.Context) error {
				return im.blobs.Remove(ctx, objectPath)
			},
		},
		Step{
			Name: "insert",
			Run: func(ctx context.Context) error {
				return im.documents.Insert(ctx, doc)
			},
			Rollback: func(ctx context.Context) error {
				return im.documents.Remove(ctx, doc.ID)
			},
		},
	)

	if err := pipeline.Run(ctx); err != nil {
		res.Message = "import failed: " + err.Error()
		var stepErr *StepError
		if errors.As(err, &stepErr) {
			switch stepErr.Step {
			case "upload":
				res.Message = "upload failed: " + stepErr.Err.Error()
			case "insert":
				res.Message = "database insert failed: " + stepErr.Err.Error()
			}
		}
		im.logger.Warn("document import item failed", "file_name", f.Name, "worker_id", worker.ID, "error", err)
		return res
	}

	res.Success = true
	res.DocumentID = doc.ID
	res.Message = "associated with " + worker.FullName
	_ = im.publisher.Publish(ctx, events.NewDocumentCreatedEvent(doc.ID, doc.Title, string(document.VisibilityWorker), caller.UserID))

	if notify {
		res.Message += " " + im.notify(ctx, worker, doc)
	}
	return res
}

func (im *Importer) notify(ctx context.Context, worker *user.Profile, doc *document.Document) string {
	if worker.Email == "" {
		return "(no email configured)"
	}
	if im.mailer == nil {
		return "(email not sent: notifications disabled)"
	}
	_, err := im.mailer.SendDocumentEmail(ctx, notification.DocumentEmail{
		To:            worker.Email,
		WorkerName:    worker.FullName,
		DocumentTitle: doc.Title,
		DocumentURL:   doc.FileURL,
		FileName:      doc.FileName,
	})
	if err != nil {
		return fmt.Sprintf("(email not sent: %s)", errorMessage(err))
	}
	return fmt.Sprintf("(email sent to %s)", worker.Email)
}
