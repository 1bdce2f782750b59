package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeWorkerCreated      = "worker.created"
	EventTypeWorkerDeleted      = "worker.deleted"
	EventTypeDocumentCreated    = "document.created"
	EventTypeDocumentDeleted    = "document.deleted"
	EventTypeDocumentDownloaded = "document.downloaded"
	EventTypeCompanyUpdated     = "company.updated"
)

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type WorkerCreatedEvent struct {
	BaseEvent
	WorkerID  string `json:"worker_id"`
	Email     string `json:"email"`
	CreatedBy string `json:"created_by"`
}

func NewWorkerCreatedEvent(workerID, email, createdBy string) *WorkerCreatedEvent {
	return &WorkerCreatedEvent{
		BaseEvent: newBase(EventTypeWorkerCreated, map[string]interface{}{
			"worker_id":  workerID,
			"email":      email,
			"created_by": createdBy,
		}),
		WorkerID:  workerID,
		Email:     email,
		CreatedBy: createdBy,
	}
}

type WorkerDeletedEvent struct {
	BaseEvent
	WorkerID  string `json:"worker_id"`
	Role      string `json:"role"`
	DeletedBy string `json:"deleted_by"`
}

func NewWorkerDeletedEvent(workerID, role, deletedBy string) *WorkerDeletedEvent {
	return &WorkerDeletedEvent{
		BaseEvent: newBase(EventTypeWorkerDeleted, map[string]interface{}{
			"worker_id":  workerID,
			"role":       role,
			"deleted_by": deletedBy,
		}),
		WorkerID:  workerID,
		Role:      role,
		DeletedBy: deletedBy,
	}
}

type DocumentCreatedEvent struct {
	BaseEvent
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Visibility string `json:"visibility"`
	UploadedBy string `json:"uploaded_by"`
}

func NewDocumentCreatedEvent(documentID, title, visibility, uploadedBy string) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseEvent: newBase(EventTypeDocumentCreated, map[string]interface{}{
			"document_id": documentID,
			"title":       title,
			"visibility":  visibility,
			"uploaded_by": uploadedBy,
		}),
		DocumentID: documentID,
		Title:      title,
		Visibility: visibility,
		UploadedBy: uploadedBy,
	}
}

type DocumentDeletedEvent struct {
	BaseEvent
	DocumentID string `json:"document_id"`
	DeletedBy  string `json:"deleted_by"`
}

func NewDocumentDeletedEvent(documentID, deletedBy string) *DocumentDeletedEvent {
	return &DocumentDeletedEvent{
		BaseEvent: newBase(EventTypeDocumentDeleted, map[string]interface{}{
			"document_id": documentID,
			"deleted_by":  deletedBy,
		}),
		DocumentID: documentID,
		DeletedBy:  deletedBy,
	}
}

// DocumentDownloadedEvent feeds the access log.
type DocumentDownloadedEvent struct {
	BaseEvent
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"user_id"`
	AccessedAt time.Time `json:"accessed_at"`
}

func NewDocumentDownloadedEvent(documentID, userID string) *DocumentDownloadedEvent {
	now := time.Now()
	return &DocumentDownloadedEvent{
		BaseEvent: newBase(EventTypeDocumentDownloaded, map[string]interface{}{
			"document_id": documentID,
			"user_id":     userID,
		}),
		DocumentID: documentID,
		UserID:     userID,
		AccessedAt: now,
	}
}

type CompanyUpdatedEvent struct {
	BaseEvent
	CompanyID string `json:"company_id"`
	UpdatedBy string `json:"updated_by"`
}

func NewCompanyUpdatedEvent(companyID, updatedBy string) *CompanyUpdatedEvent {
	return &CompanyUpdatedEvent{
		BaseEvent: newBase(EventTypeCompanyUpdated, map[string]interface{}{
			"company_id": companyID,
			"updated_by": updatedBy,
		}),
		CompanyID: companyID,
		UpdatedBy: updatedBy,
	}
}
