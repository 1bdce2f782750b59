package document

import (
	"io"
	"strings"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/core/common/validation"
)

// UploadInput is a single admin upload.
type UploadInput struct {
	File         io.Reader
	FileName     string
	ContentType  string
	Size         int64
	Title        string
	Description  *string
	Category     *string
	UserID       *string
	CostCenterID *string
	Notify       bool
}

func (in *UploadInput) Validate() *internal.AppError {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = emptyToNil(in.Description)
	in.Category = emptyToNil(in.Category)
	in.UserID = emptyToNil(in.UserID)
	in.CostCenterID = emptyToNil(in.CostCenterID)

	v := validation.NewValidator()
	v.Field("title", in.Title).Required().MaxLength(255)
	v.Field("file_name", in.FileName).Required()
	v.Field("category", in.Category).OneOf(internal.ErrCodeInvalidCategory, Categories...)
	if err := v.Validate(); err != nil {
		return err
	}
	if in.File == nil {
		return internal.NewValidationFieldError("file", "file is required", internal.ErrCodeInvalidFile)
	}
	return nil
}

type UploadResult struct {
	Document     *Document `json:"document"`
	Notification string    `json:"notification,omitempty"`
}

type WorkerListing struct {
	Documents []*Document `json:"documents"`
	Months    []string    `json:"months"`
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
