package document

import (
	"strings"
	"time"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/core/common/validation"
)

// Filter narrows an already scoped listing. It never widens it.
type Filter struct {
	Search   string
	Category string
	Month    string // YYYY-MM
}

func (f Filter) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("category", f.Category).OneOf(internal.ErrCodeInvalidCategory, Categories...)
	v.Field("month", f.Month).Custom(func(value interface{}) *internal.AppError {
		m, _ := value.(string)
		if m == "" {
			return nil
		}
		if _, err := time.Parse("2006-01", m); err != nil {
			return internal.NewValidationFieldError("month", "month must use the YYYY-MM format", internal.ErrCodeValidationFailed)
		}
		return nil
	})
	return v.Validate()
}

func (f Filter) Matches(d *Document) bool {
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		if !strings.Contains(strings.ToLower(d.Title), s) && !strings.Contains(strings.ToLower(d.FileName), s) {
			return false
		}
	}
	if f.Category != "" && (d.Category == nil || *d.Category != f.Category) {
		return false
	}
	if f.Month != "" && d.CreatedAt.Format("2006-01") != f.Month {
		return false
	}
	return true
}

func (f Filter) Apply(docs []*Document) []*Document {
	out := make([]*Document, 0, len(docs))
	for _, d := range docs {
		if f.Matches(d) {
			out = append(out, d)
		}
	}
	return out
}
