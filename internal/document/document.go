package document

import (
	"sort"
	"strings"
	"time"

	documentDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/document"
)

type Visibility string

const (
	VisibilityWorker     Visibility = "worker"
	VisibilityCostCenter Visibility = "cost_center"
	VisibilityGlobal     Visibility = "global"
)

// AssignedToAll is shown for global documents.
const AssignedToAll = "Todos"

var Categories = []string{"reuniones", "presentaciones", "informes", "analisis", "produccion", "otros"}

type Document struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	Category     *string   `json:"category"`
	FileName     string    `json:"file_name"`
	FileURL      string    `json:"file_url"`
	FileSize     int64     `json:"file_size"`
	FileType     string    `json:"file_type"`
	UserID       *string   `json:"user_id"`
	CostCenterID *string   `json:"cost_center_id"`
	UploadedBy   *string   `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// VisibilityMode is derived from which scope columns are set; user_id wins.
func (d *Document) VisibilityMode() Visibility {
	switch {
	case d.UserID != nil:
		return VisibilityWorker
	case d.CostCenterID != nil:
		return VisibilityCostCenter
	default:
		return VisibilityGlobal
	}
}

// VisibleTo reports whether a worker in the given cost center may see the document.
// Shared scopes only count when includeShared is set.
func (d *Document) VisibleTo(workerID string, costCenterID *string, includeShared bool) bool {
	switch d.VisibilityMode() {
	case VisibilityWorker:
		return *d.UserID == workerID
	case VisibilityCostCenter:
		return includeShared && costCenterID != nil && *d.CostCenterID == *costCenterID
	default:
		return includeShared
	}
}

// AdminDocument is a document with its recipient resolved for display.
type AdminDocument struct {
	*Document
	Visibility     Visibility `json:"visibility"`
	AssignedToName string     `json:"assigned_to_name"`
	CostCenterName *string    `json:"cost_center_name"`
}

func ToDataModel(d *Document) *documentDatamodel.Document {
	return &documentDatamodel.Document{
		ID:           d.ID,
		Title:        d.Title,
		Description:  d.Description,
		Category:     d.Category,
		FileName:     d.FileName,
		FileURL:      d.FileURL,
		FileSize:     d.FileSize,
		FileType:     d.FileType,
		UserID:       d.UserID,
		CostCenterID: d.CostCenterID,
		UploadedBy:   d.UploadedBy,
		CreatedAt:    d.CreatedAt,
	}
}

func FromDataModel(row *documentDatamodel.Document) *Document {
	return &Document{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		Category:     row.Category,
		FileName:     row.FileName,
		FileURL:      row.FileURL,
		FileSize:     row.FileSize,
		FileType:     row.FileType,
		UserID:       row.UserID,
		CostCenterID: row.CostCenterID,
		UploadedBy:   row.UploadedBy,
		CreatedAt:    row.CreatedAt,
	}
}

// AdminRow is a document joined with the names of its recipients.
type AdminRow struct {
	documentDatamodel.Document `gorm:"embedded"`
	WorkerName                 *string `gorm:"column:worker_name"`
	CostCenterName             *string `gorm:"column:cost_center_name"`
}

func FromAdminRow(row *AdminRow) *AdminDocument {
	d := FromDataModel(&row.Document)
	out := &AdminDocument{
		Document:       d,
		Visibility:     d.VisibilityMode(),
		AssignedToName: AssignedToAll,
		CostCenterName: row.CostCenterName,
	}
	switch {
	case d.UserID != nil && row.WorkerName != nil:
		out.AssignedToName = *row.WorkerName
	case d.UserID == nil && row.CostCenterName != nil:
		out.AssignedToName = *row.CostCenterName
	}
	return out
}

// AvailableMonths lists the distinct YYYY-MM of the documents, newest first.
func AvailableMonths(docs []*Document) []string {
	seen := map[string]bool{}
	months := make([]string, 0)
	for _, d := range docs {
		m := d.CreatedAt.Format("2006-01")
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// IsPDF needs the .pdf extension and a content type that does not contradict
// it. Browsers sometimes send no type or a generic binary one.
func IsPDF(fileName, contentType string) bool {
	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(fileName)), ".pdf") {
		return false
	}
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "", "application/pdf", "application/octet-stream":
		return true
	}
	return false
}
