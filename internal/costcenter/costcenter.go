package costcenter

import (
	"strings"
	"time"

	costcenterDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/costcenter"
)

const codeLength = 10

type CostCenter struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DeriveCode is the upper-cased first ten characters of the name.
func DeriveCode(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) > codeLength {
		runes = runes[:codeLength]
	}
	return strings.ToUpper(string(runes))
}

func ToDataModel(c *CostCenter) *costcenterDatamodel.CostCenter {
	return &costcenterDatamodel.CostCenter{
		ID:          c.ID,
		Name:        c.Name,
		Code:        c.Code,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromDataModel(row *costcenterDatamodel.CostCenter) *CostCenter {
	return &CostCenter{
		ID:          row.ID,
		Name:        row.Name,
		Code:        row.Code,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
