package costcenter

import (
	"strings"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/core/common/validation"
)

type CreateCostCenterDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (dto *CreateCostCenterDTO) Validate() *internal.AppError {
	dto.Name = strings.TrimSpace(dto.Name)
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	v.Field("description", dto.Description).MaxLength(500)
	return v.Validate()
}

type UpdateCostCenterDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (dto *UpdateCostCenterDTO) Validate() *internal.AppError {
	dto.Name = strings.TrimSpace(dto.Name)
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	v.Field("description", dto.Description).MaxLength(500)
	return v.Validate()
}
