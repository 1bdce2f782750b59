package company

import (
	"strings"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/core/common/validation"
)

type UpdateSettingsDTO struct {
	Name                    string `json:"name"`
	PrimaryColor            string `json:"primary_color"`
	BackgroundGradientStart string `json:"background_gradient_start"`
	BackgroundGradientEnd   string `json:"background_gradient_end"`
	ButtonColor             string `json:"button_color"`
}

func (dto *UpdateSettingsDTO) Validate() *internal.AppError {
	dto.Name = strings.TrimSpace(dto.Name)
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(120)
	v.Field("primary_color", dto.PrimaryColor).Required().HexColor()
	v.Field("background_gradient_start", dto.BackgroundGradientStart).Required().HexColor()
	v.Field("background_gradient_end", dto.BackgroundGradientEnd).Required().HexColor()
	v.Field("button_color", dto.ButtonColor).Required().HexColor()
	return v.Validate()
}
