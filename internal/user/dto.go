package user

import (
	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/core/common/validation"
)

type CreateWorkerDTO struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	FullName     string  `json:"full_name"`
	Rut          string  `json:"rut"`
	Phone        *string `json:"phone"`
	CostCenterID *string `json:"cost_center_id"`
}

func (dto CreateWorkerDTO) Validate(minPassword int) *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", dto.Email).Required().Email()
	v.Field("password", dto.Password).Required().MinLength(minPassword)
	v.Field("full_name", dto.FullName).Required().MaxLength(200)
	v.Field("rut", dto.Rut).MaxLength(20)
	v.Field("phone", dto.Phone).MaxLength(30)
	return v.Validate()
}

// UpdateWorkerDTO uses pointers so absent fields are left untouched.
type UpdateWorkerDTO struct {
	WorkerID     string  `json:"worker_id"`
	Email        *string `json:"email"`
	Password     *string `json:"password"`
	FullName     *string `json:"full_name"`
	Rut          *string `json:"rut"`
	Phone        *string `json:"phone"`
	CostCenterID *string `json:"cost_center_id"`
}

func (dto UpdateWorkerDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("worker_id", dto.WorkerID).Required()
	v.Field("email", dto.Email).Email()
	if dto.FullName != nil {
		v.Field("full_name", dto.FullName).Required().MaxLength(200)
	}
	v.Field("rut", dto.Rut).MaxLength(20)
	v.Field("phone", dto.Phone).MaxLength(30)
	return v.Validate()
}

func (dto UpdateWorkerDTO) hasAccountChanges(minPassword int) bool {
	return (dto.Email != nil && *dto.Email != "") ||
		(dto.Password != nil && len(*dto.Password) >= minPassword)
}

type DeleteWorkerDTO struct {
	WorkerID string `json:"worker_id"`
}

func (dto DeleteWorkerDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("worker_id", dto.WorkerID).Required()
	return v.Validate()
}

type CreateAdminDTO struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Rut      string  `json:"rut"`
	Phone    *string `json:"phone"`
}

func (dto CreateAdminDTO) Validate(minPassword int) *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", dto.Email).Required().Email()
	v.Field("password", dto.Password).Required().MinLength(minPassword)
	v.Field("full_name", dto.FullName).Required().MaxLength(200)
	v.Field("rut", dto.Rut).Required().MaxLength(20)
	v.Field("phone", dto.Phone).MaxLength(30)
	return v.Validate()
}

type DeleteAdminDTO struct {
	UserID string `json:"user_id"`
}

func (dto DeleteAdminDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	return v.Validate()
}

type FunctionResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id,omitempty"`
}
