package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (req *UpdateUserRoleRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Role, validation.Required,
			validation.In("admin", "organizer", "judge", "participant", "spectator")),
	)
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (req *UpdateUserStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required,
			validation.In("approved", "pending", "rejected")),
	)
}
