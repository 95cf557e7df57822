package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type RegisterTeamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (req *RegisterTeamRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 50)),
		validation.Field(&req.Description, validation.Length(0, 200)),
	)
}

type JoinTeamRequest struct {
	Code string `json:"code" binding:"required"`
}

func (req *JoinTeamRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required, validation.Length(8, 8)),
	)
}
