package api

import (
	"time"

	"rtm-portal/internal/model"
)

// swagger:model api.UserResponse
type UserResponse struct {
	ID        int       `json:"id" example:"42"`
	Name      string    `json:"name" example:"Jo Bloggs"`
	Email     string    `json:"email" example:"jo@example.com"`
	IsAdmin   bool      `json:"is_admin" example:"false"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// swagger:model api.UpdateUserRequest
type UpdateUserRequest struct {
	Name  string `json:"name" form:"name" validate:"required" example:"Jo Bloggs"`
	Email string `json:"email" form:"email" validate:"required,email" example:"jo@example.com"`
}

// swagger:model api.UpdateMyPasswordRequest
type UpdateMyPasswordRequest struct {
	OldPassword string `json:"old_password" form:"old_password" validate:"required" example:"OldSecret123!"`
	NewPassword string `json:"new_password" form:"new_password" validate:"required,min=8" example:"NewSecret456!"`
}

// swagger:model api.DashboardResponse
type DashboardResponse struct {
	Success           bool                     `json:"success"`
	User              UserResponse             `json:"user"`
	Registration      *model.RegistrationRow   `json:"registration"`
	Building          *model.Building          `json:"building"`
	Neighbours        int                      `json:"neighbours"`
	Cases             []model.Case             `json:"cases"`
	EligibilityChecks []model.EligibilityCheck `json:"eligibility_checks"`
}
