package api

// swagger:model api.LoginRequest
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email" example:"jo@example.com"`
	Password string `json:"password" form:"password" validate:"required" example:"Secret123!"`
}

// swagger:model api.LoginResponse
type LoginResponse struct {
	Success     bool         `json:"success" example:"true"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type" example:"Bearer"`
	ExpiresIn   int          `json:"expires_in" example:"86400"`
	User        UserResponse `json:"user"`
}

// swagger:model api.SetupAdminRequest
type SetupAdminRequest struct {
	Name     string `json:"name" form:"name" validate:"required" example:"Site Admin"`
	Email    string `json:"email" form:"email" validate:"required,email" example:"admin@example.com"`
	Password string `json:"password" form:"password" validate:"required,min=8" example:"Secret123!"`
}
