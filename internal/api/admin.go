package api

import "rtm-portal/internal/model"

// swagger:model api.UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" form:"status" validate:"required" example:"verified"`
	Notes  string `json:"notes" form:"notes" example:"Section 84 notice served"`
}

// swagger:model api.CreateCaseRequest
type CreateCaseRequest struct {
	BuildingID string `json:"building_id" form:"building_id" validate:"required" example:"0f8e3a52-7b1c-5d6e-9f00-1a2b3c4d5e6f"`
	Kind       string `json:"kind" form:"kind" validate:"required,oneof=rtm enfranchisement" example:"rtm"`
	Notes      string `json:"notes" form:"notes"`
}

// swagger:model api.SyncResponse
type SyncResponse struct {
	Success bool           `json:"success" example:"true"`
	Message string         `json:"message,omitempty" example:"sync started"`
	Run     *model.SyncRun `json:"run,omitempty"`
}

// swagger:model api.StatsResponse
type StatsResponse struct {
	Success bool        `json:"success" example:"true"`
	Stats   model.Stats `json:"stats"`
	Cached  bool        `json:"cached"`
}
