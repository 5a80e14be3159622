package api

import "rtm-portal/internal/model"

// swagger:model api.RegisterRequest
type RegisterRequest struct {
	CheckID         string `json:"check_id" form:"check_id" validate:"required,uuid" example:"5b0c1f7e-8d4e-4c39-9a57-0f4f3c1f2a11"`
	Name            string `json:"name" form:"name" validate:"required" example:"Jo Bloggs"`
	Email           string `json:"email" form:"email" validate:"required,email" example:"jo@example.com"`
	Password        string `json:"password" form:"password" validate:"required,min=8" example:"Secret123!"`
	Phone           string `json:"phone" form:"phone" example:"07700 900123"`
	FlatNumber      string `json:"flat_number" form:"flat_number" validate:"required" example:"4A"`
	AddressLine     string `json:"address_line" form:"address_line" validate:"required" example:"1 High St"`
	City            string `json:"city" form:"city" example:"London"`
	Postcode        string `json:"postcode" form:"postcode" validate:"required" example:"SW1A 1AA"`
	TotalFlats      int    `json:"total_flats" form:"total_flats" validate:"min=0" example:"12"`
	LeaseholderType string `json:"leaseholder_type" form:"leaseholder_type" validate:"required,oneof=owner_occupier investor" example:"owner_occupier"`
	InterestedIn    string `json:"interested_in" form:"interested_in" validate:"omitempty,oneof=rtm enfranchisement both" example:"rtm"`
}

// swagger:model api.RegisterResponse
type RegisterResponse struct {
	Success      bool               `json:"success" example:"true"`
	Token        string             `json:"token"`
	Registration model.Registration `json:"registration"`
	Building     model.Building     `json:"building"`
}
