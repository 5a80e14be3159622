package model

import "time"

const (
	RegistrationPending  = "pending"
	RegistrationVerified = "verified"
	RegistrationRejected = "rejected"
)

const (
	InterestRTM             = "rtm"
	InterestEnfranchisement = "enfranchisement"
	InterestBoth            = "both"
)

type Registration struct {
	ID                 int       `db:"id" json:"id"`
	UserID             int       `db:"user_id" json:"user_id"`
	BuildingID         string    `db:"building_id" json:"building_id"`
	EligibilityCheckID *string   `db:"eligibility_check_id" json:"eligibility_check_id,omitempty"`
	FlatNumber         string    `db:"flat_number" json:"flat_number"`
	Phone              string    `db:"phone" json:"phone"`
	LeaseholderType    string    `db:"leaseholder_type" json:"leaseholder_type"`
	InterestedIn       string    `db:"interested_in" json:"interested_in"`
	Status             string    `db:"status" json:"status"`
	SharePointItemID   *string   `db:"sharepoint_item_id" json:"sharepoint_item_id,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// RegistrationRow is a registration joined with its user and building, as
// shown in the admin table and pushed to SharePoint.
type RegistrationRow struct {
	Registration
	UserName        string `db:"user_name" json:"user_name"`
	UserEmail       string `db:"user_email" json:"user_email"`
	BuildingAddress string `db:"building_address" json:"building_address"`
	Postcode        string `db:"postcode" json:"postcode"`
}
