package model

import "time"

// Building is keyed by an id derived from its normalized address and postcode,
// so every registration for the same block lands on the same row.
type Building struct {
	ID                string    `db:"id" json:"id"`
	AddressLine       string    `db:"address_line" json:"address_line"`
	NormalizedAddress string    `db:"normalized_address" json:"normalized_address"`
	Postcode          string    `db:"postcode" json:"postcode"`
	City              string    `db:"city" json:"city"`
	TotalFlats        int       `db:"total_flats" json:"total_flats"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
