package export

import (
	"fmt"

	"rtm-portal/internal/model"
	"rtm-portal/internal/store"
)

// Tables lists the admin tables that can be exported.
var Tables = []string{"registrations", "buildings", "cases", "eligibility-checks", "users"}

func Registrations(rows []model.RegistrationRow) ([]byte, error) {
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{
			r.ID, r.UserName, r.UserEmail, r.Phone, r.FlatNumber, r.BuildingAddress, r.Postcode,
			r.LeaseholderType, r.InterestedIn, r.Status, r.SharePointItemID != nil, r.CreatedAt,
		})
	}
	return Table("Registrations", []string{
		"ID", "Name", "Email", "Phone", "Flat", "Address", "Postcode",
		"Leaseholder Type", "Interested In", "Status", "Synced", "Registered At",
	}, data)
}

func Buildings(rows []store.BuildingRow) ([]byte, error) {
	data := make([][]any, 0, len(rows))
	for _, b := range rows {
		data = append(data, []any{
			b.ID, b.AddressLine, b.Postcode, b.City, b.TotalFlats, b.Registrations, b.CreatedAt,
		})
	}
	return Table("Buildings", []string{
		"ID", "Address", "Postcode", "City", "Total Flats", "Registrations", "Created At",
	}, data)
}

func Cases(rows []model.Case) ([]byte, error) {
	data := make([][]any, 0, len(rows))
	for _, c := range rows {
		data = append(data, []any{c.ID, c.BuildingID, c.Kind, c.Status, c.Notes, c.CreatedAt, c.UpdatedAt})
	}
	return Table("Cases", []string{
		"ID", "Building", "Kind", "Status", "Notes", "Opened At", "Updated At",
	}, data)
}

func EligibilityChecks(rows []model.EligibilityCheck) ([]byte, error) {
	data := make([][]any, 0, len(rows))
	for _, c := range rows {
		data = append(data, []any{
			c.ID, c.UserID, c.FlowID, c.Status, c.Outcome, c.Eligible, len(c.Answers), c.CreatedAt,
		})
	}
	return Table("Eligibility Checks", []string{
		"ID", "User", "Flow", "Status", "Outcome", "Eligible", "Answers", "Started At",
	}, data)
}

func Users(rows []model.User) ([]byte, error) {
	data := make([][]any, 0, len(rows))
	for _, u := range rows {
		data = append(data, []any{u.ID, u.Name, u.Email, u.IsAdmin, u.CreatedAt})
	}
	return Table("Users", []string{"ID", "Name", "Email", "Admin", "Created At"}, data)
}

// FileName is the download name for table.
func FileName(table string) string {
	return fmt.Sprintf("%s.xlsx", table)
}
