package model

// Stats feeds the admin dashboard header.
type Stats struct {
	Users             int `json:"users"`
	Registrations     int `json:"registrations"`
	PendingRegs       int `json:"pending_registrations"`
	Buildings         int `json:"buildings"`
	OpenCases         int `json:"open_cases"`
	EligibilityChecks int `json:"eligibility_checks"`
	EligibleChecks    int `json:"eligible_checks"`
	UnsyncedRegs      int `json:"unsynced_registrations"`
}
