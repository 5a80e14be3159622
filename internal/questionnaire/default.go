package questionnaire

import (
	"bytes"
	_ "embed"
)

//go:embed flows/eligibility.json
var eligibilityJSON []byte

// Default returns the built-in RTM and enfranchisement eligibility flow.
// It panics if the embedded file is invalid, which the package tests rule out.
func Default() *Flow {
	f, err := Load(bytes.NewReader(eligibilityJSON))
	if err != nil {
		panic("questionnaire: embedded flow: " + err.Error())
	}
	return f
}
