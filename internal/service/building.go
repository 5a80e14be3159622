package service

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// buildingNamespace scopes the name-based building ids.
var buildingNamespace = uuid.MustParse("6f1c9a52-3d0e-4b7a-9a55-0c4d7f2e8b11")

var ErrInvalidPostcode = errors.New("invalid postcode")

// UK postcode, outward + inward, spaces already removed.
var postcodeRe = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]?[0-9][A-Z]{2}$`)

var addressAbbreviations = map[string]string{
	"st":   "street",
	"rd":   "road",
	"ave":  "avenue",
	"ln":   "lane",
	"ct":   "court",
	"hse":  "house",
	"sq":   "square",
	"pl":   "place",
	"dr":   "drive",
	"gdns": "gardens",
	"terr": "terrace",
}

// NormalizeAddress lowercases, drops punctuation, collapses whitespace and
// expands common street abbreviations, so "12 High St." and "12  high street"
// compare equal.
func NormalizeAddress(address string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r), r == ',', r == '.', r == '-', r == '/':
			return ' '
		default:
			return -1
		}
	}, address)

	words := strings.Fields(cleaned)
	for i, w := range words {
		if full, ok := addressAbbreviations[w]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

// NormalizePostcode uppercases and strips whitespace: "sw1a 1aa" -> "SW1A1AA".
func NormalizePostcode(postcode string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, postcode)
}

// ValidPostcode reports whether postcode looks like a UK postcode.
func ValidPostcode(postcode string) bool {
	return postcodeRe.MatchString(NormalizePostcode(postcode))
}

// FormatPostcode renders a normalized postcode with its single space.
func FormatPostcode(postcode string) string {
	p := NormalizePostcode(postcode)
	if len(p) < 5 {
		return p
	}
	return p[:len(p)-3] + " " + p[len(p)-3:]
}

// BuildingID derives the stable building key from address and postcode.
func BuildingID(address, postcode string) (string, error) {
	pc := NormalizePostcode(postcode)
	if !postcodeRe.MatchString(pc) {
		return "", ErrInvalidPostcode
	}
	addr := NormalizeAddress(address)
	if addr == "" {
		return "", errors.New("empty address")
	}
	return uuid.NewSHA1(buildingNamespace, []byte(addr+"|"+pc)).String(), nil
}
