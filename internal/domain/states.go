package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// stateNames maps USPS codes to census state names.
var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"DC": "District of Columbia", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
	"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
	"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
	"MS": "Mississippi", "MO": "Missouri", "MT": "Montana", "NE": "Nebraska",
	"NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
	"NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "PR": "Puerto Rico",
	"RI": "Rhode Island", "SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee",
	"TX": "Texas", "UT": "Utah", "VT": "Vermont", "VA": "Virginia",
	"WA": "Washington", "WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}

// stateCodes maps case-folded names to codes.
var stateCodes = func() map[string]string {
	m := make(map[string]string, len(stateNames))
	for code, name := range stateNames {
		m[fold(name)] = code
	}
	return m
}()

// Casers carry state, so each call builds its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// NormalizeState folds a USPS code or a state name to the USPS code.
// Unrecognized input is title-cased with single spaces; blank stays blank.
func NormalizeState(s string) string {
	s = collapseSpaces(s)
	if s == "" {
		return ""
	}
	if len(s) == 2 {
		if code := strings.ToUpper(s); stateNames[code] != "" {
			return code
		}
	}
	if code, ok := stateCodes[fold(s)]; ok {
		return code
	}
	return cases.Title(language.AmericanEnglish).String(s)
}

// StateName returns the census name for a USPS code, or the input unchanged.
func StateName(code string) string {
	if name, ok := stateNames[code]; ok {
		return name
	}
	return code
}

// NormalizeCity trims and collapses internal whitespace. Case is preserved
// because names like "McAllen" do not survive title-casing.
func NormalizeCity(s string) string {
	return collapseSpaces(s)
}

// NormalizeIATA trims and upper-cases an airport code.
func NormalizeIATA(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
