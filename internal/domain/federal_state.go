package domain

import (
	"slices"
	"strings"
)

// FederalStates lists the German federal state codes usable as an employee region.
var FederalStates = []string{
	"BB", "BE", "BW", "BY", "HB", "HE", "HH", "MV",
	"NI", "NW", "RP", "SH", "SL", "SN", "ST", "TH",
}

var federalStateAliases = map[string]string{
	"NRW": "NW",
}

// NormalizeFederalState upper-cases the code and resolves aliases. ok is false for codes
// that are not a German federal state.
func NormalizeFederalState(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if alias, exists := federalStateAliases[code]; exists {
		code = alias
	}
	if !slices.Contains(FederalStates, code) {
		return "", false
	}
	return code, true
}
