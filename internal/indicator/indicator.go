package indicator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCountry is returned when input is neither a known country name nor a 2-3 letter code.
var ErrUnknownCountry = errors.New("unknown country")

// Indicator pairs a human-readable series name with the provider's indicator code.
type Indicator struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Units string `json:"units"`
}

// Country is a display name mapped to the provider's country code.
type Country struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

const (
	GDPGrowth    = "GDP growth (annual %)"
	Inflation    = "Inflation rate (CPI %)"
	Unemployment = "Unemployment rate (%)"
	GDP          = "GDP (current US$)"
)

var tracked = [...]Indicator{
	{Name: GDPGrowth, Code: "NY.GDP.MKTP.KD.ZG", Units: "%"},
	{Name: Inflation, Code: "FP.CPI.TOTL.ZG", Units: "%"},
	{Name: Unemployment, Code: "SL.UEM.TOTL.ZS", Units: "%"},
	{Name: GDP, Code: "NY.GDP.MKTP.CD", Units: "US$"},
}

var countries = [...]Country{
	{Name: "India", Code: "IND"},
	{Name: "US", Code: "USA"},
	{Name: "China", Code: "CHN"},
	{Name: "Russia", Code: "RUS"},
}

// Tracked returns the fixed set of indicators every country summary covers.
// The returned slice is a copy.
func Tracked() []Indicator {
	out := make([]Indicator, len(tracked))
	copy(out, tracked[:])
	return out
}

// ByCode looks up a tracked indicator by provider code.
func ByCode(code string) (Indicator, bool) {
	for _, ind := range tracked {
		if strings.EqualFold(ind.Code, code) {
			return ind, true
		}
	}
	return Indicator{}, false
}

// Countries returns the countries offered by the dashboard, in display order.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries[:])
	return out
}

// ResolveCountry maps a display name (case-insensitive) or a 2-3 letter code to a provider country code.
func ResolveCountry(input string) (string, error) {
	q := strings.TrimSpace(input)
	for _, c := range countries {
		if strings.EqualFold(c.Name, q) {
			return c.Code, nil
		}
	}
	if n := len(q); n < 2 || n > 3 {
		return "", fmt.Errorf("%w: %q", ErrUnknownCountry, input)
	}
	for _, r := range q {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return "", fmt.Errorf("%w: %q", ErrUnknownCountry, input)
		}
	}
	return strings.ToUpper(q), nil
}
