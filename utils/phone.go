package utils

import (
	"fmt"
	"strings"
)

// CountryConfig describes one supported dialing code. LocalLength is the
// expected digit count after the leading zero is stripped.
type CountryConfig struct {
	Code        string
	Name        string
	Flag        string
	LocalLength int
	Pattern     string // display pattern, X per digit
}

// SupportedCountries is the fixed set of dialing codes the booking flow
// accepts for WhatsApp delivery numbers.
var SupportedCountries = []CountryConfig{
	{Code: "+233", Name: "Ghana", Flag: "\U0001F1EC\U0001F1ED", LocalLength: 9, Pattern: "XX XXX XXXX"},
	{Code: "+234", Name: "Nigeria", Flag: "\U0001F1F3\U0001F1EC", LocalLength: 10, Pattern: "XXX XXX XXXX"},
	{Code: "+44", Name: "United Kingdom", Flag: "\U0001F1EC\U0001F1E7", LocalLength: 10, Pattern: "XXXX XXX XXX"},
	{Code: "+1", Name: "United States", Flag: "\U0001F1FA\U0001F1F8", LocalLength: 10, Pattern: "XXX XXX XXXX"},
}

// PhoneValidation is the result of validating a phone number.
type PhoneValidation struct {
	IsValid    bool   `json:"isValid"`
	Error      string `json:"error,omitempty"`
	FullNumber string `json:"fullNumber,omitempty"`
}

// CountryByCode looks up a country config by dialing code.
func CountryByCode(code string) (CountryConfig, bool) {
	for _, c := range SupportedCountries {
		if c.Code == code {
			return c, true
		}
	}
	return CountryConfig{}, false
}

// ValidatePhone checks a raw local number against the country's expected
// length and produces the canonical full number (dialing code + local
// digits, leading zero stripped). Pure function of its inputs and the
// country table.
func ValidatePhone(countryCode, localNumber string) PhoneValidation {
	country, ok := CountryByCode(countryCode)
	if !ok {
		return PhoneValidation{Error: fmt.Sprintf("unsupported country code %s", countryCode)}
	}

	digits := digitsOnly(localNumber)
	if digits == "" {
		return PhoneValidation{Error: "phone number is required"}
	}

	// A leading zero is the local dialing convention, not part of the
	// international number.
	digits = strings.TrimPrefix(digits, "0")

	if len(digits) != country.LocalLength {
		return PhoneValidation{
			Error: fmt.Sprintf("%s numbers must have %d digits", country.Name, country.LocalLength),
		}
	}

	return PhoneValidation{
		IsValid:    true,
		FullNumber: country.Code + digits,
	}
}

// FormatPhone renders local digits using the country's display pattern.
// Digits beyond the pattern are appended as-is.
func FormatPhone(countryCode, localNumber string) string {
	country, ok := CountryByCode(countryCode)
	if !ok {
		return localNumber
	}

	digits := strings.TrimPrefix(digitsOnly(localNumber), "0")
	var b strings.Builder
	i := 0
	for _, r := range country.Pattern {
		if i >= len(digits) {
			break
		}
		if r == 'X' {
			b.WriteByte(digits[i])
			i++
		} else {
			b.WriteRune(r)
		}
	}
	if i < len(digits) {
		b.WriteString(digits[i:])
	}
	return b.String()
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
