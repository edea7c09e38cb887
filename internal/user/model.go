package user

import (
	"math"
	"strings"
)

// User is a user record enriched with geocoded location metadata. The
// pointer fields are nullable: latitude, longitude and timezone are either
// all nil or all set, and are set only while the current zip code has a
// successful geocode.
type User struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ZipCode   *string  `json:"zipCode"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timezone  *string  `json:"timezone"`
}

// ValidationResult collects every rule violation, not just the first.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Validate checks the shape of the record. Pure, no I/O. The timezone
// string rule of the original model is enforced by the type system here.
func (u *User) Validate() ValidationResult {
	var errs []string

	if strings.TrimSpace(u.Name) == "" {
		errs = append(errs, "Name is required and must be a non-empty string")
	}

	// A nil zip code is valid: it means no location was requested.
	if u.ZipCode != nil && strings.TrimSpace(*u.ZipCode) == "" {
		errs = append(errs, "Zip code must be a non-empty string if provided")
	}

	if u.Latitude != nil && !isFinite(*u.Latitude) {
		errs = append(errs, "Latitude must be a valid number")
	}

	if u.Longitude != nil && !isFinite(*u.Longitude) {
		errs = append(errs, "Longitude must be a valid number")
	}

	return ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
