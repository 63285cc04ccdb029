package utils

import "time"

// LoadLocation resolves an IANA zone name, falling back to the server's
// local zone when the name is empty or unknown.
func LoadLocation(tz string) *time.Location {
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}
	return loc
}
