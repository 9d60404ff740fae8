package fhir

import (
	"fmt"
	"strings"
	"time"
)

// Input layouts accepted for user-supplied dates.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
}

// NormalizeDate converts a user-supplied date to the YYYY-MM-DD form used in
// every query parameter and payload.
func NormalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", value)
}
