package service

import (
	"strings"

	"github.com/jjenkins/pincode/internal/model"
)

// Filter returns the records whose name contains query, ignoring case.
// Order is preserved and the input slice is never modified.
func Filter(records []model.PostOffice, query string) []model.PostOffice {
	needle := strings.ToLower(query)

	filtered := make([]model.PostOffice, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			filtered = append(filtered, r)
		}
	}

	return filtered
}
