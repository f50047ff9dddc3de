package utils

import (
	"time"

	"github.com/google/uuid"
)

// ValidTestID reports whether s is a UUID-shaped token. Only the canonical
// 36-character hyphenated form is trusted; uuid.Parse alone would also
// accept URN and bare-hex variants.
func ValidTestID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// SynthesizeTestID builds a fallback uid when no test id could be resolved
// at capture time, so captured rows stay distinguishable per form and day.
func SynthesizeTestID(formID string, now time.Time) string {
	return formID + "-" + now.UTC().Format("2006-01-02")
}
