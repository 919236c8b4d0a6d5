package dashboard

import (
	"strings"
	"time"

	"wip-dashboard/internal/storage"
)

// ParseDate accepts nil, time.Time, epoch milliseconds, a date string or a
// storage.Dater. Anything unparseable yields false, never an error.
func ParseDate(v any) (time.Time, bool) {
	return storage.DateOf(v).Time()
}

// ProjectDate is the record's chronological anchor: creation date first, then
// last update.
func ProjectDate(rec storage.ProjectRecord) (time.Time, bool) {
	if t, ok := rec.DateCreated.Time(); ok {
		return t, true
	}
	return rec.DateUpdated.Time()
}

// NormalizeKey lower-cases s and collapses all whitespace runs to one space.
func NormalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// GroupKey is the second-stage aggregation key: normalized customer plus
// normalized project number (or name).
func GroupKey(rec storage.ProjectRecord) string {
	id := rec.ProjectNumber
	if strings.TrimSpace(id) == "" {
		id = rec.ProjectName
	}
	if strings.TrimSpace(id) == "" {
		id = rec.ID
	}
	return NormalizeKey(rec.Customer) + "|" + NormalizeKey(id)
}

func statusKey(status string) string {
	s := strings.TrimSpace(status)
	if s == "" {
		return unknownStatus
	}
	return s
}

func customerKey(customer string) string {
	c := strings.TrimSpace(customer)
	if c == "" {
		return unknownCustomer
	}
	return c
}

func statusIs(status, want string) bool {
	return strings.EqualFold(strings.TrimSpace(status), want)
}

// later reports whether a is strictly after b. Undated values are never later.
func later(a time.Time, aok bool, b time.Time, bok bool) bool {
	if !aok {
		return false
	}
	if !bok {
		return true
	}
	return a.After(b)
}
