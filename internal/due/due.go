// Package due parses the due dates users type.
package due

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/idilsaglam/taskday/internal/bucket"
)

// ErrPast is returned for dates before today.
var ErrPast = errors.New("due date is in the past")

// Parse accepts YYYY-MM-DD, RFC 3339, "today", "tomorrow" and "+Nd".
// Dates without a time are midnight in now's location. Dates before
// today are rejected.
func Parse(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	today := bucket.StartOfDay(now)

	var due time.Time
	switch {
	case s == "":
		return time.Time{}, errors.New("empty due date")
	case s == "today":
		due = today
	case s == "tomorrow":
		due = today.AddDate(0, 0, 1)
	case strings.HasPrefix(s, "+") && strings.HasSuffix(s, "d"):
		n, err := strconv.Atoi(s[1 : len(s)-1])
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("invalid relative due date %q (want +Nd)", s)
		}
		due = today.AddDate(0, 0, n)
	default:
		if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
			due = t
		} else if t, err := time.Parse(time.RFC3339, strings.ToUpper(s)); err == nil {
			due = t
		} else {
			return time.Time{}, fmt.Errorf("invalid due date %q (want YYYY-MM-DD, RFC 3339, today, tomorrow or +Nd)", s)
		}
	}

	if due.Before(today) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrPast, due.Format("2006-01-02"))
	}
	return due, nil
}
