package mixpanel

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date format accepted by the export API.
const DateLayout = "2006-01-02"

// date tokens usable as query values, resolved against the run time.
const (
	dateTokenPrefix  = "$"
	dateTokenDaysAgo = "$daysAgo:"
)

var dateTokens = map[string]int{
	"$today":      0,
	"$yesterday":  1,
	"$week":       7,
	"$month":      30,
	"$threeMonth": 90,
	"$sixMonth":   180,
	"$year":       365,
}

// DateOffset returns the calendar date daysPast days before reference,
// e.g. daysPast 0 => today, daysPast 1 => yesterday.
// The reference's own location is used, no timezone conversion happens.
func DateOffset(daysPast int, reference time.Time) string {
	y, m, d := reference.Date()

	return time.Date(y, m, d-daysPast, 0, 0, 0, 0, reference.Location()).Format(DateLayout)
}

// IsDateToken reports whether v should be resolved as a relative date.
func IsDateToken(v string) bool {
	return strings.HasPrefix(v, dateTokenPrefix)
}

// ResolveDateToken converts a relative date token such as "$yesterday" or
// "$daysAgo:14" into a date relative to now.
func ResolveDateToken(token string, now time.Time) (string, error) {
	if days, ok := dateTokens[token]; ok {
		return DateOffset(days, now), nil
	}

	if strings.HasPrefix(token, dateTokenDaysAgo) {
		days, err := strconv.Atoi(strings.TrimPrefix(token, dateTokenDaysAgo))
		if err != nil || days < 0 {
			return "", fmt.Errorf("%w: invalid date token %q", ErrConfig, token)
		}

		return DateOffset(days, now), nil
	}

	return "", fmt.Errorf("%w: unknown date token %q", ErrConfig, token)
}

func validateDate(key, value string) error {
	if _, err := time.Parse(DateLayout, value); err != nil {
		return fmt.Errorf("%w: %s must be in YYYY-MM-DD form, got %q", ErrConfig, key, value)
	}

	return nil
}
