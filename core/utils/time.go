package utils

import "time"

const DateLayout = "2006-01-02"

func NowUTC() time.Time {
	return time.Now().UTC()
}

// FormatDate renders t as a calendar date, the only form dates are stored in.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate accepts an empty string as "no date".
func ParseDate(value string) (time.Time, bool, error) {
	if value == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
