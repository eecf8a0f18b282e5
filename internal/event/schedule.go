package event

import "time"

// DateLayout is the wire format for event dates.
const DateLayout = "2006-01-02"

// NormalizeDate truncates a timestamp to UTC midnight. All schedule
// arithmetic runs on normalized dates so that DST shifts and client
// timezones can never change an event's day count.
func NormalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a normalized UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t), nil
}

// DeriveDays expands a date range into the event's day rows: one per
// calendar day, day numbers 1-based and contiguous. A single-day event
// (start == end) yields exactly one day. The result carries no IDs;
// callers persist it as a fresh set.
func DeriveDays(eventID uint, start, end time.Time) []EventDay {
	start = NormalizeDate(start)
	end = NormalizeDate(end)
	if end.Before(start) {
		return nil
	}

	days := make([]EventDay, 0, int(end.Sub(start).Hours()/24)+1)
	for d, n := start, 1; !d.After(end); d, n = d.AddDate(0, 0, 1), n+1 {
		days = append(days, EventDay{
			EventID:   eventID,
			DayNumber: n,
			EventDate: d,
		})
	}
	return days
}
