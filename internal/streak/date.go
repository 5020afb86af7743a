package streak

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Date is a calendar date in the learner's local timezone, serialized as
// YYYY-MM-DD. Streak comparisons work on calendar days, never on UTC
// instants, so a session just before local midnight still counts for
// that day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the calendar date from t in t's own location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// AddDays returns the date n days after d. Negative n moves backwards.
func (d Date) AddDays(n int) Date {
	return DateOf(d.midnight().AddDate(0, 0, n))
}

// DaysSince returns the number of calendar days from other to d.
// Positive when d is later.
func (d Date) DaysSince(other Date) int {
	return int(d.midnight().Sub(other.midnight()).Hours() / 24)
}

// Before reports whether d falls before other.
func (d Date) Before(other Date) bool {
	return d.midnight().Before(other.midnight())
}

// IsZero reports whether d is the zero date (no activity recorded yet).
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Value implements driver.Valuer so Date maps onto a SQL DATE column.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	}
	return fmt.Errorf("unsupported date column type %T", src)
}

func (d *Date) parse(s string) error {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("unable to parse date %q: expected YYYY-MM-DD format", s)
	}
	*d = DateOf(t)
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return fmt.Errorf("unable to parse date %q: expected YYYY-MM-DD format", value.Value)
	}
	*d = DateOf(t)
	return nil
}
