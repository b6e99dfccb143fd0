package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = time.DateOnly

// ErrInvalidDate wraps every date or clock time parse failure.
var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar date without time of day. It serializes as "YYYY-MM-DD"
// and maps to the Postgres DATE type.
type Date time.Time

// NewDate truncates t to midnight in its own location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date(time.Date(y, m, d, 0, 0, 0, 0, t.Location()))
}

// Today returns the current date in the local time zone.
func Today() Date {
	return NewDate(time.Now())
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return Date(t), nil
}

// ParseBRDate parses a "dd/mm/YYYY" string as found in spreadsheets.
func ParseBRDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"02/01/2006", "2/1/2006", "02/01/06", DateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Date(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w %q: unrecognized format", ErrInvalidDate, s)
}

func (d Date) Time() time.Time { return time.Time(d) }

func (d Date) IsZero() bool { return time.Time(d).IsZero() }

func (d Date) String() string { return time.Time(d).Format(DateLayout) }

// BR formats the date as dd/mm/YYYY.
func (d Date) BR() string { return time.Time(d).Format("02/01/2006") }

func (d Date) AddDays(n int) Date { return NewDate(time.Time(d).AddDate(0, 0, n)) }

func (d Date) Before(o Date) bool { return time.Time(d).Before(time.Time(o)) }

func (d Date) After(o Date) bool { return time.Time(d).After(time.Time(o)) }

func (d Date) Equal(o Date) bool { return d.String() == o.String() }

// MonthStart returns the first day of the date's month.
func (d Date) MonthStart() Date {
	t := time.Time(d)
	return Date(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()))
}

// NextMonthStart returns the first day of the following month.
func (d Date) NextMonthStart() Date {
	t := time.Time(d.MonthStart())
	return Date(t.AddDate(0, 1, 0))
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalText lets Date be bound from query strings.
func (d *Date) UnmarshalText(b []byte) error {
	return d.UnmarshalJSON(b)
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = NewDate(v)
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// ParseHorario normalizes a "HH:MM" or "HH:MM:SS" clock time to "HH:MM".
func ParseHorario(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("%w %q: expected HH:MM", ErrInvalidDate, s)
}
