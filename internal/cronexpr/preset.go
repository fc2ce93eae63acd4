// Package cronexpr compiles recurrence presets into five-field cron
// expressions and checks the shape of arbitrary expressions.
//
// The builder is deliberately permissive: a value outside its domain is
// replaced by the preset's floor instead of producing an error, so every
// preset compiles.
package cronexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// Weekday is a three-letter day-of-week code as used in the fifth cron field.
type Weekday string

const (
	Monday    Weekday = "MON"
	Tuesday   Weekday = "TUE"
	Wednesday Weekday = "WED"
	Thursday  Weekday = "THU"
	Friday    Weekday = "FRI"
	Saturday  Weekday = "SAT"
	Sunday    Weekday = "SUN"
)

// Weekdays lists the accepted codes, Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday matches a code case-insensitively. Anything else maps to Monday.
func ParseWeekday(raw string) Weekday {
	code := Weekday(strings.ToUpper(strings.TrimSpace(raw)))
	for _, d := range Weekdays {
		if d == code {
			return d
		}
	}
	return Monday
}

// Preset is a structured recurrence description.
// The concrete types are Interval, Hourly, Daily, Weekly and Monthly.
type Preset interface {
	fields() [5]string
}

// Interval fires every Minutes minutes.
type Interval struct {
	Minutes int
}

// Hourly fires once an hour at Minute.
type Hourly struct {
	Minute int
}

// Daily fires once a day.
type Daily struct {
	Hour   int
	Minute int
}

// Weekly fires once a week on Weekday.
type Weekly struct {
	Hour    int
	Minute  int
	Weekday Weekday
}

// Monthly fires once a month on Day.
type Monthly struct {
	Hour   int
	Minute int
	Day    int
}

func (p Interval) fields() [5]string {
	return [5]string{"*/" + strconv.Itoa(bound(p.Minutes, 1, 59, 1)), "*", "*", "*", "*"}
}

func (p Hourly) fields() [5]string {
	return [5]string{strconv.Itoa(minute(p.Minute)), "*", "*", "*", "*"}
}

func (p Daily) fields() [5]string {
	return [5]string{strconv.Itoa(minute(p.Minute)), strconv.Itoa(hour(p.Hour)), "*", "*", "*"}
}

func (p Weekly) fields() [5]string {
	return [5]string{strconv.Itoa(minute(p.Minute)), strconv.Itoa(hour(p.Hour)), "*", "*", string(ParseWeekday(string(p.Weekday)))}
}

func (p Monthly) fields() [5]string {
	return [5]string{strconv.Itoa(minute(p.Minute)), strconv.Itoa(hour(p.Hour)), strconv.Itoa(bound(p.Day, 1, 31, 1)), "*", "*"}
}

// Build compiles a preset into "minute hour day-of-month month day-of-week".
// The month field is always a wildcard. A nil preset yields every minute.
func Build(p Preset) string {
	if p == nil {
		return Build(Interval{Minutes: 1})
	}
	f := p.fields()
	return strings.Join(f[:], " ")
}

func minute(v int) int { return bound(v, 0, 59, 0) }

func hour(v int) int { return bound(v, 0, 23, 0) }

// bound returns v when lo <= v <= hi and floor otherwise.
func bound(v, lo, hi, floor int) int {
	if v < lo || v > hi {
		return floor
	}
	return v
}

// Kind names a preset variant.
type Kind string

const (
	KindInterval Kind = "interval"
	KindHourly   Kind = "hourly"
	KindDaily    Kind = "daily"
	KindWeekly   Kind = "weekly"
	KindMonthly  Kind = "monthly"
)

// Fields carries raw wizard input. Only the fields used by the chosen kind are read.
type Fields struct {
	Minutes string
	Minute  string
	Hour    string
	Day     string
	Weekday string
}

// ParsePreset turns raw wizard input into a preset. Non-numeric values become
// the floor of their field, exactly like out-of-range numbers. The only error
// is an unknown kind.
func ParsePreset(kind Kind, f Fields) (Preset, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case KindInterval:
		return Interval{Minutes: atoi(f.Minutes, 1)}, nil
	case KindHourly:
		return Hourly{Minute: atoi(f.Minute, 0)}, nil
	case KindDaily:
		return Daily{Hour: atoi(f.Hour, 0), Minute: atoi(f.Minute, 0)}, nil
	case KindWeekly:
		return Weekly{Hour: atoi(f.Hour, 0), Minute: atoi(f.Minute, 0), Weekday: ParseWeekday(f.Weekday)}, nil
	case KindMonthly:
		return Monthly{Hour: atoi(f.Hour, 0), Minute: atoi(f.Minute, 0), Day: atoi(f.Day, 1)}, nil
	default:
		return nil, fmt.Errorf("unknown preset kind %q", kind)
	}
}

func atoi(raw string, floor int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return floor
	}
	return v
}
