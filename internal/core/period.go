package core

import (
	"fmt"
	"strings"
	"time"
)

// Period identifies a calendar month, written as YYYY-MM.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a YYYY-MM string.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) Validate() error {
	if p.Year < 1 || p.Year > 9999 || p.Month < time.January || p.Month > time.December {
		return ErrInvalidPeriod
	}
	return nil
}

// Range returns the first and last calendar day of the period, both inclusive.
func (p Period) Range() (first, last Date) {
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return Date{Time: start}, Date{Time: end}
}

// Contains reports whether d falls within the period.
func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && d.Time.Month() == p.Month
}

// Days returns the number of days in the period.
func (p Period) Days() int {
	_, last := p.Range()
	return last.Day()
}

func (p Period) Next() Period {
	first, _ := p.Range()
	return PeriodOf(first.AddDate(0, 1, 0))
}

func (p Period) Prev() Period {
	first, _ := p.Range()
	return PeriodOf(first.AddDate(0, -1, 0))
}

// RangeFilter selects rows dated within [From, To] inclusive, optionally for
// one member or for active members only.
type RangeFilter struct {
	From       Date
	To         Date
	MemberID   string
	ActiveOnly bool
}

// Filter returns a RangeFilter covering the whole period.
func (p Period) Filter() RangeFilter {
	first, last := p.Range()
	return RangeFilter{From: first, To: last}
}

// ForMember narrows the filter to one member.
func (f RangeFilter) ForMember(memberID string) RangeFilter {
	f.MemberID = memberID
	return f
}

// Active narrows the filter to currently active members.
func (f RangeFilter) Active() RangeFilter {
	f.ActiveOnly = true
	return f
}
