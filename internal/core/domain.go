package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MonthUnlocked MonthState = "unlocked"
	MonthLocked   MonthState = "locked"
)

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type (
	// MonthState is the lock state of a month. The only transition is
	// unlocked -> locked.
	MonthState string

	Role string

	Date struct {
		time.Time
	}

	Member struct {
		ID        string
		Name      string
		Active    bool
		CreatedAt time.Time
	}

	Month struct {
		ID        string
		Period    Period
		State     MonthState
		CreatedAt time.Time
	}

	Meal struct {
		ID       string
		MemberID string
		Date     Date
		Count    decimal.Decimal // half meals allowed
	}

	Expense struct {
		ID        string
		Title     string
		Amount    decimal.Decimal
		Date      Date
		CreatedAt time.Time
	}

	Deposit struct {
		ID         string
		MemberID   string
		MemberName string // filled by listings
		Amount     decimal.Decimal
		Date       Date
		CreatedAt  time.Time
	}
)

const dateLayout = "2006-01-02"

// NewDate creates a new Date from year, month, day at midnight UTC
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location and returns it
// as midnight UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// Period returns the month the date belongs to.
func (d Date) Period() Period {
	return Period{Year: d.Year(), Month: d.Time.Month()}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (s MonthState) Valid() bool {
	return s == MonthUnlocked || s == MonthLocked
}

func (m Month) Locked() bool {
	return m.State == MonthLocked
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

func (m Member) Validate() error {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > 100 {
		return fmt.Errorf("%w: name (max 100 characters)", ErrTooLong)
	}
	return nil
}

func (m Meal) Validate() error {
	if strings.TrimSpace(m.MemberID) == "" {
		return ErrEmptyMember
	}
	if err := m.Date.Validate(); err != nil {
		return err
	}
	return ValidateCount(m.Count)
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	title := strings.TrimSpace(e.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > 200 {
		return fmt.Errorf("%w: title (max 200 characters)", ErrTooLong)
	}
	return ValidateAmount(e.Amount)
}

func (d Deposit) Validate() error {
	if strings.TrimSpace(d.MemberID) == "" {
		return ErrEmptyMember
	}
	if err := d.Date.Validate(); err != nil {
		return err
	}
	return ValidateAmount(d.Amount)
}
