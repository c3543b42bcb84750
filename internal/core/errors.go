package core

import (
	"errors"
	"fmt"
)

// Settlement and lock errors.
var (
	ErrMonthAlreadyLocked = errors.New("month already locked")
	ErrZeroMeals          = errors.New("no meals recorded for month")
	ErrMonthLocked        = errors.New("month is locked")
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Validation errors.
var (
	ErrInvalidPeriod = errors.New("invalid period")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidCount  = errors.New("invalid meal count")
	ErrEmptyTitle    = errors.New("empty title")
	ErrEmptyName     = errors.New("empty name")
	ErrEmptyMember   = errors.New("empty member")
	ErrTooLong       = errors.New("value too long")
)

// MonthLockedError reports a mutation rejected because its period is settled.
type MonthLockedError struct {
	Period Period
}

func (e *MonthLockedError) Error() string {
	return fmt.Sprintf("month %s is locked", e.Period)
}

func (e *MonthLockedError) Is(target error) bool {
	return target == ErrMonthLocked
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsLocked reports whether err is a lock rejection of any kind.
func IsLocked(err error) bool {
	return errors.Is(err, ErrMonthLocked) || errors.Is(err, ErrMonthAlreadyLocked)
}

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidPeriod, ErrInvalidDate, ErrInvalidAmount, ErrInvalidCount,
		ErrEmptyTitle, ErrEmptyName, ErrEmptyMember, ErrTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
