package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-02-29" || d.Location() != time.UTC || d.Hour() != 0 {
		t.Fatalf("unexpected date %v", d.Time)
	}
	for _, in := range []string{"", "2023-02-29", "2024-13-01", "29/02/2024"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", in, err)
		}
	}
}

func TestDateOfNormalisesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+6", 6*3600)
	in := time.Date(2024, 3, 1, 1, 30, 0, 0, loc)
	d := DateOf(in)
	if d.String() != "2024-03-01" || d.Location() != time.UTC {
		t.Fatalf("got %v", d.Time)
	}
	if d.Period().String() != "2024-03" {
		t.Fatalf("got period %s", d.Period())
	}
}

func TestMemberValidate(t *testing.T) {
	if err := (Member{Name: "Rahim"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Member{Name: "  "}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Member{Name: strings.Repeat("x", 101)}).Validate(); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}

func TestMealValidate(t *testing.T) {
	good := Meal{MemberID: "m1", Date: NewDate(2025, 1, 1), Count: decimal.RequireFromString("1.5")}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	zero := good
	zero.Count = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero meals should be valid, got %v", err)
	}

	bads := []Meal{
		{MemberID: "", Date: NewDate(2025, 1, 1), Count: decimal.NewFromInt(1)},
		{MemberID: "m1", Date: Date{}, Count: decimal.NewFromInt(1)},
		{MemberID: "m1", Date: NewDate(2025, 1, 1), Count: decimal.NewFromInt(-1)},
		{MemberID: "m1", Date: NewDate(2025, 1, 1), Count: decimal.NewFromInt(11)},
	}
	for i, m := range bads {
		if err := m.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{Title: "Rice", Amount: decimal.NewFromInt(200), Date: NewDate(2025, 1, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Expense{
		{Title: "", Amount: decimal.NewFromInt(1), Date: NewDate(2025, 1, 1)},
		{Title: "a", Amount: decimal.Zero, Date: NewDate(2025, 1, 1)},
		{Title: "a", Amount: decimal.NewFromInt(-5), Date: NewDate(2025, 1, 1)},
		{Title: "a", Amount: decimal.NewFromInt(1), Date: Date{}},
		{Title: strings.Repeat("t", 201), Amount: decimal.NewFromInt(1), Date: NewDate(2025, 1, 1)},
	}
	for i, e := range bads {
		err := e.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !IsValidation(err) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestDepositValidate(t *testing.T) {
	good := Deposit{MemberID: "m1", Amount: decimal.NewFromInt(60), Date: NewDate(2025, 1, 3)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.Amount = decimal.Zero
	if err := bad.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestMonthLockedErrorMatchesSentinel(t *testing.T) {
	p := Period{Year: 2025, Month: time.March}
	var err error = &MonthLockedError{Period: p}
	if !errors.Is(err, ErrMonthLocked) {
		t.Fatalf("expected errors.Is to match ErrMonthLocked")
	}
	if errors.Is(err, ErrMonthAlreadyLocked) {
		t.Fatalf("locked error must not match ErrMonthAlreadyLocked")
	}
	wrapped := errors.Join(errors.New("outer"), err)
	var mle *MonthLockedError
	if !errors.As(wrapped, &mle) || mle.Period != p {
		t.Fatalf("expected errors.As to recover period, got %v", mle)
	}
	if !IsLocked(err) || !IsLocked(ErrMonthAlreadyLocked) {
		t.Fatalf("IsLocked should accept both lock errors")
	}
	if err.Error() != "month 2025-03 is locked" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
