package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mealbook/internal/core"
)

const maxBodyBytes = 64 << 10

var errBadRequest = errors.New("bad request")

// decodeJSON reads a single JSON object from the body into dst, rejecting
// unknown fields and oversized bodies.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must contain a single JSON object", errBadRequest)
	}
	return nil
}

// periodParam parses a YYYY-MM query parameter, defaulting to the current month.
func (s *Server) periodParam(r *http.Request) (core.Period, error) {
	v := strings.TrimSpace(r.URL.Query().Get("period"))
	if v == "" {
		return core.PeriodOf(s.now()), nil
	}
	return core.ParsePeriod(v)
}

// dateParam parses a required YYYY-MM-DD query parameter.
func dateParam(r *http.Request, name string) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return core.Date{}, fmt.Errorf("%w: missing %s", errBadRequest, name)
	}
	return core.ParseDate(v)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// Request bodies. Amounts and counts are JSON strings or numbers.

type addMemberRequest struct {
	Name string `json:"name"`
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

type updateMealRequest struct {
	MemberID string      `json:"member_id"`
	Date     string      `json:"date"`
	Count    json.Number `json:"count"`
}

type addExpenseRequest struct {
	Title  string      `json:"title"`
	Amount json.Number `json:"amount"`
	Date   string      `json:"date"`
}

type addDepositRequest struct {
	MemberID string      `json:"member_id"`
	Amount   json.Number `json:"amount"`
	Date     string      `json:"date"`
}

func (req updateMealRequest) toMeal() (core.Meal, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Meal{}, err
	}
	count, err := core.ParseCount(req.Count.String())
	if err != nil {
		return core.Meal{}, err
	}
	return core.Meal{MemberID: strings.TrimSpace(req.MemberID), Date: date, Count: count}, nil
}

func (req addExpenseRequest) toExpense() (core.Expense, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{Title: sanitizeInput(req.Title), Amount: amount, Date: date}, nil
}

func (req addDepositRequest) toDeposit() (core.Deposit, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Deposit{}, err
	}
	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		return core.Deposit{}, err
	}
	return core.Deposit{MemberID: strings.TrimSpace(req.MemberID), Amount: amount, Date: date}, nil
}
