package http

import (
	"net/http"
	"time"

	"mealbook/internal/core"
	"mealbook/internal/log"

	"github.com/shopspring/decimal"
)

// Response bodies. Decimals are rendered as strings so no precision is lost.

type memberDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type mealDTO struct {
	ID       string `json:"id"`
	MemberID string `json:"member_id"`
	Date     string `json:"date"`
	Count    string `json:"count"`
}

type expenseDTO struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

type depositDTO struct {
	ID         string `json:"id"`
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name,omitempty"`
	Amount     string `json:"amount"`
	Date       string `json:"date"`
}

type summaryDTO struct {
	MemberID     string `json:"member_id"`
	MemberName   string `json:"member_name"`
	TotalMeals   string `json:"total_meals"`
	TotalDeposit string `json:"total_deposit"`
	TotalCost    string `json:"total_cost"`
	Balance      string `json:"balance"`
}

type settlementDTO struct {
	Period     string       `json:"period"`
	MonthID    string       `json:"month_id"`
	TotalMeals string       `json:"total_meals"`
	TotalCost  string       `json:"total_cost"`
	MealRate   string       `json:"meal_rate"`
	Summaries  []summaryDTO `json:"summaries"`
}

type reportDTO struct {
	Period    string       `json:"period"`
	MonthID   string       `json:"month_id"`
	Locked    bool         `json:"locked"`
	Summaries []summaryDTO `json:"summaries"`
}

type memberStatsDTO struct {
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
	Meals      string `json:"meals"`
	Deposit    string `json:"deposit"`
}

type dashboardDTO struct {
	Period       string           `json:"period"`
	TotalMeals   string           `json:"total_meals"`
	TotalCost    string           `json:"total_cost"`
	TotalDeposit string           `json:"total_deposit"`
	MealRate     string           `json:"meal_rate"`
	Locked       bool             `json:"locked"`
	Members      []memberStatsDTO `json:"members"`
}

func toMemberDTO(m core.Member) memberDTO {
	return memberDTO{ID: m.ID, Name: m.Name, Active: m.Active, CreatedAt: m.CreatedAt}
}

func toSummaryDTOs(in []core.MonthSummary) []summaryDTO {
	out := make([]summaryDTO, len(in))
	for i, s := range in {
		out[i] = summaryDTO{
			MemberID:     s.MemberID,
			MemberName:   s.MemberName,
			TotalMeals:   s.TotalMeals.String(),
			TotalDeposit: s.TotalDeposit.String(),
			TotalCost:    s.TotalCost.String(),
			Balance:      s.Balance.String(),
		}
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": s.now().Sub(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready.Ping(r.Context()); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Members

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.Members.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]memberDTO, len(members))
	for i, m := range members {
		out[i] = toMemberDTO(m)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	m, err := s.svc.Members.Add(r.Context(), sanitizeInput(req.Name))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberDTO(m))
}

func (s *Server) handleSetMemberActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, "missing active")
		return
	}
	m, err := s.svc.Members.SetActive(r.Context(), r.PathValue("id"), *req.Active)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTO(m))
}

// Meals

func (s *Server) handleListMeals(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	meals, err := s.svc.Meals.ListByDate(r.Context(), date)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]mealDTO, len(meals))
	for i, m := range meals {
		out[i] = mealDTO{ID: m.ID, MemberID: m.MemberID, Date: m.Date.String(), Count: m.Count.String()}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateMeal(w http.ResponseWriter, r *http.Request) {
	var req updateMealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	meal, err := req.toMeal()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	saved, err := s.svc.Meals.Update(r.Context(), meal)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mealDTO{
		ID: saved.ID, MemberID: saved.MemberID, Date: saved.Date.String(), Count: saved.Count.String(),
	})
}

// Expenses

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	period, err := s.periodParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	expenses, err := s.svc.Expenses.ListByPeriod(r.Context(), period)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]expenseDTO, len(expenses))
	total := decimal.Zero
	for i, e := range expenses {
		out[i] = expenseDTO{ID: e.ID, Title: e.Title, Amount: e.Amount.String(), Date: e.Date.String()}
		total = total.Add(e.Amount)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period":   period.String(),
		"total":    total.String(),
		"expenses": out,
	})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req addExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := req.toExpense()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.svc.Expenses.Add(r.Context(), e)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseDTO{
		ID: created.ID, Title: created.Title, Amount: created.Amount.String(), Date: created.Date.String(),
	})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Expenses.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Deposits

func (s *Server) handleListDeposits(w http.ResponseWriter, r *http.Request) {
	period, err := s.periodParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	deposits, err := s.svc.Deposits.ListByPeriod(r.Context(), period)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]depositDTO, len(deposits))
	for i, d := range deposits {
		out[i] = depositDTO{
			ID: d.ID, MemberID: d.MemberID, MemberName: d.MemberName,
			Amount: d.Amount.String(), Date: d.Date.String(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddDeposit(w http.ResponseWriter, r *http.Request) {
	var req addDepositRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	d, err := req.toDeposit()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.svc.Deposits.Add(r.Context(), d)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, depositDTO{
		ID: created.ID, MemberID: created.MemberID, MemberName: created.MemberName,
		Amount: created.Amount.String(), Date: created.Date.String(),
	})
}

// Dashboard and months

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	period, err := s.periodParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	stats, err := s.svc.Dashboard.Stats(r.Context(), period)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	members, err := s.svc.Dashboard.Members(r.Context(), period)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := dashboardDTO{
		Period:       period.String(),
		TotalMeals:   stats.TotalMeals.String(),
		TotalCost:    stats.TotalCost.String(),
		TotalDeposit: stats.TotalDeposit.String(),
		MealRate:     stats.MealRate.String(),
		Locked:       stats.Locked,
		Members:      make([]memberStatsDTO, len(members)),
	}
	for i, m := range members {
		out.Members[i] = memberStatsDTO{
			MemberID: m.MemberID, MemberName: m.MemberName,
			Meals: m.Meals.String(), Deposit: m.Deposit.String(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	period, err := core.ParsePeriod(r.PathValue("period"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := s.svc.Settlement.Settle(r.Context(), period)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settlementDTO{
		Period:     result.Period.String(),
		MonthID:    result.MonthID,
		TotalMeals: result.TotalMeals.String(),
		TotalCost:  result.TotalCost.String(),
		MealRate:   result.MealRate.String(),
		Summaries:  toSummaryDTOs(result.Summaries),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	period, err := core.ParsePeriod(r.PathValue("period"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	report, err := s.svc.Settlement.GetSummary(r.Context(), period)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "month not found")
		return
	}
	writeJSON(w, http.StatusOK, reportDTO{
		Period:    report.Period.String(),
		MonthID:   report.MonthID,
		Locked:    report.Locked,
		Summaries: toSummaryDTOs(report.Summaries),
	})
}
