package core

import "github.com/shopspring/decimal"

// MonthSummary is the settled result for one member in one month.
type MonthSummary struct {
	MemberID     string
	MemberName   string
	MonthID      string
	TotalMeals   decimal.Decimal
	TotalDeposit decimal.Decimal
	TotalCost    decimal.Decimal
	Balance      decimal.Decimal // deposit - cost; negative means the member owes
}

// Settlement is returned by a successful month settlement.
type Settlement struct {
	Period     Period
	MonthID    string
	TotalMeals decimal.Decimal
	TotalCost  decimal.Decimal
	MealRate   decimal.Decimal
	Summaries  []MonthSummary
}

// MonthReport is the stored state of a month and its summaries.
type MonthReport struct {
	Period    Period
	MonthID   string
	Locked    bool
	Summaries []MonthSummary
}

// DashboardStats are the running totals for a month.
type DashboardStats struct {
	Period       Period
	TotalMeals   decimal.Decimal
	TotalCost    decimal.Decimal
	TotalDeposit decimal.Decimal
	MealRate     decimal.Decimal // zero when no meals
	Locked       bool
}

// MemberStats is one active member's running totals for a month.
type MemberStats struct {
	MemberID   string
	MemberName string
	Meals      decimal.Decimal
	Deposit    decimal.Decimal
}

// MealRate divides cost by meals. It returns zero for a zero meal total.
func MealRate(cost, meals decimal.Decimal) decimal.Decimal {
	if meals.IsZero() {
		return decimal.Zero
	}
	return cost.DivRound(meals, RatePrecision)
}

// RatePrecision is the number of decimal places kept for a meal rate.
const RatePrecision int32 = 16
