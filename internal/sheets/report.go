package sheets

import (
	"mealbook/internal/core"

	"github.com/shopspring/decimal"
)

// ReportHeader is the first row of every exported report.
var ReportHeader = []string{"Member", "Meals", "Deposit", "Cost", "Balance"}

// ReportRows renders a month report as a table: header, one row per member,
// then a totals row. Money is rounded to two decimals for display.
func ReportRows(report core.MonthReport) [][]string {
	rows := make([][]string, 0, len(report.Summaries)+2)
	rows = append(rows, append([]string(nil), ReportHeader...))

	var meals, deposit, cost, balance decimal.Decimal
	for _, s := range report.Summaries {
		rows = append(rows, []string{
			s.MemberName,
			s.TotalMeals.String(),
			core.FormatMoney(s.TotalDeposit),
			core.FormatMoney(s.TotalCost),
			core.FormatMoney(s.Balance),
		})
		meals = meals.Add(s.TotalMeals)
		deposit = deposit.Add(s.TotalDeposit)
		cost = cost.Add(s.TotalCost)
		balance = balance.Add(s.Balance)
	}

	rows = append(rows, []string{
		"Total",
		meals.String(),
		core.FormatMoney(deposit),
		core.FormatMoney(cost),
		core.FormatMoney(balance),
	})
	return rows
}
