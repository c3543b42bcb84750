package storage

import "database/sql"

// Row types mirror the tables one to one. Decimal columns stay strings here
// and are parsed at the repository boundary.

type Member struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt int64
}

type Month struct {
	ID        string
	Period    string
	State     string
	CreatedAt int64
	LockedAt  sql.NullInt64
}

type Meal struct {
	ID        string
	MemberID  string
	Date      string
	Count     string
	UpdatedAt int64
}

type Expense struct {
	ID        string
	Title     string
	Amount    string
	Date      string
	CreatedAt int64
}

type Deposit struct {
	ID         string
	MemberID   string
	MemberName string
	Amount     string
	Date       string
	CreatedAt  int64
}

type MonthSummary struct {
	MemberID     string
	MemberName   string
	MonthID      string
	TotalMeals   string
	TotalDeposit string
	TotalCost    string
	Balance      string
	UpdatedAt    int64
}
