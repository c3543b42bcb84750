package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// members

const createMember = `-- name: CreateMember :exec
INSERT INTO members (id, name, active, created_at) VALUES (?, ?, ?, ?)
`

type CreateMemberParams struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt int64
}

func (q *Queries) CreateMember(ctx context.Context, arg CreateMemberParams) error {
	_, err := q.db.ExecContext(ctx, createMember, arg.ID, arg.Name, arg.Active, arg.CreatedAt)
	return err
}

const getMember = `-- name: GetMember :one
SELECT id, name, active, created_at FROM members WHERE id = ?
`

func (q *Queries) GetMember(ctx context.Context, id string) (Member, error) {
	row := q.db.QueryRowContext(ctx, getMember, id)
	var i Member
	err := row.Scan(&i.ID, &i.Name, &i.Active, &i.CreatedAt)
	return i, err
}

const listMembers = `-- name: ListMembers :many
SELECT id, name, active, created_at FROM members
WHERE (?1 = 0 OR active = 1)
ORDER BY name, id
`

func (q *Queries) ListMembers(ctx context.Context, activeOnly bool) ([]Member, error) {
	rows, err := q.db.QueryContext(ctx, listMembers, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Member
	for rows.Next() {
		var i Member
		if err := rows.Scan(&i.ID, &i.Name, &i.Active, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setMemberActive = `-- name: SetMemberActive :execrows
UPDATE members SET active = ? WHERE id = ?
`

func (q *Queries) SetMemberActive(ctx context.Context, active bool, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, setMemberActive, active, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// months

const getMonthByPeriod = `-- name: GetMonthByPeriod :one
SELECT id, period, state, created_at, locked_at FROM months WHERE period = ?
`

func (q *Queries) GetMonthByPeriod(ctx context.Context, period string) (Month, error) {
	row := q.db.QueryRowContext(ctx, getMonthByPeriod, period)
	var i Month
	err := row.Scan(&i.ID, &i.Period, &i.State, &i.CreatedAt, &i.LockedAt)
	return i, err
}

const createMonth = `-- name: CreateMonth :exec
INSERT INTO months (id, period, state, created_at) VALUES (?, ?, 'unlocked', ?)
`

type CreateMonthParams struct {
	ID        string
	Period    string
	CreatedAt int64
}

func (q *Queries) CreateMonth(ctx context.Context, arg CreateMonthParams) error {
	_, err := q.db.ExecContext(ctx, createMonth, arg.ID, arg.Period, arg.CreatedAt)
	return err
}

const lockMonth = `-- name: LockMonth :execrows
UPDATE months SET state = 'locked', locked_at = ? WHERE id = ? AND state = 'unlocked'
`

func (q *Queries) LockMonth(ctx context.Context, lockedAt int64, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, lockMonth, lockedAt, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listLockedMonths = `-- name: ListLockedMonths :many
SELECT id, period, state, created_at, locked_at FROM months WHERE state = 'locked' ORDER BY period
`

func (q *Queries) ListLockedMonths(ctx context.Context) ([]Month, error) {
	rows, err := q.db.QueryContext(ctx, listLockedMonths)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Month
	for rows.Next() {
		var i Month
		if err := rows.Scan(&i.ID, &i.Period, &i.State, &i.CreatedAt, &i.LockedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// meals

const upsertMeal = `-- name: UpsertMeal :one
INSERT INTO meals (id, member_id, date, count, updated_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (member_id, date) DO UPDATE SET count = excluded.count, updated_at = excluded.updated_at
RETURNING id, member_id, date, count, updated_at
`

type UpsertMealParams struct {
	ID        string
	MemberID  string
	Date      string
	Count     string
	UpdatedAt int64
}

func (q *Queries) UpsertMeal(ctx context.Context, arg UpsertMealParams) (Meal, error) {
	row := q.db.QueryRowContext(ctx, upsertMeal, arg.ID, arg.MemberID, arg.Date, arg.Count, arg.UpdatedAt)
	var i Meal
	err := row.Scan(&i.ID, &i.MemberID, &i.Date, &i.Count, &i.UpdatedAt)
	return i, err
}

const listMealsByDate = `-- name: ListMealsByDate :many
SELECT id, member_id, date, count, updated_at FROM meals WHERE date = ? ORDER BY member_id
`

func (q *Queries) ListMealsByDate(ctx context.Context, date string) ([]Meal, error) {
	rows, err := q.db.QueryContext(ctx, listMealsByDate, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Meal
	for rows.Next() {
		var i Meal
		if err := rows.Scan(&i.ID, &i.MemberID, &i.Date, &i.Count, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type RangeParams struct {
	From       string
	To         string
	MemberID   string // empty matches every member
	ActiveOnly bool
}

const mealCountsInRange = `-- name: MealCountsInRange :many
SELECT m.count FROM meals m
JOIN members mb ON mb.id = m.member_id
WHERE m.date BETWEEN ?1 AND ?2
  AND (?3 = '' OR m.member_id = ?3)
  AND (?4 = 0 OR mb.active = 1)
`

func (q *Queries) MealCountsInRange(ctx context.Context, arg RangeParams) ([]string, error) {
	return q.decimalColumn(ctx, mealCountsInRange, arg.From, arg.To, arg.MemberID, arg.ActiveOnly)
}

// expenses

const createExpense = `-- name: CreateExpense :exec
INSERT INTO expenses (id, title, amount, date, created_at) VALUES (?, ?, ?, ?, ?)
`

type CreateExpenseParams struct {
	ID        string
	Title     string
	Amount    string
	Date      string
	CreatedAt int64
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) error {
	_, err := q.db.ExecContext(ctx, createExpense, arg.ID, arg.Title, arg.Amount, arg.Date, arg.CreatedAt)
	return err
}

const getExpense = `-- name: GetExpense :one
SELECT id, title, amount, date, created_at FROM expenses WHERE id = ?
`

func (q *Queries) GetExpense(ctx context.Context, id string) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var i Expense
	err := row.Scan(&i.ID, &i.Title, &i.Amount, &i.Date, &i.CreatedAt)
	return i, err
}

const deleteExpense = `-- name: DeleteExpense :execrows
DELETE FROM expenses WHERE id = ?
`

func (q *Queries) DeleteExpense(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listExpensesInRange = `-- name: ListExpensesInRange :many
SELECT id, title, amount, date, created_at FROM expenses
WHERE date BETWEEN ? AND ?
ORDER BY date DESC, created_at DESC
`

func (q *Queries) ListExpensesInRange(ctx context.Context, from, to string) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpensesInRange, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(&i.ID, &i.Title, &i.Amount, &i.Date, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const expenseAmountsInRange = `-- name: ExpenseAmountsInRange :many
SELECT amount FROM expenses WHERE date BETWEEN ? AND ?
`

func (q *Queries) ExpenseAmountsInRange(ctx context.Context, from, to string) ([]string, error) {
	return q.decimalColumn(ctx, expenseAmountsInRange, from, to)
}

// deposits

const createDeposit = `-- name: CreateDeposit :exec
INSERT INTO deposits (id, member_id, amount, date, created_at) VALUES (?, ?, ?, ?, ?)
`

type CreateDepositParams struct {
	ID        string
	MemberID  string
	Amount    string
	Date      string
	CreatedAt int64
}

func (q *Queries) CreateDeposit(ctx context.Context, arg CreateDepositParams) error {
	_, err := q.db.ExecContext(ctx, createDeposit, arg.ID, arg.MemberID, arg.Amount, arg.Date, arg.CreatedAt)
	return err
}

const listDepositsInRange = `-- name: ListDepositsInRange :many
SELECT d.id, d.member_id, mb.name, d.amount, d.date, d.created_at FROM deposits d
JOIN members mb ON mb.id = d.member_id
WHERE d.date BETWEEN ? AND ?
ORDER BY d.date DESC, d.created_at DESC
`

func (q *Queries) ListDepositsInRange(ctx context.Context, from, to string) ([]Deposit, error) {
	rows, err := q.db.QueryContext(ctx, listDepositsInRange, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Deposit
	for rows.Next() {
		var i Deposit
		if err := rows.Scan(&i.ID, &i.MemberID, &i.MemberName, &i.Amount, &i.Date, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const depositAmountsInRange = `-- name: DepositAmountsInRange :many
SELECT d.amount FROM deposits d
JOIN members mb ON mb.id = d.member_id
WHERE d.date BETWEEN ?1 AND ?2
  AND (?3 = '' OR d.member_id = ?3)
  AND (?4 = 0 OR mb.active = 1)
`

func (q *Queries) DepositAmountsInRange(ctx context.Context, arg RangeParams) ([]string, error) {
	return q.decimalColumn(ctx, depositAmountsInRange, arg.From, arg.To, arg.MemberID, arg.ActiveOnly)
}

// month summaries

const upsertMonthSummary = `-- name: UpsertMonthSummary :exec
INSERT INTO month_summaries (member_id, month_id, total_meals, total_deposit, total_cost, balance, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (member_id, month_id) DO UPDATE SET
    total_meals = excluded.total_meals,
    total_deposit = excluded.total_deposit,
    total_cost = excluded.total_cost,
    balance = excluded.balance,
    updated_at = excluded.updated_at
`

type UpsertMonthSummaryParams struct {
	MemberID     string
	MonthID      string
	TotalMeals   string
	TotalDeposit string
	TotalCost    string
	Balance      string
	UpdatedAt    int64
}

func (q *Queries) UpsertMonthSummary(ctx context.Context, arg UpsertMonthSummaryParams) error {
	_, err := q.db.ExecContext(ctx, upsertMonthSummary,
		arg.MemberID, arg.MonthID, arg.TotalMeals, arg.TotalDeposit, arg.TotalCost, arg.Balance, arg.UpdatedAt)
	return err
}

const listMonthSummaries = `-- name: ListMonthSummaries :many
SELECT s.member_id, mb.name, s.month_id, s.total_meals, s.total_deposit, s.total_cost, s.balance, s.updated_at
FROM month_summaries s
JOIN members mb ON mb.id = s.member_id
WHERE s.month_id = ?
ORDER BY mb.name, s.member_id
`

func (q *Queries) ListMonthSummaries(ctx context.Context, monthID string) ([]MonthSummary, error) {
	rows, err := q.db.QueryContext(ctx, listMonthSummaries, monthID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthSummary
	for rows.Next() {
		var i MonthSummary
		if err := rows.Scan(&i.MemberID, &i.MemberName, &i.MonthID, &i.TotalMeals,
			&i.TotalDeposit, &i.TotalCost, &i.Balance, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) decimalColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
