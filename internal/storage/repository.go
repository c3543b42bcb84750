package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mealbook/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// SQLiteRepository is the ledger store. A repository returned by InTx is bound
// to that transaction; every other repository runs on the shared pool.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	inTx    bool
	now     func() time.Time
}

type Option func(*options)

type options struct {
	busyTimeout time.Duration
	now         func() time.Time
}

// WithBusyTimeout sets how long a writer waits for the database lock.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// WithClock overrides the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	o := options{busyTimeout: 5 * time.Second, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations before the pool opens so every pooled connection sees the schema.
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath, o.busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("Ledger store opened", "path", dbPath, "busy_timeout", o.busyTimeout)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     o.now,
	}, nil
}

// dsn makes every transaction BEGIN IMMEDIATE, so a lock check and the write
// that follows it cannot interleave with another writer.
func dsn(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf("%s?_txlock=immediate&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		path, busyTimeout.Milliseconds())
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil && !r.inTx {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InTx runs fn inside one write transaction. Returning an error from fn rolls
// back everything fn wrote. Nested calls reuse the outer transaction.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(tx *SQLiteRepository) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	bound := &SQLiteRepository{db: r.db, queries: r.queries.WithTx(tx), inTx: true, now: r.now}
	if err := fn(bound); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Members

func (r *SQLiteRepository) CreateMember(ctx context.Context, name string) (core.Member, error) {
	m := core.Member{
		ID:        uuid.NewString(),
		Name:      name,
		Active:    true,
		CreatedAt: r.now().UTC(),
	}
	err := r.queries.CreateMember(ctx, CreateMemberParams{
		ID:        m.ID,
		Name:      m.Name,
		Active:    m.Active,
		CreatedAt: m.CreatedAt.Unix(),
	})
	if err != nil {
		return core.Member{}, fmt.Errorf("create member: %w", err)
	}

	slog.InfoContext(ctx, "Member saved to SQLite", "id", m.ID, "name", m.Name)
	return m, nil
}

func (r *SQLiteRepository) GetMember(ctx context.Context, id string) (core.Member, error) {
	row, err := r.queries.GetMember(ctx, id)
	if err != nil {
		return core.Member{}, notFound(fmt.Errorf("get member %s: %w", id, err))
	}
	return toMember(row), nil
}

// ListMembers returns members ordered by name.
func (r *SQLiteRepository) ListMembers(ctx context.Context, activeOnly bool) ([]core.Member, error) {
	rows, err := r.queries.ListMembers(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	members := make([]core.Member, len(rows))
	for i, row := range rows {
		members[i] = toMember(row)
	}
	return members, nil
}

func (r *SQLiteRepository) SetMemberActive(ctx context.Context, id string, active bool) error {
	n, err := r.queries.SetMemberActive(ctx, active, id)
	if err != nil {
		return fmt.Errorf("set member active: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("member %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// Months

// GetMonth returns core.ErrNotFound when the period has no month record.
func (r *SQLiteRepository) GetMonth(ctx context.Context, period core.Period) (core.Month, error) {
	row, err := r.queries.GetMonthByPeriod(ctx, period.String())
	if err != nil {
		return core.Month{}, notFound(fmt.Errorf("get month %s: %w", period, err))
	}
	return toMonth(row)
}

// GetOrCreateMonth returns the month record, inserting an unlocked one if the
// period has none yet.
func (r *SQLiteRepository) GetOrCreateMonth(ctx context.Context, period core.Period) (core.Month, error) {
	m, err := r.GetMonth(ctx, period)
	if err == nil {
		return m, nil
	}
	if !core.IsNotFound(err) {
		return core.Month{}, err
	}

	m = core.Month{
		ID:        uuid.NewString(),
		Period:    period,
		State:     core.MonthUnlocked,
		CreatedAt: r.now().UTC(),
	}
	err = r.queries.CreateMonth(ctx, CreateMonthParams{
		ID:        m.ID,
		Period:    period.String(),
		CreatedAt: m.CreatedAt.Unix(),
	})
	if err != nil {
		return core.Month{}, fmt.Errorf("create month %s: %w", period, err)
	}
	return m, nil
}

// LockMonth flips an unlocked month to locked. It reports
// core.ErrMonthAlreadyLocked if the month was not in the unlocked state.
func (r *SQLiteRepository) LockMonth(ctx context.Context, monthID string) error {
	n, err := r.queries.LockMonth(ctx, r.now().UTC().Unix(), monthID)
	if err != nil {
		return fmt.Errorf("lock month: %w", err)
	}
	if n == 0 {
		return core.ErrMonthAlreadyLocked
	}
	return nil
}

func (r *SQLiteRepository) ListLockedMonths(ctx context.Context) ([]core.Month, error) {
	rows, err := r.queries.ListLockedMonths(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locked months: %w", err)
	}
	months := make([]core.Month, 0, len(rows))
	for _, row := range rows {
		m, err := toMonth(row)
		if err != nil {
			return nil, err
		}
		months = append(months, m)
	}
	return months, nil
}

// Meals

// UpsertMeal stores the meal count for (member, date), replacing any earlier
// count for that day.
func (r *SQLiteRepository) UpsertMeal(ctx context.Context, meal core.Meal) (core.Meal, error) {
	row, err := r.queries.UpsertMeal(ctx, UpsertMealParams{
		ID:        uuid.NewString(),
		MemberID:  meal.MemberID,
		Date:      meal.Date.Format(dateLayout),
		Count:     meal.Count.String(),
		UpdatedAt: r.now().UTC().Unix(),
	})
	if err != nil {
		return core.Meal{}, fmt.Errorf("upsert meal: %w", err)
	}

	slog.DebugContext(ctx, "Meal saved to SQLite",
		"id", row.ID,
		"member_id", row.MemberID,
		"date", row.Date,
		"count", row.Count)

	return toMeal(row)
}

func (r *SQLiteRepository) ListMealsByDate(ctx context.Context, date core.Date) ([]core.Meal, error) {
	rows, err := r.queries.ListMealsByDate(ctx, date.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list meals by date: %w", err)
	}
	meals := make([]core.Meal, 0, len(rows))
	for _, row := range rows {
		m, err := toMeal(row)
		if err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, nil
}

// SumMeals totals meal counts matching f.
func (r *SQLiteRepository) SumMeals(ctx context.Context, f core.RangeFilter) (decimal.Decimal, error) {
	values, err := r.queries.MealCountsInRange(ctx, rangeParams(f))
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum meals: %w", err)
	}
	total, err := core.SumDecimals(values)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum meals: %w", err)
	}
	return total, nil
}

// Expenses

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = r.now().UTC()
	err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		ID:        e.ID,
		Title:     e.Title,
		Amount:    e.Amount.String(),
		Date:      e.Date.Format(dateLayout),
		CreatedAt: e.CreatedAt.Unix(),
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"title", e.Title,
		"amount", e.Amount.String(),
		"date", e.Date.String())

	return e, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, notFound(fmt.Errorf("get expense %s: %w", id, err))
	}
	return toExpense(row)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// ListExpenses returns expenses dated within f, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, f core.RangeFilter) ([]core.Expense, error) {
	rows, err := r.queries.ListExpensesInRange(ctx, f.From.Format(dateLayout), f.To.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	expenses := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := toExpense(row)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

// SumExpenses totals expense amounts dated within f. Member filters do not
// apply to expenses.
func (r *SQLiteRepository) SumExpenses(ctx context.Context, f core.RangeFilter) (decimal.Decimal, error) {
	values, err := r.queries.ExpenseAmountsInRange(ctx, f.From.Format(dateLayout), f.To.Format(dateLayout))
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	total, err := core.SumDecimals(values)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

// Deposits

func (r *SQLiteRepository) CreateDeposit(ctx context.Context, d core.Deposit) (core.Deposit, error) {
	d.ID = uuid.NewString()
	d.CreatedAt = r.now().UTC()
	err := r.queries.CreateDeposit(ctx, CreateDepositParams{
		ID:        d.ID,
		MemberID:  d.MemberID,
		Amount:    d.Amount.String(),
		Date:      d.Date.Format(dateLayout),
		CreatedAt: d.CreatedAt.Unix(),
	})
	if err != nil {
		return core.Deposit{}, fmt.Errorf("create deposit: %w", err)
	}

	slog.InfoContext(ctx, "Deposit saved to SQLite",
		"id", d.ID,
		"member_id", d.MemberID,
		"amount", d.Amount.String(),
		"date", d.Date.String())

	return d, nil
}

// ListDeposits returns deposits dated within f with member names, newest first.
func (r *SQLiteRepository) ListDeposits(ctx context.Context, f core.RangeFilter) ([]core.Deposit, error) {
	rows, err := r.queries.ListDepositsInRange(ctx, f.From.Format(dateLayout), f.To.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	deposits := make([]core.Deposit, 0, len(rows))
	for _, row := range rows {
		d, err := toDeposit(row)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, nil
}

func (r *SQLiteRepository) SumDeposits(ctx context.Context, f core.RangeFilter) (decimal.Decimal, error) {
	values, err := r.queries.DepositAmountsInRange(ctx, rangeParams(f))
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum deposits: %w", err)
	}
	total, err := core.SumDecimals(values)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum deposits: %w", err)
	}
	return total, nil
}

// Month summaries

func (r *SQLiteRepository) UpsertMonthSummary(ctx context.Context, s core.MonthSummary) error {
	err := r.queries.UpsertMonthSummary(ctx, UpsertMonthSummaryParams{
		MemberID:     s.MemberID,
		MonthID:      s.MonthID,
		TotalMeals:   s.TotalMeals.String(),
		TotalDeposit: s.TotalDeposit.String(),
		TotalCost:    s.TotalCost.String(),
		Balance:      s.Balance.String(),
		UpdatedAt:    r.now().UTC().Unix(),
	})
	if err != nil {
		return fmt.Errorf("upsert month summary for member %s: %w", s.MemberID, err)
	}
	return nil
}

// ListMonthSummaries returns the stored summaries for a month ordered by
// member name.
func (r *SQLiteRepository) ListMonthSummaries(ctx context.Context, monthID string) ([]core.MonthSummary, error) {
	rows, err := r.queries.ListMonthSummaries(ctx, monthID)
	if err != nil {
		return nil, fmt.Errorf("list month summaries: %w", err)
	}
	summaries := make([]core.MonthSummary, 0, len(rows))
	for _, row := range rows {
		s, err := toMonthSummary(row)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", core.ErrNotFound, err)
	}
	return err
}

func rangeParams(f core.RangeFilter) RangeParams {
	return RangeParams{
		From:       f.From.Format(dateLayout),
		To:         f.To.Format(dateLayout),
		MemberID:   f.MemberID,
		ActiveOnly: f.ActiveOnly,
	}
}
