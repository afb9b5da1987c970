package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

const (
	// DefaultTrendMonths is used when MonthlyTrend is called with 0 months.
	DefaultTrendMonths = 6
	// MaxTrendMonths bounds a single trend request.
	MaxTrendMonths = 24

	defaultConcurrency = 4
)

// CategoryTotal is the spend of one category over a window.
type CategoryTotal struct {
	CategoryID   string
	CategoryName string
	Total        decimal.Decimal
}

// Totals summarizes a window. NetSavings may be negative.
type Totals struct {
	TotalExpenses decimal.Decimal
	TotalIncome   decimal.Decimal
	NetSavings    decimal.Decimal
}

// MonthTotals is one month of a trend.
type MonthTotals struct {
	Year  int
	Month time.Month
	Totals
}

// BudgetProgress is a budget, with its category populated, measured against
// the current calendar month.
type BudgetProgress struct {
	Budget models.Budget
	Progress
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used to find the current month.
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) { e.now = fn }
}

// WithLocation sets the zone month windows are computed in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithConcurrency bounds the number of repository calls one operation runs
// at a time.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// Engine computes analytics for a user. It holds no per-user state and is
// safe for concurrent use.
type Engine struct {
	repo        Repository
	now         func() time.Time
	loc         *time.Location
	concurrency int
}

// NewEngine creates an Engine over repo. By default it uses the system
// clock and UTC.
func NewEngine(repo Repository, opts ...Option) *Engine {
	e := &Engine{
		repo:        repo,
		now:         time.Now,
		loc:         time.UTC,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CurrentMonth returns the year and month the engine treats as current.
func (e *Engine) CurrentMonth() (int, time.Month) {
	return CurrentMonth(e.now(), e.loc)
}

// MonthlyBreakdown sums the user's expenses per category for one calendar
// month. Only categories with at least one expense appear. Rows are ordered
// by total descending, then by category ID.
func (e *Engine) MonthlyBreakdown(ctx context.Context, userID string, year, month int) ([]CategoryTotal, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.Validation("month", "must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return nil, apperrors.Validation("year", "must be between 1 and 9999")
	}

	w := MonthWindow(year, time.Month(month), e.loc)
	rows, err := e.repo.FindExpensesInRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	byCategory := make(map[string]int)
	totals := make([]CategoryTotal, 0)
	for _, row := range rows {
		i, ok := byCategory[row.CategoryID]
		if !ok {
			i = len(totals)
			byCategory[row.CategoryID] = i
			totals = append(totals, CategoryTotal{
				CategoryID:   row.CategoryID,
				CategoryName: row.CategoryName,
				Total:        decimal.Zero,
			})
		}
		totals[i].Total = totals[i].Total.Add(row.Amount)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		if c := totals[i].Total.Cmp(totals[j].Total); c != 0 {
			return c > 0
		}
		return totals[i].CategoryID < totals[j].CategoryID
	})
	return totals, nil
}

// TotalsForCurrentMonth returns expense and income sums for the current
// calendar month and their difference.
func (e *Engine) TotalsForCurrentMonth(ctx context.Context, userID string) (Totals, error) {
	year, month := e.CurrentMonth()
	return e.monthTotals(ctx, userID, MonthWindow(year, month, e.loc))
}

func (e *Engine) monthTotals(ctx context.Context, userID string, w Window) (Totals, error) {
	var expenses, income decimal.Decimal

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := e.repo.SumExpenses(gctx, userID, w.Start, w.End, nil)
		expenses = sum
		return err
	})
	g.Go(func() error {
		sum, err := e.repo.SumIncome(gctx, userID, w.Start, w.End)
		income = sum
		return err
	})
	if err := g.Wait(); err != nil {
		return Totals{}, apperrors.Storage(err)
	}

	return newTotals(expenses, income), nil
}

func newTotals(expenses, income decimal.Decimal) Totals {
	return Totals{
		TotalExpenses: expenses,
		TotalIncome:   income,
		NetSavings:    income.Sub(expenses),
	}
}

// BudgetProgress measures every budget of the user against its category's
// spend in the current calendar month, whatever the budget's declared
// period. Either every budget is computed or an error is returned.
func (e *Engine) BudgetProgress(ctx context.Context, userID string) ([]BudgetProgress, error) {
	budgets, err := e.repo.ListBudgetsWithCategory(ctx, userID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	for _, b := range budgets {
		if b.Category == nil {
			return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound,
				"Category of budget "+b.Budget.ID+" no longer exists")
		}
	}

	year, month := e.CurrentMonth()
	w := MonthWindow(year, month, e.loc)

	spent := make([]decimal.Decimal, len(budgets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := range budgets {
		i := i
		categoryID := budgets[i].Budget.CategoryID
		g.Go(func() error {
			sum, err := e.repo.SumExpenses(gctx, userID, w.Start, w.End, &categoryID)
			if err != nil {
				return err
			}
			spent[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Storage(err)
	}

	result := make([]BudgetProgress, len(budgets))
	for i, b := range budgets {
		budget := b.Budget
		budget.Category = *b.Category
		result[i] = BudgetProgress{
			Budget:   budget,
			Progress: ComputeProgress(budget.Amount, spent[i]),
		}
	}
	return result, nil
}

// MonthlyTrend returns totals for the last months calendar months, current
// month included, oldest first. A zero months value selects the default.
func (e *Engine) MonthlyTrend(ctx context.Context, userID string, months int) ([]MonthTotals, error) {
	if months == 0 {
		months = DefaultTrendMonths
	}
	if months < 1 || months > MaxTrendMonths {
		return nil, apperrors.Validation("months", "must be between 1 and 24")
	}

	year, month := e.CurrentMonth()
	trend := make([]MonthTotals, months)
	expenses := make([]decimal.Decimal, months)
	income := make([]decimal.Decimal, months)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := 0; i < months; i++ {
		i := i
		y, m := shiftMonth(year, month, i-months+1)
		trend[i].Year, trend[i].Month = y, m
		w := MonthWindow(y, m, e.loc)

		g.Go(func() error {
			sum, err := e.repo.SumExpenses(gctx, userID, w.Start, w.End, nil)
			expenses[i] = sum
			return err
		})
		g.Go(func() error {
			sum, err := e.repo.SumIncome(gctx, userID, w.Start, w.End)
			income[i] = sum
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Storage(err)
	}

	for i := range trend {
		trend[i].Totals = newTotals(expenses[i], income[i])
	}
	return trend, nil
}
