package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

const alice = "alice@example.com"

var errBoom = errors.New("connection reset by peer")

// march15 is the engine clock in most tests.
var march15 = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, label string, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: expected %s, got %s", label, want, got)
	}
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 9, 0, 0, 0, time.UTC)
}

// foodTransportRepo holds Food 50 on day 5, Transport 30 on day 10 and
// income 1000 on day 1 of March 2024.
func foodTransportRepo() *fakeRepository {
	return &fakeRepository{
		expenses: []fakeExpense{
			{id: "e1", userID: alice, categoryID: "food", categoryName: "Food", amount: "50", date: day(5)},
			{id: "e2", userID: alice, categoryID: "transport", categoryName: "Transport", amount: "30", date: day(10)},
		},
		income: []fakeIncome{
			{userID: alice, amount: "1000", date: day(1)},
		},
	}
}

func TestEngine_TotalsForCurrentMonth(t *testing.T) {
	ctx := context.Background()

	t.Run("food and transport scenario", func(t *testing.T) {
		e := NewEngine(foodTransportRepo(), fixedClock(march15))

		totals, err := e.TotalsForCurrentMonth(ctx, alice)
		testutil.AssertNoError(t, err)
		assertDecimal(t, "expenses", "80", totals.TotalExpenses)
		assertDecimal(t, "income", "1000", totals.TotalIncome)
		assertDecimal(t, "net", "920", totals.NetSavings)
	})

	t.Run("no data is all zero", func(t *testing.T) {
		e := NewEngine(&fakeRepository{}, fixedClock(march15))

		totals, err := e.TotalsForCurrentMonth(ctx, alice)
		testutil.AssertNoError(t, err)
		assertDecimal(t, "expenses", "0", totals.TotalExpenses)
		assertDecimal(t, "income", "0", totals.TotalIncome)
		assertDecimal(t, "net", "0", totals.NetSavings)
	})

	t.Run("net savings may be negative", func(t *testing.T) {
		repo := &fakeRepository{
			expenses: []fakeExpense{{id: "e1", userID: alice, categoryID: "rent", amount: "1200.50", date: day(2)}},
			income:   []fakeIncome{{userID: alice, amount: "1000.25", date: day(3)}},
		}
		e := NewEngine(repo, fixedClock(march15))

		totals, err := e.TotalsForCurrentMonth(ctx, alice)
		testutil.AssertNoError(t, err)
		assertDecimal(t, "net", "-200.25", totals.NetSavings)
		if !totals.NetSavings.Equal(totals.TotalIncome.Sub(totals.TotalExpenses)) {
			t.Error("net savings must equal income minus expenses")
		}
	})

	t.Run("ignores other months and other users", func(t *testing.T) {
		repo := foodTransportRepo()
		repo.expenses = append(repo.expenses,
			fakeExpense{id: "e3", userID: alice, categoryID: "food", amount: "99", date: time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)},
			fakeExpense{id: "e4", userID: "bob@example.com", categoryID: "food", amount: "500", date: day(5)},
		)
		e := NewEngine(repo, fixedClock(march15))

		totals, err := e.TotalsForCurrentMonth(ctx, alice)
		testutil.AssertNoError(t, err)
		assertDecimal(t, "expenses", "80", totals.TotalExpenses)
	})

	t.Run("storage failure is reported", func(t *testing.T) {
		repo := foodTransportRepo()
		repo.incomeErr = errBoom
		e := NewEngine(repo, fixedClock(march15))

		_, err := e.TotalsForCurrentMonth(ctx, alice)
		testutil.AssertAppError(t, err, "STORAGE_ERROR")
		if !errors.Is(err, errBoom) {
			t.Error("expected storage error to keep its cause")
		}
	})
}

func TestEngine_MonthlyBreakdown(t *testing.T) {
	ctx := context.Background()

	t.Run("food and transport scenario", func(t *testing.T) {
		e := NewEngine(foodTransportRepo(), fixedClock(march15))

		rows, err := e.MonthlyBreakdown(ctx, alice, 2024, 3)
		testutil.AssertNoError(t, err)
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0].CategoryName != "Food" || !rows[0].Total.Equal(dec("50")) {
			t.Errorf("unexpected first row %+v", rows[0])
		}
		if rows[1].CategoryName != "Transport" || !rows[1].Total.Equal(dec("30")) {
			t.Errorf("unexpected second row %+v", rows[1])
		}
	})

	t.Run("omits categories without expenses", func(t *testing.T) {
		e := NewEngine(&fakeRepository{}, fixedClock(march15))

		rows, err := e.MonthlyBreakdown(ctx, alice, 2024, 3)
		testutil.AssertNoError(t, err)
		if rows == nil || len(rows) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", rows)
		}
	})

	t.Run("groups by category id not name", func(t *testing.T) {
		repo := &fakeRepository{expenses: []fakeExpense{
			{id: "e1", userID: alice, categoryID: "food-home", categoryName: "Food", amount: "10", date: day(1)},
			{id: "e2", userID: alice, categoryID: "food-work", categoryName: "Food", amount: "20", date: day(2)},
			{id: "e3", userID: alice, categoryID: "food-home", categoryName: "Food", amount: "5", date: day(3)},
		}}
		e := NewEngine(repo, fixedClock(march15))

		rows, err := e.MonthlyBreakdown(ctx, alice, 2024, 3)
		testutil.AssertNoError(t, err)
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0].CategoryID != "food-work" || !rows[0].Total.Equal(dec("20")) {
			t.Errorf("unexpected first row %+v", rows[0])
		}
		if rows[1].CategoryID != "food-home" || !rows[1].Total.Equal(dec("15")) {
			t.Errorf("unexpected second row %+v", rows[1])
		}
	})

	t.Run("sum of rows equals sum of expenses exactly", func(t *testing.T) {
		repo := &fakeRepository{}
		want := decimal.Zero
		for i := 0; i < 300; i++ {
			amount := fmt.Sprintf("0.%02d", i%100)
			repo.expenses = append(repo.expenses, fakeExpense{
				id:         fmt.Sprintf("e%d", i),
				userID:     alice,
				categoryID: fmt.Sprintf("c%d", i%7),
				amount:     amount,
				date:       day(1 + i%28),
			})
			want = want.Add(dec(amount))
		}
		e := NewEngine(repo, fixedClock(march15))

		rows, err := e.MonthlyBreakdown(ctx, alice, 2024, 3)
		testutil.AssertNoError(t, err)

		got := decimal.Zero
		for _, r := range rows {
			got = got.Add(r.Total)
		}
		if !got.Equal(want) {
			t.Errorf("expected %s, got %s", want, got)
		}
		if len(rows) != 7 {
			t.Errorf("expected 7 categories, got %d", len(rows))
		}
	})

	t.Run("month boundaries are inclusive to the second", func(t *testing.T) {
		repo := &fakeRepository{expenses: []fakeExpense{
			{id: "first", userID: alice, categoryID: "a", amount: "1", date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			{id: "last", userID: alice, categoryID: "b", amount: "2", date: time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)},
			{id: "next", userID: alice, categoryID: "c", amount: "4", date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
			{id: "prev", userID: alice, categoryID: "d", amount: "8", date: time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)},
		}}
		e := NewEngine(repo, fixedClock(march15))

		rows, err := e.MonthlyBreakdown(ctx, alice, 2024, 1)
		testutil.AssertNoError(t, err)

		seen := map[string]bool{}
		for _, r := range rows {
			seen[r.CategoryID] = true
		}
		if !seen["a"] || !seen["b"] {
			t.Errorf("expected first and last instants of January, got %+v", rows)
		}
		if seen["c"] || seen["d"] {
			t.Errorf("expected neighbouring months excluded, got %+v", rows)
		}
	})

	t.Run("windows follow the configured zone", func(t *testing.T) {
		rome, err := time.LoadLocation("Europe/Rome")
		if err != nil {
			t.Skipf("tzdata unavailable: %v", err)
		}
		repo := &fakeRepository{expenses: []fakeExpense{
			// 00:30 on 1 February in Rome.
			{id: "e1", userID: alice, categoryID: "a", amount: "1", date: time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC)},
		}}
		e := NewEngine(repo, fixedClock(march15), WithLocation(rome))

		jan, err := e.MonthlyBreakdown(ctx, alice, 2024, 1)
		testutil.AssertNoError(t, err)
		feb, err := e.MonthlyBreakdown(ctx, alice, 2024, 2)
		testutil.AssertNoError(t, err)
		if len(jan) != 0 || len(feb) != 1 {
			t.Errorf("expected expense in February only, got jan=%d feb=%d", len(jan), len(feb))
		}
	})

	t.Run("rejects invalid month and year", func(t *testing.T) {
		e := NewEngine(&fakeRepository{}, fixedClock(march15))

		_, err := e.MonthlyBreakdown(ctx, alice, 2024, 13)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
		_, err = e.MonthlyBreakdown(ctx, alice, 2024, 0)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
		_, err = e.MonthlyBreakdown(ctx, alice, 0, 3)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("storage failure is reported", func(t *testing.T) {
		e := NewEngine(&fakeRepository{findErr: errBoom}, fixedClock(march15))

		rows, err := e.MonthlyBreakdown(ctx, alice, 2024, 3)
		testutil.AssertAppError(t, err, "STORAGE_ERROR")
		if rows != nil {
			t.Errorf("expected no partial rows, got %+v", rows)
		}
	})
}

func TestEngine_BudgetProgress(t *testing.T) {
	ctx := context.Background()
	food := category("food", "Food")
	transport := category("transport", "Transport")

	t.Run("over and under budget scenarios", func(t *testing.T) {
		repo := foodTransportRepo()
		repo.budgets = map[string][]BudgetWithCategory{alice: {
			budgetFor("b-food", food, "40", models.BudgetPeriodMonthly),
			budgetFor("b-transport", transport, "100", models.BudgetPeriodMonthly),
		}}
		e := NewEngine(repo, fixedClock(march15))

		progress, err := e.BudgetProgress(ctx, alice)
		testutil.AssertNoError(t, err)
		if len(progress) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(progress))
		}

		over := progress[0]
		if over.Budget.ID != "b-food" || over.Budget.Category.Name != "Food" {
			t.Errorf("expected food budget with category first, got %+v", over.Budget)
		}
		assertDecimal(t, "food spent", "50", over.Spent)
		assertDecimal(t, "food remaining", "-10", over.Remaining)
		assertDecimal(t, "food percentage", "125", *over.Percentage)
		if !over.Alert {
			t.Error("expected alert for overspent budget")
		}

		under := progress[1]
		assertDecimal(t, "transport spent", "30", under.Spent)
		assertDecimal(t, "transport remaining", "70", under.Remaining)
		assertDecimal(t, "transport percentage", "30", *under.Percentage)
		if under.Alert {
			t.Error("expected no alert at 30%")
		}
	})

	t.Run("declared period does not change the window", func(t *testing.T) {
		repo := foodTransportRepo()
		repo.expenses = append(repo.expenses, fakeExpense{
			id: "old", userID: alice, categoryID: "food", amount: "1000", date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		})
		repo.budgets = map[string][]BudgetWithCategory{alice: {
			budgetFor("b-year", food, "600", models.BudgetPeriodYearly),
		}}
		e := NewEngine(repo, fixedClock(march15))

		progress, err := e.BudgetProgress(ctx, alice)
		testutil.AssertNoError(t, err)
		assertDecimal(t, "spent", "50", progress[0].Spent)
	})

	t.Run("no expenses means zero spent", func(t *testing.T) {
		repo := &fakeRepository{budgets: map[string][]BudgetWithCategory{alice: {
			budgetFor("b1", food, "100", models.BudgetPeriodMonthly),
		}}}
		e := NewEngine(repo, fixedClock(march15))

		progress, err := e.BudgetProgress(ctx, alice)
		testutil.AssertNoError(t, err)
		assertDecimal(t, "spent", "0", progress[0].Spent)
		assertDecimal(t, "remaining", "100", progress[0].Remaining)
		if progress[0].Alert {
			t.Error("expected no alert")
		}
	})

	t.Run("no budgets is an empty list", func(t *testing.T) {
		e := NewEngine(&fakeRepository{}, fixedClock(march15))

		progress, err := e.BudgetProgress(ctx, alice)
		testutil.AssertNoError(t, err)
		if progress == nil || len(progress) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", progress)
		}
	})

	t.Run("missing category is not found", func(t *testing.T) {
		repo := foodTransportRepo()
		repo.budgets = map[string][]BudgetWithCategory{alice: {
			budgetFor("b-food", food, "40", models.BudgetPeriodMonthly),
			budgetFor("b-orphan", nil, "10", models.BudgetPeriodMonthly),
		}}
		e := NewEngine(repo, fixedClock(march15))

		_, err := e.BudgetProgress(ctx, alice)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("one failing sum fails the whole call", func(t *testing.T) {
		repo := foodTransportRepo()
		repo.failCategory = "transport"
		repo.budgets = map[string][]BudgetWithCategory{alice: {
			budgetFor("b-food", food, "40", models.BudgetPeriodMonthly),
			budgetFor("b-transport", transport, "100", models.BudgetPeriodMonthly),
		}}
		e := NewEngine(repo, fixedClock(march15), WithConcurrency(1))

		progress, err := e.BudgetProgress(ctx, alice)
		testutil.AssertAppError(t, err, "STORAGE_ERROR")
		if progress != nil {
			t.Errorf("expected no partial results, got %+v", progress)
		}
	})

	t.Run("listing failure is reported", func(t *testing.T) {
		e := NewEngine(&fakeRepository{budgetsErr: errBoom}, fixedClock(march15))

		_, err := e.BudgetProgress(ctx, alice)
		testutil.AssertAppError(t, err, "STORAGE_ERROR")
	})

	t.Run("issues one sum per budget", func(t *testing.T) {
		repo := foodTransportRepo()
		var budgets []BudgetWithCategory
		for i := 0; i < 10; i++ {
			budgets = append(budgets, budgetFor(fmt.Sprintf("b%d", i), food, "10", models.BudgetPeriodMonthly))
		}
		repo.budgets = map[string][]BudgetWithCategory{alice: budgets}
		e := NewEngine(repo, fixedClock(march15))

		progress, err := e.BudgetProgress(ctx, alice)
		testutil.AssertNoError(t, err)
		if len(progress) != 10 {
			t.Fatalf("expected 10 rows, got %d", len(progress))
		}
		for i, p := range progress {
			if p.Budget.ID != fmt.Sprintf("b%d", i) {
				t.Errorf("expected repository order, got %s at %d", p.Budget.ID, i)
			}
		}
		if repo.sumCalls != 10 {
			t.Errorf("expected 10 sum calls, got %d", repo.sumCalls)
		}
	})
}

func TestEngine_MonthlyTrend(t *testing.T) {
	ctx := context.Background()

	t.Run("oldest first across a year boundary", func(t *testing.T) {
		repo := &fakeRepository{
			expenses: []fakeExpense{
				{id: "e1", userID: alice, categoryID: "a", amount: "10", date: time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC)},
				{id: "e2", userID: alice, categoryID: "a", amount: "25.50", date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
			},
			income: []fakeIncome{
				{userID: alice, amount: "100", date: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)},
			},
		}
		e := NewEngine(repo, fixedClock(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))

		trend, err := e.MonthlyTrend(ctx, alice, 3)
		testutil.AssertNoError(t, err)
		if len(trend) != 3 {
			t.Fatalf("expected 3 months, got %d", len(trend))
		}

		want := []struct {
			year     int
			month    time.Month
			expenses string
			income   string
			net      string
		}{
			{2023, time.November, "10", "0", "-10"},
			{2023, time.December, "0", "100", "100"},
			{2024, time.January, "25.50", "0", "-25.50"},
		}
		for i, w := range want {
			got := trend[i]
			if got.Year != w.year || got.Month != w.month {
				t.Errorf("row %d: expected %d-%02d, got %d-%02d", i, w.year, w.month, got.Year, got.Month)
			}
			assertDecimal(t, "expenses", w.expenses, got.TotalExpenses)
			assertDecimal(t, "income", w.income, got.TotalIncome)
			assertDecimal(t, "net", w.net, got.NetSavings)
		}
	})

	t.Run("zero months selects the default", func(t *testing.T) {
		e := NewEngine(&fakeRepository{}, fixedClock(march15))

		trend, err := e.MonthlyTrend(ctx, alice, 0)
		testutil.AssertNoError(t, err)
		if len(trend) != DefaultTrendMonths {
			t.Errorf("expected %d months, got %d", DefaultTrendMonths, len(trend))
		}
		if trend[len(trend)-1].Month != time.March {
			t.Errorf("expected current month last, got %s", trend[len(trend)-1].Month)
		}
	})

	t.Run("rejects out of range months", func(t *testing.T) {
		e := NewEngine(&fakeRepository{}, fixedClock(march15))

		_, err := e.MonthlyTrend(ctx, alice, 25)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
		_, err = e.MonthlyTrend(ctx, alice, -1)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("storage failure is reported", func(t *testing.T) {
		e := NewEngine(&fakeRepository{sumErr: errBoom}, fixedClock(march15))

		trend, err := e.MonthlyTrend(ctx, alice, 2)
		testutil.AssertAppError(t, err, "STORAGE_ERROR")
		if trend != nil {
			t.Errorf("expected no partial results, got %+v", trend)
		}
	})
}
