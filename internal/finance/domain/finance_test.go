package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/freelog/freelog/internal/calendar"
	"github.com/freelog/freelog/internal/money"
	"github.com/freelog/freelog/internal/validation"
)

func TestNewPaymentInput_Validate(t *testing.T) {
	due := calendar.NewDate(2023, time.November, 1)

	tests := []struct {
		name       string
		input      NewPaymentInput
		wantFields []string
	}{
		{
			name:  "valid unpaid",
			input: NewPaymentInput{ProjectID: "1", Amount: 150000, Description: "Initial deposit", DueDate: due},
		},
		{
			name:  "valid paid",
			input: NewPaymentInput{ProjectID: "1", Amount: 150000, Description: "Initial deposit", DueDate: due, Status: StatusPaid, PaidDate: due},
		},
		{
			name:       "empty",
			input:      NewPaymentInput{},
			wantFields: []string{"project_id", "amount", "description", "due_date"},
		},
		{
			name:  "amount at the cap",
			input: NewPaymentInput{ProjectID: "1", Amount: money.Max, Description: "x", DueDate: due},
		},
		{
			name:       "amount over the cap",
			input:      NewPaymentInput{ProjectID: "1", Amount: money.Max + 1, Description: "x", DueDate: due},
			wantFields: []string{"amount"},
		},
		{
			name:       "paid without date",
			input:      NewPaymentInput{ProjectID: "1", Amount: 1, Description: "x", DueDate: due, Status: StatusPaid},
			wantFields: []string{"paid_date"},
		},
		{
			name:       "unknown status",
			input:      NewPaymentInput{ProjectID: "1", Amount: 1, Description: "x", DueDate: due, Status: "overdue"},
			wantFields: []string{"status"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}
			var verr *validation.Error
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, verr.Fields, f)
			}
		})
	}
}

func TestNewPaymentInput_Build_DropsPaidDateWhenUnpaid(t *testing.T) {
	due := calendar.NewDate(2023, time.November, 1)
	p := NewPaymentInput{
		ProjectID: "1", Amount: 100, Description: " Deposit ", DueDate: due,
		Status: StatusToBePaid, PaidDate: due,
	}.Build("pay-1", "owner", "client-1", time.Now())

	assert.Equal(t, StatusToBePaid, p.Status)
	assert.True(t, p.PaidDate.IsZero())
	assert.Equal(t, "Deposit", p.Description)
	assert.Equal(t, "client-1", p.ClientID)
}

func TestPayment_MarkPaid(t *testing.T) {
	p := &Payment{Status: StatusToBePaid}
	require.Error(t, p.MarkPaid(calendar.Date{}))

	d := calendar.NewDate(2023, time.December, 2)
	require.NoError(t, p.MarkPaid(d))
	assert.Equal(t, StatusPaid, p.Status)
	assert.Equal(t, d, p.PaidDate)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2023, time.December, 10, 0, 0, 0, 0, time.UTC)
	budgets := []Budget{
		{ProjectID: "1", ProjectName: "Brand Identity Redesign", ClientName: "Acme Inc", Budget: 450000},
		{ProjectID: "2", ProjectName: "Website Development", ClientName: "TechStart", Budget: 1200000},
	}
	payments := []*Payment{
		{ProjectID: "1", Amount: 150000, Status: StatusPaid, DueDate: calendar.NewDate(2023, time.October, 1), PaidDate: calendar.NewDate(2023, time.October, 2)},
		{ProjectID: "1", Amount: 150000, Status: StatusToBePaid, DueDate: calendar.NewDate(2023, time.December, 15)},
		{ProjectID: "2", Amount: 300000, Status: StatusPaid, DueDate: calendar.NewDate(2023, time.May, 1), PaidDate: calendar.NewDate(2023, time.May, 1)},
		{ProjectID: "2", Amount: 400000, Status: StatusToBePaid, DueDate: calendar.NewDate(2024, time.January, 15)},
	}

	s := Summarize(budgets, payments, now)

	assert.Equal(t, money.Cents(1650000), s.TotalBudget)
	assert.Equal(t, money.Cents(450000), s.TotalPaid)
	assert.Equal(t, money.Cents(550000), s.TotalToBePaid)

	want := []ProjectFinance{
		{ProjectID: "1", ProjectName: "Brand Identity Redesign", ClientName: "Acme Inc", Budget: 450000, Paid: 150000, ToBePaid: 150000, PercentPaid: 33.33},
		{ProjectID: "2", ProjectName: "Website Development", ClientName: "TechStart", Budget: 1200000, Paid: 300000, ToBePaid: 400000, PercentPaid: 25},
	}
	if diff := cmp.Diff(want, s.Projects); diff != "" {
		t.Errorf("projects mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, s.Monthly, MonthsInSummary)
	assert.Equal(t, "2023-07", s.Monthly[0].Month)
	assert.Equal(t, "2023-12", s.Monthly[5].Month)
	assert.Equal(t, "Oct", s.Monthly[3].Label)
	assert.Equal(t, money.Cents(150000), s.Monthly[3].Paid)
	assert.Equal(t, money.Cents(150000), s.Monthly[5].ToBePaid)
	// May and January fall outside the window.
	var windowPaid, windowDue money.Cents
	for _, m := range s.Monthly {
		windowPaid += m.Paid
		windowDue += m.ToBePaid
	}
	assert.Equal(t, money.Cents(150000), windowPaid)
	assert.Equal(t, money.Cents(150000), windowDue)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil, time.Now())
	assert.Zero(t, s.TotalBudget)
	assert.Zero(t, s.PercentPaid)
	assert.NotNil(t, s.Projects)
	assert.Len(t, s.Monthly, MonthsInSummary)
}

func TestMonthBuckets_YearBoundary(t *testing.T) {
	months := monthBuckets(time.Date(2024, time.February, 29, 23, 0, 0, 0, time.UTC))
	got := make([]string, len(months))
	for i, m := range months {
		got[i] = m.Month
	}
	assert.Equal(t, []string{"2023-09", "2023-10", "2023-11", "2023-12", "2024-01", "2024-02"}, got)
}

// TestProperty_TotalsMatchPayments verifies paid plus outstanding always
// equals the sum of all payment amounts, and per-project rows add up to the
// totals when every payment belongs to a known project.
func TestProperty_TotalsMatchPayments(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numProjects := rapid.IntRange(1, 5).Draw(t, "numProjects")
		budgets := make([]Budget, numProjects)
		for i := range budgets {
			budgets[i] = Budget{
				ProjectID: fmt.Sprintf("p%d", i),
				Budget:    money.Cents(rapid.Int64Range(1, 10_000_000).Draw(t, fmt.Sprintf("budget-%d", i))),
			}
		}

		numPayments := rapid.IntRange(0, 30).Draw(t, "numPayments")
		var all money.Cents
		payments := make([]*Payment, numPayments)
		for i := range payments {
			amount := money.Cents(rapid.Int64Range(1, 1_000_000).Draw(t, fmt.Sprintf("amount-%d", i)))
			all += amount
			status := StatusToBePaid
			if rapid.Bool().Draw(t, fmt.Sprintf("paid-%d", i)) {
				status = StatusPaid
			}
			payments[i] = &Payment{
				ProjectID: budgets[rapid.IntRange(0, numProjects-1).Draw(t, fmt.Sprintf("project-%d", i))].ProjectID,
				Amount:    amount,
				Status:    status,
				DueDate:   calendar.NewDate(2023, time.Month(rapid.IntRange(1, 12).Draw(t, fmt.Sprintf("month-%d", i))), 1),
				PaidDate:  calendar.NewDate(2023, time.June, 1),
			}
		}

		s := Summarize(budgets, payments, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC))
		if s.TotalPaid+s.TotalToBePaid != all {
			t.Fatalf("paid %d + to be paid %d != %d", s.TotalPaid, s.TotalToBePaid, all)
		}

		var rowsPaid, rowsDue, rowsBudget money.Cents
		for _, row := range s.Projects {
			rowsPaid += row.Paid
			rowsDue += row.ToBePaid
			rowsBudget += row.Budget
		}
		if rowsPaid != s.TotalPaid || rowsDue != s.TotalToBePaid || rowsBudget != s.TotalBudget {
			t.Fatalf("rows do not add up to totals: %+v", s)
		}
	})
}
