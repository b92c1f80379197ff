package domain

import (
	"time"

	"github.com/freelog/freelog/internal/calendar"
	"github.com/freelog/freelog/internal/money"
)

// MonthsInSummary is how many calendar months the monthly breakdown covers.
const MonthsInSummary = 6

// Budget is the part of a project the finance summary needs.
type Budget struct {
	ProjectID   string
	ProjectName string
	ClientName  string
	Budget      money.Cents
}

// ProjectFinance is the per-project row of a summary.
type ProjectFinance struct {
	ProjectID   string      `json:"project_id"`
	ProjectName string      `json:"project_name"`
	ClientName  string      `json:"client_name"`
	Budget      money.Cents `json:"budget"`
	Paid        money.Cents `json:"paid"`
	ToBePaid    money.Cents `json:"to_be_paid"`
	PercentPaid float64     `json:"percent_paid"`
}

// MonthFinance is one calendar month of the monthly breakdown. Paid amounts
// are bucketed by paid date, outstanding amounts by due date.
type MonthFinance struct {
	Month    string      `json:"month"`
	Label    string      `json:"label"`
	Paid     money.Cents `json:"paid"`
	ToBePaid money.Cents `json:"to_be_paid"`
}

// Summary aggregates budgets and payments.
type Summary struct {
	TotalBudget   money.Cents      `json:"total_budget"`
	TotalPaid     money.Cents      `json:"total_paid"`
	TotalToBePaid money.Cents      `json:"total_to_be_paid"`
	PercentPaid   float64          `json:"percent_paid"`
	Projects      []ProjectFinance `json:"projects"`
	Monthly       []MonthFinance   `json:"monthly"`
}

// Summarize builds the finance summary for a set of projects and their
// payments. Payments for projects not in budgets still count toward totals.
func Summarize(budgets []Budget, payments []*Payment, now time.Time) Summary {
	s := Summary{
		Projects: make([]ProjectFinance, 0, len(budgets)),
		Monthly:  monthBuckets(now),
	}

	index := make(map[string]int, len(budgets))
	for _, b := range budgets {
		index[b.ProjectID] = len(s.Projects)
		s.Projects = append(s.Projects, ProjectFinance{
			ProjectID:   b.ProjectID,
			ProjectName: b.ProjectName,
			ClientName:  b.ClientName,
			Budget:      b.Budget,
		})
		s.TotalBudget += b.Budget
	}

	months := make(map[string]int, len(s.Monthly))
	for i, m := range s.Monthly {
		months[m.Month] = i
	}

	for _, p := range payments {
		row, hasRow := index[p.ProjectID]
		if p.Status == StatusPaid {
			s.TotalPaid += p.Amount
			if hasRow {
				s.Projects[row].Paid += p.Amount
			}
			if i, ok := months[monthKey(p.PaidDate)]; ok && !p.PaidDate.IsZero() {
				s.Monthly[i].Paid += p.Amount
			}
			continue
		}
		s.TotalToBePaid += p.Amount
		if hasRow {
			s.Projects[row].ToBePaid += p.Amount
		}
		if i, ok := months[monthKey(p.DueDate)]; ok && !p.DueDate.IsZero() {
			s.Monthly[i].ToBePaid += p.Amount
		}
	}

	for i := range s.Projects {
		s.Projects[i].PercentPaid = money.Percent(s.Projects[i].Paid, s.Projects[i].Budget)
	}
	s.PercentPaid = money.Percent(s.TotalPaid, s.TotalBudget)
	return s
}

// monthBuckets returns the MonthsInSummary calendar months ending with the
// month of now, oldest first.
func monthBuckets(now time.Time) []MonthFinance {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]MonthFinance, MonthsInSummary)
	for i := range out {
		m := first.AddDate(0, i-(MonthsInSummary-1), 0)
		out[i] = MonthFinance{
			Month: m.Format("2006-01"),
			Label: m.Format("Jan"),
		}
	}
	return out
}

func monthKey(d calendar.Date) string {
	return d.Time().Format("2006-01")
}
