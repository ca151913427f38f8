// Package report composes fee, grade and attendance data into read-side
// summaries. Everything here is pure: full input in, fresh value out, no
// repositories and no hidden caching.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/grade"
)

var hundred = decimal.NewFromInt(100)

// GroupBy selects the grouping key for performance reports.
type GroupBy string

const (
	GroupByClass   GroupBy = "class"
	GroupBySubject GroupBy = "subject"
)

type (
	// GroupPerformance is the per-group slice of a performance report.
	GroupPerformance struct {
		Stats   grade.Stats    `json:"stats"`
		Letters map[string]int `json:"letters"` // letter -> count
	}

	// FinancialSummary aggregates a set of billable items.
	FinancialSummary struct {
		fee.Summary
		CollectionRate decimal.Decimal `json:"collection_rate"` // percentage
	}

	// Dashboard is the composite snapshot served to the admin landing page.
	Dashboard struct {
		CollectionRate     decimal.Decimal `json:"collection_rate"`
		AttendanceRate     decimal.Decimal `json:"attendance_rate"`
		AveragePerformance decimal.Decimal `json:"average_performance"`
		OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	}
)

// ClassPerformance groups score records by class or subject and
// aggregates each group. Empty input yields an empty map.
func ClassPerformance(records []grade.ScoreRecord, groupBy GroupBy, passMark decimal.Decimal) map[int]GroupPerformance {
	groups := make(map[int][]grade.ScoreRecord)
	for _, rec := range records {
		key := rec.ClassID
		if groupBy == GroupBySubject {
			key = rec.SubjectID
		}
		groups[key] = append(groups[key], rec)
	}

	perf := make(map[int]GroupPerformance, len(groups))
	for key, recs := range groups {
		letters := make(map[string]int)
		for _, rec := range recs {
			letters[rec.Letter]++
		}
		perf[key] = GroupPerformance{
			Stats:   grade.Aggregate(recs, passMark),
			Letters: letters,
		}
	}
	return perf
}

// CollectionRate is paid/due*100 across a set of fees, 0 when nothing is
// due (a normal case, not an error).
func CollectionRate(fees []fee.Fee) decimal.Decimal {
	var due, paid decimal.Decimal
	for _, f := range fees {
		due = due.Add(f.Amount)
		paid = paid.Add(f.PaidAmount)
	}
	if !due.IsPositive() {
		return decimal.Zero
	}
	return paid.Div(due).Mul(hundred).Round(2)
}

// Finances folds fees into totals plus the collection rate.
func Finances(fees []fee.Fee) FinancialSummary {
	return FinancialSummary{
		Summary:        fee.Summarize(fees),
		CollectionRate: CollectionRate(fees),
	}
}

// AttendanceRate rolls up attendance records into a percentage.
func AttendanceRate(days []attendance.Day) decimal.Decimal {
	return attendance.Percentage(days, time.Time{}, time.Time{})
}

// BuildDashboard composes the landing-page snapshot from full snapshots
// of the three record sets.
func BuildDashboard(fees []fee.Fee, records []grade.ScoreRecord, days []attendance.Day, passMark decimal.Decimal) Dashboard {
	fin := Finances(fees)
	return Dashboard{
		CollectionRate:     fin.CollectionRate,
		AttendanceRate:     AttendanceRate(days),
		AveragePerformance: grade.Aggregate(records, passMark).Average,
		OutstandingBalance: fin.TotalBalance,
	}
}
