package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/grade"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestClassPerformance(t *testing.T) {
	records := []grade.ScoreRecord{
		{ClassID: 1, SubjectID: 10, Percentage: dec("90"), Letter: "A"},
		{ClassID: 1, SubjectID: 11, Percentage: dec("40"), Letter: "D+"},
		{ClassID: 2, SubjectID: 10, Percentage: dec("60"), Letter: "B-"},
	}

	byClass := ClassPerformance(records, GroupByClass, dec("50"))
	if len(byClass) != 2 {
		t.Fatalf("groups = %d, want 2", len(byClass))
	}
	c1 := byClass[1]
	if c1.Stats.Count != 2 {
		t.Errorf("class 1 count = %d, want 2", c1.Stats.Count)
	}
	if !c1.Stats.Average.Equal(dec("65")) {
		t.Errorf("class 1 average = %s, want 65", c1.Stats.Average)
	}
	if !c1.Stats.PassRate.Equal(dec("50")) {
		t.Errorf("class 1 pass rate = %s, want 50", c1.Stats.PassRate)
	}
	if c1.Letters["A"] != 1 || c1.Letters["D+"] != 1 {
		t.Errorf("class 1 letters = %v", c1.Letters)
	}

	bySubject := ClassPerformance(records, GroupBySubject, dec("50"))
	if bySubject[10].Stats.Count != 2 {
		t.Errorf("subject 10 count = %d, want 2", bySubject[10].Stats.Count)
	}

	if got := ClassPerformance(nil, GroupByClass, dec("50")); len(got) != 0 {
		t.Errorf("ClassPerformance(nil) = %v, want empty", got)
	}
}

func TestCollectionRate(t *testing.T) {
	fees := []fee.Fee{
		{Amount: dec("1000"), PaidAmount: dec("600")},
		{Amount: dec("1000"), PaidAmount: dec("900")},
	}
	if got := CollectionRate(fees); !got.Equal(dec("75")) {
		t.Errorf("CollectionRate() = %s, want 75", got)
	}

	// nothing due: 0, not an error
	if got := CollectionRate(nil); !got.IsZero() {
		t.Errorf("CollectionRate(nil) = %s, want 0", got)
	}
}

func TestBuildDashboard(t *testing.T) {
	fees := []fee.Fee{
		{Amount: dec("1000"), PaidAmount: dec("500")},
	}
	records := []grade.ScoreRecord{
		{Percentage: dec("80")},
		{Percentage: dec("40")},
	}
	days := []attendance.Day{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Status: attendance.StatusPresent},
		{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Status: attendance.StatusAbsent},
	}

	d := BuildDashboard(fees, records, days, dec("50"))
	if !d.CollectionRate.Equal(dec("50")) {
		t.Errorf("CollectionRate = %s, want 50", d.CollectionRate)
	}
	if !d.AttendanceRate.Equal(dec("50")) {
		t.Errorf("AttendanceRate = %s, want 50", d.AttendanceRate)
	}
	if !d.AveragePerformance.Equal(dec("60")) {
		t.Errorf("AveragePerformance = %s, want 60", d.AveragePerformance)
	}
	if !d.OutstandingBalance.Equal(dec("500")) {
		t.Errorf("OutstandingBalance = %s, want 500", d.OutstandingBalance)
	}

	// reports over zero records are a normal case
	empty := BuildDashboard(nil, nil, nil, dec("50"))
	if !empty.CollectionRate.IsZero() || !empty.AttendanceRate.IsZero() || !empty.AveragePerformance.IsZero() {
		t.Errorf("BuildDashboard(nil...) = %+v, want zero rates", empty)
	}
}
