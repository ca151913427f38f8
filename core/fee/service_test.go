package fee

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
)

// fakeRepo is a minimal in-memory Repository for exercising the ledger.
type fakeRepo struct {
	seq   int
	table map[int]Fee
}

func newFakeRepo() *fakeRepo { return &fakeRepo{table: make(map[int]Fee)} }

func (r *fakeRepo) CreateFee(_ context.Context, f Fee) (Fee, error) {
	r.seq++
	f.ID = r.seq
	r.table[f.ID] = f
	return f, nil
}

func (r *fakeRepo) GetFeeByID(_ context.Context, id int) (Fee, error) {
	if f, ok := r.table[id]; ok {
		return f, nil
	}
	return Fee{}, ErrNotFound
}

func (r *fakeRepo) FilterFees(_ context.Context, filter QueryFilter, _ ...core.DBOrdering) ([]Fee, error) {
	fees := make([]Fee, 0, len(r.table))
	for i := 1; i <= r.seq; i++ {
		f, ok := r.table[i]
		if !ok {
			continue
		}
		if filter.StudentID != 0 && f.StudentID != filter.StudentID {
			continue
		}
		if filter.Category != "" && f.Category != filter.Category {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if !filter.DueFrom.IsZero() && f.DueDate.Before(filter.DueFrom) {
			continue
		}
		if !filter.DueTo.IsZero() && f.DueDate.After(filter.DueTo) {
			continue
		}
		fees = append(fees, f)
	}
	return fees, nil
}

func (r *fakeRepo) UpdateFee(_ context.Context, f Fee) (Fee, error) {
	if _, ok := r.table[f.ID]; !ok {
		return Fee{}, ErrNotFound
	}
	r.table[f.ID] = f
	return f, nil
}

func (r *fakeRepo) DeleteFeesByID(_ context.Context, ids ...int) error {
	for _, id := range ids {
		delete(r.table, id)
	}
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestDeriveStatus(t *testing.T) {
	today := date(2024, 1, 10)

	tests := []struct {
		name string
		fee  Fee
		want Status
	}{
		{
			name: "unpaid before due date is pending",
			fee:  Fee{Amount: dec("1000"), DueDate: date(2024, 2, 1)},
			want: StatusPending,
		},
		{
			name: "unpaid on due date is pending",
			fee:  Fee{Amount: dec("1000"), DueDate: today},
			want: StatusPending,
		},
		{
			name: "unpaid past due date is overdue",
			fee:  Fee{Amount: dec("1000"), DueDate: date(2024, 1, 1)},
			want: StatusOverdue,
		},
		{
			name: "partly paid past due date is partial",
			fee:  Fee{Amount: dec("1000"), PaidAmount: dec("400"), DueDate: date(2024, 1, 1)},
			want: StatusPartial,
		},
		{
			name: "fully paid is paid",
			fee:  Fee{Amount: dec("1000"), PaidAmount: dec("1000"), DueDate: date(2024, 2, 1)},
			want: StatusPaid,
		},
		{
			name: "paid against amount plus late fee minus discount",
			fee: Fee{
				Amount: dec("1000"), LateFee: dec("90"), Discount: dec("50"),
				PaidAmount: dec("1040"), DueDate: date(2024, 1, 1),
			},
			want: StatusPaid,
		},
		{
			name: "discount alone never settles a positive amount",
			fee:  Fee{Amount: dec("1000"), Discount: dec("50"), DueDate: date(2024, 1, 1)},
			want: StatusOverdue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fee.DeriveStatus(today); got != tt.want {
				t.Errorf("DeriveStatus() = %v, want %v", got, tt.want)
			}
			// idempotent: a second derivation with the same inputs agrees
			if got := tt.fee.DeriveStatus(today); got != tt.want {
				t.Errorf("DeriveStatus() second call = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBalance(t *testing.T) {
	f := Fee{Amount: dec("1000"), LateFee: dec("90"), Discount: dec("50"), PaidAmount: dec("400")}
	if got := f.Balance(); !got.Equal(dec("640")) {
		t.Errorf("Balance() = %s, want 640", got)
	}

	// no floor at zero: overpayment yields a credit
	f.PaidAmount = dec("1100")
	if got := f.Balance(); !got.Equal(dec("-60")) {
		t.Errorf("Balance() = %s, want -60", got)
	}
}

func TestService_RecordCharge(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	nowFunc = func() time.Time { return date(2024, 1, 10) }
	defer func() { nowFunc = time.Now }()

	f, err := svc.RecordCharge(ctx, NewFee{
		StudentID: 1,
		Category:  CategoryTuition,
		Amount:    dec("1000"),
		DueDate:   date(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("RecordCharge() failed: %v", err)
	}
	if f.Status != StatusOverdue {
		t.Errorf("Status = %v, want %v", f.Status, StatusOverdue)
	}
	if f.UUID == "" {
		t.Error("UUID not set")
	}
	if !f.Balance().Equal(dec("1000")) {
		t.Errorf("Balance() = %s, want 1000", f.Balance())
	}
}

func TestService_RecordPayment(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	nowFunc = func() time.Time { return date(2024, 1, 10) }
	defer func() { nowFunc = time.Now }()

	charge := func(t *testing.T, amount string, due time.Time) Fee {
		f, err := svc.RecordCharge(ctx, NewFee{StudentID: 1, Category: CategoryTuition, Amount: dec(amount), DueDate: due})
		if err != nil {
			t.Fatalf("RecordCharge() failed: %v", err)
		}
		return f
	}

	t.Run("full payment settles same day", func(t *testing.T) {
		f := charge(t, "1000", date(2024, 1, 10))
		f, err := svc.RecordPayment(ctx, f.ID, Payment{Amount: dec("1000"), Method: MethodCash})
		if err != nil {
			t.Fatalf("RecordPayment() failed: %v", err)
		}
		if f.Status != StatusPaid {
			t.Errorf("Status = %v, want %v", f.Status, StatusPaid)
		}
		if !f.Balance().IsZero() {
			t.Errorf("Balance() = %s, want 0", f.Balance())
		}
		if !f.PaymentDate.Valid {
			t.Error("PaymentDate not set")
		}
	})

	t.Run("partial payments accumulate", func(t *testing.T) {
		f := charge(t, "1000", date(2024, 2, 1))
		f, err := svc.RecordPayment(ctx, f.ID, Payment{Amount: dec("400"), Method: MethodMobileMoney})
		if err != nil {
			t.Fatalf("RecordPayment() failed: %v", err)
		}
		if f.Status != StatusPartial {
			t.Errorf("Status = %v, want %v", f.Status, StatusPartial)
		}
		f, err = svc.RecordPayment(ctx, f.ID, Payment{Amount: dec("600"), Method: MethodMobileMoney})
		if err != nil {
			t.Fatalf("RecordPayment() failed: %v", err)
		}
		if f.Status != StatusPaid {
			t.Errorf("Status = %v, want %v", f.Status, StatusPaid)
		}
	})

	t.Run("non-positive amount is rejected before any write", func(t *testing.T) {
		f := charge(t, "1000", date(2024, 2, 1))
		if _, err := svc.RecordPayment(ctx, f.ID, Payment{Amount: dec("0"), Method: MethodCash}); err == nil {
			t.Fatal("RecordPayment() expected error, got nil")
		}
		got, _ := repo.GetFeeByID(ctx, f.ID)
		if !got.PaidAmount.IsZero() {
			t.Errorf("PaidAmount = %s, want 0 (no partial write)", got.PaidAmount)
		}
	})

	t.Run("unknown fee", func(t *testing.T) {
		if _, err := svc.RecordPayment(ctx, 999, Payment{Amount: dec("10"), Method: MethodCash}); err != ErrNotFound {
			t.Errorf("RecordPayment() error = %v, want %v", err, ErrNotFound)
		}
	})
}

func TestService_AccrueLateFee(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	nowFunc = func() time.Time { return date(2024, 1, 10) }
	defer func() { nowFunc = time.Now }()

	f, err := svc.RecordCharge(ctx, NewFee{StudentID: 1, Category: CategoryTuition, Amount: dec("1000"), DueDate: date(2024, 1, 1)})
	if err != nil {
		t.Fatalf("RecordCharge() failed: %v", err)
	}

	today := date(2024, 1, 10)
	rate := dec("10")

	f, err = svc.AccrueLateFee(ctx, f.ID, rate, today)
	if err != nil {
		t.Fatalf("AccrueLateFee() failed: %v", err)
	}
	if !f.LateFee.Equal(dec("90")) {
		t.Errorf("LateFee = %s, want 90", f.LateFee)
	}
	if f.Status != StatusOverdue {
		t.Errorf("Status = %v, want %v", f.Status, StatusOverdue)
	}

	// idempotent: recomputing for the same day overwrites, never adds
	f, err = svc.AccrueLateFee(ctx, f.ID, rate, today)
	if err != nil {
		t.Fatalf("AccrueLateFee() failed: %v", err)
	}
	if !f.LateFee.Equal(dec("90")) {
		t.Errorf("LateFee after recompute = %s, want 90", f.LateFee)
	}

	// a later day recomputes from scratch
	f, err = svc.AccrueLateFee(ctx, f.ID, rate, date(2024, 1, 15))
	if err != nil {
		t.Fatalf("AccrueLateFee() failed: %v", err)
	}
	if !f.LateFee.Equal(dec("140")) {
		t.Errorf("LateFee = %s, want 140", f.LateFee)
	}

	// settled items are left untouched
	if _, err = svc.RecordPayment(ctx, f.ID, Payment{Amount: dec("1140"), Method: MethodCash}); err != nil {
		t.Fatalf("RecordPayment() failed: %v", err)
	}
	f, err = svc.AccrueLateFee(ctx, f.ID, rate, date(2024, 2, 1))
	if err != nil {
		t.Fatalf("AccrueLateFee() failed: %v", err)
	}
	if !f.LateFee.Equal(dec("140")) {
		t.Errorf("LateFee on paid item = %s, want 140", f.LateFee)
	}

	// not yet due: recompute clamps at zero
	f2, err := svc.RecordCharge(ctx, NewFee{StudentID: 2, Category: CategoryLibrary, Amount: dec("100"), DueDate: date(2024, 3, 1)})
	if err != nil {
		t.Fatalf("RecordCharge() failed: %v", err)
	}
	f2, err = svc.AccrueLateFee(ctx, f2.ID, rate, today)
	if err != nil {
		t.Fatalf("AccrueLateFee() failed: %v", err)
	}
	if !f2.LateFee.IsZero() {
		t.Errorf("LateFee = %s, want 0", f2.LateFee)
	}
}

func TestService_Overdue(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	nowFunc = func() time.Time { return date(2024, 1, 10) }
	defer func() { nowFunc = time.Now }()

	mk := func(t *testing.T, student int, amount, paid string, due time.Time) {
		f, err := svc.RecordCharge(ctx, NewFee{StudentID: student, Category: CategoryTuition, Amount: dec(amount), DueDate: due})
		if err != nil {
			t.Fatalf("RecordCharge() failed: %v", err)
		}
		if paid != "" {
			if _, err := svc.RecordPayment(ctx, f.ID, Payment{Amount: dec(paid), Method: MethodCash}); err != nil {
				t.Fatalf("RecordPayment() failed: %v", err)
			}
		}
	}

	mk(t, 1, "1000", "", date(2024, 1, 1))     // overdue
	mk(t, 2, "1000", "400", date(2024, 1, 5))  // partial, past due
	mk(t, 3, "1000", "1000", date(2024, 1, 1)) // settled
	mk(t, 4, "1000", "", date(2024, 2, 1))     // pending

	overdue, err := svc.Overdue(ctx, date(2024, 1, 10))
	if err != nil {
		t.Fatalf("Overdue() failed: %v", err)
	}
	if len(overdue) != 2 {
		t.Fatalf("len(overdue) = %d, want 2", len(overdue))
	}
	for _, f := range overdue {
		if f.Status == StatusPaid || f.Status == StatusPending {
			t.Errorf("unexpected status %v in overdue set", f.Status)
		}
	}
}

func TestSummarize(t *testing.T) {
	today := date(2024, 1, 10)
	fees := []Fee{
		{Amount: dec("1000"), PaidAmount: dec("1000"), Category: CategoryTuition, DueDate: date(2024, 1, 1)},
		{Amount: dec("500"), PaidAmount: dec("200"), Category: CategoryTuition, DueDate: date(2024, 1, 1)},
		{Amount: dec("300"), LateFee: dec("30"), Category: CategoryLibrary, DueDate: date(2024, 1, 1)},
	}
	for i := range fees {
		fees[i].DeriveStatus(today)
	}

	s := Summarize(fees)
	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if !s.TotalAmount.Equal(dec("1800")) {
		t.Errorf("TotalAmount = %s, want 1800", s.TotalAmount)
	}
	if !s.TotalPaid.Equal(dec("1200")) {
		t.Errorf("TotalPaid = %s, want 1200", s.TotalPaid)
	}
	if !s.TotalBalance.Equal(dec("630")) {
		t.Errorf("TotalBalance = %s, want 630", s.TotalBalance)
	}
	if got := s.ByStatus[StatusPaid].Count; got != 1 {
		t.Errorf("ByStatus[paid].Count = %d, want 1", got)
	}
	if got := s.ByCategory[CategoryTuition].Count; got != 2 {
		t.Errorf("ByCategory[tuition].Count = %d, want 2", got)
	}

	// empty input is a normal case
	empty := Summarize(nil)
	if empty.Count != 0 || !empty.TotalAmount.IsZero() {
		t.Errorf("Summarize(nil) = %+v, want zero summary", empty)
	}
}
