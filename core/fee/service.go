package fee

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound      = errors.New("fee not found")
	ErrInvalidAmount = errors.New("amount must be positive")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateFee(ctx context.Context, f Fee) (Fee, error)
		GetFeeByID(ctx context.Context, id int) (Fee, error)
		// FilterFees applies AND operation on available QueryFilter fields.
		FilterFees(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Fee, error)
		UpdateFee(ctx context.Context, f Fee) (Fee, error)
		DeleteFeesByID(ctx context.Context, ids ...int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordCharge creates a new billable item with its status derived.
// The input must have been validated first; no partial writes happen on
// invalid input.
func (svc *Service) RecordCharge(ctx context.Context, nf NewFee) (Fee, error) {
	now := nowFunc().UTC()
	f := Fee{
		UUID:         uuid.New().String(),
		StudentID:    nf.StudentID,
		Category:     nf.Category,
		Amount:       nf.Amount,
		LateFee:      nf.LateFee,
		Discount:     nf.Discount,
		DueDate:      core.Today(nf.DueDate),
		Semester:     nf.Semester,
		AcademicYear: nf.AcademicYear,
		Notes:        nf.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.DeriveStatus(now)
	return svc.repo.CreateFee(ctx, f)
}

// BulkRecordCharges records a batch of pre-validated charges. Callers
// validate every row before the first write so that invalid input causes
// no writes at all.
func (svc *Service) BulkRecordCharges(ctx context.Context, nfs []NewFee) ([]Fee, error) {
	fees := make([]Fee, 0, len(nfs))
	for _, nf := range nfs {
		f, err := svc.RecordCharge(ctx, nf)
		if err != nil {
			return fees, err
		}
		fees = append(fees, f)
	}
	return fees, nil
}

// RecordPayment adds p.Amount to the item's paid amount and re-derives
// its status. The payment date defaults to today.
func (svc *Service) RecordPayment(ctx context.Context, id int, p Payment) (Fee, error) {
	if !p.Amount.IsPositive() {
		return Fee{}, core.NewValidationError(ErrInvalidAmount,
			core.FieldError{Field: "amount", Error: ErrInvalidAmount.Error()})
	}

	f, err := svc.repo.GetFeeByID(ctx, id)
	if err != nil {
		return Fee{}, err
	}

	now := nowFunc().UTC()
	payDate := p.PaymentDate
	if payDate.IsZero() {
		payDate = now
	}

	f.PaidAmount = f.PaidAmount.Add(p.Amount)
	f.PaymentDate = null.TimeFrom(core.Today(payDate))
	f.PaymentMethod = p.Method
	f.TransactionRef = p.TransactionRef
	f.CollectedBy = p.CollectedBy
	f.UpdatedAt = now
	f.DeriveStatus(now)
	return svc.repo.UpdateFee(ctx, f)
}

// AccrueLateFee recomputes the item's late fee from scratch:
// dailyRate * max(0, days overdue). It overwrites rather than accumulates,
// so recomputing for the same day is idempotent. Settled items are left
// untouched.
func (svc *Service) AccrueLateFee(ctx context.Context, id int, dailyRate decimal.Decimal, today time.Time) (Fee, error) {
	f, err := svc.repo.GetFeeByID(ctx, id)
	if err != nil {
		return Fee{}, err
	}
	if f.DeriveStatus(today) == StatusPaid {
		return f, nil
	}

	days := int64(core.Today(today).Sub(core.Today(f.DueDate)).Hours() / 24)
	if days < 0 {
		days = 0
	}
	f.LateFee = dailyRate.Mul(decimal.NewFromInt(days))
	f.UpdatedAt = nowFunc().UTC()
	f.DeriveStatus(today)
	return svc.repo.UpdateFee(ctx, f)
}

// Overdue returns all unpaid items past their due date as of today, with
// statuses re-derived.
func (svc *Service) Overdue(ctx context.Context, today time.Time) ([]Fee, error) {
	fees, err := svc.repo.FilterFees(ctx, QueryFilter{DueTo: core.Today(today).AddDate(0, 0, -1)})
	if err != nil {
		return nil, err
	}
	// every item here is past due; keep whatever is not fully settled
	overdue := make([]Fee, 0, len(fees))
	for _, f := range fees {
		if f.DeriveStatus(today) != StatusPaid {
			overdue = append(overdue, f)
		}
	}
	return overdue, nil
}

// StudentSummary aggregates a student's fees, optionally narrowed by
// semester/academic year.
func (svc *Service) StudentSummary(ctx context.Context, studentID int, filter QueryFilter) (Summary, []Fee, error) {
	filter.StudentID = studentID
	fees, err := svc.repo.FilterFees(ctx, filter)
	if err != nil {
		return Summary{}, nil, err
	}
	return Summarize(fees), fees, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Fee, error) {
	return svc.repo.GetFeeByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Fee, error) {
	return svc.repo.FilterFees(ctx, filter, ordering...)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteFeesByID(ctx, ids...)
}
