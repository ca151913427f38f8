package fee

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

// Fee categories
const (
	CategoryTuition   = "tuition"
	CategoryLibrary   = "library"
	CategoryLab       = "lab"
	CategoryTransport = "transport"
	CategoryExam      = "exam"
	CategoryOther     = "other"
)

// Payment methods
const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodOnline       = "online"
	MethodBankTransfer = "bank_transfer"
	MethodMobileMoney  = "mobile_money"
)

// Status is always a pure function of (amount, late fee, discount, paid
// amount, due date, today). It is re-derived after every mutation and
// never set directly.
type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Fee is a single billable item owed by a student for one category.
type Fee struct {
	ID             int             `json:"id"`
	UUID           string          `json:"uuid"`
	StudentID      int             `json:"student_id"`
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	LateFee        decimal.Decimal `json:"late_fee"`
	Discount       decimal.Decimal `json:"discount"`
	DueDate        time.Time       `json:"due_date"`
	PaymentDate    null.Time       `json:"payment_date"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
	TransactionRef string          `json:"transaction_ref,omitempty"`
	Status         Status          `json:"status"`
	Semester       string          `json:"semester,omitempty"`
	AcademicYear   string          `json:"academic_year,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CollectedBy    string          `json:"collected_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"` // UTC
	UpdatedAt      time.Time       `json:"updated_at"` // UTC
}

// Balance returns amount + late fee - discount - paid amount.
// It is not floored at zero: a negative balance means overpayment (credit).
func (f *Fee) Balance() decimal.Decimal {
	return f.Amount.Add(f.LateFee).Sub(f.Discount).Sub(f.PaidAmount)
}

// payable returns the total the student must settle: amount + late fee - discount.
func (f *Fee) payable() decimal.Decimal {
	return f.Amount.Add(f.LateFee).Sub(f.Discount)
}

// DeriveStatus recomputes and sets f.Status from the current monetary
// fields and due date. Must be called after every mutation.
func (f *Fee) DeriveStatus(today time.Time) Status {
	today = core.Today(today)
	switch {
	case f.PaidAmount.GreaterThanOrEqual(f.payable()):
		f.Status = StatusPaid
	case f.PaidAmount.IsPositive():
		f.Status = StatusPartial
	case core.Today(f.DueDate).Before(today):
		f.Status = StatusOverdue
	default:
		f.Status = StatusPending
	}
	return f.Status
}

// NewFee contains information needed to record a new charge.
type NewFee struct {
	StudentID    int             `json:"student_id" validate:"required"`
	Category     string          `json:"category" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	LateFee      decimal.Decimal `json:"late_fee"`
	Discount     decimal.Decimal `json:"discount"`
	DueDate      time.Time       `json:"due_date"`
	Semester     string          `json:"semester"`
	AcademicYear string          `json:"academic_year"`
	Notes        string          `json:"notes"`
}

func (nf *NewFee) Validate(validate *validator.Validate) error {
	nf.Category = core.CleanString(nf.Category, true /* lower */)
	nf.Semester = core.CleanString(nf.Semester)
	nf.AcademicYear = core.CleanString(nf.AcademicYear)

	if err := validate.Struct(nf); err != nil {
		return err
	}

	var flds []core.FieldError
	if nf.Amount.IsNegative() {
		flds = append(flds, core.FieldError{Field: "amount", Error: ErrInvalidAmount.Error()})
	}
	if nf.LateFee.IsNegative() {
		flds = append(flds, core.FieldError{Field: "late_fee", Error: ErrInvalidAmount.Error()})
	}
	if nf.Discount.IsNegative() {
		flds = append(flds, core.FieldError{Field: "discount", Error: ErrInvalidAmount.Error()})
	}
	if nf.DueDate.IsZero() {
		flds = append(flds, core.FieldError{Field: "due_date", Error: "this field is required"})
	}
	if flds != nil {
		return core.NewValidationError(ErrInvalidAmount, flds...)
	}
	return nil
}

// Payment defines a payment submission against an existing Fee.
type Payment struct {
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method" validate:"required"`
	TransactionRef string          `json:"transaction_ref"`
	PaymentDate    time.Time       `json:"payment_date"` // defaults to today
	CollectedBy    string          `json:"collected_by"`
}

func (p *Payment) Validate(validate *validator.Validate) error {
	p.Method = core.CleanString(p.Method, true /* lower */)
	p.TransactionRef = core.CleanString(p.TransactionRef)

	if err := validate.Struct(p); err != nil {
		return err
	}
	if !p.Amount.IsPositive() {
		return core.NewValidationError(ErrInvalidAmount,
			core.FieldError{Field: "amount", Error: ErrInvalidAmount.Error()})
	}
	return nil
}

type QueryFilter struct {
	StudentID    int       `query:"student_id"`
	Category     string    `query:"category"`
	Status       Status    `query:"status"`
	Semester     string    `query:"semester"`
	AcademicYear string    `query:"academic_year"`
	DueFrom      time.Time `query:"due_from"`
	DueTo        time.Time `query:"due_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == 0 && qf.Category == "" && qf.Status == "" &&
		qf.Semester == "" && qf.AcademicYear == "" && qf.DueFrom.IsZero() && qf.DueTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Category = core.CleanString(qf.Category, true /* lower */)
	qf.Semester = core.CleanString(qf.Semester)
	qf.AcademicYear = core.CleanString(qf.AcademicYear)
}

type (
	StatusBreakdown struct {
		Count  int             `json:"count"`
		Amount decimal.Decimal `json:"amount"`
	}

	CategoryBreakdown struct {
		Count   int             `json:"count"`
		Amount  decimal.Decimal `json:"amount"`
		Paid    decimal.Decimal `json:"paid"`
		Balance decimal.Decimal `json:"balance"`
	}

	// Summary aggregates a set of fees; computed on demand, never persisted.
	Summary struct {
		Count         int                          `json:"count"`
		TotalAmount   decimal.Decimal              `json:"total_amount"`
		TotalPaid     decimal.Decimal              `json:"total_paid"`
		TotalDiscount decimal.Decimal              `json:"total_discount"`
		TotalLateFee  decimal.Decimal              `json:"total_late_fee"`
		TotalBalance  decimal.Decimal              `json:"total_balance"`
		ByStatus      map[Status]StatusBreakdown   `json:"by_status"`
		ByCategory    map[string]CategoryBreakdown `json:"by_category"`
	}
)

// Summarize folds a set of fees into a Summary. Empty input yields a zero
// Summary, not an error.
func Summarize(fees []Fee) Summary {
	s := Summary{
		Count:      len(fees),
		ByStatus:   make(map[Status]StatusBreakdown),
		ByCategory: make(map[string]CategoryBreakdown),
	}
	for _, f := range fees {
		s.TotalAmount = s.TotalAmount.Add(f.Amount)
		s.TotalPaid = s.TotalPaid.Add(f.PaidAmount)
		s.TotalDiscount = s.TotalDiscount.Add(f.Discount)
		s.TotalLateFee = s.TotalLateFee.Add(f.LateFee)
		s.TotalBalance = s.TotalBalance.Add(f.Balance())

		sb := s.ByStatus[f.Status]
		sb.Count++
		sb.Amount = sb.Amount.Add(f.Amount)
		s.ByStatus[f.Status] = sb

		cb := s.ByCategory[f.Category]
		cb.Count++
		cb.Amount = cb.Amount.Add(f.Amount)
		cb.Paid = cb.Paid.Add(f.PaidAmount)
		cb.Balance = cb.Balance.Add(f.Balance())
		s.ByCategory[f.Category] = cb
	}
	return s
}

// BulkError reports the offending row when a bulk operation is rejected.
type BulkError struct {
	Row int
	Err error
}

func (e BulkError) Error() string {
	return errors.Wrapf(e.Err, "row %d", e.Row).Error()
}
