package attendance

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
)

func (s Status) valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}

// Day is the single attendance record for one student on one date.
// The (student, date) pair is unique; repeated check-ins update in place.
type Day struct {
	ID           int       `json:"id"`
	StudentID    int       `json:"student_id"`
	Date         time.Time `json:"date"`
	Status       Status    `json:"status"`
	CheckInTime  null.Time `json:"check_in_time"`
	CheckOutTime null.Time `json:"check_out_time"`
	Notes        string    `json:"notes,omitempty"`
	MarkedBy     string    `json:"marked_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// CheckIn marks a student's arrival for a date.
type CheckIn struct {
	StudentID   int       `json:"student_id" validate:"required"`
	Date        time.Time `json:"date"`   // defaults to today
	Status      Status    `json:"status"` // defaults to present
	CheckInTime time.Time `json:"check_in_time"`
	Notes       string    `json:"notes"`
	MarkedBy    string    `json:"marked_by"`
}

func (ci *CheckIn) Validate(validate *validator.Validate) error {
	ci.Notes = core.CleanString(ci.Notes)
	if ci.Status == "" {
		ci.Status = StatusPresent
	}

	if err := validate.Struct(ci); err != nil {
		return err
	}
	if !ci.Status.valid() {
		return core.NewValidationError(ErrInvalidStatus,
			core.FieldError{Field: "status", Error: ErrInvalidStatus.Error()})
	}
	return nil
}

// CheckOut marks a student's departure; requires an existing check-in.
type CheckOut struct {
	StudentID    int       `json:"student_id" validate:"required"`
	Date         time.Time `json:"date"` // defaults to today
	CheckOutTime time.Time `json:"check_out_time"`
	MarkedBy     string    `json:"marked_by"`
}

func (co *CheckOut) Validate(validate *validator.Validate) error {
	return validate.Struct(co)
}

// Mark is one row of a bulk marking sheet.
type Mark struct {
	StudentID int    `json:"student_id" validate:"required"`
	Status    Status `json:"status"`
	Notes     string `json:"notes"`
}

// BulkMark marks a set of students for one date at once.
type BulkMark struct {
	Date     time.Time `json:"date"` // defaults to today
	Marks    []Mark    `json:"marks" validate:"required,dive"`
	MarkedBy string    `json:"marked_by"`
}

func (bm *BulkMark) Validate(validate *validator.Validate) error {
	for i := range bm.Marks {
		if bm.Marks[i].Status == "" {
			bm.Marks[i].Status = StatusPresent
		}
	}

	if err := validate.Struct(bm); err != nil {
		return err
	}
	for i, m := range bm.Marks {
		if !m.Status.valid() {
			return core.NewValidationError(ErrInvalidStatus,
				core.FieldError{Field: fmt.Sprintf("marks[%d].status", i), Error: ErrInvalidStatus.Error()})
		}
	}
	return nil
}

type QueryFilter struct {
	StudentID int       `query:"student_id"`
	Status    Status    `query:"status"`
	DateFrom  time.Time `query:"date_from"`
	DateTo    time.Time `query:"date_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == 0 && qf.Status == "" && qf.DateFrom.IsZero() && qf.DateTo.IsZero()
}

// Percentage rolls up records into present/total*100, rounded to 2
// decimals, optionally narrowed to [from, to]. An empty set yields 0,
// not an error.
func Percentage(records []Day, from, to time.Time) decimal.Decimal {
	var present, total int64
	for _, rec := range records {
		if !from.IsZero() && rec.Date.Before(core.Today(from)) {
			continue
		}
		if !to.IsZero() && rec.Date.After(core.Today(to)) {
			continue
		}
		total++
		if rec.Status == StatusPresent {
			present++
		}
	}
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(present).Div(decimal.NewFromInt(total)).
		Mul(decimal.NewFromInt(100)).Round(2)
}
