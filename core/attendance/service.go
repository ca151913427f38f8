package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound      = errors.New("attendance record not found")
	ErrInvalidStatus = errors.New("invalid attendance status")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateDay(ctx context.Context, d Day) (Day, error)
		// GetDayByStudentDate looks up the single record for (student, date).
		GetDayByStudentDate(ctx context.Context, studentID int, date time.Time) (Day, error)
		// FilterDays applies AND operation on available QueryFilter fields.
		FilterDays(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Day, error)
		UpdateDay(ctx context.Context, d Day) (Day, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// MarkCheckIn records a student's arrival. At most one record exists per
// (student, date): a second check-in on the same day updates the existing
// record rather than creating a duplicate.
func (svc *Service) MarkCheckIn(ctx context.Context, ci CheckIn) (Day, error) {
	now := nowFunc().UTC()
	date := ci.Date
	if date.IsZero() {
		date = now
	}
	date = core.Today(date)

	checkIn := ci.CheckInTime
	if checkIn.IsZero() {
		checkIn = now
	}
	status := ci.Status
	if status == "" {
		status = StatusPresent
	}

	existing, err := svc.repo.GetDayByStudentDate(ctx, ci.StudentID, date)
	switch err {
	case nil:
		existing.Status = status
		existing.CheckInTime = null.TimeFrom(checkIn.UTC())
		existing.Notes = ci.Notes
		existing.MarkedBy = ci.MarkedBy
		existing.UpdatedAt = now
		return svc.repo.UpdateDay(ctx, existing)
	case ErrNotFound:
		return svc.repo.CreateDay(ctx, Day{
			StudentID:   ci.StudentID,
			Date:        date,
			Status:      status,
			CheckInTime: null.TimeFrom(checkIn.UTC()),
			Notes:       ci.Notes,
			MarkedBy:    ci.MarkedBy,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	default:
		return Day{}, err
	}
}

// MarkCheckOut records a student's departure on an existing record.
func (svc *Service) MarkCheckOut(ctx context.Context, co CheckOut) (Day, error) {
	now := nowFunc().UTC()
	date := co.Date
	if date.IsZero() {
		date = now
	}

	d, err := svc.repo.GetDayByStudentDate(ctx, co.StudentID, core.Today(date))
	if err != nil {
		return Day{}, err
	}

	checkOut := co.CheckOutTime
	if checkOut.IsZero() {
		checkOut = now
	}
	d.CheckOutTime = null.TimeFrom(checkOut.UTC())
	d.MarkedBy = co.MarkedBy
	d.UpdatedAt = now
	return svc.repo.UpdateDay(ctx, d)
}

// MarkBulk upserts a whole marking sheet for one date.
func (svc *Service) MarkBulk(ctx context.Context, bm BulkMark) ([]Day, error) {
	date := bm.Date
	if date.IsZero() {
		date = nowFunc()
	}

	days := make([]Day, 0, len(bm.Marks))
	for _, m := range bm.Marks {
		d, err := svc.MarkCheckIn(ctx, CheckIn{
			StudentID: m.StudentID,
			Date:      date,
			Status:    m.Status,
			Notes:     m.Notes,
			MarkedBy:  bm.MarkedBy,
		})
		if err != nil {
			return days, err
		}
		days = append(days, d)
	}
	return days, nil
}

// DailySummary returns the single record for (student, date), if any.
func (svc *Service) DailySummary(ctx context.Context, studentID int, date time.Time) (Day, error) {
	return svc.repo.GetDayByStudentDate(ctx, studentID, core.Today(date))
}

// StudentRate computes a student's attendance percentage over [from, to].
func (svc *Service) StudentRate(ctx context.Context, studentID int, from, to time.Time) (decimal.Decimal, error) {
	records, err := svc.repo.FilterDays(ctx, QueryFilter{StudentID: studentID, DateFrom: from, DateTo: to})
	if err != nil {
		return decimal.Zero, err
	}
	return Percentage(records, from, to), nil
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Day, error) {
	return svc.repo.FilterDays(ctx, filter, ordering...)
}
