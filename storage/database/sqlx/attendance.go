package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
)

type dayRow struct {
	ID           int       `db:"id"`
	StudentID    int       `db:"student_id"`
	Date         time.Time `db:"date"`
	Status       string    `db:"status"`
	CheckInTime  null.Time `db:"check_in_time"`
	CheckOutTime null.Time `db:"check_out_time"`
	Notes        string    `db:"notes"`
	MarkedBy     string    `db:"marked_by"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r dayRow) toCore() attendance.Day {
	return attendance.Day{
		ID:           r.ID,
		StudentID:    r.StudentID,
		Date:         r.Date,
		Status:       attendance.Status(r.Status),
		CheckInTime:  r.CheckInTime,
		CheckOutTime: r.CheckOutTime,
		Notes:        r.Notes,
		MarkedBy:     r.MarkedBy,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to attendance.ErrNotFound
func (repo attendanceRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return attendance.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo attendanceRepository) CreateDay(ctx context.Context, d attendance.Day) (attendance.Day, error) {
	q := `
INSERT INTO attendance_day (student_id, date, status, check_in_time, check_out_time, notes, marked_by,
                            created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	err := repo.db.QueryRowxContext(ctx, q,
		d.StudentID, d.Date, d.Status, d.CheckInTime, d.CheckOutTime, d.Notes, d.MarkedBy,
		d.CreatedAt, d.UpdatedAt,
	).Scan(&d.ID)
	if err != nil {
		return attendance.Day{}, errors.Wrap(err, "inserting attendance record")
	}
	return d, nil
}

func (repo attendanceRepository) GetDayByStudentDate(ctx context.Context, studentID int, date time.Time) (attendance.Day, error) {
	var row dayRow
	q := "SELECT * FROM attendance_day WHERE student_id = $1 AND date = $2"
	if err := repo.db.GetContext(ctx, &row, q, studentID, core.Today(date)); err != nil {
		return attendance.Day{}, repo.trapNoRowsErr(err, "getting attendance record")
	}
	return row.toCore(), nil
}

func (repo attendanceRepository) FilterDays(ctx context.Context, filter attendance.QueryFilter, ordering ...core.DBOrdering) ([]attendance.Day, error) {
	var wb whereBuilder
	if filter.StudentID != 0 {
		wb.add("student_id", "=", filter.StudentID)
	}
	if filter.Status != "" {
		wb.add("status", "=", string(filter.Status))
	}
	if !filter.DateFrom.IsZero() {
		wb.add("date", ">=", core.Today(filter.DateFrom))
	}
	if !filter.DateTo.IsZero() {
		wb.add("date", "<=", core.Today(filter.DateTo))
	}

	q := "SELECT * FROM attendance_day" + wb.clause() + orderBy(ordering, core.DBOrdering{Field: "date", Ascending: true})
	var rows []dayRow
	if err := repo.db.SelectContext(ctx, &rows, q, wb.args...); err != nil {
		return nil, errors.Wrap(err, "filtering attendance records")
	}

	days := make([]attendance.Day, 0, len(rows))
	for _, row := range rows {
		days = append(days, row.toCore())
	}
	return days, nil
}

func (repo attendanceRepository) UpdateDay(ctx context.Context, d attendance.Day) (attendance.Day, error) {
	q := `
UPDATE attendance_day
SET status = $1, check_in_time = $2, check_out_time = $3, notes = $4, marked_by = $5, updated_at = $6
WHERE id = $7`
	res, err := repo.db.ExecContext(ctx, q,
		d.Status, d.CheckInTime, d.CheckOutTime, d.Notes, d.MarkedBy, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return attendance.Day{}, errors.Wrap(err, "updating attendance record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.Day{}, attendance.ErrNotFound
	}
	return d, nil
}
