package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) query() []attendance.Day {
	days := make([]attendance.Day, 0, len(repo.db.table))
	for _, d := range repo.db.table {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].ID < days[j].ID })
	return days
}

func (repo *attendanceRepository) CreateDay(ctx context.Context, d attendance.Day) (attendance.Day, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	d.ID = repo.db.pk
	repo.db.table[dayKey{d.StudentID, core.Today(d.Date)}] = &d
	return d, nil
}

func (repo *attendanceRepository) GetDayByStudentDate(ctx context.Context, studentID int, date time.Time) (attendance.Day, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if d, ok := repo.db.table[dayKey{studentID, core.Today(date)}]; ok {
		return *d, nil
	}
	return attendance.Day{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) FilterDays(ctx context.Context, filter attendance.QueryFilter, ordering ...core.DBOrdering) ([]attendance.Day, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	days := make([]attendance.Day, 0)
	for _, d := range repo.query() {
		if filter.StudentID != 0 && d.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if !filter.DateFrom.IsZero() && d.Date.Before(core.Today(filter.DateFrom)) {
			continue
		}
		if !filter.DateTo.IsZero() && d.Date.After(core.Today(filter.DateTo)) {
			continue
		}
		days = append(days, d)
	}
	return days, nil
}

func (repo *attendanceRepository) UpdateDay(ctx context.Context, d attendance.Day) (attendance.Day, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := dayKey{d.StudentID, core.Today(d.Date)}
	if _, ok := repo.db.table[key]; !ok {
		return attendance.Day{}, attendance.ErrNotFound
	}
	repo.db.table[key] = &d
	return d, nil
}
