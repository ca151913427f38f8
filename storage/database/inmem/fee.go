package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/fee"
)

type feeRepository struct {
	db *feeTable
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(db *DB) *feeRepository {
	return &feeRepository{db: db.fee}
}

func (repo *feeRepository) query() []fee.Fee {
	fees := make([]fee.Fee, 0, len(repo.db.table))
	for _, f := range repo.db.table {
		fees = append(fees, *f)
	}
	sort.Slice(fees, func(i, j int) bool { return fees[i].ID < fees[j].ID })
	return fees
}

func (repo *feeRepository) CreateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	f.ID = repo.db.pk
	repo.db.table[f.ID] = &f
	return f, nil
}

func (repo *feeRepository) GetFeeByID(ctx context.Context, id int) (fee.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if f, ok := repo.db.table[id]; ok {
		return *f, nil
	}
	return fee.Fee{}, fee.ErrNotFound
}

func (repo *feeRepository) FilterFees(ctx context.Context, filter fee.QueryFilter, ordering ...core.DBOrdering) ([]fee.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	fees := make([]fee.Fee, 0)
	for _, f := range repo.query() {
		if filter.StudentID != 0 && f.StudentID != filter.StudentID {
			continue
		}
		if filter.Category != "" && f.Category != filter.Category {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.Semester != "" && f.Semester != filter.Semester {
			continue
		}
		if filter.AcademicYear != "" && f.AcademicYear != filter.AcademicYear {
			continue
		}
		if !filter.DueFrom.IsZero() && core.Today(f.DueDate).Before(core.Today(filter.DueFrom)) {
			continue
		}
		if !filter.DueTo.IsZero() && core.Today(f.DueDate).After(core.Today(filter.DueTo)) {
			continue
		}
		fees = append(fees, f)
	}
	return fees, nil
}

func (repo *feeRepository) UpdateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[f.ID]; !ok {
		return fee.Fee{}, fee.ErrNotFound
	}
	repo.db.table[f.ID] = &f
	return f, nil
}

func (repo *feeRepository) DeleteFeesByID(ctx context.Context, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
