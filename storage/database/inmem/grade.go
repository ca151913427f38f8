package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/grade"
)

type scoreRepository struct {
	db *scoreTable
}

var _ grade.Repository = (*scoreRepository)(nil) // interface compliance check

func NewScoreRepository(db *DB) *scoreRepository {
	return &scoreRepository{db: db.score}
}

func (repo *scoreRepository) query() []grade.ScoreRecord {
	recs := make([]grade.ScoreRecord, 0, len(repo.db.table))
	for _, rec := range repo.db.table {
		recs = append(recs, *rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs
}

func (repo *scoreRepository) CreateScore(ctx context.Context, rec grade.ScoreRecord) (grade.ScoreRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	rec.ID = repo.db.pk
	repo.db.table[rec.ID] = &rec
	return rec, nil
}

func (repo *scoreRepository) GetScoreByID(ctx context.Context, id int) (grade.ScoreRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[id]; ok {
		return *rec, nil
	}
	return grade.ScoreRecord{}, grade.ErrNotFound
}

func (repo *scoreRepository) FilterScores(ctx context.Context, filter grade.QueryFilter, ordering ...core.DBOrdering) ([]grade.ScoreRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]grade.ScoreRecord, 0)
	for _, rec := range repo.query() {
		if filter.StudentID != 0 && rec.StudentID != filter.StudentID {
			continue
		}
		if filter.SubjectID != 0 && rec.SubjectID != filter.SubjectID {
			continue
		}
		if filter.ClassID != 0 && rec.ClassID != filter.ClassID {
			continue
		}
		if filter.AssessmentType != "" && rec.AssessmentType != filter.AssessmentType {
			continue
		}
		if filter.Semester != "" && rec.Semester != filter.Semester {
			continue
		}
		if filter.AcademicYear != "" && rec.AcademicYear != filter.AcademicYear {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (repo *scoreRepository) UpdateScore(ctx context.Context, rec grade.ScoreRecord) (grade.ScoreRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[rec.ID]; !ok {
		return grade.ScoreRecord{}, grade.ErrNotFound
	}
	repo.db.table[rec.ID] = &rec
	return rec, nil
}

func (repo *scoreRepository) DeleteScoresByID(ctx context.Context, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
