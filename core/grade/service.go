package grade

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound     = errors.New("score record not found")
	ErrInvalidTotal = errors.New("total marks must be positive")
	ErrEmptyScale   = errors.New("grading scale is empty")

	nowFunc = time.Now // mockable

	hundred = decimal.NewFromInt(100)
)

// Score converts obtained/total marks into a percentage rounded to 2
// decimals. Fails when total is not positive.
func Score(obtained, total decimal.Decimal) (decimal.Decimal, error) {
	if !total.IsPositive() {
		return decimal.Zero, ErrInvalidTotal
	}
	return obtained.Div(total).Mul(hundred).Round(2), nil
}

// Classify maps a percentage onto the scale: first band whose Min the
// percentage reaches wins; below the lowest Min the lowest band applies.
func Classify(percentage decimal.Decimal, scale Scale) (letter string, points int, err error) {
	if len(scale) == 0 {
		return "", 0, ErrEmptyScale
	}
	for _, band := range scale {
		if percentage.GreaterThanOrEqual(band.Min) {
			return band.Letter, band.Points, nil
		}
	}
	last := scale[len(scale)-1]
	return last.Letter, last.Points, nil
}

// Rank orders records by percentage descending and assigns 1-based
// positions. Ties keep their insertion order and take distinct positions.
func Rank(records []ScoreRecord) []Ranking {
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return records[idx[i]].Percentage.GreaterThan(records[idx[j]].Percentage)
	})

	rankings := make([]Ranking, len(records))
	for pos, i := range idx {
		rankings[pos] = Ranking{
			StudentID:  records[i].StudentID,
			Position:   pos + 1,
			Percentage: records[i].Percentage,
		}
	}
	return rankings
}

// Aggregate folds a group of records into Stats. Empty input yields zero
// Stats; reports over zero records are a normal case, not an error.
func Aggregate(records []ScoreRecord, passMark decimal.Decimal) Stats {
	if len(records) == 0 {
		return Stats{}
	}

	var sum decimal.Decimal
	var passed int
	stats := Stats{
		Count:   len(records),
		Highest: records[0].Percentage,
		Lowest:  records[0].Percentage,
	}
	for _, rec := range records {
		sum = sum.Add(rec.Percentage)
		if rec.Percentage.GreaterThan(stats.Highest) {
			stats.Highest = rec.Percentage
		}
		if rec.Percentage.LessThan(stats.Lowest) {
			stats.Lowest = rec.Percentage
		}
		if rec.Percentage.GreaterThanOrEqual(passMark) {
			passed++
		}
	}
	count := decimal.NewFromInt(int64(len(records)))
	stats.Average = sum.Div(count).Round(2)
	stats.PassRate = decimal.NewFromInt(int64(passed)).Div(count).Mul(hundred).Round(2)
	return stats
}

type (
	Repository interface {
		CreateScore(ctx context.Context, rec ScoreRecord) (ScoreRecord, error)
		GetScoreByID(ctx context.Context, id int) (ScoreRecord, error)
		// FilterScores applies AND operation on available QueryFilter fields.
		FilterScores(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]ScoreRecord, error)
		UpdateScore(ctx context.Context, rec ScoreRecord) (ScoreRecord, error)
		DeleteScoresByID(ctx context.Context, ids ...int) error
	}

	Service struct {
		repo  Repository
		scale Scale
	}
)

func NewService(repo Repository, scale Scale) *Service {
	return &Service{repo: repo, scale: scale}
}

func (svc *Service) Scale() Scale { return svc.scale }

// RecordScore grades and persists a new assessment result. Invalid totals
// are rejected before any write.
func (svc *Service) RecordScore(ctx context.Context, ns NewScore) (ScoreRecord, error) {
	pct, err := Score(ns.MarksObtained, ns.TotalMarks)
	if err != nil {
		return ScoreRecord{}, core.NewValidationError(err,
			core.FieldError{Field: "total_marks", Error: err.Error()})
	}
	letter, points, err := Classify(pct, svc.scale)
	if err != nil {
		return ScoreRecord{}, err
	}

	now := nowFunc().UTC()
	rec := ScoreRecord{
		UUID:           uuid.New().String(),
		StudentID:      ns.StudentID,
		SubjectID:      ns.SubjectID,
		ClassID:        ns.ClassID,
		AssessmentType: ns.AssessmentType,
		AssessmentName: ns.AssessmentName,
		MarksObtained:  ns.MarksObtained,
		TotalMarks:     ns.TotalMarks,
		Percentage:     pct,
		Letter:         letter,
		Points:         points,
		Semester:       ns.Semester,
		AcademicYear:   ns.AcademicYear,
		Remarks:        ns.Remarks,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateScore(ctx, rec)
}

// BulkRecordScores records a batch of pre-validated results; callers
// validate every row first so invalid input causes no writes.
func (svc *Service) BulkRecordScores(ctx context.Context, nss []NewScore) ([]ScoreRecord, error) {
	recs := make([]ScoreRecord, 0, len(nss))
	for _, ns := range nss {
		rec, err := svc.RecordScore(ctx, ns)
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Regrade recomputes percentage/letter/points for an existing record,
// e.g. after a marks correction.
func (svc *Service) Regrade(ctx context.Context, id int, obtained, total decimal.Decimal) (ScoreRecord, error) {
	rec, err := svc.repo.GetScoreByID(ctx, id)
	if err != nil {
		return ScoreRecord{}, err
	}
	pct, err := Score(obtained, total)
	if err != nil {
		return ScoreRecord{}, core.NewValidationError(err,
			core.FieldError{Field: "total_marks", Error: err.Error()})
	}
	letter, points, err := Classify(pct, svc.scale)
	if err != nil {
		return ScoreRecord{}, err
	}

	rec.MarksObtained = obtained
	rec.TotalMarks = total
	rec.Percentage = pct
	rec.Letter = letter
	rec.Points = points
	rec.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateScore(ctx, rec)
}

// Rankings ranks all records matching the filter.
func (svc *Service) Rankings(ctx context.Context, filter QueryFilter) ([]Ranking, error) {
	recs, err := svc.repo.FilterScores(ctx, filter)
	if err != nil {
		return nil, err
	}
	return Rank(recs), nil
}

// GroupStats aggregates records matching the filter.
func (svc *Service) GroupStats(ctx context.Context, filter QueryFilter, passMark decimal.Decimal) (Stats, error) {
	recs, err := svc.repo.FilterScores(ctx, filter)
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(recs, passMark), nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (ScoreRecord, error) {
	return svc.repo.GetScoreByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]ScoreRecord, error) {
	return svc.repo.FilterScores(ctx, filter, ordering...)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteScoresByID(ctx, ids...)
}
