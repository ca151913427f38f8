package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/grade"
)

type scoreRow struct {
	ID             int             `db:"id"`
	UUID           string          `db:"uuid"`
	StudentID      int             `db:"student_id"`
	SubjectID      int             `db:"subject_id"`
	ClassID        int             `db:"class_id"`
	AssessmentType string          `db:"assessment_type"`
	AssessmentName string          `db:"assessment_name"`
	MarksObtained  decimal.Decimal `db:"marks_obtained"`
	TotalMarks     decimal.Decimal `db:"total_marks"`
	Percentage     decimal.Decimal `db:"percentage"`
	Letter         string          `db:"letter"`
	Points         int             `db:"points"`
	Semester       string          `db:"semester"`
	AcademicYear   string          `db:"academic_year"`
	Remarks        string          `db:"remarks"`
	GradedBy       string          `db:"graded_by"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r scoreRow) toCore() grade.ScoreRecord {
	return grade.ScoreRecord{
		ID:             r.ID,
		UUID:           r.UUID,
		StudentID:      r.StudentID,
		SubjectID:      r.SubjectID,
		ClassID:        r.ClassID,
		AssessmentType: r.AssessmentType,
		AssessmentName: r.AssessmentName,
		MarksObtained:  r.MarksObtained,
		TotalMarks:     r.TotalMarks,
		Percentage:     r.Percentage,
		Letter:         r.Letter,
		Points:         r.Points,
		Semester:       r.Semester,
		AcademicYear:   r.AcademicYear,
		Remarks:        r.Remarks,
		GradedBy:       r.GradedBy,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type scoreRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*scoreRepository)(nil) // interface compliance check

func NewScoreRepository(db *sqlx.DB) *scoreRepository {
	return &scoreRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to grade.ErrNotFound
func (repo scoreRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return grade.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo scoreRepository) CreateScore(ctx context.Context, rec grade.ScoreRecord) (grade.ScoreRecord, error) {
	q := `
INSERT INTO score_record (uuid, student_id, subject_id, class_id, assessment_type, assessment_name,
                          marks_obtained, total_marks, percentage, letter, points, semester, academic_year,
                          remarks, graded_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING id`
	err := repo.db.QueryRowxContext(ctx, q,
		rec.UUID, rec.StudentID, rec.SubjectID, rec.ClassID, rec.AssessmentType, rec.AssessmentName,
		rec.MarksObtained, rec.TotalMarks, rec.Percentage, rec.Letter, rec.Points, rec.Semester, rec.AcademicYear,
		rec.Remarks, rec.GradedBy, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return grade.ScoreRecord{}, errors.Wrap(err, "inserting score record")
	}
	return rec, nil
}

func (repo scoreRepository) GetScoreByID(ctx context.Context, id int) (grade.ScoreRecord, error) {
	var row scoreRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM score_record WHERE id = $1", id); err != nil {
		return grade.ScoreRecord{}, repo.trapNoRowsErr(err, "getting score record")
	}
	return row.toCore(), nil
}

func (repo scoreRepository) FilterScores(ctx context.Context, filter grade.QueryFilter, ordering ...core.DBOrdering) ([]grade.ScoreRecord, error) {
	var wb whereBuilder
	if filter.StudentID != 0 {
		wb.add("student_id", "=", filter.StudentID)
	}
	if filter.SubjectID != 0 {
		wb.add("subject_id", "=", filter.SubjectID)
	}
	if filter.ClassID != 0 {
		wb.add("class_id", "=", filter.ClassID)
	}
	if filter.AssessmentType != "" {
		wb.add("assessment_type", "=", filter.AssessmentType)
	}
	if filter.Semester != "" {
		wb.add("semester", "=", filter.Semester)
	}
	if filter.AcademicYear != "" {
		wb.add("academic_year", "=", filter.AcademicYear)
	}

	q := "SELECT * FROM score_record" + wb.clause() + orderBy(ordering, core.DBOrdering{Field: "id", Ascending: true})
	var rows []scoreRow
	if err := repo.db.SelectContext(ctx, &rows, q, wb.args...); err != nil {
		return nil, errors.Wrap(err, "filtering score records")
	}

	recs := make([]grade.ScoreRecord, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.toCore())
	}
	return recs, nil
}

func (repo scoreRepository) UpdateScore(ctx context.Context, rec grade.ScoreRecord) (grade.ScoreRecord, error) {
	q := `
UPDATE score_record
SET assessment_type = $1, assessment_name = $2, marks_obtained = $3, total_marks = $4, percentage = $5,
    letter = $6, points = $7, semester = $8, academic_year = $9, remarks = $10, graded_by = $11, updated_at = $12
WHERE id = $13`
	res, err := repo.db.ExecContext(ctx, q,
		rec.AssessmentType, rec.AssessmentName, rec.MarksObtained, rec.TotalMarks, rec.Percentage,
		rec.Letter, rec.Points, rec.Semester, rec.AcademicYear, rec.Remarks, rec.GradedBy, rec.UpdatedAt, rec.ID,
	)
	if err != nil {
		return grade.ScoreRecord{}, errors.Wrap(err, "updating score record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grade.ScoreRecord{}, grade.ErrNotFound
	}
	return rec, nil
}

func (repo scoreRepository) DeleteScoresByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In("DELETE FROM score_record WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "deleting score records")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting score records")
	}
	return nil
}
