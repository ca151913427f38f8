package grade

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
)

// Assessment types
const (
	AssessmentExam       = "exam"
	AssessmentQuiz       = "quiz"
	AssessmentAssignment = "assignment"
	AssessmentProject    = "project"
	AssessmentCAT        = "cat"
)

// ScoreRecord is one graded assessment result for one student in one subject.
type ScoreRecord struct {
	ID             int             `json:"id"`
	UUID           string          `json:"uuid"`
	StudentID      int             `json:"student_id"`
	SubjectID      int             `json:"subject_id"`
	ClassID        int             `json:"class_id"`
	AssessmentType string          `json:"assessment_type"`
	AssessmentName string          `json:"assessment_name"`
	MarksObtained  decimal.Decimal `json:"marks_obtained"`
	TotalMarks     decimal.Decimal `json:"total_marks"`
	Percentage     decimal.Decimal `json:"percentage"`
	Letter         string          `json:"letter"`
	Points         int             `json:"points"`
	Semester       string          `json:"semester,omitempty"`
	AcademicYear   string          `json:"academic_year,omitempty"`
	Remarks        string          `json:"remarks,omitempty"`
	GradedBy       string          `json:"graded_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"` // UTC
	UpdatedAt      time.Time       `json:"updated_at"` // UTC
}

// NewScore contains information needed to record a graded assessment.
type NewScore struct {
	StudentID      int             `json:"student_id" validate:"required"`
	SubjectID      int             `json:"subject_id" validate:"required"`
	ClassID        int             `json:"class_id"`
	AssessmentType string          `json:"assessment_type" validate:"required"`
	AssessmentName string          `json:"assessment_name" validate:"required"`
	MarksObtained  decimal.Decimal `json:"marks_obtained"`
	TotalMarks     decimal.Decimal `json:"total_marks"`
	Semester       string          `json:"semester"`
	AcademicYear   string          `json:"academic_year"`
	Remarks        string          `json:"remarks"`
}

func (ns *NewScore) Validate(validate *validator.Validate) error {
	ns.AssessmentType = core.CleanString(ns.AssessmentType, true /* lower */)
	ns.AssessmentName = core.CleanString(ns.AssessmentName)

	if err := validate.Struct(ns); err != nil {
		return err
	}

	var flds []core.FieldError
	if !ns.TotalMarks.IsPositive() {
		flds = append(flds, core.FieldError{Field: "total_marks", Error: ErrInvalidTotal.Error()})
	}
	if ns.MarksObtained.IsNegative() {
		flds = append(flds, core.FieldError{Field: "marks_obtained", Error: "marks cannot be negative"})
	}
	if flds != nil {
		return core.NewValidationError(ErrInvalidTotal, flds...)
	}
	return nil
}

type QueryFilter struct {
	StudentID      int    `query:"student_id"`
	SubjectID      int    `query:"subject_id"`
	ClassID        int    `query:"class_id"`
	AssessmentType string `query:"assessment_type"`
	Semester       string `query:"semester"`
	AcademicYear   string `query:"academic_year"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == 0 && qf.SubjectID == 0 && qf.ClassID == 0 &&
		qf.AssessmentType == "" && qf.Semester == "" && qf.AcademicYear == ""
}

func (qf *QueryFilter) Clean() {
	qf.AssessmentType = core.CleanString(qf.AssessmentType, true /* lower */)
	qf.Semester = core.CleanString(qf.Semester)
	qf.AcademicYear = core.CleanString(qf.AcademicYear)
}

// Stats aggregates a group of score records.
type Stats struct {
	Count    int             `json:"count"`
	Average  decimal.Decimal `json:"average"`
	Highest  decimal.Decimal `json:"highest"`
	Lowest   decimal.Decimal `json:"lowest"`
	PassRate decimal.Decimal `json:"pass_rate"` // percentage
}

// Ranking is a student's position within a ranked group.
type Ranking struct {
	StudentID  int             `json:"student_id"`
	Position   int             `json:"position"`
	Percentage decimal.Decimal `json:"percentage"`
}
