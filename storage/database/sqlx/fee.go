package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/fee"
)

type feeRow struct {
	ID             int             `db:"id"`
	UUID           string          `db:"uuid"`
	StudentID      int             `db:"student_id"`
	Category       string          `db:"category"`
	Amount         decimal.Decimal `db:"amount"`
	PaidAmount     decimal.Decimal `db:"paid_amount"`
	LateFee        decimal.Decimal `db:"late_fee"`
	Discount       decimal.Decimal `db:"discount"`
	DueDate        time.Time       `db:"due_date"`
	PaymentDate    null.Time       `db:"payment_date"`
	PaymentMethod  string          `db:"payment_method"`
	TransactionRef string          `db:"transaction_ref"`
	Status         string          `db:"status"`
	Semester       string          `db:"semester"`
	AcademicYear   string          `db:"academic_year"`
	Notes          string          `db:"notes"`
	CollectedBy    string          `db:"collected_by"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r feeRow) toCore() fee.Fee {
	return fee.Fee{
		ID:             r.ID,
		UUID:           r.UUID,
		StudentID:      r.StudentID,
		Category:       r.Category,
		Amount:         r.Amount,
		PaidAmount:     r.PaidAmount,
		LateFee:        r.LateFee,
		Discount:       r.Discount,
		DueDate:        r.DueDate,
		PaymentDate:    r.PaymentDate,
		PaymentMethod:  r.PaymentMethod,
		TransactionRef: r.TransactionRef,
		Status:         fee.Status(r.Status),
		Semester:       r.Semester,
		AcademicYear:   r.AcademicYear,
		Notes:          r.Notes,
		CollectedBy:    r.CollectedBy,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type feeRepository struct {
	db *sqlx.DB
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(db *sqlx.DB) *feeRepository {
	return &feeRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to fee.ErrNotFound
func (repo feeRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return fee.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo feeRepository) CreateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	q := `
INSERT INTO fee (uuid, student_id, category, amount, paid_amount, late_fee, discount, due_date, payment_date,
                 payment_method, transaction_ref, status, semester, academic_year, notes, collected_by,
                 created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
RETURNING id`
	err := repo.db.QueryRowxContext(ctx, q,
		f.UUID, f.StudentID, f.Category, f.Amount, f.PaidAmount, f.LateFee, f.Discount, f.DueDate, f.PaymentDate,
		f.PaymentMethod, f.TransactionRef, f.Status, f.Semester, f.AcademicYear, f.Notes, f.CollectedBy,
		f.CreatedAt, f.UpdatedAt,
	).Scan(&f.ID)
	if err != nil {
		return fee.Fee{}, errors.Wrap(err, "inserting fee")
	}
	return f, nil
}

func (repo feeRepository) GetFeeByID(ctx context.Context, id int) (fee.Fee, error) {
	var row feeRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM fee WHERE id = $1", id); err != nil {
		return fee.Fee{}, repo.trapNoRowsErr(err, "getting fee")
	}
	return row.toCore(), nil
}

func (repo feeRepository) FilterFees(ctx context.Context, filter fee.QueryFilter, ordering ...core.DBOrdering) ([]fee.Fee, error) {
	var wb whereBuilder
	if filter.StudentID != 0 {
		wb.add("student_id", "=", filter.StudentID)
	}
	if filter.Category != "" {
		wb.add("category", "=", filter.Category)
	}
	if filter.Status != "" {
		wb.add("status", "=", string(filter.Status))
	}
	if filter.Semester != "" {
		wb.add("semester", "=", filter.Semester)
	}
	if filter.AcademicYear != "" {
		wb.add("academic_year", "=", filter.AcademicYear)
	}
	if !filter.DueFrom.IsZero() {
		wb.add("due_date", ">=", core.Today(filter.DueFrom))
	}
	if !filter.DueTo.IsZero() {
		wb.add("due_date", "<=", core.Today(filter.DueTo))
	}

	q := "SELECT * FROM fee" + wb.clause() + orderBy(ordering, core.DBOrdering{Field: "id", Ascending: true})
	var rows []feeRow
	if err := repo.db.SelectContext(ctx, &rows, q, wb.args...); err != nil {
		return nil, errors.Wrap(err, "filtering fees")
	}

	fees := make([]fee.Fee, 0, len(rows))
	for _, row := range rows {
		fees = append(fees, row.toCore())
	}
	return fees, nil
}

func (repo feeRepository) UpdateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	q := `
UPDATE fee
SET category = $1, amount = $2, paid_amount = $3, late_fee = $4, discount = $5, due_date = $6, payment_date = $7,
    payment_method = $8, transaction_ref = $9, status = $10, semester = $11, academic_year = $12, notes = $13,
    collected_by = $14, updated_at = $15
WHERE id = $16`
	res, err := repo.db.ExecContext(ctx, q,
		f.Category, f.Amount, f.PaidAmount, f.LateFee, f.Discount, f.DueDate, f.PaymentDate,
		f.PaymentMethod, f.TransactionRef, f.Status, f.Semester, f.AcademicYear, f.Notes,
		f.CollectedBy, f.UpdatedAt, f.ID,
	)
	if err != nil {
		return fee.Fee{}, errors.Wrap(err, "updating fee")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fee.Fee{}, fee.ErrNotFound
	}
	return f, nil
}

func (repo feeRepository) DeleteFeesByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In("DELETE FROM fee WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "deleting fees")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting fees")
	}
	return nil
}
