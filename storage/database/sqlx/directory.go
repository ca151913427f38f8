package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/notification"
)

type contactRow struct {
	ID        int    `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	Group     string `db:"group"`
	StudentID *int   `db:"student_id"`
}

func (r contactRow) toCore() notification.Recipient {
	return notification.Recipient{
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
		Group: r.Group,
	}
}

// contactDirectory resolves recipient groups and student contacts from the
// contact table.
type contactDirectory struct {
	db *sqlx.DB
}

var _ notification.Directory = (*contactDirectory)(nil) // interface compliance check

func NewContactDirectory(db *sqlx.DB) *contactDirectory {
	return &contactDirectory{db: db}
}

func (dir contactDirectory) ResolveGroups(ctx context.Context, groups ...string) ([]notification.Recipient, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`SELECT * FROM contact WHERE "group" IN (?) ORDER BY id`, groups)
	if err != nil {
		return nil, errors.Wrap(err, "resolving recipient groups")
	}
	var rows []contactRow
	if err = dir.db.SelectContext(ctx, &rows, dir.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "resolving recipient groups")
	}

	recipients := make([]notification.Recipient, 0, len(rows))
	for _, row := range rows {
		recipients = append(recipients, row.toCore())
	}
	return recipients, nil
}

func (dir contactDirectory) StudentContacts(ctx context.Context, studentID int) ([]notification.Recipient, error) {
	var rows []contactRow
	q := "SELECT * FROM contact WHERE student_id = $1 ORDER BY id"
	if err := dir.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "getting student contacts")
	}

	recipients := make([]notification.Recipient, 0, len(rows))
	for _, row := range rows {
		recipients = append(recipients, row.toCore())
	}
	return recipients, nil
}
