// Package sqlxrepos provides PostgreSQL-backed repositories built on sqlx.
package sqlxrepos

import (
	"fmt"
	"strings"

	"github.com/trezcool/shule/core"
)

// whereBuilder accumulates AND'ed conditions with positional args.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (wb *whereBuilder) add(column, op string, arg interface{}) {
	wb.args = append(wb.args, arg)
	wb.conds = append(wb.conds, fmt.Sprintf("%s %s $%d", column, op, len(wb.args)))
}

func (wb *whereBuilder) clause() string {
	if len(wb.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(wb.conds, " AND ")
}

func orderBy(ordering []core.DBOrdering, fallback core.DBOrdering) string {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{fallback}
	}
	list := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		list = append(list, ord.String())
	}
	return " ORDER BY " + strings.Join(list, ", ")
}
