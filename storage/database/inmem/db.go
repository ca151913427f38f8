// Package inmemdb provides in-memory repositories for tests and local
// development.
package inmemdb

import (
	"sync"
	"time"

	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/grade"
)

type (
	DB struct {
		fee        *feeTable
		score      *scoreTable
		attendance *attendanceTable
		contact    *contactTable
	}

	feeTable struct {
		sync.RWMutex
		pk    int
		table map[int]*fee.Fee
	}

	scoreTable struct {
		sync.RWMutex
		pk    int
		table map[int]*grade.ScoreRecord
	}

	// dayKey enforces the one-record-per-(student, date) invariant.
	dayKey struct {
		studentID int
		date      time.Time
	}

	attendanceTable struct {
		sync.RWMutex
		pk    int
		table map[dayKey]*attendance.Day
	}

	contactTable struct {
		sync.RWMutex
		table []Contact
	}
)

func Open() (*DB, error) {
	db := &DB{
		fee:        &feeTable{table: make(map[int]*fee.Fee)},
		score:      &scoreTable{table: make(map[int]*grade.ScoreRecord)},
		attendance: &attendanceTable{table: make(map[dayKey]*attendance.Day)},
		contact:    &contactTable{},
	}
	return db, nil
}
