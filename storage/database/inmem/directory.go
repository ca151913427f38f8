package inmemdb

import (
	"context"

	"github.com/trezcool/shule/core/notification"
)

// Contact is one directory entry; StudentID links guardian contacts to a
// student.
type Contact struct {
	Name      string
	Email     string
	Phone     string
	Group     string
	StudentID int
}

// AddContacts seeds the directory.
func (db *DB) AddContacts(contacts ...Contact) {
	db.contact.Lock()
	defer db.contact.Unlock()
	db.contact.table = append(db.contact.table, contacts...)
}

type contactDirectory struct {
	db *contactTable
}

var _ notification.Directory = (*contactDirectory)(nil) // interface compliance check

func NewContactDirectory(db *DB) *contactDirectory {
	return &contactDirectory{db: db.contact}
}

func (dir *contactDirectory) ResolveGroups(ctx context.Context, groups ...string) ([]notification.Recipient, error) {
	dir.db.RLock()
	defer dir.db.RUnlock()

	var recipients []notification.Recipient
	for _, c := range dir.db.table {
		for _, g := range groups {
			if c.Group == g {
				recipients = append(recipients, notification.Recipient{
					Name: c.Name, Email: c.Email, Phone: c.Phone, Group: c.Group,
				})
				break
			}
		}
	}
	return recipients, nil
}

func (dir *contactDirectory) StudentContacts(ctx context.Context, studentID int) ([]notification.Recipient, error) {
	dir.db.RLock()
	defer dir.db.RUnlock()

	var recipients []notification.Recipient
	for _, c := range dir.db.table {
		if c.StudentID == studentID {
			recipients = append(recipients, notification.Recipient{
				Name: c.Name, Email: c.Email, Phone: c.Phone, Group: c.Group,
			})
		}
	}
	return recipients, nil
}
