package notification

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
)

type fakeDirectory struct {
	groups   map[string][]Recipient
	contacts map[int][]Recipient
}

func (d *fakeDirectory) ResolveGroups(_ context.Context, groups ...string) ([]Recipient, error) {
	var recipients []Recipient
	for _, g := range groups {
		recipients = append(recipients, d.groups[g]...)
	}
	return recipients, nil
}

func (d *fakeDirectory) StudentContacts(_ context.Context, studentID int) ([]Recipient, error) {
	return d.contacts[studentID], nil
}

type fakeMailSvc struct{ sent []*core.EmailMessage }

func (s *fakeMailSvc) SendMessages(messages ...*core.EmailMessage) {
	s.sent = append(s.sent, messages...)
}

type fakeSMSSvc struct{ sent []*core.SMSMessage }

func (s *fakeSMSSvc) SendMessages(messages ...*core.SMSMessage) {
	s.sent = append(s.sent, messages...)
}

func setup() (*Service, *fakeDirectory, *fakeMailSvc, *fakeSMSSvc) {
	dir := &fakeDirectory{
		groups: map[string][]Recipient{
			GroupStudents: {
				{Name: "Asha", Email: "asha@school.test", Phone: "+254700000001", Group: GroupStudents},
				{Name: "Brian", Email: "brian@school.test", Group: GroupStudents}, // no phone
			},
			GroupParents: {
				{Name: "Mrs Otieno", Email: "otieno@family.test", Phone: "+254700000002", Group: GroupParents},
			},
		},
		contacts: map[int][]Recipient{
			7: {
				{Name: "Asha", Email: "asha@school.test", Phone: "+254700000001"},
				{Name: "Mrs Otieno", Email: "otieno@family.test", Phone: "+254700000002"},
			},
		},
	}
	mailSvc := &fakeMailSvc{}
	smsSvc := &fakeSMSSvc{}
	return NewService(dir, mailSvc, smsSvc), dir, mailSvc, smsSvc
}

func TestService_Broadcast(t *testing.T) {
	svc, _, mailSvc, smsSvc := setup()
	ctx := context.Background()

	results, err := svc.Broadcast(ctx, BroadcastMessage{
		Groups:   []string{GroupStudents, GroupParents},
		Subject:  "Mid-term break",
		Body:     "School closes Friday.",
		Channels: []string{ChannelEmail, ChannelSMS},
	})
	if err != nil {
		t.Fatalf("Broadcast() failed: %v", err)
	}

	// 3 recipients x 2 channels
	if len(results) != 6 {
		t.Fatalf("len(results) = %d, want 6", len(results))
	}

	var queued, failed int
	for _, res := range results {
		if res.Queued {
			queued++
		} else {
			failed++
			if res.Recipient.Name != "Brian" || res.Channel != ChannelSMS {
				t.Errorf("unexpected failure: %+v", res)
			}
		}
	}
	if queued != 5 || failed != 1 {
		t.Errorf("queued = %d, failed = %d, want 5/1", queued, failed)
	}
	if len(mailSvc.sent) != 3 {
		t.Errorf("emails sent = %d, want 3", len(mailSvc.sent))
	}
	if len(smsSvc.sent) != 2 {
		t.Errorf("texts sent = %d, want 2", len(smsSvc.sent))
	}
}

func TestService_Broadcast_noRecipients(t *testing.T) {
	svc, dir, _, _ := setup()
	dir.groups = map[string][]Recipient{}

	if _, err := svc.Broadcast(context.Background(), BroadcastMessage{
		Groups:   []string{GroupStaff},
		Subject:  "s",
		Body:     "b",
		Channels: []string{ChannelEmail},
	}); err != ErrNoRecipients {
		t.Errorf("Broadcast() error = %v, want %v", err, ErrNoRecipients)
	}
}

func TestService_NotifyFeeReminder(t *testing.T) {
	svc, _, mailSvc, smsSvc := setup()

	balance, _ := decimal.NewFromString("1500")
	results, err := svc.NotifyFeeReminder(context.Background(), FeeReminder{StudentID: 7, Balance: balance})
	if err != nil {
		t.Fatalf("NotifyFeeReminder() failed: %v", err)
	}
	// 2 contacts x 2 channels
	if len(results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(results))
	}
	for _, res := range results {
		if !res.Queued {
			t.Errorf("delivery not queued: %+v", res)
		}
	}
	if len(mailSvc.sent) != 2 || len(smsSvc.sent) != 2 {
		t.Errorf("sent = %d emails, %d texts, want 2/2", len(mailSvc.sent), len(smsSvc.sent))
	}
}

func TestService_NotifyAttendanceAlert(t *testing.T) {
	svc, _, mailSvc, smsSvc := setup()

	results, err := svc.NotifyAttendanceAlert(context.Background(), AttendanceAlert{StudentID: 7, Status: "absent"})
	if err != nil {
		t.Fatalf("NotifyAttendanceAlert() failed: %v", err)
	}
	// SMS only
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if len(mailSvc.sent) != 0 {
		t.Errorf("emails sent = %d, want 0", len(mailSvc.sent))
	}
	if len(smsSvc.sent) != 2 {
		t.Errorf("texts sent = %d, want 2", len(smsSvc.sent))
	}
}
