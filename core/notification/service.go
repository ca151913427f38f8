package notification

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrUnknownGroup   = errors.New("unknown recipient group")
	ErrUnknownChannel = errors.New("unknown channel")
	ErrNoRecipients   = errors.New("no recipients resolved")
)

type (
	// Directory resolves recipient groups and student contacts to concrete
	// addresses; backed by the school's people records.
	Directory interface {
		ResolveGroups(ctx context.Context, groups ...string) ([]Recipient, error)
		// StudentContacts returns the student's own and guardian contacts.
		StudentContacts(ctx context.Context, studentID int) ([]Recipient, error)
	}

	// Service expands messages across recipients and hands them to the
	// injected dispatch services. It owns no global state: collaborators
	// are passed in, never looked up.
	Service struct {
		dir     Directory
		mailSvc core.EmailService
		smsSvc  core.SMSService
	}
)

func NewService(dir Directory, mailSvc core.EmailService, smsSvc core.SMSService) *Service {
	return &Service{dir: dir, mailSvc: mailSvc, smsSvc: smsSvc}
}

// Broadcast expands groups × channels into per-recipient deliveries.
// Recipients missing an address for a channel are reported, not dropped
// silently; nothing is retried here.
func (svc *Service) Broadcast(ctx context.Context, bm BroadcastMessage) ([]DeliveryResult, error) {
	recipients, err := svc.dir.ResolveGroups(ctx, bm.Groups...)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	return svc.dispatch(recipients, bm.Channels, outgoing{subject: bm.Subject, body: bm.Body}), nil
}

// NotifyFeeReminder messages a student's contacts about an outstanding
// balance, on both channels.
func (svc *Service) NotifyFeeReminder(ctx context.Context, fr FeeReminder) ([]DeliveryResult, error) {
	contacts, err := svc.dir.StudentContacts(ctx, fr.StudentID)
	if err != nil {
		return nil, err
	}
	msg := outgoing{
		subject: "Fee Payment Reminder",
		body: fmt.Sprintf(
			"This is a reminder that a fee balance of %s is due on %s. Kindly arrange payment.",
			fr.Balance.StringFixed(2), fr.DueDate.Format("02 Jan 2006"),
		),
		tmplName: "fee-reminder",
		tmplData: struct {
			Balance string
			DueDate string
		}{fr.Balance.StringFixed(2), fr.DueDate.Format("02 Jan 2006")},
	}
	return svc.dispatch(contacts, []string{ChannelEmail, ChannelSMS}, msg), nil
}

// NotifyExamResults messages a student's contacts with published results.
func (svc *Service) NotifyExamResults(ctx context.Context, er ExamResults) ([]DeliveryResult, error) {
	contacts, err := svc.dir.StudentContacts(ctx, er.StudentID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s results:\n", er.ExamName)
	for _, line := range er.Lines {
		fmt.Fprintf(&b, "%s: %s (%s)\n", line.Subject, line.Marks, line.Letter)
	}
	subject := fmt.Sprintf("%s Results Published", er.ExamName)
	return svc.dispatch(contacts, []string{ChannelEmail, ChannelSMS}, outgoing{subject: subject, body: b.String()}), nil
}

// NotifyAttendanceAlert messages a student's contacts with the day's
// attendance status; SMS only, per the school's convention.
func (svc *Service) NotifyAttendanceAlert(ctx context.Context, aa AttendanceAlert) ([]DeliveryResult, error) {
	contacts, err := svc.dir.StudentContacts(ctx, aa.StudentID)
	if err != nil {
		return nil, err
	}
	body := fmt.Sprintf("Attendance update for %s: %s.", aa.Date.Format("02 Jan 2006"), aa.Status)
	return svc.dispatch(contacts, []string{ChannelSMS}, outgoing{subject: "Attendance Alert", body: body}), nil
}

// outgoing is a channel-agnostic message; body doubles as the SMS text
// and the plain-text email fallback when no template is named.
type outgoing struct {
	subject  string
	body     string
	tmplName string
	tmplData interface{}
}

func (svc *Service) dispatch(recipients []Recipient, channels []string, msg outgoing) []DeliveryResult {
	results := make([]DeliveryResult, 0, len(recipients)*len(channels))
	var emails []*core.EmailMessage
	var texts []*core.SMSMessage

	for _, channel := range channels {
		for _, r := range recipients {
			res := DeliveryResult{Recipient: r, Channel: channel}
			switch channel {
			case ChannelEmail:
				if r.Email == "" {
					res.Error = "no email address on record"
					break
				}
				emails = append(emails, &core.EmailMessage{
					To:           []mail.Address{{Name: r.Name, Address: r.Email}},
					Subject:      msg.subject,
					BodyStr:      msg.body,
					TemplateName: msg.tmplName,
					TemplateData: msg.tmplData,
				})
				res.Queued = true
			case ChannelSMS:
				if r.Phone == "" {
					res.Error = "no phone number on record"
					break
				}
				texts = append(texts, &core.SMSMessage{To: []string{r.Phone}, Body: msg.body})
				res.Queued = true
			default:
				res.Error = ErrUnknownChannel.Error()
			}
			results = append(results, res)
		}
	}

	if len(emails) > 0 {
		svc.mailSvc.SendMessages(emails...)
	}
	if len(texts) > 0 {
		svc.smsSvc.SendMessages(texts...)
	}
	return results
}
