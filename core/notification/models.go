package notification

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
)

// Recipient groups
const (
	GroupStudents = "students"
	GroupParents  = "parents"
	GroupStaff    = "staff"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type (
	// Recipient is a resolved delivery target.
	Recipient struct {
		Name  string `json:"name"`
		Email string `json:"email,omitempty"`
		Phone string `json:"phone,omitempty"`
		Group string `json:"group,omitempty"`
	}

	// DeliveryResult reports the outcome of one recipient × channel pair.
	// Queued means handed to the dispatch service; delivery itself is the
	// collaborator's business and is never retried here.
	DeliveryResult struct {
		Recipient Recipient `json:"recipient"`
		Channel   string    `json:"channel"`
		Queued    bool      `json:"queued"`
		Error     string    `json:"error,omitempty"`
	}

	// BroadcastMessage expands across recipient groups and channels.
	BroadcastMessage struct {
		Groups   []string `json:"groups" validate:"required,min=1"`
		Subject  string   `json:"subject" validate:"required"`
		Body     string   `json:"body" validate:"required"`
		Channels []string `json:"channels"` // defaults to email
	}

	// FeeReminder notifies a student's contacts of an outstanding balance.
	FeeReminder struct {
		StudentID int             `json:"student_id" validate:"required"`
		Balance   decimal.Decimal `json:"balance"`
		DueDate   time.Time       `json:"due_date"`
	}

	// ExamResults notifies a student's contacts of published results.
	ExamResults struct {
		StudentID int          `json:"student_id" validate:"required"`
		ExamName  string       `json:"exam_name" validate:"required"`
		Lines     []ResultLine `json:"lines"`
	}

	ResultLine struct {
		Subject string `json:"subject"`
		Marks   string `json:"marks"`
		Letter  string `json:"letter"`
	}

	// AttendanceAlert notifies a student's contacts of the day's status.
	AttendanceAlert struct {
		StudentID int       `json:"student_id" validate:"required"`
		Status    string    `json:"status" validate:"required"`
		Date      time.Time `json:"date"`
	}
)

func (bm *BroadcastMessage) Validate(validate *validator.Validate) error {
	bm.Subject = core.CleanString(bm.Subject)
	bm.Body = core.CleanString(bm.Body)
	for i, g := range bm.Groups {
		bm.Groups[i] = core.CleanString(g, true /* lower */)
	}
	if len(bm.Channels) == 0 {
		bm.Channels = []string{ChannelEmail}
	}
	for i, c := range bm.Channels {
		bm.Channels[i] = core.CleanString(c, true /* lower */)
	}

	if err := validate.Struct(bm); err != nil {
		return err
	}
	for _, g := range bm.Groups {
		if g != GroupStudents && g != GroupParents && g != GroupStaff {
			return core.NewValidationError(ErrUnknownGroup,
				core.FieldError{Field: "groups", Error: ErrUnknownGroup.Error()})
		}
	}
	for _, c := range bm.Channels {
		if c != ChannelEmail && c != ChannelSMS {
			return core.NewValidationError(ErrUnknownChannel,
				core.FieldError{Field: "channels", Error: ErrUnknownChannel.Error()})
		}
	}
	return nil
}

func (fr *FeeReminder) Validate(validate *validator.Validate) error { return validate.Struct(fr) }
func (er *ExamResults) Validate(validate *validator.Validate) error { return validate.Struct(er) }
func (aa *AttendanceAlert) Validate(validate *validator.Validate) error {
	return validate.Struct(aa)
}
