package core

import "strings"

type (
	SMSMessage struct {
		To   []string // E.164 phone numbers
		Body string
	}

	// SMSService is any service that can send text messages
	SMSService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*SMSMessage)
	}
)

func (m *SMSMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *SMSMessage) HasContent() bool    { return m.Body != "" }

// NormalizePhone coerces a local number into E.164 using the given country
// prefix (e.g. "+254"). Numbers already in E.164 are returned as-is.
func NormalizePhone(phone, countryPrefix string) string {
	phone = CleanString(phone)
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return countryPrefix + strings.TrimLeft(phone, "0")
}
