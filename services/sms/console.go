// Package smssvc provides SMS dispatch services.
package smssvc

import (
	"log"
	"strings"
	"sync"

	"github.com/trezcool/shule/core"
)

var (
	SentMessages = make([]core.SMSMessage, 0)
	mu           sync.Mutex
)

type consoleService struct {
	sender        string
	disableOutput bool
}

var _ core.SMSService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.SMSService {
	return &consoleService{sender: conf.SMS.Sender}
}

func (svc consoleService) SendMessages(messages ...*core.SMSMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.SMSMessage) {
	if !msg.HasRecipients() || !msg.HasContent() {
		return
	}
	if !svc.disableOutput {
		log.Printf("SMS from %s to %s:\n%s\n", svc.sender, strings.Join(msg.To, ", "), msg.Body)
	}
	mu.Lock()
	SentMessages = append(SentMessages, *msg)
	mu.Unlock()
}

type consoleServiceMock struct {
	consoleService
}

func NewConsoleServiceMock(conf *core.Config) core.SMSService {
	return &consoleServiceMock{
		consoleService: consoleService{sender: conf.SMS.Sender, disableOutput: true},
	}
}

func (svc *consoleServiceMock) SendMessages(messages ...*core.SMSMessage) {
	for _, msg := range messages {
		// run synchronously
		svc.sendMessage(msg)
	}
}
