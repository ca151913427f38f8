package smssvc

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trezcool/shule/core"
)

const messagingEndpoint = "/version1/messaging"

// africasTalkingService sends texts through the Africa's Talking bulk SMS API.
type africasTalkingService struct {
	username string
	apiKey   string
	sender   string
	baseURL  string
	client   *http.Client
	logger   core.Logger
}

var _ core.SMSService = (*africasTalkingService)(nil)

func NewAfricasTalkingService(conf *core.Config, logger core.Logger) *africasTalkingService {
	return &africasTalkingService{
		username: conf.SMS.Username,
		apiKey:   conf.SMS.ApiKey,
		sender:   conf.SMS.Sender,
		baseURL:  conf.SMS.BaseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

func (svc africasTalkingService) SendMessages(messages ...*core.SMSMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if msg.HasRecipients() && msg.HasContent() {
				svc.send(*msg)
			}
		}()
	}
}

func (svc africasTalkingService) send(msg core.SMSMessage) {
	form := make(url.Values)
	form.Set("username", svc.username)
	form.Set("to", strings.Join(msg.To, ","))
	form.Set("message", msg.Body)
	if svc.sender != "" {
		form.Set("from", svc.sender)
	}

	req, err := http.NewRequest(http.MethodPost, svc.baseURL+messagingEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		svc.logger.Error(fmt.Sprintf("preparing SMS request: %v", err), err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", svc.apiKey)

	res, err := svc.client.Do(req)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("sending SMS: %v", err), err)
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error(fmt.Sprintf("sending SMS - status: %d", res.StatusCode))
	}
	// todo: retries ??
}
