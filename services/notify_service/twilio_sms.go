package notify_service

import (
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioCredentials struct {
	AccountSid string
	AuthToken  string
	FromNumber string
	ToNumber   string
}

// MessageCreator is the subset of the Twilio REST API used here.
type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type SMSNotifier struct {
	api         MessageCreator
	credentials TwilioCredentials
	logger      *slog.Logger
}

func NewSMSNotifier(credentials TwilioCredentials, logger *slog.Logger) *SMSNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: credentials.AccountSid,
		Password: credentials.AuthToken,
	})
	return NewSMSNotifierWithAPI(client.Api, credentials, logger)
}

func NewSMSNotifierWithAPI(api MessageCreator, credentials TwilioCredentials, logger *slog.Logger) *SMSNotifier {
	return &SMSNotifier{api: api, credentials: credentials, logger: logger}
}

// Notify sends body to the configured number and returns the message SID.
func (n *SMSNotifier) Notify(body string) (string, error) {
	if body == "" {
		return "", fmt.Errorf("SMS content is empty")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.credentials.ToNumber)
	params.SetFrom(n.credentials.FromNumber)
	params.SetBody(body)

	message, err := n.api.CreateMessage(params)
	if err != nil {
		n.logger.Error("Failed to send SMS",
			slog.String("error", err.Error()),
			slog.String("to", n.credentials.ToNumber))
		return "", fmt.Errorf("failed to send SMS: %w", err)
	}

	sid := ""
	if message != nil && message.Sid != nil {
		sid = *message.Sid
	}
	n.logger.Info("SMS sent", slog.String("message_sid", sid))
	return sid, nil
}

// RunSummary formats the completion message of a run.
func RunSummary(runID string, clips, scenes int, location string) string {
	msg := fmt.Sprintf("Short %s finished: %d/%d scenes assembled.", runID, clips, scenes)
	if location != "" {
		msg += " " + location
	}
	return msg
}
