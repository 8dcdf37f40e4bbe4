// Package messaging connects the session engine to Twilio: replies go out
// through the Messages API and player messages arrive on a webhook.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// whatsappPrefix marks WhatsApp addresses in Twilio's From/To fields.
const whatsappPrefix = "whatsapp:"

// Channels a TwilioSender can deliver on.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"
)

// Sender delivers one text message.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// FormatPhoneNumber strips the channel prefix from a Twilio address so the
// same phone identifies a player on any channel.
func FormatPhoneNumber(address string) string {
	return strings.TrimPrefix(strings.TrimSpace(address), whatsappPrefix)
}

// messageCreator is the slice of the Twilio REST client TwilioSender uses.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends replies with the Twilio Messages API.
type TwilioSender struct {
	api     messageCreator
	from    string
	channel string
}

// NewTwilioSender creates a sender for the given account. channel is
// ChannelWhatsApp or ChannelSMS.
func NewTwilioSender(accountSID, authToken, from, channel string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{api: client.Api, from: from, channel: channel}
}

func (s *TwilioSender) address(phone string) string {
	phone = FormatPhoneNumber(phone)
	if s.channel == ChannelWhatsApp {
		return whatsappPrefix + phone
	}
	return phone
}

// Send delivers body to the phone number to. The Twilio client has no
// context support, so ctx is only checked before the call.
func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(s.address(to))
	params.SetFrom(s.address(s.from))
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", to, err)
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	slog.Debug("Message sent", "to", to, "sid", sid)
	return nil
}

// LogSender logs outbound messages instead of sending them. It stands in
// for Twilio in development.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(_ context.Context, to, body string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Outbound message", "to", to, "body", body)
	return nil
}
