// Package whatsapp delivers coordinator updates over the Twilio WhatsApp
// API.
package whatsapp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/config"
	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
)

// Credentials is the secret payload holding the Twilio API pair.
type Credentials struct {
	AccountSID string `json:"account_sid"`
	AuthToken  string `json:"auth_token"`
}

// MessageCreator is the subset of the Twilio API used to send messages.
type MessageCreator interface {
	CreateMessage(params *api.CreateMessageParams) (*api.ApiV2010Message, error)
}

// SecretSource resolves JSON secrets by name.
type SecretSource interface {
	JSON(ctx context.Context, secretID string, v any) error
}

// Sender sends WhatsApp messages. The Twilio client is built on first use
// from credentials held in the secret store, then reused for the life of the
// process.
type Sender struct {
	cfg     config.WhatsApp
	secrets SecretSource
	log     *zap.Logger

	newAPI func(creds Credentials) MessageCreator

	mu  sync.Mutex
	api MessageCreator
}

// NewSender creates a sender using the configured origination number.
func NewSender(cfg config.WhatsApp, source SecretSource, log *zap.Logger) *Sender {
	return &Sender{
		cfg:     cfg,
		secrets: source,
		log:     log,
		newAPI:  newTwilioAPI,
	}
}

func newTwilioAPI(creds Credentials) MessageCreator {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: creds.AccountSID,
		Password: creds.AuthToken,
	})
	return client.Api
}

// Send delivers one formatted update to recipient and returns the Twilio
// message SID.
func (s *Sender) Send(ctx context.Context, event domain.CoordinatorEvent, recipient string) (string, error) {
	creator, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	params := &api.CreateMessageParams{}
	params.SetFrom(s.cfg.From)
	params.SetTo(recipient)
	params.SetBody(FormatMessage(event))

	message, err := creator.CreateMessage(params)
	if err != nil {
		s.log.Error("whatsapp send failed",
			zap.String("recipient", recipient),
			zap.Error(err))
		return "", fmt.Errorf("failed to send WhatsApp to %s: %w", recipient, err)
	}

	var sid string
	if message.Sid != nil {
		sid = *message.Sid
	}
	s.log.Info("whatsapp sent",
		zap.String("recipient", recipient),
		zap.String("sid", sid))
	return sid, nil
}

// client returns the cached Twilio API, initializing it on first use.
func (s *Sender) client(ctx context.Context) (MessageCreator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.api != nil {
		return s.api, nil
	}

	if s.cfg.SecretID == "" {
		return nil, fmt.Errorf("TWILIO_SECRET_NAME is required")
	}

	var creds Credentials
	if err := s.secrets.JSON(ctx, s.cfg.SecretID, &creds); err != nil {
		s.log.Error("twilio credentials unavailable", zap.Error(err))
		return nil, err
	}
	if creds.AccountSID == "" || creds.AuthToken == "" {
		return nil, fmt.Errorf("missing account_sid or auth_token in secret %s", s.cfg.SecretID)
	}

	s.api = s.newAPI(creds)
	s.log.Info("twilio client initialized")
	return s.api, nil
}

// NormalizeRecipient ensures the number carries the whatsapp: prefix Twilio
// expects.
func NormalizeRecipient(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
