package notification

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/rently/backend/internal/infrastructure/config"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// ErrRateLimited is returned when a phone number has exhausted its
// message allowance for the current window.
var ErrRateLimited = errors.New("sms rate limit exceeded for phone number")

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// ValidatePhone checks that the phone number is in E.164 format
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return fmt.Errorf("phone number %q is not in E.164 format", phone)
	}
	return nil
}

// SMSSender delivers messages through the Twilio API. It satisfies the
// Notifier interface the billing services depend on.
type SMSSender struct {
	client  *twilio.RestClient
	from    string
	limiter *RateLimiter
	logger  *zap.Logger
}

// NewSMSSender creates a new SMSSender. The limiter is optional; pass
// nil to send without per-number capping.
func NewSMSSender(cfg config.NotificationConfig, limiter *RateLimiter, logger *zap.Logger) *SMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &SMSSender{
		client:  client,
		from:    cfg.FromNumber,
		limiter: limiter,
		logger:  logger,
	}
}

// Send delivers a message to the phone number and returns the provider
// message SID
func (s *SMSSender) Send(ctx context.Context, phone, message string) (string, error) {
	if err := ValidatePhone(phone); err != nil {
		return "", err
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, phone)
		if err != nil {
			// A limiter outage should not silence every notification
			s.logger.Warn("SMS rate limiter unavailable, sending without limit check",
				zap.Error(err))
		} else if !allowed {
			return "", ErrRateLimited
		}
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.from)
	params.SetBody(message)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("failed to send SMS: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	s.logger.Debug("SMS sent",
		zap.String("to", phone),
		zap.String("sid", sid))
	return sid, nil
}

// NoopSender drops every message. It stands in for the Twilio sender
// when notifications are disabled in configuration.
type NoopSender struct {
	logger *zap.Logger
}

// NewNoopSender creates a new NoopSender
func NewNoopSender(logger *zap.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

// Send logs and discards the message
func (s *NoopSender) Send(_ context.Context, phone, message string) (string, error) {
	s.logger.Debug("Notifications disabled, dropping SMS",
		zap.String("to", phone),
		zap.Int("length", len(message)))
	return "", nil
}
