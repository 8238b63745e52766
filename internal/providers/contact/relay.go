package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/deskfolio/internal/shared/id"
	"github.com/GriffinCanCode/deskfolio/internal/shared/utils"
)

// DefaultEndpoint is the transactional email API messages are posted to
const DefaultEndpoint = "https://api.resend.com/emails"

var (
	// ErrNotConfigured is returned when no API key is set
	ErrNotConfigured = errors.New("contact relay is not configured")
	// ErrInvalidMessage is returned for messages failing validation
	ErrInvalidMessage = errors.New("invalid message")
	// ErrDelivery is returned when the email API refuses the message
	ErrDelivery = errors.New("message delivery failed")
)

// Status strings shown by the contact form
const (
	StatusSent   = "Message sent! I'll get back to you soon."
	StatusFailed = "Something went wrong. Please try again later."
)

// Config configures the relay
type Config struct {
	APIKey   string
	Endpoint string
	From     string
	To       string
	Timeout  time.Duration
}

// Message is a contact form submission
type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"message"`
}

// Receipt acknowledges an accepted message
type Receipt struct {
	ID         id.MessageID `json:"id"`
	ProviderID string       `json:"provider_id,omitempty"`
	Status     string       `json:"status"`
	SentAt     time.Time    `json:"sent_at"`
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

type emailResponse struct {
	ID string `json:"id"`
}

// Relay forwards contact form submissions to the email API.
// Delivery is attempted once; the caller only reports the outcome.
type Relay struct {
	cfg    Config
	client *resty.Client
	policy *bluemonday.Policy
	logger *zap.Logger
}

// New creates a relay. A relay without an API key refuses every message.
func New(cfg Config, logger *zap.Logger) *Relay {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", "deskfolio-contact/1.0").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &Relay{
		cfg:    cfg,
		client: client,
		policy: bluemonday.StrictPolicy(),
		logger: logger,
	}
}

// Configured reports whether the relay can send
func (r *Relay) Configured() bool {
	return r.cfg.APIKey != "" && r.cfg.To != ""
}

// Validate checks and sanitizes a submission
func (r *Relay) Validate(msg Message) (Message, error) {
	clean := Message{
		Name:    strings.TrimSpace(r.policy.Sanitize(msg.Name)),
		Email:   strings.TrimSpace(msg.Email),
		Subject: strings.TrimSpace(r.policy.Sanitize(msg.Subject)),
		Body:    strings.TrimSpace(r.policy.Sanitize(msg.Body)),
	}

	checks := []error{
		utils.ValidateText(clean.Name, "name", utils.MaxNameLength, true),
		utils.ValidateEmail(clean.Email),
		utils.ValidateText(clean.Subject, "subject", utils.MaxSubjectLength, false),
		utils.ValidateText(clean.Body, "message", utils.MaxMessageSize, true),
	}
	for _, err := range checks {
		if err != nil {
			return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
	}
	return clean, nil
}

// Send validates msg and posts it to the email API
func (r *Relay) Send(ctx context.Context, msg Message) (*Receipt, error) {
	if !r.Configured() {
		return nil, ErrNotConfigured
	}

	clean, err := r.Validate(msg)
	if err != nil {
		return nil, err
	}

	subject := clean.Subject
	if subject == "" {
		subject = "Portfolio contact from " + clean.Name
	}

	var out emailResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(emailRequest{
			From:    r.cfg.From,
			To:      []string{r.cfg.To},
			ReplyTo: clean.Email,
			Subject: subject,
			Text:    fmt.Sprintf("From: %s <%s>\n\n%s", clean.Name, clean.Email, clean.Body),
		}).
		SetResult(&out).
		Post(r.cfg.Endpoint)
	if err != nil {
		r.logger.Warn("Contact relay request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	if resp.IsError() {
		r.logger.Warn("Contact relay rejected message",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", truncate(resp.String(), 200)))
		return nil, fmt.Errorf("%w: upstream status %d", ErrDelivery, resp.StatusCode())
	}

	receipt := &Receipt{
		ID:         id.NewMessageID(),
		ProviderID: out.ID,
		Status:     StatusSent,
		SentAt:     time.Now(),
	}
	r.logger.Info("Contact message sent",
		zap.String("message_id", receipt.ID.String()),
		zap.String("provider_id", out.ID))
	return receipt, nil
}

// StatusFor maps a Send outcome to the string shown to the visitor
func StatusFor(err error) string {
	if err == nil {
		return StatusSent
	}
	if errors.Is(err, ErrInvalidMessage) {
		return strings.TrimPrefix(err.Error(), ErrInvalidMessage.Error()+": ")
	}
	return StatusFailed
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
