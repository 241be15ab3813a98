package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"streamwarden/internal/config"
	"streamwarden/internal/logging"
	"streamwarden/internal/services"
)

const userAgent = "StreamWarden-Go/0.1.0"

// Message is a channel-independent notification. Channels render it with
// whatever fidelity their transport supports; plain-text channels flatten
// the fields into the body.
type Message struct {
	Subject  string
	Body     string
	Priority string
	Tags     []string
	Fields   []Field
	Footer   string
}

// Field is a labelled detail line, rendered as rich fields where the
// transport allows and as "Label: value" lines otherwise.
type Field struct {
	Label string
	Value string
}

// Service delivers messages to configured notification channels.
type Service interface {
	// Send delivers to the named channel, or to the default channel when
	// channelID is empty. An unknown channel is a hard error so routing
	// typos fail loudly instead of dropping alerts.
	Send(ctx context.Context, channelID string, msg Message) error
	// Test delivers a canned message for verifying channel configuration.
	Test(ctx context.Context, channelID string) error
}

type channel interface {
	deliver(ctx context.Context, msg Message) error
}

// NewService builds a notification service from the configured channels.
// With no channels configured a noop implementation is returned.
func NewService(cfg *config.Config, logger *slog.Logger) Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(cfg.Notifications.Channels) == 0 {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	svc := &router{
		channels:       make(map[string]channel, len(cfg.Notifications.Channels)),
		defaultChannel: strings.TrimSpace(cfg.Notifications.DefaultChannel),
		logger:         logger.With(logging.String("component", "notifications")),
	}
	for _, ch := range cfg.Notifications.Channels {
		switch ch.Type {
		case config.ChannelNtfy:
			svc.channels[ch.ID] = newNtfyChannel(ch.Topic, timeout)
		case config.ChannelWebhook:
			svc.channels[ch.ID] = newWebhookChannel(ch.URL, timeout)
		}
	}
	if svc.defaultChannel == "" {
		svc.defaultChannel = cfg.Notifications.Channels[0].ID
	}
	return svc
}

type router struct {
	channels       map[string]channel
	defaultChannel string
	logger         *slog.Logger
}

func (r *router) Send(ctx context.Context, channelID string, msg Message) error {
	id := strings.TrimSpace(channelID)
	if id == "" {
		id = r.defaultChannel
	}
	ch, ok := r.channels[id]
	if !ok {
		return services.Wrap(services.ErrNotFound, "notifications", "send",
			fmt.Sprintf("channel %q is not configured", id), nil)
	}
	if err := ch.deliver(ctx, msg); err != nil {
		return services.Wrap(services.ErrTransientAction, "notifications", "send",
			fmt.Sprintf("deliver to channel %q", id), err)
	}
	r.logger.Debug("notification delivered", logging.String("channel", id), logging.String("subject", msg.Subject))
	return nil
}

func (r *router) Test(ctx context.Context, channelID string) error {
	return r.Send(ctx, channelID, Message{
		Subject:  "StreamWarden - Test",
		Body:     "Notification channel test",
		Priority: "low",
		Tags:     []string{"streamwarden", "test"},
	})
}

// NewNoop returns a service that silently drops every message.
func NewNoop() Service { return noopService{} }

type noopService struct{}

func (noopService) Send(context.Context, string, Message) error { return nil }
func (noopService) Test(context.Context, string) error          { return nil }

// flatten renders a message as plain text for transports without field
// support.
func flatten(msg Message) string {
	var builder strings.Builder
	builder.WriteString(msg.Body)
	for _, field := range msg.Fields {
		builder.WriteString("\n")
		builder.WriteString(field.Label)
		builder.WriteString(": ")
		builder.WriteString(field.Value)
	}
	if footer := strings.TrimSpace(msg.Footer); footer != "" {
		builder.WriteString("\n")
		builder.WriteString(footer)
	}
	return builder.String()
}
