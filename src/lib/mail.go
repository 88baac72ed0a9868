package lib

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

type SendMailInput struct {
	From     string
	FromName string
	To       []string
	Cc       []string
	Bcc      []string
	ReplyTo  string
	Subject  string
	Body     string
	Html     bool
}

// Mailer delivers a single message through the configured relay.
type Mailer interface {
	Send(ctx context.Context, input *SendMailInput) error
}

// LogMailer only records what would have been sent. Used when no relay is configured.
type LogMailer struct {
	Logger *zap.Logger
}

func (m *LogMailer) Send(ctx context.Context, input *SendMailInput) error {
	m.Logger.Info("mail not delivered, log transport",
		zap.String("to", strings.Join(input.To, ",")),
		zap.String("subject", input.Subject),
	)
	return nil
}
