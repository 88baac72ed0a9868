package lib

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"quickstay/src/config"
)

type SMTPMailer struct {
	client *mail.Client
	logger *zap.Logger
}

func NewSMTPMailer(cfg *config.Config, logger *zap.Logger) (*SMTPMailer, error) {
	c, err := mail.NewClient(
		cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUsername),
		mail.WithPassword(cfg.SMTPPassword),
	)
	if err != nil {
		return nil, fmt.Errorf("could not initialize smtp client: %w", err)
	}
	return &SMTPMailer{client: c, logger: logger}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, input *SendMailInput) error {
	msg, err := buildMessage(input)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	m.logger.Debug("mail sent", zap.Strings("to", input.To), zap.String("subject", input.Subject))
	return nil
}

func buildMessage(input *SendMailInput) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(input.FromName, input.From); err != nil {
		return nil, fmt.Errorf("failed to set From address: %w", err)
	}
	if err := msg.To(input.To...); err != nil {
		return nil, fmt.Errorf("failed to set To address: %w", err)
	}
	if input.ReplyTo != "" {
		if err := msg.ReplyTo(input.ReplyTo); err != nil {
			return nil, fmt.Errorf("failed to set Reply-To address: %w", err)
		}
	}
	if len(input.Cc) > 0 {
		if err := msg.Cc(input.Cc...); err != nil {
			return nil, fmt.Errorf("failed to set Cc address: %w", err)
		}
	}
	if len(input.Bcc) > 0 {
		if err := msg.Bcc(input.Bcc...); err != nil {
			return nil, fmt.Errorf("failed to set Bcc address: %w", err)
		}
	}
	msg.Subject(input.Subject)
	if input.Html {
		msg.SetBodyString(mail.TypeTextHTML, input.Body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, input.Body)
	}
	return msg, nil
}
