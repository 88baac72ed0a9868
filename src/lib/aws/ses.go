package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"quickstay/src/lib"
)

type SESMailer struct {
	client *ses.Client
	logger *zap.Logger
}

func NewSESMailer(ctx context.Context, logger *zap.Logger) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &SESMailer{client: ses.NewFromConfig(cfg), logger: logger}, nil
}

func (m *SESMailer) Send(ctx context.Context, input *lib.SendMailInput) error {
	content := &types.Content{Data: aws.String(input.Body), Charset: aws.String("UTF-8")}
	body := &types.Body{Text: content}
	if input.Html {
		body = &types.Body{Html: content}
	}
	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(fmt.Sprintf("%s <%s>", input.FromName, input.From)),
		Destination: &types.Destination{
			ToAddresses:  input.To,
			CcAddresses:  input.Cc,
			BccAddresses: input.Bcc,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(input.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
		ReplyToAddresses: replyTo(input.ReplyTo),
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	m.logger.Info("sent email", zap.String("messageId", aws.ToString(out.MessageId)))
	return nil
}

func replyTo(addr string) []string {
	if addr == "" {
		return nil
	}
	return []string{addr}
}
