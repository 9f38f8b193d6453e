package mail

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/hemolens/backend/config"
)

type sesMailer struct {
	client *ses.SES
	cfg    config.MailConfigs
}

func NewSESMailer(cfg config.MailConfigs) Mailer {
	session, _ := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Endpoint:    aws.String(cfg.Endpoint),
		HTTPClient:  &http.Client{Timeout: cfg.Timeout.Std()},
	})

	return &sesMailer{
		client: ses.New(session),
		cfg:    cfg,
	}
}

func (m *sesMailer) Send(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmailWithContext(ctx, &ses.SendEmailInput{
		Source:      aws.String(m.cfg.Sender),
		Destination: &ses.Destination{ToAddresses: []*string{aws.String(to)}},
		Message: &ses.Message{
			Subject: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(subject)},
			Body: &ses.Body{
				Html: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(body)},
			},
		},
	})

	return err
}
