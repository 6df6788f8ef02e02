package messaging

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// sesAPI is the subset of *ses.Client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender emails the message to a distribution list through AWS SES.
type SESSender struct {
	client  sesAPI
	From    string
	Subject string
}

// NewSESSender loads the default AWS credential chain for region.
func NewSESSender(ctx context.Context, region, from, subject string) (*SESSender, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if subject == "" {
		subject = "Today's celebration"
	}
	return &SESSender{client: ses.NewFromConfig(cfg), From: from, Subject: subject}, nil
}

// Send emails body as plain text and returns the SES message id.
func (s *SESSender) Send(ctx context.Context, to, body string) (string, error) {
	if err := checkArgs(to, body); err != nil {
		return "", err
	}
	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(s.From),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(s.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return "", &DeliveryError{Provider: ProviderSES, Err: err}
	}
	return aws.ToString(out.MessageId), nil
}
