// Package notify sends order confirmation e-mails.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/money"
)

type sesAPI interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Sender          string
}

type SESNotifier struct {
	client sesAPI
	sender string
}

// NewSES loads AWS config for region. Static keys are used when given,
// otherwise the default credential chain applies.
func NewSES(ctx context.Context, cfg SESConfig) (*SESNotifier, error) {
	if cfg.Sender == "" {
		return nil, errors.New("sender email address is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS SDK config: %w", err)
	}
	return &SESNotifier{client: ses.NewFromConfig(awsCfg), sender: cfg.Sender}, nil
}

func (n *SESNotifier) OrderPlaced(ctx context.Context, order *models.Order) error {
	if order.Email == "" {
		return errors.New("recipient email address is empty")
	}

	subject := fmt.Sprintf("Order %s confirmation", order.ID)
	total := money.Format(order.Total())

	bodyText := fmt.Sprintf(
		"Thank you for your order!\n\nOrder ID: %s\nItems: %d\nTotal: $%s\n",
		order.ID, len(order.Items), total)
	bodyHTML := fmt.Sprintf(
		"<html><body><p>Thank you for your order!</p><ul><li>Order ID: %s</li><li>Items: %d</li><li>Total: $%s</li></ul></body></html>",
		order.ID, len(order.Items), total)

	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(n.sender),
		Destination: &types.Destination{ToAddresses: []string{order.Email}},
		Message: &types.Message{
			Subject: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(subject)},
			Body: &types.Body{
				Html: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(bodyHTML)},
				Text: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(bodyText)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

type Noop struct{}

func (Noop) OrderPlaced(context.Context, *models.Order) error { return nil }
