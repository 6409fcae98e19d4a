package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-api-authsession/internal/config"
)

// publisher is the subset of *sns.Client used by TopicMailer.
type publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// TopicMailer hands outbound mail to an SNS topic; a subscriber (SES, a
// Lambda, an email subscription) performs the actual delivery.
type TopicMailer struct {
	client   publisher
	topicARN string
}

func NewTopicMailer(cfg *config.Config) (*TopicMailer, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.SNSRegion),
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	var clientOpts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return newTopicMailer(sns.NewFromConfig(awsCfg, clientOpts...), cfg.SNSTopicARN), nil
}

func newTopicMailer(client publisher, topicARN string) *TopicMailer {
	return &TopicMailer{client: client, topicARN: topicARN}
}

func (m *TopicMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	_, err := m.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(m.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"recipient": {DataType: aws.String("String"), StringValue: aws.String(to)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
