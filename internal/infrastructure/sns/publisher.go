package sns

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/orbit-dashboard/orbit/internal/config"
	"github.com/orbit-dashboard/orbit/internal/domain"
)

// EventAccountVerified is the event type attribute on signup notifications.
const EventAccountVerified = "account.verified"

// PublishAPI is the subset of the SNS client the publisher uses.
type PublishAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// AccountVerifiedEvent is the message body published when a signup completes.
type AccountVerifiedEvent struct {
	AccountID          string    `json:"account_id"`
	Username           string    `json:"username"`
	ExternalProfileRef string    `json:"external_profile_ref,omitempty"`
	VerifiedAt         time.Time `json:"verified_at"`
}

// Publisher announces completed signups on an SNS topic.
type Publisher struct {
	client   PublishAPI
	topicARN string
}

// NewPublisher returns nil when no topic is configured; callers treat a nil
// publisher as "events disabled".
func NewPublisher(ctx context.Context, cfg *config.Config) (*Publisher, error) {
	if cfg.SignupEventsTopic == "" {
		return nil, nil
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.SNSRegion)}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	var clientOpts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return NewPublisherWithClient(sns.NewFromConfig(awsCfg, clientOpts...), cfg.SignupEventsTopic), nil
}

func NewPublisherWithClient(client PublishAPI, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

func (p *Publisher) AccountVerified(ctx context.Context, a *domain.Account) error {
	ev := AccountVerifiedEvent{
		AccountID:  a.AccountID,
		Username:   a.Username,
		VerifiedAt: a.CreatedAt,
	}
	if a.ExternalProfileRef != nil {
		ev.ExternalProfileRef = *a.ExternalProfileRef
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event": {DataType: aws.String("String"), StringValue: aws.String(EventAccountVerified)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", EventAccountVerified, err)
	}
	return nil
}
