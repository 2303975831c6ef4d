// internal/common/aws/sns.go
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSAPI is the part of *sns.Client the publisher uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publisher sends JSON documents to one topic.
type Publisher struct {
	api      SNSAPI
	topicARN string
}

func NewPublisher(ctx context.Context, region, topicARN string) (*Publisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewPublisherWithAPI(sns.NewFromConfig(cfg), topicARN), nil
}

func NewPublisherWithAPI(api SNSAPI, topicARN string) *Publisher {
	return &Publisher{api: api, topicARN: topicARN}
}

// PublishJSON publishes body with string message attributes and returns the SNS message id.
func (p *Publisher) PublishJSON(ctx context.Context, subject string, body []byte, attrs map[string]string) (string, error) {
	in := &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(string(body)),
	}
	if len(attrs) > 0 {
		in.MessageAttributes = make(map[string]types.MessageAttributeValue, len(attrs))
		for k, v := range attrs {
			in.MessageAttributes[k] = types.MessageAttributeValue{
				DataType:    aws.String("String"),
				StringValue: aws.String(v),
			}
		}
	}

	out, err := p.api.Publish(ctx, in)
	if err != nil {
		return "", fmt.Errorf("sns publish: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
