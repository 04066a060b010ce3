// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsPublisher is the subset of [*sns.Client] used here.
type snsPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSConfig holds the topic and client settings for [SNSPublisher].
type SNSConfig struct {
	TopicARN string
	Region   string

	// EndpointURL overrides the service endpoint (LocalStack, tests).
	EndpointURL string
}

// SNSPublisher publishes notices to an SNS topic. Subscribers (an e-mail
// subscription or a delivery function) route them by the "email" attribute.
type SNSPublisher struct {
	client   snsPublisher
	topicARN string
}

// NewSNSPublisher loads the default AWS credential chain and builds a publisher.
func NewSNSPublisher(ctx context.Context, config SNSConfig) (*SNSPublisher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.Region))
	if err != nil {
		return nil, fmt.Errorf("notify_sns_config_failed: %w", err)
	}

	client := sns.NewFromConfig(awsCfg, func(options *sns.Options) {
		if config.EndpointURL != "" {
			options.BaseEndpoint = aws.String(config.EndpointURL)
		}
	})

	return &SNSPublisher{client: client, topicARN: config.TopicARN}, nil
}

// Send implements [Sender].
func (publisher *SNSPublisher) Send(ctx context.Context, message Message) error {
	if err := message.validate(); err != nil {
		return err
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(publisher.topicARN),
		Message:  aws.String(message.Body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"email": {DataType: aws.String("String"), StringValue: aws.String(message.To)},
		},
	}
	if message.Subject != "" {
		input.Subject = aws.String(message.Subject)
	}
	if message.Username != "" {
		input.MessageAttributes["username"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(message.Username),
		}
	}

	if _, err := publisher.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("notify_sns_publish_failed: %w", err)
	}
	return nil
}
