package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/leonfocus/leonfocus/pkg/models"
)

// SQSAPI captures the subset of the SQS client used by the publisher.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher implements the Publisher interface using AWS SQS.
type SQSPublisher struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSPublisher creates a new SQSPublisher.
func NewSQSPublisher(client SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ Publisher = (*SQSPublisher)(nil)

// PublishLedgerEvent sends the audit record to an SQS queue for downstream
// accounting.
func (p *SQSPublisher) PublishLedgerEvent(ctx context.Context, event *models.LedgerEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger event for SQS: %w", err)
	}

	_, err = p.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.QueueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send ledger event to SQS: %w", err)
	}

	return nil
}

// NoOpPublisher is a publisher that does nothing. Useful in tests and when no
// audit queue is configured.
type NoOpPublisher struct{}

// PublishLedgerEvent does nothing.
func (p *NoOpPublisher) PublishLedgerEvent(ctx context.Context, event *models.LedgerEvent) error {
	return nil
}
