// Package eventbridge publishes observation events to AWS EventBridge.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"homegraph/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

const (
	eventSource     = "homegraph.ingestion"
	observationType = "ObservationRecorded"
)

// Publisher implements ports.EventPublisher using AWS EventBridge.
type Publisher struct {
	client       *eventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

// NewPublisher creates a new EventBridge publisher.
func NewPublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
	}
}

// PublishObservation sends one observation event. Callers treat
// failures as best-effort; the pipeline never blocks on the bus.
func (p *Publisher) PublishObservation(ctx context.Context, event ports.ObservationEvent) error {
	detail, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal observation event: %w", err)
	}

	input := &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				EventBusName: aws.String(p.eventBusName),
				Source:       aws.String(eventSource),
				DetailType:   aws.String(observationType),
				Detail:       aws.String(string(detail)),
				Time:         aws.Time(time.Now().UTC()),
				Resources: []string{
					fmt.Sprintf("arn:aws:homegraph::%s", event.ItemID),
				},
			},
		},
	}

	result, err := p.client.PutEvents(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to publish observation event: %w", err)
	}
	if result.FailedEntryCount > 0 {
		for _, entry := range result.Entries {
			if entry.ErrorCode != nil {
				p.logger.Error("Observation event rejected",
					zap.String("itemID", event.ItemID),
					zap.String("errorCode", *entry.ErrorCode),
					zap.String("errorMessage", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("observation event failed to publish")
	}

	p.logger.Debug("Observation event published",
		zap.String("itemID", event.ItemID),
		zap.String("source", event.Source),
		zap.String("eventBus", p.eventBusName),
	)

	return nil
}
