// Package observability publishes pipeline counters to CloudWatch.
package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics implements ports.MetricsRecorder against CloudWatch. Puts
// are fire-and-forget; a metrics outage never fails a request.
type Metrics struct {
	client    *cloudwatch.Client
	namespace string
	logger    *zap.Logger
}

// NewMetrics creates a new CloudWatch metrics recorder.
func NewMetrics(client *cloudwatch.Client, namespace string, logger *zap.Logger) *Metrics {
	if namespace == "" {
		namespace = "HomeGraph"
	}
	return &Metrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// CountDetections records how many detections a photo produced after
// and before overlap consolidation.
func (m *Metrics) CountDetections(ctx context.Context, kept, suppressed int) {
	m.put(ctx,
		datum("DetectionsKept", float64(kept)),
		datum("DetectionsSuppressed", float64(suppressed)),
	)
}

// CountUpsert records one graph upsert outcome.
func (m *Metrics) CountUpsert(ctx context.Context, succeeded bool) {
	name := "UpsertsSucceeded"
	if !succeeded {
		name = "UpsertsFailed"
	}
	m.put(ctx, datum(name, 1))
}

// CountSearch records the result size of one search.
func (m *Metrics) CountSearch(ctx context.Context, results int) {
	m.put(ctx,
		datum("Searches", 1),
		datum("SearchResults", float64(results)),
	)
}

func (m *Metrics) put(ctx context.Context, data ...types.MetricDatum) {
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		m.logger.Warn("Failed to put metric data", zap.Error(err))
	}
}

func datum(name string, value float64) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now().UTC()),
	}
}
