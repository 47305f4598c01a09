// Package di wires the application graph: configuration, clients,
// adapters and services.
package di

import (
	"context"
	"fmt"

	"homegraph/application/ports"
	"homegraph/application/services"
	"homegraph/infrastructure/config"
	"homegraph/infrastructure/eyepop"
	"homegraph/infrastructure/ledger"
	"homegraph/infrastructure/messaging/eventbridge"
	"homegraph/infrastructure/openai"
	"homegraph/infrastructure/persistence/dynamodb"
	"homegraph/infrastructure/receipts"
	"homegraph/interfaces/http/rest"
	"homegraph/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideInventoryRepository creates the graph store
func ProvideInventoryRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.InventoryRepository {
	return dynamodb.NewInventoryRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideOpenAIClient creates the OpenAI-compatible client
func ProvideOpenAIClient(cfg *config.Config, logger *zap.Logger) (*openai.Client, error) {
	return openai.NewClient(openai.Config{
		BaseURL:     cfg.OpenAIBaseURL,
		APIKey:      cfg.OpenAIAPIKey,
		EmbedModel:  cfg.OpenAIEmbedModel,
		ChatModel:   cfg.OpenAIChatModel,
		VisionModel: cfg.OpenAIVisionModel,
		Timeout:     cfg.UpstreamTimeout,
	}, logger)
}

// ProvideEmbedder exposes the client through the Embedder port
func ProvideEmbedder(client *openai.Client) ports.Embedder {
	return client
}

// ProvideRoomClassifier exposes the client through the RoomClassifier port
func ProvideRoomClassifier(client *openai.Client) ports.RoomClassifier {
	return client
}

// ProvideChatCompleter exposes the client through the ChatCompleter port
func ProvideChatCompleter(client *openai.Client) ports.ChatCompleter {
	return client
}

// ProvideDetector creates the object detection client
func ProvideDetector(cfg *config.Config, logger *zap.Logger) (ports.ObjectDetector, error) {
	return eyepop.NewDetector(eyepop.Config{
		APIURL:              cfg.DetectorAPIURL,
		PopID:               cfg.DetectorPopID,
		SecretKey:           cfg.DetectorSecretKey,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		Timeout:             cfg.UpstreamTimeout,
	}, logger)
}

// ProvideLedger creates the accounting ledger client
func ProvideLedger(cfg *config.Config, logger *zap.Logger) (ports.Ledger, error) {
	return ledger.NewClient(ledger.Config{
		BaseURL:      cfg.LedgerBaseURL,
		TokenURL:     cfg.LedgerTokenURL,
		ClientID:     cfg.LedgerClientID,
		ClientSecret: cfg.LedgerClientSecret,
		RefreshToken: cfg.LedgerRefreshToken,
		RealmID:      cfg.LedgerRealmID,
		Timeout:      cfg.UpstreamTimeout,
	}, logger)
}

// ProvideReceiptExtractor creates the receipt extraction client
func ProvideReceiptExtractor(client *openai.Client, cfg *config.Config, logger *zap.Logger) (ports.ReceiptExtractor, error) {
	return receipts.NewExtractor(receipts.Config{
		APIURL:  cfg.ReceiptAPIURL,
		APIKey:  cfg.ReceiptAPIKey,
		Timeout: cfg.UpstreamTimeout,
	}, client, logger)
}

// ProvideEventPublisher creates the observation event publisher, or
// nil when events are disabled
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents {
		return nil
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates the metrics recorder, or nil when metrics
// are disabled
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) ports.MetricsRecorder {
	if !cfg.EnableMetrics {
		return nil
	}
	namespace := fmt.Sprintf("HomeGraph/%s", cfg.Environment)
	return observability.NewMetrics(client, namespace, logger)
}

// ProvideIngestionService creates the photo ingestion pipeline
func ProvideIngestionService(
	detector ports.ObjectDetector,
	classifier ports.RoomClassifier,
	embedder ports.Embedder,
	ledgerPort ports.Ledger,
	repo ports.InventoryRepository,
	events ports.EventPublisher,
	metrics ports.MetricsRecorder,
	cfg *config.Config,
	logger *zap.Logger,
) *services.IngestionService {
	return services.NewIngestionService(
		detector, classifier, embedder, ledgerPort, repo,
		events, metrics, logger, cfg.IoUThreshold,
	)
}

// ProvideReceiptService creates the receipt ingestion pipeline
func ProvideReceiptService(
	extractor ports.ReceiptExtractor,
	ledgerPort ports.Ledger,
	repo ports.InventoryRepository,
	events ports.EventPublisher,
	logger *zap.Logger,
) *services.ReceiptService {
	return services.NewReceiptService(extractor, ledgerPort, repo, events, logger)
}

// ProvideSearchService creates the semantic search service
func ProvideSearchService(
	repo ports.InventoryRepository,
	embedder ports.Embedder,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) *services.SearchService {
	return services.NewSearchService(repo, embedder, metrics, logger)
}

// ProvideChatService creates the retrieval-augmented chat service
func ProvideChatService(
	search *services.SearchService,
	completer ports.ChatCompleter,
	logger *zap.Logger,
) *services.ChatService {
	return services.NewChatService(search, completer, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	ingestion *services.IngestionService,
	receiptSvc *services.ReceiptService,
	search *services.SearchService,
	chat *services.ChatService,
	ledgerPort ports.Ledger,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(ingestion, receiptSvc, search, chat, ledgerPort, cfg, logger)
}
